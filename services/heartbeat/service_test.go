package heartbeat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlloop-go/x/timex"
)

func TestStrictThreshold(t *testing.T) {
	s := New(1000)
	require.False(t, s.Due(1000))
	require.True(t, s.Due(1001))
	require.Equal(t, timex.Tick(1001), s.Last())
	require.False(t, s.Due(2001))
	require.True(t, s.Due(2002))
	require.Equal(t, uint32(2), s.Beats())
}

func TestOncePerWindowWithMonotonicTicks(t *testing.T) {
	s := New(DefaultPeriod)
	fired := 0
	for tick := timex.Tick(0); tick < 10_000; tick++ {
		if s.Due(tick) {
			fired++
		}
	}
	// Windows are 1001 ticks wide in drift mode: fires at 1001, 2002, ... 9009.
	assert.Equal(t, 9, fired)
}

func TestDriftVersusAnchored(t *testing.T) {
	d := New(1000)
	a := New(1000)
	a.Mode = Anchored

	// A slow loop observes the timer late.
	require.True(t, d.Due(1500))
	require.True(t, a.Due(1500))
	assert.Equal(t, timex.Tick(1500), d.Last())
	assert.Equal(t, timex.Tick(1000), a.Last())

	assert.False(t, d.Due(2100))
	assert.True(t, a.Due(2100))
}

func TestAnchoredSkipsMissedWindows(t *testing.T) {
	s := New(1000)
	s.Mode = Anchored
	fired := 0
	for i := 0; i < 20; i++ {
		if s.Due(10_500) {
			fired++
		}
	}
	assert.Equal(t, 1, fired)
	assert.Equal(t, timex.Tick(10_000), s.Last())

	assert.False(t, s.Due(11_000))
	assert.True(t, s.Due(11_001))
	assert.Equal(t, timex.Tick(11_000), s.Last())
}

func TestAnchoredStallAcrossWrap(t *testing.T) {
	s := New(1000)
	s.Mode = Anchored
	s.Restart(timex.Tick(math.MaxUint32 - 99))
	require.True(t, s.Due(5_200))
	assert.False(t, s.Due(5_200))
	assert.Equal(t, timex.Tick(4_900), s.Last())
}

func TestWrapAround(t *testing.T) {
	s := New(1000)
	s.Restart(timex.Tick(math.MaxUint32 - 500))
	require.False(t, s.Due(400))
	require.True(t, s.Due(501))
}

func TestZeroPeriodDefaults(t *testing.T) {
	assert.Equal(t, DefaultPeriod, New(0).Period)
}
