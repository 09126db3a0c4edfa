package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]error{
		"queue_full":       QueueFull,
		"already_split":    AlreadySplit,
		"payload_overflow": PayloadOver,
		"device_busy":      DeviceBusy,
		"invalid_pin":      InvalidPin,
		"invalid_command":  InvalidCommand,
		"frame_truncated":  FrameTruncated,
		"reset":            Reset,
	}
	for want, e := range cases {
		require.Equal(t, want, e.Error())
	}
}

func TestOf(t *testing.T) {
	assert.Equal(t, OK, Of(nil))
	assert.Equal(t, QueueFull, Of(QueueFull))
	assert.Equal(t, DeviceBusy, Of(&E{C: DeviceBusy, Op: "uart.write"}))
	assert.Equal(t, InvalidPin, Of(fmt.Errorf("gpio: %w", InvalidPin)))
	assert.Equal(t, Error, Of(errors.New("boom")))
}

func TestWrapMatchesWithErrorsIs(t *testing.T) {
	cause := errors.New("nack")
	err := Wrap(BusError, "i2c.tx", cause)
	require.True(t, errors.Is(err, BusError))
	require.True(t, errors.Is(err, cause))
	require.False(t, errors.Is(err, Timeout))
	require.Equal(t, "i2c.tx: bus_error: nack", err.Error())
}
