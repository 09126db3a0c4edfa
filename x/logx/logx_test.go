package logx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsRender(t *testing.T) {
	got := string(AppendRecord(nil, "gpio set",
		[]Field{Uint("pin", 13), Bool("state", true), Int("delta", -3),
			Hex("addr", 0x40020004), Bytes("data", []byte{0xde, 0xad}),
			Str("cmd", "set_gpio"), Err(errors.New("busy")), Err(nil)}))
	require.Equal(t, "gpio set pin=13 state=true delta=-3 addr=0x40020004 data=[DEAD] cmd=set_gpio err=busy err=nil", got)
}

func TestLevelFilterAndNames(t *testing.T) {
	mem := &Memory{}
	l := New(mem, LevelDebug).Named("loop")
	l.Trace("hidden")
	l.Debug("shown", Uint("n", 1))
	l.Named("uart").Warn("rx")

	require.Equal(t, []string{
		"Debug: loop: shown n=1",
		"Warn: loop.uart: rx",
	}, mem.Lines())
}

func TestNopAndNilAreSilent(t *testing.T) {
	var nilLogger *Logger
	assert.False(t, nilLogger.Enabled(LevelError))
	nilLogger.Error("nothing")
	assert.Nil(t, nilLogger.Named("x"))

	n := Nop()
	assert.False(t, n.Enabled(LevelError))
	n.Error("nothing")
}

func TestWriterSinkAndTee(t *testing.T) {
	var a, b bytes.Buffer
	l := New(Tee{NewWriterSink(&a), NewWriterSink(&b), nil}, LevelTrace)
	l.Info("System initialized")
	require.Equal(t, "Info: System initialized\n", a.String())
	require.Equal(t, a.String(), b.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, LevelOff, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, "Warn", LevelWarn.String())
}
