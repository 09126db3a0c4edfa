//go:build !tinygo

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlloop-go/services/config"
	"ctrlloop-go/x/logx"
)

func newTestMachine(t *testing.T) (*machine, *logx.Memory) {
	t.Helper()
	cfg, err := config.ForBoard("sim")
	require.NoError(t, err)
	mem := &logx.Memory{}
	return newMachine(cfg, logx.New(mem, logx.LevelDebug)), mem
}

func TestMachineHeartbeat(t *testing.T) {
	m, _ := newTestMachine(t)
	for i := 0; i < 1002; i++ {
		m.step()
	}
	s := m.snapshot()
	assert.True(t, s.LED)
	assert.EqualValues(t, 1, s.Loop.Heartbeats)
	assert.EqualValues(t, 1002, s.Now)
}

func TestMachineRebootsAfterReset(t *testing.T) {
	m, mem := newTestMachine(t)
	require.NoError(t, m.in.SubmitLine("gpio 3 on"))
	require.NoError(t, m.in.SubmitLine("reset"))
	require.NoError(t, m.in.SubmitLine("gpio 4 on"))

	m.step()
	assert.Equal(t, uint32(1<<3), m.snapshot().Output)
	m.step()

	s := m.snapshot()
	assert.Equal(t, 1, s.Reboots)
	assert.Zero(t, s.Output, "outputs return to power-on state")
	assert.Zero(t, s.Pending, "queued commands die with the old board")
	assert.Contains(t, mem.Lines(), "Info: Rebooting count=1")

	require.NoError(t, m.in.SubmitLine("gpio 5 on"))
	m.step()
	assert.Equal(t, uint32(1<<5), m.snapshot().Output)
}

func TestShellCommands(t *testing.T) {
	m, _ := newTestMachine(t)
	sh := newShell(m)

	require.NoError(t, sh.Process("send", "hi"))
	require.NoError(t, sh.Process("rx", "z"))
	require.NoError(t, sh.Process("tick", "2"))

	buf := make([]byte, 8)
	n := m.dev.UART.TakeTX(buf)
	assert.Equal(t, "hi", string(buf[:n]))
	s := m.snapshot()
	assert.EqualValues(t, 1, s.Loop.UARTBytes)
	assert.EqualValues(t, 2, s.Loop.Iterations)
}
