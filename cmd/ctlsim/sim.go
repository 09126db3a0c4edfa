//go:build !tinygo

package main

import (
	"context"
	"sync"
	"time"

	"ctrlloop-go/errcode"
	"ctrlloop-go/platform"
	"ctrlloop-go/platform/simdev"
	"ctrlloop-go/services/config"
	"ctrlloop-go/services/control"
	"ctrlloop-go/services/inject"
	"ctrlloop-go/x/logx"
)

// machine is one simulated board plus the harness around it. The loop runs
// under mu so the shell can inspect state between iterations.
type machine struct {
	cfg config.Config
	log *logx.Logger
	clk *simdev.ManualClock
	dev *simdev.Board
	in  *inject.Injector

	mu      sync.Mutex
	b       *platform.Board
	reboots int
}

func newMachine(cfg config.Config, log *logx.Logger) *machine {
	m := &machine{cfg: cfg, log: log, clk: &simdev.ManualClock{}}
	m.b, m.dev = platform.NewSim(cfg, m.clk, log, nil)
	m.in = inject.New(m.b.Commands, log)
	m.b.System.Init()
	return m
}

// step runs one iteration and advances simulated time by one tick. A reset
// reboots the board before step returns.
func (m *machine) step() {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.b.System.Step()
	m.clk.Advance(1)
	if errcode.Of(err) == errcode.Reset {
		m.reboot()
	}
}

func (m *machine) reboot() {
	m.reboots++
	m.log.Info("Rebooting", logx.Int("count", int64(m.reboots)))
	m.b = platform.Reboot(m.cfg, m.dev, m.log, nil)
	m.in.Retarget(m.b.Commands)
	m.b.System.Init()
}

// run steps the loop in real time until ctx ends.
func (m *machine) run(ctx context.Context) {
	for ctx.Err() == nil {
		m.step()
		time.Sleep(time.Millisecond)
	}
}

type snapshot struct {
	Loop    control.Stats
	Pending int
	Sent    uint32
	Full    uint32
	Lost    uint32
	Reboots int
	LED     bool
	Output  uint32
	Now     uint32
}

func (m *machine) snapshot() snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent, full := m.in.Counts()
	return snapshot{
		Loop:    m.b.System.Stats(),
		Pending: m.in.Pending(),
		Sent:    sent,
		Full:    full,
		Lost:    m.dev.UART.Lost(),
		Reboots: m.reboots,
		LED:     m.dev.GPIO.Level(m.cfg.LEDPin),
		Output:  m.dev.GPIO.Output(),
		Now:     uint32(m.clk.Now()),
	}
}
