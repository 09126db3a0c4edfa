// Package control is the board's cooperative scheduler. One goroutine runs
// Step in a loop; each iteration handles at most one queued command, checks
// the heartbeat and polls the UART once. Nothing in an iteration blocks.
package control

import (
	"context"

	"ctrlloop-go/errcode"
	"ctrlloop-go/periph"
	"ctrlloop-go/protocol"
	"ctrlloop-go/services/heartbeat"
	"ctrlloop-go/x/logx"
	"ctrlloop-go/x/spsc"
	"ctrlloop-go/x/timex"
)

// QueueCapacity is the fixed depth of the command queue.
const QueueCapacity = 16

type (
	Producer = spsc.Producer[protocol.Command]
	Consumer = spsc.Consumer[protocol.Command]
)

// NewCommandQueue creates the command queue and hands out its only two handles.
func NewCommandQueue() (*Producer, *Consumer) {
	return spsc.New[protocol.Command](QueueCapacity)
}

// Resetter restarts the system. On hardware it does not return.
type Resetter interface {
	SystemReset()
}

// Config tunes a System. The zero value is the reference board.
type Config struct {
	HeartbeatPeriod timex.Tick
	HeartbeatMode   heartbeat.Mode
	Log             *logx.Logger
	// OnUART observes every received byte after it is traced.
	OnUART func(b byte)
	// Idle runs after each iteration inside Run; nil on hardware.
	Idle func()
}

// Stats are running counters, read by the simulator.
type Stats struct {
	Iterations  uint32
	Commands    uint32
	Heartbeats  uint32
	UARTBytes   uint32
	WriteErrors uint32
	GPIOErrors  uint32
	BusErrors   uint32
}

// System owns the peripherals and the consumer side of the command queue.
type System struct {
	periph *periph.Set
	cmds   *Consumer
	hb     *heartbeat.Schedule
	reset  Resetter
	log    *logx.Logger
	onUART func(byte)
	idle   func()

	stats     Stats
	resetting bool
}

func New(p *periph.Set, cmds *Consumer, r Resetter, cfg Config) *System {
	hb := heartbeat.New(cfg.HeartbeatPeriod)
	hb.Mode = cfg.HeartbeatMode
	return &System{
		periph: p,
		cmds:   cmds,
		hb:     hb,
		reset:  r,
		log:    cfg.Log,
		onUART: cfg.OnUART,
		idle:   cfg.Idle,
	}
}

// Init brings up the peripherals. Call exactly once before Run.
func (s *System) Init() {
	s.periph.Init()
	s.hb.Restart(s.periph.Timer.Tick())
	s.checkBus()
	s.log.Info("System initialized")
}

// Run loops until a Reset command is processed or ctx ends. Firmware passes
// context.Background(), so in practice it only leaves through a reset.
func (s *System) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
		if s.idle != nil {
			s.idle()
		}
	}
}

// Step runs one iteration. The only error it returns is errcode.Reset, once
// a reset has been requested; every later call returns it without touching
// the hardware.
func (s *System) Step() error {
	if s.resetting {
		return errcode.Reset
	}
	s.stats.Iterations++

	if cmd, ok := s.cmds.Dequeue(); ok {
		if err := s.ProcessCommand(&cmd); errcode.Of(err) == errcode.Reset {
			return err
		}
	}

	if now := s.periph.Timer.Tick(); s.hb.Due(now) {
		s.heartbeat()
	}

	if b, ok := s.periph.UART.Poll(); ok {
		s.processUART(b)
	}
	s.checkBus()
	return nil
}

// checkBus clears a latched register transfer error so the next iteration
// retries.
func (s *System) checkBus() {
	if err := s.periph.TakeErr(); err != nil {
		s.stats.BusErrors++
		s.log.Trace("Register bus error", logx.Err(err))
	}
}

// ProcessCommand applies one command. Failures are logged and returned to
// the caller; they never stop the loop.
func (s *System) ProcessCommand(cmd *protocol.Command) error {
	s.stats.Commands++
	switch cmd.Kind() {
	case protocol.KindSetGpio:
		if err := s.periph.GPIO.SetPin(cmd.Pin(), cmd.State()); err != nil {
			s.stats.GPIOErrors++
			s.log.Trace("GPIO set failed", logx.Uint("pin", uint64(cmd.Pin())), logx.Err(err))
			return err
		}
		s.log.Info("GPIO pin set", logx.Uint("pin", uint64(cmd.Pin())), logx.Bool("state", cmd.State()))
		return nil

	case protocol.KindSendMessage:
		data := cmd.Data()
		n, err := s.periph.UART.Write(data)
		if err != nil {
			s.stats.WriteErrors++
			s.log.Trace("UART write short", logx.Int("written", int64(n)), logx.Int("len", int64(len(data))), logx.Err(err))
			return err
		}
		s.log.Info("Sent message", logx.Bytes("data", data))
		return nil

	case protocol.KindReset:
		s.log.Info("System reset requested")
		s.resetting = true
		if s.reset != nil {
			s.reset.SystemReset()
		}
		return errcode.Reset

	default:
		s.log.Trace("Dropped command", logx.Str("kind", cmd.Kind().String()))
		return errcode.InvalidCommand
	}
}

func (s *System) heartbeat() {
	on := s.periph.GPIO.ToggleLED()
	s.stats.Heartbeats++
	s.log.Trace("Heartbeat", logx.Bool("led", on))
}

func (s *System) processUART(b byte) {
	s.stats.UARTBytes++
	s.log.Trace("UART data received", logx.Uint("data", uint64(b)))
	if s.onUART != nil {
		s.onUART(b)
	}
}

// Stats returns a copy of the counters. Safe only from the loop goroutine or
// after Run has returned.
func (s *System) Stats() Stats { return s.stats }

// Heartbeat exposes the schedule for inspection.
func (s *System) Heartbeat() *heartbeat.Schedule { return s.hb }

// Resetting reports whether a reset has been processed.
func (s *System) Resetting() bool { return s.resetting }
