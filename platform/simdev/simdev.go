// Package simdev models the reference board's peripherals on top of
// regio.Sim so the firmware can run unchanged on a host.
package simdev

import (
	"sync"
	"sync/atomic"
	"time"

	"ctrlloop-go/periph"
	"ctrlloop-go/regio"
	"ctrlloop-go/x/shmring"
	"ctrlloop-go/x/timex"
)

// Clock feeds the simulated timer counter.
type Clock interface {
	Now() timex.Tick
}

// ManualClock only moves when told to. Tests drive it tick by tick.
type ManualClock struct{ t atomic.Uint32 }

func (c *ManualClock) Now() timex.Tick      { return timex.Tick(c.t.Load()) }
func (c *ManualClock) Set(t timex.Tick)     { c.t.Store(uint32(t)) }
func (c *ManualClock) Advance(d timex.Tick) { c.t.Add(uint32(d)) }

// WallClock counts milliseconds since it was created.
type WallClock struct{ start time.Time }

func NewWallClock() *WallClock { return &WallClock{start: time.Now()} }

func (c *WallClock) Now() timex.Tick { return timex.TicksOf(time.Since(c.start)) }

// reg adapts a pair of callbacks to regio.Device for a single register.
type reg struct {
	rd func() uint32
	wr func(v uint32, width uint8)
}

func (r reg) ReadReg(off uint32, width uint8) uint32 {
	if r.rd == nil {
		return 0
	}
	v := r.rd()
	if width == 1 {
		v &= 0xFF
	}
	return v
}

func (r reg) WriteReg(off uint32, v uint32, width uint8) {
	if r.wr != nil {
		r.wr(v, width)
	}
}

// Timer counts only after its control register is written with bit 0 set.
type Timer struct {
	clk     Clock
	enabled atomic.Bool
	base    atomic.Uint32
}

func (t *Timer) ctrl(v uint32, _ uint8) {
	if v&1 != 0 && !t.enabled.Load() {
		t.base.Store(uint32(t.clk.Now()))
		t.enabled.Store(true)
	}
	if v&1 == 0 {
		t.enabled.Store(false)
	}
}

func (t *Timer) counter() uint32 {
	if !t.enabled.Load() {
		return 0
	}
	return uint32(t.clk.Now()) - t.base.Load()
}

// Enabled reports whether the counter was started.
func (t *Timer) Enabled() bool { return t.enabled.Load() }

// UART has a receive FIFO behind the data-ready bit and a TX tap that
// collects everything written to the data register.
type UART struct {
	l    periph.Layout
	rx   *shmring.Ring
	tx   *shmring.Ring
	busy atomic.Bool
	lost atomic.Uint32
}

func (u *UART) status() uint32 {
	var s uint32
	if u.rx.Available() > 0 {
		s |= u.l.UARTRXReady
	}
	if !u.busy.Load() {
		s |= u.l.UARTTXReady
	}
	return s
}

func (u *UART) readData() uint32 {
	b, _ := u.rx.TryReadByte()
	return uint32(b)
}

func (u *UART) writeData(v uint32, _ uint8) {
	if u.busy.Load() || !u.tx.TryWriteByte(byte(v)) {
		u.lost.Add(1)
	}
}

// Inject queues bytes as if they arrived on the line; returns how many fit.
func (u *UART) Inject(p []byte) int { return u.rx.TryWriteFrom(p) }

// Pending is the number of injected bytes not yet read by the firmware.
func (u *UART) Pending() int { return u.rx.Available() }

// TakeTX drains transmitted bytes into dst.
func (u *UART) TakeTX(dst []byte) int { return u.tx.TryReadInto(dst) }

// TXReady fires when transmitted bytes become available.
func (u *UART) TXReady() <-chan struct{} { return u.tx.Readable() }

// SetBusy holds the TX-ready bit low; writes while busy are lost.
func (u *UART) SetBusy(b bool) { u.busy.Store(b) }

// Lost counts bytes written while busy or with the TX tap full.
func (u *UART) Lost() uint32 { return u.lost.Load() }

// GPIO latches the output register once enabled.
type GPIO struct {
	mu      sync.Mutex
	enabled bool
	out     uint32
}

func (g *GPIO) ctrl(v uint32, _ uint8) {
	g.mu.Lock()
	g.enabled = v&1 != 0
	g.mu.Unlock()
}

func (g *GPIO) read() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.out
}

func (g *GPIO) write(v uint32, _ uint8) {
	g.mu.Lock()
	if g.enabled {
		g.out = v
	}
	g.mu.Unlock()
}

// Output is the whole output register.
func (g *GPIO) Output() uint32 { return g.read() }

// Level is one pin's output level.
func (g *GPIO) Level(pin uint8) bool { return g.read()&(1<<(pin&31)) != 0 }

// Enabled reports whether the block was enabled.
func (g *GPIO) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// ResetLine stands in for the SoC reset controller.
type ResetLine struct {
	count atomic.Uint32
	ch    chan struct{}
}

// SystemReset records the request. Unlike hardware it returns.
func (r *ResetLine) SystemReset() {
	r.count.Add(1)
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

// Count is the number of resets requested.
func (r *ResetLine) Count() uint32 { return r.count.Load() }

// Requested fires after each reset.
func (r *ResetLine) Requested() <-chan struct{} { return r.ch }

// Board is the complete simulated device.
type Board struct {
	Regs  *regio.Sim
	Clock Clock
	Timer *Timer
	UART  *UART
	GPIO  *GPIO
	Reset *ResetLine
}

const (
	rxDepth = 256
	txDepth = 1024
)

// NewBoard maps the device models at the registers named in l.
func NewBoard(l periph.Layout, clk Clock) *Board {
	b := &Board{
		Regs:  regio.NewSim(),
		Clock: clk,
		Timer: &Timer{clk: clk},
		UART:  &UART{l: l, rx: shmring.New(rxDepth), tx: shmring.New(txDepth)},
		GPIO:  &GPIO{},
		Reset: &ResetLine{ch: make(chan struct{}, 1)},
	}
	b.Regs.Map(l.TimerCtrl, 4, reg{wr: b.Timer.ctrl})
	b.Regs.Map(l.TimerCounter, 4, reg{rd: b.Timer.counter})
	b.Regs.Map(l.UARTData, 4, reg{rd: b.UART.readData, wr: b.UART.writeData})
	b.Regs.Map(l.UARTStatus, 4, reg{rd: b.UART.status})
	b.Regs.Map(l.GPIOCtrl, 4, reg{wr: b.GPIO.ctrl})
	b.Regs.Map(l.GPIOOutput, 4, reg{rd: b.GPIO.read, wr: b.GPIO.write})
	return b
}

// PowerCycle returns every model to its power-on state, keeping pending
// line input and the TX tap so a host watching the wire loses nothing.
func (b *Board) PowerCycle() {
	b.Timer.enabled.Store(false)
	b.GPIO.mu.Lock()
	b.GPIO.enabled = false
	b.GPIO.out = 0
	b.GPIO.mu.Unlock()
	b.UART.busy.Store(false)
}
