package periph

import (
	"ctrlloop-go/regio"
	"ctrlloop-go/x/logx"
	"ctrlloop-go/x/timex"
)

// Timer reads a free-running 1 kHz hardware counter.
type Timer struct {
	regs    regio.RegisterAccess
	l       Layout
	counter timex.Tick
	log     *logx.Logger
	inited  bool
}

func NewTimer(regs regio.RegisterAccess, o Options) *Timer {
	return &Timer{regs: regs, l: o.Layout, log: o.Log.Named("timer")}
}

// Init starts the counter.
func (t *Timer) Init() {
	if t.inited {
		return
	}
	t.inited = true
	t.regs.Write32(t.l.TimerCtrl, 0x0000_0001)
	t.log.Debug("Timer initialized")
}

// Tick reads the counter register and refreshes the mirror.
func (t *Timer) Tick() timex.Tick {
	t.counter = timex.Tick(t.regs.Read32(t.l.TimerCounter))
	return t.counter
}

// Last is the value returned by the most recent Tick.
func (t *Timer) Last() timex.Tick { return t.counter }
