// Package platform assembles a runnable board from a config: it picks the
// register backend, builds the peripheral set and hands out the two ends of
// the command queue.
package platform

import (
	"ctrlloop-go/periph"
	"ctrlloop-go/regio"
	"ctrlloop-go/services/config"
	"ctrlloop-go/services/control"
	"ctrlloop-go/x/logx"
)

// Board is an assembled system. Commands is the only producer handle for
// the system's queue; give it to exactly one goroutine.
type Board struct {
	Config   config.Config
	Periph   *periph.Set
	System   *control.System
	Commands *control.Producer
}

// Assemble wires a System over regs. ctl tweaks the loop config derived
// from cfg before the System is built; it may be nil.
func Assemble(cfg config.Config, regs regio.RegisterAccess, r control.Resetter, log *logx.Logger, ctl func(*control.Config)) *Board {
	set := periph.NewSet(regs, cfg.PeriphOptions(log))
	cc := cfg.ControlConfig(log.Named("loop"))
	if ctl != nil {
		ctl(&cc)
	}
	prod, cons := control.NewCommandQueue()
	return &Board{
		Config:   cfg,
		Periph:   set,
		System:   control.New(set, cons, r, cc),
		Commands: prod,
	}
}
