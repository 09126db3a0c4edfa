//go:build !tinygo

package platform

import (
	"ctrlloop-go/errcode"
	"ctrlloop-go/platform/simdev"
	"ctrlloop-go/services/config"
	"ctrlloop-go/services/control"
	"ctrlloop-go/x/logx"
)

// New builds the board for cfg. Host builds only have the simulated backend.
func New(cfg config.Config, log *logx.Logger) (*Board, error) {
	if cfg.Regs != config.RegsSim {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "platform", Msg: "regs " + cfg.Regs + " needs a device build"}
	}
	b, _ := NewSim(cfg, simdev.NewWallClock(), log, nil)
	return b, nil
}

// NewSim builds a board over simulated devices driven by clk. The returned
// simdev.Board is the outside world: inject UART input, watch GPIO levels
// and collect reset requests through it.
func NewSim(cfg config.Config, clk simdev.Clock, log *logx.Logger, ctl func(*control.Config)) (*Board, *simdev.Board) {
	dev := simdev.NewBoard(cfg.Layout, clk)
	return Assemble(cfg, dev.Regs, dev.Reset, log, ctl), dev
}

// Reboot power-cycles dev and assembles a fresh system over it, as the
// hardware does after SystemReset. Commands still queued on the old board
// are lost.
func Reboot(cfg config.Config, dev *simdev.Board, log *logx.Logger, ctl func(*control.Config)) *Board {
	dev.PowerCycle()
	return Assemble(cfg, dev.Regs, dev.Reset, log, ctl)
}
