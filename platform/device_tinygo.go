//go:build tinygo

package platform

import (
	"ctrlloop-go/errcode"
	"ctrlloop-go/regio"
	"ctrlloop-go/services/config"
	"ctrlloop-go/x/logx"
)

// New builds the board for cfg on real hardware.
func New(cfg config.Config, log *logx.Logger) (*Board, error) {
	var regs regio.RegisterAccess
	switch cfg.Regs {
	case config.RegsMMIO:
		regs = regio.MMIO{}
	case config.RegsI2C:
		r, err := i2cRegs(cfg.I2C)
		if err != nil {
			return nil, err
		}
		regs = r
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "platform", Msg: "regs " + cfg.Regs + " is host only"}
	}
	return Assemble(cfg, regs, resetter{}, log, nil), nil
}
