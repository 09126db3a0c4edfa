//go:build tinygo && !rp2040 && !rp2350

package platform

import (
	"ctrlloop-go/errcode"
	"ctrlloop-go/regio"
	"ctrlloop-go/services/config"
	"ctrlloop-go/x/logx"
)

func i2cRegs(config.I2CConfig) (regio.RegisterAccess, error) {
	return nil, &errcode.E{C: errcode.InvalidParams, Op: "platform", Msg: "no i2c register bridge on this target"}
}

// ConsoleSink is the runtime console; only RP2 targets route it to a UART.
func ConsoleSink(config.ConsoleConfig) logx.Sink { return &logx.PrintSink{} }
