//go:build tinygo && (rp2040 || rp2350)

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"ctrlloop-go/errcode"
	"ctrlloop-go/regio"
	"ctrlloop-go/services/config"
	"ctrlloop-go/x/logx"
)

func i2cRegs(c config.I2CConfig) (regio.RegisterAccess, error) {
	var hw *machine.I2C
	switch c.Bus {
	case "i2c0":
		hw = machine.I2C0
	case "i2c1":
		hw = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "platform", Msg: "i2c bus " + c.Bus}
	}
	sda := machine.Pin(c.SDA)
	scl := machine.Pin(c.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := hw.Configure(machine.I2CConfig{SCL: scl, SDA: sda, Frequency: c.Hz}); err != nil {
		return nil, errcode.Wrap(errcode.BusError, "platform.i2c", err)
	}
	return regio.NewI2CBridge(hw, c.Addr), nil
}

// ConsoleSink returns a sink on the configured console UART, or the runtime
// console when none is set.
func ConsoleSink(c config.ConsoleConfig) logx.Sink {
	var hw *uartx.UART
	switch c.UART {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return &logx.PrintSink{}
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: c.Baud,
		TX:       machine.Pin(c.TX),
		RX:       machine.Pin(c.RX),
	}); err != nil {
		return &logx.PrintSink{}
	}
	return logx.NewWriterSink(hw)
}
