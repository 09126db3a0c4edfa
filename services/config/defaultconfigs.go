package config

import (
	"ctrlloop-go/errcode"
	"ctrlloop-go/periph"
)

// DefaultBoard is used when no board is named.
const DefaultBoard = "m4-ref"

// expanderLayout places the same registers in the 8-bit register space of an
// I²C-attached block: timer 0x00, UART 0x10, GPIO 0x20.
func expanderLayout() periph.Layout {
	l := periph.DefaultLayout()
	l.TimerCtrl, l.TimerCounter = 0x00, 0x04
	l.UARTData, l.UARTStatus = 0x10, 0x14
	l.GPIOCtrl, l.GPIOOutput = 0x20, 0x24
	return l
}

var boards = map[string]func() Config{
	"m4-ref": Default,
	"m4-ref-txcheck": func() Config {
		c := Default()
		c.Board = "m4-ref-txcheck"
		c.UARTTXCheck = true
		return c
	},
	"pico-expander": func() Config {
		c := Default()
		c.Board = "pico-expander"
		c.Regs = RegsI2C
		c.I2C = I2CConfig{Bus: "i2c0", Addr: 0x42, Hz: 400_000, SDA: 4, SCL: 5}
		c.Console = ConsoleConfig{UART: "uart0", Baud: 115_200, TX: 0, RX: 1}
		c.Layout = expanderLayout()
		c.LEDPin = 25
		return c
	},
	"sim": func() Config {
		c := Default()
		c.Board = "sim"
		c.Regs = RegsSim
		c.LogLevel = "trace"
		return c
	},
}

// ForBoard returns the compiled-in config for name ("" means DefaultBoard).
func ForBoard(name string) (Config, error) {
	if name == "" {
		name = DefaultBoard
	}
	mk, ok := boards[name]
	if !ok {
		return Config{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "unknown board " + name}
	}
	return mk(), nil
}

// Boards lists the compiled-in board names.
func Boards() []string {
	out := make([]string, 0, len(boards))
	for k := range boards {
		out = append(out, k)
	}
	return out
}
