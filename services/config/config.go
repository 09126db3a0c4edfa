// Package config describes a board: register layout, heartbeat timing, LED
// pin and driver policies. Boards are compiled in (defaultconfigs.go); the
// host simulator may overlay a YAML file on top (load.go).
package config

import (
	"ctrlloop-go/errcode"
	"ctrlloop-go/periph"
	"ctrlloop-go/services/control"
	"ctrlloop-go/services/heartbeat"
	"ctrlloop-go/x/logx"
	"ctrlloop-go/x/mathx"
	"ctrlloop-go/x/timex"
)

// Register backends.
const (
	RegsMMIO = "mmio" // volatile access to physical addresses
	RegsI2C  = "i2c"  // register block behind an I²C target
	RegsSim  = "sim"  // host simulation
)

const (
	minHeartbeatMs = 10
	maxHeartbeatMs = 60_000
)

type Config struct {
	Board   string        `yaml:"board"`
	Regs    string        `yaml:"regs"`
	I2C     I2CConfig     `yaml:"i2c"`
	Console ConsoleConfig `yaml:"console"`
	Layout  periph.Layout `yaml:"layout"`

	LEDPin            uint8  `yaml:"led_pin"`
	HeartbeatMs       uint32 `yaml:"heartbeat_ms"`
	HeartbeatAnchored bool   `yaml:"heartbeat_anchored"`
	CheckPins         bool   `yaml:"check_pins"`
	UARTTXCheck       bool   `yaml:"uart_tx_check"`
	LogLevel          string `yaml:"log_level"`
}

// I2CConfig locates the register block when Regs is RegsI2C.
type I2CConfig struct {
	Bus  string `yaml:"bus"` // "i2c0" | "i2c1"
	Addr uint16 `yaml:"addr"`
	Hz   uint32 `yaml:"hz"`
	SDA  uint8  `yaml:"sda"`
	SCL  uint8  `yaml:"scl"`
}

// ConsoleConfig routes log output to a hardware UART. An empty UART keeps
// the runtime console.
type ConsoleConfig struct {
	UART string `yaml:"uart"` // "uart0" | "uart1"
	Baud uint32 `yaml:"baud"`
	TX   uint8  `yaml:"tx"`
	RX   uint8  `yaml:"rx"`
}

// Default is the reference Cortex-M4 board.
func Default() Config {
	return Config{
		Board:       DefaultBoard,
		Regs:        RegsMMIO,
		Layout:      periph.DefaultLayout(),
		LEDPin:      periph.DefaultLEDPin,
		HeartbeatMs: uint32(heartbeat.DefaultPeriod),
		CheckPins:   true,
		LogLevel:    "info",
	}
}

// Validate rejects unusable values and clamps the heartbeat period.
func (c *Config) Validate() error {
	if c.LEDPin > periph.MaxPin {
		return &errcode.E{C: errcode.InvalidPin, Op: "config", Msg: "led_pin"}
	}
	switch c.Regs {
	case RegsMMIO, RegsSim:
	case RegsI2C:
		if !mathx.Between(c.I2C.Addr, 1, 0x7F) {
			return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "i2c.addr"}
		}
		if c.I2C.Bus != "i2c0" && c.I2C.Bus != "i2c1" {
			return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "i2c.bus"}
		}
	default:
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "regs"}
	}
	switch c.Console.UART {
	case "", "uart0", "uart1":
	default:
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "console.uart"}
	}
	if c.Layout.UARTRXReady == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "layout.uart_rx_ready"}
	}
	if c.UARTTXCheck && c.Layout.UARTTXReady == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "layout.uart_tx_ready"}
	}
	c.HeartbeatMs = mathx.Clamp(c.HeartbeatMs, minHeartbeatMs, maxHeartbeatMs)
	return nil
}

// Level is the parsed log level.
func (c *Config) Level() logx.Level { return logx.ParseLevel(c.LogLevel) }

// PeriphOptions maps the config onto driver options.
func (c *Config) PeriphOptions(log *logx.Logger) periph.Options {
	return periph.Options{
		Layout:      c.Layout,
		LEDPin:      c.LEDPin,
		CheckPins:   c.CheckPins,
		UARTTXCheck: c.UARTTXCheck,
		Log:         log,
	}
}

// ControlConfig maps the config onto loop settings.
func (c *Config) ControlConfig(log *logx.Logger) control.Config {
	mode := heartbeat.Drift
	if c.HeartbeatAnchored {
		mode = heartbeat.Anchored
	}
	return control.Config{
		HeartbeatPeriod: timex.Tick(c.HeartbeatMs),
		HeartbeatMode:   mode,
		Log:             log,
	}
}
