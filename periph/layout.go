// Package periph holds the UART, GPIO and Timer drivers the control loop
// owns. Each driver reaches its device only through regio.RegisterAccess and
// the addresses in Layout.
package periph

import (
	"ctrlloop-go/regio"
	"ctrlloop-go/x/logx"
)

// Layout is the register map of the board.
type Layout struct {
	TimerCtrl    uint32 `yaml:"timer_ctrl"`
	TimerCounter uint32 `yaml:"timer_counter"`

	UARTData    uint32 `yaml:"uart_data"`
	UARTStatus  uint32 `yaml:"uart_status"`
	UARTRXReady uint32 `yaml:"uart_rx_ready"` // status mask: a byte is waiting
	UARTTXReady uint32 `yaml:"uart_tx_ready"` // status mask: data register may be written

	GPIOCtrl   uint32 `yaml:"gpio_ctrl"`
	GPIOOutput uint32 `yaml:"gpio_output"`
}

// Register addresses of the reference Cortex-M4 board.
const (
	timerBase = 0x4000_0000
	uartBase  = 0x4000_4400
	gpioBase  = 0x4002_0000
)

// DefaultLayout is the reference board's register map.
func DefaultLayout() Layout {
	return Layout{
		TimerCtrl:    timerBase + 0x0,
		TimerCounter: timerBase + 0x4,
		UARTData:     uartBase + 0x0,
		UARTStatus:   uartBase + 0x4,
		UARTRXReady:  1 << 0,
		UARTTXReady:  1 << 1,
		GPIOCtrl:     gpioBase + 0x0,
		GPIOOutput:   gpioBase + 0x4,
	}
}

const (
	// DefaultLEDPin is the heartbeat LED.
	DefaultLEDPin = 13
	// MaxPin is the highest bit of the 32-bit GPIO output register.
	MaxPin = 31
)

// Options configure a Set.
type Options struct {
	Layout Layout
	LEDPin uint8
	// CheckPins rejects pins above MaxPin with errcode.InvalidPin. When off,
	// the shift amount is masked to 5 bits as the Cortex-M shifter does.
	CheckPins bool
	// UARTTXCheck makes UART.Write honour the TX-ready status bit and fail
	// with errcode.DeviceBusy instead of writing blindly.
	UARTTXCheck bool
	Log         *logx.Logger
}

// DefaultOptions matches the reference board.
func DefaultOptions() Options {
	return Options{
		Layout:    DefaultLayout(),
		LEDPin:    DefaultLEDPin,
		CheckPins: true,
	}
}

// Set is the peripheral set owned by the control loop. No two components may
// hold the same driver.
type Set struct {
	UART  *UART
	GPIO  *GPIO
	Timer *Timer
	regs  regio.RegisterAccess
}

// NewSet builds all three drivers over one register space.
func NewSet(regs regio.RegisterAccess, o Options) *Set {
	return &Set{
		UART:  NewUART(regs, o),
		GPIO:  NewGPIO(regs, o),
		Timer: NewTimer(regs, o),
		regs:  regs,
	}
}

// TakeErr returns and clears the error latched by the register backend.
// It is nil for backends that cannot fail.
func (s *Set) TakeErr() error {
	f, ok := s.regs.(regio.Faulter)
	if !ok {
		return nil
	}
	err := f.Err()
	if err != nil {
		f.ClearErr()
	}
	return err
}

// Init brings the devices up in board order: UART, GPIO, Timer.
func (s *Set) Init() {
	s.UART.Init()
	s.GPIO.Init()
	s.Timer.Init()
}
