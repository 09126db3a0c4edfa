package periph

import (
	"ctrlloop-go/errcode"
	"ctrlloop-go/regio"
	"ctrlloop-go/x/logx"
)

// GPIO drives a single 32-bit output register; bit n is pin n.
type GPIO struct {
	regs      regio.RegisterAccess
	l         Layout
	ledPin    uint8
	led       bool
	checkPins bool
	log       *logx.Logger
	inited    bool
}

func NewGPIO(regs regio.RegisterAccess, o Options) *GPIO {
	return &GPIO{
		regs:      regs,
		l:         o.Layout,
		ledPin:    o.LEDPin,
		checkPins: o.CheckPins,
		log:       o.Log.Named("gpio"),
	}
}

// Init enables the GPIO block once.
func (g *GPIO) Init() {
	if g.inited {
		return
	}
	g.inited = true
	g.regs.Write32(g.l.GPIOCtrl, 0x0000_0001)
	g.log.Debug("GPIO initialized")
}

func (g *GPIO) mask(pin uint8) (uint32, error) {
	if pin > MaxPin {
		if g.checkPins {
			return 0, errcode.InvalidPin
		}
		pin &= MaxPin
	}
	return 1 << pin, nil
}

// SetPin read-modify-writes one bit of the output register, leaving every
// other pin as it was.
func (g *GPIO) SetPin(pin uint8, state bool) error {
	m, err := g.mask(pin)
	if err != nil {
		return err
	}
	cur := g.regs.Read32(g.l.GPIOOutput)
	if state {
		g.regs.Write32(g.l.GPIOOutput, cur|m)
	} else {
		g.regs.Write32(g.l.GPIOOutput, cur&^m)
	}
	return nil
}

// Pin reads back the output level of pin.
func (g *GPIO) Pin(pin uint8) (bool, error) {
	m, err := g.mask(pin)
	if err != nil {
		return false, err
	}
	return g.regs.Read32(g.l.GPIOOutput)&m != 0, nil
}

// ToggleLED flips the LED pin and returns its new level. The current level
// is taken from the output register, not the mirror, so a SetPin on the LED
// pin elsewhere cannot make the heartbeat skip a phase.
func (g *GPIO) ToggleLED() bool {
	m, err := g.mask(g.ledPin)
	if err != nil {
		return g.led
	}
	cur := g.regs.Read32(g.l.GPIOOutput)
	g.regs.Write32(g.l.GPIOOutput, cur^m)
	g.led = cur&m == 0
	return g.led
}

// LED is the level last written by ToggleLED.
func (g *GPIO) LED() bool { return g.led }

func (g *GPIO) LEDPin() uint8 { return g.ledPin }
