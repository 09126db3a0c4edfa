package protocol

import (
	"ctrlloop-go/errcode"
)

// MaxCommandData bounds the raw bytes carried by a SendMessage command.
const MaxCommandData = 128

// Kind tags the Command variant.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSetGpio
	KindSendMessage
	KindReset
)

func (k Kind) String() string {
	switch k {
	case KindSetGpio:
		return "set_gpio"
	case KindSendMessage:
		return "send_message"
	case KindReset:
		return "reset"
	default:
		return "invalid"
	}
}

// Command is one of SetGpio{Pin,State}, SendMessage{Data} or Reset.
// Build it with the constructors; the zero value is KindInvalid.
type Command struct {
	kind  Kind
	pin   uint8
	state bool
	n     uint8
	data  [MaxCommandData]byte
}

// SetGpio drives pin to state.
func SetGpio(pin uint8, state bool) Command {
	return Command{kind: KindSetGpio, pin: pin, state: state}
}

// SendMessage writes data raw to the UART. data longer than MaxCommandData
// is rejected with errcode.PayloadOver.
func SendMessage(data []byte) (Command, error) {
	if len(data) > MaxCommandData {
		return Command{}, errcode.PayloadOver
	}
	c := Command{kind: KindSendMessage}
	c.n = uint8(copy(c.data[:], data))
	return c, nil
}

// SendWire wraps the wire encoding of m in a SendMessage. MaxFrame fits
// within MaxCommandData, so this cannot fail.
func SendWire(m *Message) Command {
	c := Command{kind: KindSendMessage}
	c.n = uint8(len(m.AppendTo(c.data[:0])))
	return c
}

// Reset requests a full system reset.
func Reset() Command { return Command{kind: KindReset} }

func (c Command) Kind() Kind { return c.kind }

// Pin and State are meaningful for SetGpio only.
func (c Command) Pin() uint8  { return c.pin }
func (c Command) State() bool { return c.state }

// Data is the SendMessage payload; empty for other kinds. It aliases the
// receiver, which is the caller's own copy of the command.
func (c *Command) Data() []byte { return c.data[:c.n] }

func (c Command) String() string { return c.kind.String() }
