// Package protocol holds the fixed-layout wire message sent over the UART and
// the commands the control loop consumes. Neither type allocates: payloads
// live in fixed arrays inside the value.
package protocol

import (
	"ctrlloop-go/errcode"
)

const (
	// MaxPayload is the WireMessage payload cap.
	MaxPayload = 64
	// HeaderLen is id (2 bytes, big-endian) + length (1 byte).
	HeaderLen = 3
	// MaxFrame is the largest serialized message.
	MaxFrame = HeaderLen + MaxPayload
)

// Message is the application message: {id, payload<=64}.
//
// Wire layout:
//
//	+--------+--------+--------+-----------------+
//	| id hi  | id lo  |  len   | payload[len]    |
//	+--------+--------+--------+-----------------+
type Message struct {
	ID      uint16
	n       uint8
	payload [MaxPayload]byte
}

// NewMessage returns an empty message with the given id.
func NewMessage(id uint16) Message { return Message{ID: id} }

// AddData appends p to the payload. If the result would exceed MaxPayload it
// returns errcode.PayloadOver and the message is left exactly as it was.
func (m *Message) AddData(p []byte) error {
	if len(p) > MaxPayload-int(m.n) {
		return errcode.PayloadOver
	}
	copy(m.payload[m.n:], p)
	m.n += uint8(len(p))
	return nil
}

// Payload returns a copy of the current payload bytes.
func (m *Message) Payload() []byte { return append([]byte(nil), m.payload[:m.n]...) }

// Len is the payload length.
func (m *Message) Len() int { return int(m.n) }

// Reset clears the payload but keeps the id.
func (m *Message) Reset() { m.n = 0 }

// EncodedLen is HeaderLen + payload length.
func (m *Message) EncodedLen() int { return HeaderLen + int(m.n) }

// AppendTo appends the wire encoding of m to dst.
func (m *Message) AppendTo(dst []byte) []byte {
	// n <= MaxPayload, so the length byte never truncates.
	dst = append(dst, byte(m.ID>>8), byte(m.ID), m.n)
	return append(dst, m.payload[:m.n]...)
}

// Serialize returns the wire encoding in a fresh slice of EncodedLen bytes.
func (m *Message) Serialize() []byte {
	return m.AppendTo(make([]byte, 0, m.EncodedLen()))
}

// Decode parses one message from the front of b and returns the number of
// bytes consumed.
func Decode(b []byte) (m Message, n int, err error) {
	if len(b) < HeaderLen {
		return m, 0, errcode.FrameTruncated
	}
	plen := int(b[2])
	if plen > MaxPayload {
		return m, 0, errcode.PayloadOver
	}
	if len(b) < HeaderLen+plen {
		return m, 0, errcode.FrameTruncated
	}
	m.ID = uint16(b[0])<<8 | uint16(b[1])
	m.n = uint8(copy(m.payload[:], b[HeaderLen:HeaderLen+plen]))
	return m, HeaderLen + plen, nil
}
