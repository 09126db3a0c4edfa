package regio

import (
	"tinygo.org/x/drivers"

	"ctrlloop-go/errcode"
)

// I2CBridge exposes a register block that sits behind an I²C target (an FPGA
// soft-core, an I/O expander) as RegisterAccess. The low byte of addr selects
// the register; 32-bit registers travel little-endian.
//
// RegisterAccess has no error return, so the first bus error is kept and
// reads after a failure return zero until ClearErr. The control loop takes
// the error once per iteration, so a glitch costs at most one iteration.
type I2CBridge struct {
	bus  drivers.I2C
	addr uint16
	err  error

	w [5]byte
	r [4]byte
}

func NewI2CBridge(bus drivers.I2C, addr uint16) *I2CBridge {
	return &I2CBridge{bus: bus, addr: addr}
}

func (b *I2CBridge) tx(w, r []byte) bool {
	if b.err != nil {
		return false
	}
	if err := b.bus.Tx(b.addr, w, r); err != nil {
		b.err = errcode.Wrap(errcode.BusError, "regio.i2c", err)
		return false
	}
	return true
}

func (b *I2CBridge) Read32(addr uint32) uint32 {
	b.w[0] = byte(addr)
	if !b.tx(b.w[:1], b.r[:4]) {
		return 0
	}
	return uint32(b.r[0]) | uint32(b.r[1])<<8 | uint32(b.r[2])<<16 | uint32(b.r[3])<<24
}

func (b *I2CBridge) Write32(addr uint32, v uint32) {
	b.w[0] = byte(addr)
	b.w[1] = byte(v)
	b.w[2] = byte(v >> 8)
	b.w[3] = byte(v >> 16)
	b.w[4] = byte(v >> 24)
	b.tx(b.w[:5], nil)
}

func (b *I2CBridge) Read8(addr uint32) uint8 {
	b.w[0] = byte(addr)
	if !b.tx(b.w[:1], b.r[:1]) {
		return 0
	}
	return b.r[0]
}

func (b *I2CBridge) Write8(addr uint32, v uint8) {
	b.w[0] = byte(addr)
	b.w[1] = v
	b.tx(b.w[:2], nil)
}

// Err returns the first bus error since the last ClearErr.
func (b *I2CBridge) Err() error { return b.err }

func (b *I2CBridge) ClearErr() { b.err = nil }
