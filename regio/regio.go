// Package regio abstracts memory-mapped register access so drivers never poke
// literal addresses. Backends: MMIO (TinyGo, volatile loads/stores), Sim (host
// simulation with device models) and I2CBridge (a register block behind I²C).
package regio

// RegisterAccess is the capability every peripheral driver is built on.
// Accesses are unchecked and infallible from the driver's point of view;
// backends that can fail latch the error and implement Faulter.
type RegisterAccess interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
	Read8(addr uint32) uint8
	Write8(addr uint32, v uint8)
}

// Faulter is a backend that latches its first transfer error. Accesses are
// skipped while an error is latched.
type Faulter interface {
	Err() error
	ClearErr()
}

// SetBits performs a read-modify-write that ORs mask into the register.
func SetBits(r RegisterAccess, addr, mask uint32) {
	r.Write32(addr, r.Read32(addr)|mask)
}

// ClearBits performs a read-modify-write that clears mask in the register.
func ClearBits(r RegisterAccess, addr, mask uint32) {
	r.Write32(addr, r.Read32(addr)&^mask)
}

// HasBits reports whether all bits of mask are set.
func HasBits(r RegisterAccess, addr, mask uint32) bool {
	return r.Read32(addr)&mask == mask
}
