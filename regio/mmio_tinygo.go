//go:build tinygo

package regio

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO performs volatile loads and stores at physical addresses.
type MMIO struct{}

func reg32(addr uint32) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr)))
}

func reg8(addr uint32) *volatile.Register8 {
	return (*volatile.Register8)(unsafe.Pointer(uintptr(addr)))
}

func (MMIO) Read32(addr uint32) uint32     { return reg32(addr).Get() }
func (MMIO) Write32(addr uint32, v uint32) { reg32(addr).Set(v) }
func (MMIO) Read8(addr uint32) uint8       { return reg8(addr).Get() }
func (MMIO) Write8(addr uint32, v uint8)   { reg8(addr).Set(v) }
