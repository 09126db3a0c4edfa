package periph

import (
	"tinygo.org/x/drivers"

	"ctrlloop-go/errcode"
	"ctrlloop-go/regio"
	"ctrlloop-go/x/logx"
)

var _ drivers.UART = (*UART)(nil)

// UART drives a polled serial device: one data register, one status register.
type UART struct {
	regs    regio.RegisterAccess
	l       Layout
	txCheck bool
	log     *logx.Logger
	inited  bool
}

func NewUART(regs regio.RegisterAccess, o Options) *UART {
	return &UART{regs: regs, l: o.Layout, txCheck: o.UARTTXCheck, log: o.Log.Named("uart")}
}

// Init must run once before use. The device needs no register setup, so
// this only marks the driver ready.
func (u *UART) Init() {
	if u.inited {
		return
	}
	u.inited = true
	u.log.Debug("UART initialized")
}

// Write issues one data-register write per byte. Without TX checking it
// never looks at the status register, so bytes sent to a busy device may be
// lost. With checking, it stops at the first byte the device cannot take and
// returns errcode.DeviceBusy with the count already written.
func (u *UART) Write(p []byte) (int, error) {
	for i, b := range p {
		if u.txCheck && !regio.HasBits(u.regs, u.l.UARTStatus, u.l.UARTTXReady) {
			return i, errcode.DeviceBusy
		}
		u.regs.Write8(u.l.UARTData, b)
	}
	return len(p), nil
}

// WriteByte writes a single byte with the same policy as Write.
func (u *UART) WriteByte(b byte) error {
	var one [1]byte
	one[0] = b
	_, err := u.Write(one[:])
	return err
}

// Poll returns the next received byte if the RX-ready bit is set. It never blocks.
func (u *UART) Poll() (byte, bool) {
	if !regio.HasBits(u.regs, u.l.UARTStatus, u.l.UARTRXReady) {
		return 0, false
	}
	return u.regs.Read8(u.l.UARTData), true
}

// Buffered reports 1 while a byte is waiting. The device has no FIFO depth register.
func (u *UART) Buffered() int {
	if regio.HasBits(u.regs, u.l.UARTStatus, u.l.UARTRXReady) {
		return 1
	}
	return 0
}

// Read drains up to len(p) ready bytes. It returns 0, nil when nothing is waiting.
func (u *UART) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, ok := u.Poll()
		if !ok {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}
