// Package conv renders numbers into caller-owned byte slices. It exists so
// log formatting on the MCU needs neither fmt nor strconv.
package conv

const hexd = "0123456789ABCDEF"

// AppendUint appends the decimal form of n.
func AppendUint(dst []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, tmp[i:]...)
}

// AppendInt appends the decimal form of n, with a leading '-' when negative.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		// -MinInt64 wraps to itself; as uint64 it is still the right magnitude.
		return AppendUint(append(dst, '-'), uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex32 appends n as eight zero-padded uppercase hex digits.
func AppendHex32(dst []byte, n uint32) []byte {
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, hexd[(n>>uint(shift))&0xF])
	}
	return dst
}

// AppendHex appends each byte of b as two uppercase hex digits.
func AppendHex(dst []byte, b []byte) []byte {
	for _, c := range b {
		dst = append(dst, hexd[c>>4], hexd[c&0xF])
	}
	return dst
}
