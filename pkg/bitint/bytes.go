package bitint

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Order selects whether the first word of a buffer is the most or the least
// significant one.
type Order int

const (
	OrderLSB Order = -1
	OrderMSB Order = 1
)

// Endian selects the byte order inside a multi-byte word.
type Endian int

const (
	EndianLSB  Endian = -1
	EndianHost Endian = 0
	EndianMSB  Endian = 1
)

var hostEndian = func() Endian {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return EndianLSB
	}
	return EndianMSB
}()

func (e Endian) resolve() Endian {
	if e == EndianHost {
		return hostEndian
	}
	return e
}

func checkLayout(order Order, size int, endian Endian) error {
	if size != 1 && size != 2 {
		return fmt.Errorf("%w: %d bytes", ErrUnsupportedWordSize, size)
	}
	if order != OrderLSB && order != OrderMSB {
		return fmt.Errorf("%w: word order %d", ErrInvalidArgument, order)
	}
	if endian < EndianLSB || endian > EndianMSB {
		return fmt.Errorf("%w: endianness %d", ErrInvalidArgument, endian)
	}
	return nil
}

// arrange copies src into dst, converting between a plain big-endian byte
// string and the given word layout. The mapping is its own inverse.
func arrange(dst, src []byte, order Order, size int, endian Endian) {
	n := len(src) / size
	swap := size == 2 && endian.resolve() == EndianLSB
	for w := 0; w < n; w++ {
		d := w
		if order == OrderLSB {
			d = n - 1 - w
		}
		word := dst[d*size : (d+1)*size]
		copy(word, src[w*size:(w+1)*size])
		if swap {
			word[0], word[1] = word[1], word[0]
		}
	}
}

// Import reads buf as an unsigned magnitude made of size-byte words. order
// tells which end of buf holds the most significant word, endian the byte
// order inside each word (ignored for single bytes).
func Import(order Order, size int, endian Endian, buf []byte) (*big.Int, error) {
	if err := checkLayout(order, size, endian); err != nil {
		return nil, err
	}
	if len(buf)%size != 0 {
		return nil, fmt.Errorf("%w: buffer of %d bytes is not a whole number of %d-byte words",
			ErrInvalidArgument, len(buf), size)
	}

	be := make([]byte, len(buf))
	arrange(be, buf, order, size, endian)
	return new(big.Int).SetBytes(be), nil
}

// Export writes |v| using the minimum number of size-byte words. It is the
// inverse of Import; zero exports as an empty buffer.
func Export(order Order, size int, endian Endian, v *big.Int) ([]byte, error) {
	if err := checkLayout(order, size, endian); err != nil {
		return nil, err
	}

	mag := new(big.Int).Abs(v).Bytes()
	words := (len(mag) + size - 1) / size
	be := make([]byte, words*size)
	copy(be[len(be)-len(mag):], mag)

	out := make([]byte, len(be))
	arrange(out, be, order, size, endian)
	return out, nil
}
