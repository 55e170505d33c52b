// Package diffusion implements the reversible whitening layer applied to a
// secret before it is split and removed after it is recombined.
//
// A 64-bit Feistel permutation (the XTEA round structure without a key) is
// slid across the field element's bytes in steps of two, wrapping around the
// end, so that every input bit ends up affecting every output bit.
package diffusion

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/xtea"

	"github.com/Beastly713/ssss/pkg/bitint"
)

const (
	// MinDegree is the smallest field degree that holds one 64-bit block.
	MinDegree = 64

	// Passes is how many times, counted in field-element lengths, the block
	// window slides over the buffer.
	Passes = 40
)

var (
	// ErrDegreeTooSmall is returned for fields narrower than one block.
	ErrDegreeTooSmall = errors.New("diffusion: degree too small for the diffusion layer")

	// ErrOutOfRange is returned when a value does not fit the field width.
	ErrOutOfRange = errors.New("diffusion: value exceeds field width")
)

// cipher is XTEA under the all-zero key: each half-round then mixes in the
// bare round sum, which is exactly the keyless permutation.
var cipher = func() *xtea.Cipher {
	c, err := xtea.NewCipher(make([]byte, xtea.BlockSize*2))
	if err != nil {
		panic(err)
	}
	return c
}()

// EncipherBlock applies the forward permutation to the 64-bit block v.
func EncipherBlock(v *[2]uint32) {
	applyBlock(v, cipher.Encrypt)
}

// DecipherBlock undoes EncipherBlock.
func DecipherBlock(v *[2]uint32) {
	applyBlock(v, cipher.Decrypt)
}

func applyBlock(v *[2]uint32, fn func(dst, src []byte)) {
	var b [xtea.BlockSize]byte
	binary.BigEndian.PutUint32(b[:4], v[0])
	binary.BigEndian.PutUint32(b[4:], v[1])
	fn(b[:], b[:])
	v[0] = binary.BigEndian.Uint32(b[:4])
	v[1] = binary.BigEndian.Uint32(b[4:])
}

// Encode diffuses x, an element of GF(2^degree).
func Encode(x *big.Int, degree uint) (*big.Int, error) {
	return transform(x, degree, true)
}

// Decode reverses Encode.
func Decode(x *big.Int, degree uint) (*big.Int, error) {
	return transform(x, degree, false)
}

// processSlice runs one block permutation on the 8 bytes at offset idx of
// the circular buffer data.
func processSlice(data []byte, idx int, fn func(dst, src []byte)) {
	n := len(data)
	var b [xtea.BlockSize]byte

	for j := range b {
		b[j] = data[(idx+j)%n]
	}
	fn(b[:], b[:])
	for j := range b {
		data[(idx+j)%n] = b[j]
	}
}

func transform(x *big.Int, degree uint, encode bool) (*big.Int, error) {
	if degree < MinDegree || degree%8 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrDegreeTooSmall, degree)
	}
	if x.Sign() < 0 || bitint.SizeInBits(x) > int(degree) {
		return nil, fmt.Errorf("%w: %d bits in a %d-bit field", ErrOutOfRange, bitint.SizeInBits(x), degree)
	}

	// 1. Lay the element out as 16-bit words, least significant word first,
	// high byte first inside each word. An odd byte count leaves the top
	// word half empty.
	n := int(degree / 8)
	words, err := bitint.Export(bitint.OrderLSB, 2, bitint.EndianMSB, x)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 2*((n+1)/2))
	copy(buf, words)

	// 2. Pull the lone top byte into the n-byte window.
	odd := n%2 == 1
	if odd {
		buf[n-1] = buf[n]
	}

	window := buf[:n]
	if encode {
		for i := 0; i < Passes*n; i += 2 {
			processSlice(window, i, cipher.Encrypt)
		}
	} else {
		for i := Passes*n - 2; i >= 0; i -= 2 {
			processSlice(window, i, cipher.Decrypt)
		}
	}

	if odd {
		buf[n] = buf[n-1]
		buf[n-1] = 0
	}

	// 3. Back to an integer.
	y, err := bitint.Import(bitint.OrderLSB, 2, bitint.EndianMSB, buf)
	if err != nil {
		return nil, err
	}
	if bitint.SizeInBits(y) > int(degree) {
		return nil, fmt.Errorf("%w: diffusion produced %d bits in a %d-bit field", ErrOutOfRange, bitint.SizeInBits(y), degree)
	}
	return y, nil
}
