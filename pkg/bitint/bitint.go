// Package bitint provides two's-complement bit operations on math/big
// integers.
//
// big.Int keeps sign and magnitude apart, so its own bitwise operators are
// not what the GF(2^n) code was written against. The helpers here treat every
// value as an infinitely sign-extended two's-complement register instead.
package bitint

import (
	"errors"
	"math/big"
)

var (
	// ErrNegativeBitIndex is returned when a bit index below zero is used.
	ErrNegativeBitIndex = errors.New("bitint: negative bit index")

	// ErrUnsupportedWordSize is returned by Import and Export for word sizes
	// other than 1 or 2 bytes.
	ErrUnsupportedWordSize = errors.New("bitint: unsupported word size")

	// ErrInvalidArgument is returned for malformed order, endian or buffer
	// arguments.
	ErrInvalidArgument = errors.New("bitint: invalid argument")
)

var (
	one      = big.NewInt(1)
	minusOne = big.NewInt(-1)
)

// SizeInBase returns the number of digits needed to print |v| in base.
// Zero needs one digit. base must be between 2 and 62.
func SizeInBase(v *big.Int, base int) int {
	return len(new(big.Int).Abs(v).Text(base))
}

// SizeInBits returns the number of significant bits of |v|, 0 for zero.
func SizeInBits(v *big.Int) int {
	if v.Sign() == 0 {
		return 0
	}
	return SizeInBase(v, 2)
}

// Cmp compares v and w and returns -1, 0 or +1.
func Cmp(v, w *big.Int) int {
	return v.Cmp(w)
}

// Lsh returns v * 2^bits.
func Lsh(v *big.Int, bits uint) *big.Int {
	return new(big.Int).Lsh(v, bits)
}

// TwosComplement returns a value whose binary text, with the leading digit
// sign-extended, is the two's-complement pattern of v. Non-negative values
// and -1 are returned unchanged. Other negative values keep their sign:
//
//	-2 => -0b10
//	-6 => -0b1010
//	-9 => -0b10111
func TwosComplement(v *big.Int) *big.Int {
	if v.Sign() >= 0 || v.Cmp(minusOne) == 0 {
		return new(big.Int).Set(v)
	}

	m := new(big.Int).Abs(v)
	m.Sub(m, one)
	width := m.BitLen()

	mask := new(big.Int).Lsh(one, uint(width))
	mask.Sub(mask, one)

	inv := new(big.Int).Xor(m, mask)
	inv.SetBit(inv, width, 1)
	return inv.Neg(inv)
}

// register is the materialised two's-complement view of a value. bits holds
// exactly width bits; everything above is 1 when neg is set, 0 otherwise.
type register struct {
	bits  *big.Int
	width int
	neg   bool
}

func view(v *big.Int) register {
	t := TwosComplement(v)
	r := register{neg: t.Sign() < 0}
	r.bits = t.Abs(t)
	r.width = r.bits.BitLen()
	if r.width == 0 {
		r.width = 1
	}
	return r
}

func (r register) bit(i uint) uint {
	if i >= uint(r.width) {
		if r.neg {
			return 1
		}
		return 0
	}
	return r.bits.Bit(int(i))
}

// extend returns the register's bits sign-extended to w bits.
func (r register) extend(w int) *big.Int {
	if !r.neg || w <= r.width {
		return r.bits
	}
	fill := new(big.Int).Lsh(one, uint(w))
	fill.Sub(fill, one)
	low := new(big.Int).Lsh(one, uint(r.width))
	low.Sub(low, one)
	fill.Xor(fill, low)
	return fill.Or(fill, r.bits)
}

// Bit returns bit i of v, counting from the least significant bit of its
// two's-complement form.
func Bit(v *big.Int, i uint) uint {
	if v.Sign() >= 0 {
		return v.Bit(int(i))
	}
	return view(v).bit(i)
}

// TestBit is Bit with a signed index.
func TestBit(v *big.Int, index int) (uint, error) {
	if index < 0 {
		return 0, ErrNegativeBitIndex
	}
	return Bit(v, uint(index)), nil
}

// combine lines up the two's-complement registers of a and b, sign-extends
// the shorter one to the width of the longer one and applies op. The result
// is the non-negative number spelled by the combined bits.
func combine(a, b *big.Int, op func(z, x, y *big.Int) *big.Int) *big.Int {
	if a.Sign() >= 0 && b.Sign() >= 0 {
		return op(new(big.Int), a, b)
	}

	ra, rb := view(a), view(b)
	if ra.width < rb.width {
		ra, rb = rb, ra
	}
	return op(new(big.Int), ra.bits, rb.extend(ra.width))
}

// Or returns the bitwise or of a and b.
func Or(a, b *big.Int) *big.Int {
	return combine(a, b, (*big.Int).Or)
}

// Xor returns the bitwise exclusive-or of a and b.
func Xor(a, b *big.Int) *big.Int {
	return combine(a, b, (*big.Int).Xor)
}

// SetBit returns v with bit index set. The sign of a negative v is put back
// on the result, so SetBit(-4, 1) is -6: -0b100 becomes -0b110.
func SetBit(v *big.Int, index int) (*big.Int, error) {
	if index < 0 {
		return nil, ErrNegativeBitIndex
	}
	res := Or(v, Lsh(one, uint(index)))
	if v.Sign() < 0 {
		res.Neg(res)
	}
	return res, nil
}
