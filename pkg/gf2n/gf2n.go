// Package gf2n implements arithmetic in the binary fields GF(2^n) for n a
// multiple of 8 between 8 and 1024.
//
// Elements are non-negative *big.Int values below 2^n whose bits are the
// coefficients of a polynomial over GF(2). Addition is xor; multiplication
// reduces modulo a fixed irreducible polynomial chosen by degree.
package gf2n

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Beastly713/ssss/pkg/bitint"
)

const (
	// MinDegree is the smallest supported field degree.
	MinDegree = 8
	// MaxDegree is the largest supported field degree.
	MaxDegree = 1024
)

var (
	// ErrInvalidDegree is returned for degrees that are not a multiple of 8
	// in [MinDegree, MaxDegree].
	ErrInvalidDegree = errors.New("gf2n: invalid field degree")

	// ErrNotInvertible is returned when inverting zero.
	ErrNotInvertible = errors.New("gf2n: element is not invertible")
)

// irreducible holds, for every degree 8*k, the three middle exponents of an
// irreducible pentanomial x^deg + x^a + x^b + x^c + 1, at index 3*(k-1).
var irreducible = [3 * MaxDegree / 8]uint16{
	4, 3, 1, 5, 3, 1, 4, 3, 1, 7, 3, 2, 5, 4, 3, 5, 3, 2, 7, 4, 2, 4, 3, 1, 10, 9, 3, 9, 4, 2, 7, 6, 2, 10, 9,
	6, 4, 3, 1, 5, 4, 3, 4, 3, 1, 7, 2, 1, 5, 3, 2, 7, 4, 2, 6, 3, 2, 5, 3, 2, 15, 3, 2, 11, 3, 2, 9, 8, 7, 7,
	2, 1, 5, 3, 2, 9, 3, 1, 7, 3, 1, 9, 8, 3, 9, 4, 2, 8, 5, 3, 15, 14, 10, 10, 5, 2, 9, 6, 2, 9, 3, 2, 9, 5,
	2, 11, 10, 1, 7, 3, 2, 11, 2, 1, 9, 7, 4, 4, 3, 1, 8, 3, 1, 7, 4, 1, 7, 2, 1, 13, 11, 6, 5, 3, 2, 7, 3, 2,
	8, 7, 5, 12, 3, 2, 13, 10, 6, 5, 3, 2, 5, 3, 2, 9, 5, 2, 9, 7, 2, 13, 4, 3, 4, 3, 1, 11, 6, 4, 18, 9, 6,
	19, 18, 13, 11, 3, 2, 15, 9, 6, 4, 3, 1, 16, 5, 2, 15, 14, 6, 8, 5, 2, 15, 11, 2, 11, 6, 2, 7, 5, 3, 8,
	3, 1, 19, 16, 9, 11, 9, 6, 15, 7, 6, 13, 4, 3, 14, 13, 3, 13, 6, 3, 9, 5, 2, 19, 13, 6, 19, 10, 3, 11,
	6, 5, 9, 2, 1, 14, 3, 2, 13, 3, 1, 7, 5, 4, 11, 9, 8, 11, 6, 5, 23, 16, 9, 19, 14, 6, 23, 10, 2, 8, 3,
	2, 5, 4, 3, 9, 6, 4, 4, 3, 2, 13, 8, 6, 13, 11, 1, 13, 10, 3, 11, 6, 5, 19, 17, 4, 15, 14, 7, 13, 9, 6,
	9, 7, 3, 9, 7, 1, 14, 3, 2, 11, 8, 2, 11, 6, 4, 13, 5, 2, 11, 5, 1, 11, 4, 1, 19, 10, 3, 21, 10, 6, 13,
	3, 1, 15, 7, 5, 19, 18, 10, 7, 5, 3, 12, 7, 2, 7, 5, 1, 14, 9, 6, 10, 3, 2, 15, 13, 12, 12, 11, 9, 16,
	9, 7, 12, 9, 3, 9, 5, 2, 17, 10, 6, 24, 9, 3, 17, 15, 13, 5, 4, 3, 19, 17, 8, 15, 6, 3, 19, 6, 1,
}

// ValidDegree reports whether deg is a supported field degree.
func ValidDegree(deg uint) bool {
	return deg >= MinDegree && deg <= MaxDegree && deg%8 == 0
}

// Field is GF(2^degree) together with its reduction polynomial. A Field is
// meant to live for a single split or combine and be cleared afterwards.
type Field struct {
	degree  uint
	modulus *big.Int
}

// New returns the field of the given degree.
func New(degree uint) (*Field, error) {
	if !ValidDegree(degree) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, degree)
	}

	// 1. x^deg + 1
	poly, err := bitint.SetBit(new(big.Int), int(degree))
	if err != nil {
		return nil, err
	}
	poly, err = bitint.SetBit(poly, 0)
	if err != nil {
		return nil, err
	}

	// 2. middle terms from the table
	row := 3 * (degree/8 - 1)
	for _, exp := range irreducible[row : row+3] {
		if poly, err = bitint.SetBit(poly, int(exp)); err != nil {
			return nil, err
		}
	}

	return &Field{degree: degree, modulus: poly}, nil
}

// Degree returns the field degree, or 0 once the field has been cleared.
func (f *Field) Degree() uint {
	return f.degree
}

// Modulus returns a copy of the reduction polynomial.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Clear zeroes the modulus so the field cannot be reused by accident.
func (f *Field) Clear() {
	if f.modulus != nil {
		f.modulus.SetInt64(0)
	}
	f.degree = 0
}

// Add returns x + y, which in characteristic 2 is also x - y.
func (f *Field) Add(x, y *big.Int) *big.Int {
	return bitint.Xor(x, y)
}

// Multiply returns x * y reduced modulo the field polynomial.
func (f *Field) Multiply(x, y *big.Int) *big.Int {
	b := new(big.Int).Set(x)
	z := new(big.Int)
	if bitint.Bit(y, 0) == 1 {
		z.Set(b)
	}

	for i := uint(1); i < f.degree; i++ {
		b = bitint.Lsh(b, 1)
		if bitint.Bit(b, f.degree) == 1 {
			b = bitint.Xor(b, f.modulus)
		}
		if bitint.Bit(y, i) == 1 {
			z = bitint.Xor(z, b)
		}
	}

	return z
}

// Invert returns the multiplicative inverse of x using the binary extended
// Euclidean algorithm on polynomials.
func (f *Field) Invert(x *big.Int) (*big.Int, error) {
	if x.Sign() == 0 {
		return nil, ErrNotInvertible
	}

	u := new(big.Int).Set(x)
	v := new(big.Int).Set(f.modulus)
	g := new(big.Int)
	z := big.NewInt(1)

	for u.Cmp(big.NewInt(1)) != 0 {
		if u.Sign() == 0 {
			// x shares a factor with the modulus
			return nil, ErrNotInvertible
		}

		i := bitint.SizeInBits(u) - bitint.SizeInBits(v)
		if i < 0 {
			u, v = v, u
			z, g = g, z
			i = -i
		}
		u = bitint.Xor(u, bitint.Lsh(v, uint(i)))
		z = bitint.Xor(z, bitint.Lsh(g, uint(i)))
	}

	return z, nil
}
