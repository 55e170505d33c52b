package ssss

import (
	"fmt"
	"io"
	"math/big"

	"github.com/Beastly713/ssss/pkg/bitint"
	"github.com/Beastly713/ssss/pkg/gf2n"
)

// polynomial is a monic polynomial x^n + c[n-1]x^(n-1) + ... + c[0] over
// GF(2^degree), where n is the threshold.
type polynomial struct {
	field        *gf2n.Field
	coefficients []*big.Int
}

// makePolynomial constructs a random polynomial of the given threshold with
// the provided intercept as its constant term.
func makePolynomial(f *gf2n.Field, intercept *big.Int, threshold int, random io.Reader) (polynomial, error) {
	p := polynomial{
		field:        f,
		coefficients: make([]*big.Int, threshold),
	}
	p.coefficients[0] = intercept

	buf := make([]byte, f.Degree()/8)
	defer clear(buf)

	for i := 1; i < threshold; i++ {
		if _, err := io.ReadFull(random, buf); err != nil {
			return p, fmt.Errorf("failed to read random coefficient: %w", err)
		}
		c, err := bitint.Import(bitint.OrderMSB, 1, bitint.EndianHost, buf)
		if err != nil {
			return p, err
		}
		p.coefficients[i] = c
	}

	return p, nil
}

// evaluate returns the value of the polynomial at x.
func (p *polynomial) evaluate(x *big.Int) *big.Int {
	return horner(p.field, x, p.coefficients)
}

// wipe zeroes the coefficients.
func (p *polynomial) wipe() {
	for _, c := range p.coefficients {
		if c != nil {
			c.SetInt64(0)
		}
	}
}

// horner evaluates the monic polynomial with the given low coefficients at x.
// The leading x^n term comes from starting the accumulator at x.
func horner(f *gf2n.Field, x *big.Int, coeff []*big.Int) *big.Int {
	y := new(big.Int).Set(x)
	for i := len(coeff) - 1; i > 0; i-- {
		y = f.Add(y, coeff[i])
		y = f.Multiply(y, x)
	}
	return f.Add(y, coeff[0])
}
