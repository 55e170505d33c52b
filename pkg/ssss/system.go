package ssss

import (
	"math/big"

	"github.com/Beastly713/ssss/pkg/gf2n"
)

// linearSystem holds the equations recovering the polynomial from its
// shares. Column i of a belongs to share i: a[j][i] = x_i^(n-1-j), and b[i]
// is the share value with the leading x_i^n term already removed.
type linearSystem struct {
	field *gf2n.Field
	a     [][]*big.Int
	b     []*big.Int
}

func newLinearSystem(f *gf2n.Field, shares []Share) *linearSystem {
	n := len(shares)
	s := &linearSystem{
		field: f,
		a:     make([][]*big.Int, n),
		b:     make([]*big.Int, n),
	}
	for j := range s.a {
		s.a[j] = make([]*big.Int, n)
	}

	for i, share := range shares {
		x := big.NewInt(int64(share.Index))

		s.a[n-1][i] = big.NewInt(1)
		for j := n - 2; j >= 0; j-- {
			s.a[j][i] = f.Multiply(s.a[j+1][i], x)
		}

		s.b[i] = f.Add(share.Value, f.Multiply(x, s.a[0][i]))
	}

	return s
}

// solve eliminates with pivot search and returns the constant term of the
// polynomial.
func (s *linearSystem) solve() (*big.Int, error) {
	f := s.field
	n := len(s.b)

	for i := 0; i < n; i++ {
		if s.a[i][i].Sign() == 0 {
			j := i + 1
			for j < n && s.a[i][j].Sign() == 0 {
				j++
			}
			if j == n {
				return nil, ErrInconsistentShares
			}
			for k := i; k < n; k++ {
				s.a[k][i], s.a[k][j] = s.a[k][j], s.a[k][i]
			}
			s.b[i], s.b[j] = s.b[j], s.b[i]
		}

		pivot := s.a[i][i]
		for j := i + 1; j < n; j++ {
			factor := s.a[i][j]
			if factor.Sign() == 0 {
				continue
			}
			for k := i + 1; k < n; k++ {
				h := f.Multiply(s.a[k][i], factor)
				s.a[k][j] = f.Add(f.Multiply(s.a[k][j], pivot), h)
			}
			h := f.Multiply(s.b[i], factor)
			s.b[j] = f.Add(f.Multiply(s.b[j], pivot), h)
		}
	}

	inv, err := f.Invert(s.a[n-1][n-1])
	if err != nil {
		return nil, ErrInconsistentShares
	}
	return f.Multiply(s.b[n-1], inv), nil
}

// wipe zeroes the system.
func (s *linearSystem) wipe() {
	for _, row := range s.a {
		for _, v := range row {
			v.SetInt64(0)
		}
	}
	for _, v := range s.b {
		v.SetInt64(0)
	}
}
