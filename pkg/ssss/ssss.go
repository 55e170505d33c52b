// Package ssss implements Shamir's threshold secret sharing over the binary
// fields GF(2^n).
//
// A secret of L bytes (or 2L hex digits) is treated as an element of
// GF(2^(8L)) and becomes the constant term of a random polynomial. Each share
// is one evaluation of that polynomial. Any threshold of them rebuild the
// secret by solving a linear system; fewer reveal nothing about it.
//
// Before splitting, secrets of 64 bits or more pass through a reversible
// diffusion layer so that a one-bit change in the secret changes every share
// completely.
//
// Shares carry no integrity protection. A corrupted or forged share that
// still yields a solvable system silently reconstructs a wrong secret.
package ssss

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"github.com/Beastly713/ssss/pkg/bitint"
	"github.com/Beastly713/ssss/pkg/diffusion"
	"github.com/Beastly713/ssss/pkg/gf2n"
)

// Scheme holds the sharing parameters. It carries no per-secret state and
// may be used from several goroutines at once.
type Scheme struct {
	threshold int
	shares    int
	hex       bool
	diffusion bool
	logger    *slog.Logger
	random    io.Reader
}

// Option configures a Scheme.
type Option func(*Scheme)

// WithHex makes secrets hex strings instead of raw text.
func WithHex(hex bool) Option {
	return func(s *Scheme) { s.hex = hex }
}

// WithDiffusion turns the diffusion layer on or off. It is on by default and
// both sides of a split/combine must agree on it.
func WithDiffusion(enabled bool) Option {
	return func(s *Scheme) { s.diffusion = enabled }
}

// WithLogger sets the logger that receives warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheme) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRandom replaces crypto/rand as the source of polynomial coefficients.
func WithRandom(r io.Reader) Option {
	return func(s *Scheme) {
		if r != nil {
			s.random = r
		}
	}
}

// New returns a scheme needing threshold shares out of shares. A scheme that
// only combines may pass 0 shares; a threshold of 0 makes Combine use every
// share it is given. A threshold above a non-zero share count is lowered to
// the share count.
func New(threshold, shares int, opts ...Option) (*Scheme, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	if shares < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShareCount, shares)
	}
	if shares > 0 && threshold > shares {
		threshold = shares
	}

	s := &Scheme{
		threshold: threshold,
		shares:    shares,
		diffusion: true,
		logger:    slog.Default(),
		random:    rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Threshold returns the number of shares needed to combine.
func (s *Scheme) Threshold() int { return s.threshold }

// Shares returns the number of shares Split produces.
func (s *Scheme) Shares() int { return s.shares }

// Split divides secret into shares, each prefixed with token when it is not
// empty.
func (s *Scheme) Split(secret, token string) ([]string, error) {
	shares, err := s.SplitShares(secret, token)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(shares))
	for i, share := range shares {
		out[i] = share.String()
	}
	return out, nil
}

// SplitShares is Split without the final formatting.
func (s *Scheme) SplitShares(secret, token string) ([]Share, error) {
	// 1. Validation
	if s.threshold < 1 {
		return nil, ErrInvalidThreshold
	}
	if s.shares < 1 {
		return nil, fmt.Errorf("%w: need at least one share to split", ErrInvalidShareCount)
	}
	if len(token) > MaxTokenLen {
		return nil, fmt.Errorf("%w: %d bytes, at most %d", ErrTokenTooLong, len(token), MaxTokenLen)
	}

	degree := s.securityLevel(secret)
	if !gf2n.ValidDegree(degree) {
		return nil, fmt.Errorf("%w: %d bits", ErrSecurityLevel, degree)
	}
	if bitint.SizeInBits(big.NewInt(int64(s.shares))) > int(degree) {
		return nil, fmt.Errorf("%w: %d shares in a %d-bit field", ErrTooManyShares, s.shares, degree)
	}

	// 2. Field for this secret only
	f, err := gf2n.New(degree)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSecurityLevel, err)
	}
	defer f.Clear()

	// 3. Secret -> diffused field element
	intercept, err := s.importSecret(secret, degree)
	if err != nil {
		return nil, err
	}
	intercept, err = s.diffuse(intercept, degree, diffusion.Encode)
	if err != nil {
		return nil, err
	}

	// 4. Random polynomial with the secret as intercept
	p, err := makePolynomial(f, intercept, s.threshold, s.random)
	defer p.wipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	// 5. One evaluation per share, x = 1..N
	width := len(strconv.Itoa(s.shares))
	out := make([]Share, s.shares)
	for i := range out {
		index := i + 1
		out[i] = Share{
			Token:      token,
			Index:      index,
			IndexWidth: width,
			Value:      p.evaluate(big.NewInt(int64(index))),
			Degree:     degree,
		}
	}

	return out, nil
}

// Combine rebuilds the secret from share strings. With a configured
// threshold T it needs at least T shares and uses the first T.
func (s *Scheme) Combine(shares []string) (string, error) {
	n, err := s.usable(len(shares))
	if err != nil {
		return "", err
	}

	parsed := make([]Share, n)
	for i, raw := range shares[:n] {
		share, err := ParseShare(strings.TrimSpace(raw))
		if err != nil {
			return "", fmt.Errorf("share %d: %w", i+1, err)
		}
		parsed[i] = share
	}

	return s.CombineShares(parsed)
}

// CombineShares is Combine for already parsed shares.
func (s *Scheme) CombineShares(shares []Share) (string, error) {
	n, err := s.usable(len(shares))
	if err != nil {
		return "", err
	}
	shares = shares[:n]

	// 1. All shares must come from the same field
	degree := shares[0].Degree
	if !gf2n.ValidDegree(degree) {
		return "", fmt.Errorf("%w: degree %d", ErrIllegalShareLength, degree)
	}
	for i, share := range shares {
		if share.Degree != degree {
			return "", fmt.Errorf("%w: share %d has %d bits, share 1 has %d",
				ErrMixedSecurityLevels, i+1, share.Degree, degree)
		}
		if share.Index < 1 || share.Value == nil || share.Value.Sign() < 0 ||
			bitint.SizeInBits(share.Value) > int(degree) {
			return "", fmt.Errorf("%w: share %d is malformed", ErrInvalidSyntax, i+1)
		}
	}

	f, err := gf2n.New(degree)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIllegalShareLength, err)
	}
	defer f.Clear()

	// 2. Solve for the intercept
	system := newLinearSystem(f, shares)
	defer system.wipe()

	secret, err := system.solve()
	if err != nil {
		return "", err
	}

	// 3. Undo diffusion and render
	secret, err = s.diffuse(secret, degree, diffusion.Decode)
	if err != nil {
		return "", err
	}
	return s.render(secret, degree)
}

// usable returns how many of the supplied shares take part in a combine.
func (s *Scheme) usable(supplied int) (int, error) {
	need := s.threshold
	if need == 0 {
		need = supplied
	}
	if need == 0 || supplied < need {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughShares, supplied, max(need, 1))
	}
	return need, nil
}

// securityLevel returns the field degree for secret: eight bits per byte,
// or per pair of hex digits.
func (s *Scheme) securityLevel(secret string) uint {
	if s.hex {
		return uint(4 * ((len(secret) + 1) &^ 1))
	}
	return uint(8 * len(secret))
}

func (s *Scheme) importSecret(secret string, degree uint) (*big.Int, error) {
	if s.hex {
		digits := int(degree / 4)
		if len(secret) > digits {
			return nil, ErrSecretTooLong
		}
		if len(secret) < digits {
			s.logger.Warn("input string too short, adding null padding on the left",
				"digits", len(secret), "want", digits)
		}
		if !isHex(secret) {
			return nil, fmt.Errorf("%w: %q is not a hex number", ErrSyntax, secret)
		}
		x, _ := new(big.Int).SetString(secret, 16)
		return x, nil
	}

	if len(secret) > int(degree/8) {
		return nil, ErrSecretTooLong
	}
	if !printable([]byte(secret)) {
		s.logger.Warn("non-ASCII data detected, use hex mode instead")
	}
	return bitint.Import(bitint.OrderMSB, 1, bitint.EndianHost, []byte(secret))
}

func (s *Scheme) diffuse(x *big.Int, degree uint, fn func(*big.Int, uint) (*big.Int, error)) (*big.Int, error) {
	if !s.diffusion {
		return x, nil
	}
	if degree < diffusion.MinDegree {
		s.logger.Warn("security level too small for the diffusion layer, secret too short",
			"degree", degree, "min", diffusion.MinDegree)
		return x, nil
	}

	y, err := fn(x, degree)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return y, nil
}

func (s *Scheme) render(x *big.Int, degree uint) (string, error) {
	if s.hex {
		return formatHex(x, degree), nil
	}

	buf, err := bitint.Export(bitint.OrderMSB, 1, bitint.EndianHost, x)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInternal, err)
	}
	defer clear(buf)

	if !printable(buf) {
		s.logger.Warn("non-ASCII data detected, use hex mode instead")
	}
	out := make([]byte, len(buf))
	for i, c := range buf {
		if c < 32 || c >= 127 {
			c = '.'
		}
		out[i] = c
	}
	return string(out), nil
}

func printable(buf []byte) bool {
	for _, c := range buf {
		if c < 32 || c >= 127 {
			return false
		}
	}
	return true
}
