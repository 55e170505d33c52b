package ssss

import (
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
	"strings"

	"github.com/Beastly713/ssss/pkg/bitint"
	"github.com/Beastly713/ssss/pkg/gf2n"
)

// MaxTokenLen is the longest token accepted by Split.
const MaxTokenLen = 128

// Share is one point of the sharing polynomial.
type Share struct {
	// Token is an optional label naming the secret the share belongs to.
	Token string

	// Index is the share's x coordinate, starting at 1.
	Index int

	// IndexWidth is the number of digits the index is zero-padded to.
	IndexWidth int

	// Value is the polynomial evaluated at Index, an element of
	// GF(2^Degree).
	Value *big.Int

	// Degree is the field degree, four times the number of hex digits.
	Degree uint
}

// String renders the share as "<token>-<index>-<hex value>", leaving out the
// token part when there is no token.
func (s Share) String() string {
	var sb strings.Builder
	if s.Token != "" {
		sb.WriteString(s.Token)
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, "%0*d-", s.IndexWidth, s.Index)
	sb.WriteString(formatHex(s.Value, s.Degree))
	return sb.String()
}

// ParseShare reads a share string. Only the last two "-" separated fields
// carry data; everything before them is the token, which may itself contain
// dashes.
func ParseShare(s string) (Share, error) {
	parts := strings.Split(s, "-")
	if len(parts) < 2 {
		return Share{}, fmt.Errorf("%w: missing index or value field", ErrInvalidSyntax)
	}
	indexText := parts[len(parts)-2]
	valueText := parts[len(parts)-1]

	index, err := strconv.ParseUint(indexText, 10, 31)
	if err != nil || index == 0 {
		return Share{}, fmt.Errorf("%w: bad index %q", ErrInvalidSyntax, indexText)
	}

	degree := uint(4 * len(valueText))
	if !gf2n.ValidDegree(degree) {
		return Share{}, fmt.Errorf("%w: %d hex digits", ErrIllegalShareLength, len(valueText))
	}
	if !isHex(valueText) {
		return Share{}, fmt.Errorf("%w: value is not hexadecimal", ErrInvalidSyntax)
	}
	value, _ := new(big.Int).SetString(valueText, 16)

	if bits.Len64(index) > int(degree) {
		return Share{}, fmt.Errorf("%w: index %d does not fit a %d-bit field", ErrInvalidSyntax, index, degree)
	}

	return Share{
		Token:      strings.Join(parts[:len(parts)-2], "-"),
		Index:      int(index),
		IndexWidth: len(indexText),
		Value:      value,
		Degree:     degree,
	}, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// formatHex prints x as lower-case hex, zero-padded to degree/4 digits.
func formatHex(x *big.Int, degree uint) string {
	pad := int(degree/4) - bitint.SizeInBase(x, 16)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("0", pad) + x.Text(16)
}
