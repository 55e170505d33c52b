package ssss

import (
	"bytes"
	"log/slog"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Beastly713/ssss/pkg/gf2n"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func TestSplitAndCombine(t *testing.T) {
	scheme, err := New(4, 6, WithLogger(quietLogger()))
	require.NoError(t, err)

	// 1. Split
	shares, err := scheme.Split("abcdefgh", "tkn")
	require.NoError(t, err)
	require.Len(t, shares, 6)
	for i, share := range shares {
		assert.True(t, strings.HasPrefix(share, "tkn-"), "share %d: %s", i, share)
		parts := strings.Split(share, "-")
		require.Len(t, parts, 3)
		assert.Len(t, parts[2], 16)
	}

	// 2. Any four shares rebuild the secret
	for _, subset := range [][]string{shares[0:4], shares[1:5], shares[2:6]} {
		secret, err := scheme.Combine(subset)
		require.NoError(t, err)
		assert.Equal(t, "abcdefgh", secret)
	}

	// 3. Extra shares beyond the threshold are ignored
	secret, err := scheme.Combine(shares)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", secret)

	// 4. Too few shares
	_, err = scheme.Combine(shares[:3])
	require.ErrorIs(t, err, ErrNotEnoughShares)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSplitAndCombineAlphabet(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"

	scheme, err := New(3, 5, WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := scheme.Split(alphabet, "")
	require.NoError(t, err)
	for _, share := range shares {
		parts := strings.Split(share, "-")
		require.Len(t, parts, 2)
		assert.Len(t, parts[1], 2*len(alphabet))
	}

	secret, err := scheme.Combine([]string{shares[4], shares[0], shares[2]})
	require.NoError(t, err)
	assert.Equal(t, alphabet, secret)
}

func TestSplitAndCombineHexEverySubset(t *testing.T) {
	const hexSecret = "7bcd123411223344"

	scheme, err := New(3, 6, WithHex(true), WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := scheme.Split(hexSecret, "foo")
	require.NoError(t, err)
	require.Len(t, shares, 6)

	for a := 0; a < len(shares); a++ {
		for b := a + 1; b < len(shares); b++ {
			for c := b + 1; c < len(shares); c++ {
				secret, err := scheme.Combine([]string{shares[a], shares[b], shares[c]})
				require.NoError(t, err)
				assert.Equal(t, hexSecret, secret, "subset %d,%d,%d", a, b, c)
			}
		}
	}
}

func TestCombineOnlyScheme(t *testing.T) {
	splitter, err := New(2, 3, WithLogger(quietLogger()))
	require.NoError(t, err)
	shares, err := splitter.Split("correct horse", "")
	require.NoError(t, err)

	combiner, err := New(2, 0, WithLogger(quietLogger()))
	require.NoError(t, err)
	secret, err := combiner.Combine([]string{shares[2], shares[1]})
	require.NoError(t, err)
	assert.Equal(t, "correct horse", secret)

	_, err = combiner.Split("nope", "")
	assert.ErrorIs(t, err, ErrInvalidShareCount)
}

func TestCombineInferredThreshold(t *testing.T) {
	splitter, err := New(3, 5, WithLogger(quietLogger()))
	require.NoError(t, err)
	shares, err := splitter.Split("battery staple", "")
	require.NoError(t, err)

	combiner, err := New(0, 0, WithLogger(quietLogger()))
	require.NoError(t, err)

	secret, err := combiner.Combine(shares[1:4])
	require.NoError(t, err)
	assert.Equal(t, "battery staple", secret)

	// Two shares form a solvable system for a different polynomial.
	wrong, err := combiner.Combine(shares[:2])
	require.NoError(t, err)
	assert.NotEqual(t, "battery staple", wrong)

	_, err = combiner.Combine(nil)
	assert.ErrorIs(t, err, ErrNotEnoughShares)
}

func TestNew(t *testing.T) {
	scheme, err := New(5, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, scheme.Threshold())
	assert.Equal(t, 3, scheme.Shares())

	scheme, err = New(4, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, scheme.Threshold())

	_, err = New(-1, 3)
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = New(2, -3)
	assert.ErrorIs(t, err, ErrInvalidShareCount)
}

func TestSplitValidation(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		shares    int
		hex       bool
		secret    string
		token     string
		wantErr   error
	}{
		{"zero threshold", 0, 3, false, "secret", "", ErrInvalidThreshold},
		{"empty secret", 2, 3, false, "", "", ErrSecurityLevel},
		{"secret too long", 2, 3, false, strings.Repeat("x", 129), "", ErrSecurityLevel},
		{"token too long", 2, 3, false, "secret", strings.Repeat("t", MaxTokenLen+1), ErrTokenTooLong},
		{"too many shares", 2, 256, false, "s", "", ErrTooManyShares},
		{"bad hex", 2, 3, true, "zz", "", ErrSyntax},
		{"hex too long", 2, 3, true, strings.Repeat("a", 257), "", ErrSecurityLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, err := New(tt.threshold, tt.shares, WithHex(tt.hex), WithLogger(quietLogger()))
			require.NoError(t, err)

			_, err = scheme.Split(tt.secret, tt.token)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSplitMaxShares(t *testing.T) {
	scheme, err := New(2, 255, WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := scheme.Split("s", "")
	require.NoError(t, err)
	require.Len(t, shares, 255)
	assert.True(t, strings.HasPrefix(shares[0], "001-"))

	secret, err := scheme.Combine([]string{shares[254], shares[100]})
	require.NoError(t, err)
	assert.Equal(t, "s", secret)
}

func TestCombineMixedSecurityLevels(t *testing.T) {
	scheme, err := New(2, 2, WithLogger(quietLogger()))
	require.NoError(t, err)

	short, err := scheme.Split("abcdefgh", "")
	require.NoError(t, err)
	long, err := scheme.Split("abcdefghi", "")
	require.NoError(t, err)

	_, err = scheme.Combine([]string{short[0], long[1]})
	require.ErrorIs(t, err, ErrMixedSecurityLevels)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCombineDuplicateShare(t *testing.T) {
	for _, threshold := range []int{2, 3, 5} {
		scheme, err := New(threshold, threshold, WithLogger(quietLogger()))
		require.NoError(t, err)

		shares, err := scheme.Split("abcdefgh", "")
		require.NoError(t, err)
		shares[1] = shares[0]

		_, err = scheme.Combine(shares)
		require.ErrorIs(t, err, ErrInconsistentShares, "threshold %d", threshold)
		assert.ErrorIs(t, err, ErrReconstruction)
		assert.NotErrorIs(t, err, ErrValidation)
	}
}

func TestCombineParseErrors(t *testing.T) {
	scheme, err := New(2, 0, WithLogger(quietLogger()))
	require.NoError(t, err)

	good := "1-0123456789abcdef"
	tests := []struct {
		name    string
		share   string
		wantErr error
	}{
		{"no separator", "0123456789abcdef", ErrInvalidSyntax},
		{"bad index", "x-0123456789abcdef", ErrInvalidSyntax},
		{"zero index", "0-0123456789abcdef", ErrInvalidSyntax},
		{"odd length", "2-abc", ErrIllegalShareLength},
		{"not hex", "2-0123456789abcdeg", ErrInvalidSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scheme.Combine([]string{good, tt.share})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "share 2")
		})
	}
}

func TestSingleShareThreshold(t *testing.T) {
	scheme, err := New(1, 3, WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := scheme.Split("solitary", "")
	require.NoError(t, err)
	for _, share := range shares {
		secret, err := scheme.Combine([]string{share})
		require.NoError(t, err)
		assert.Equal(t, "solitary", secret)
	}
}

func TestTokenWithDashes(t *testing.T) {
	scheme, err := New(2, 3, WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := scheme.Split("abcdefgh", "backup-2024-q1")
	require.NoError(t, err)

	parsed, err := ParseShare(shares[1])
	require.NoError(t, err)
	assert.Equal(t, "backup-2024-q1", parsed.Token)
	assert.Equal(t, 2, parsed.Index)

	secret, err := scheme.Combine(shares[1:])
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", secret)
}

func TestShortSecretSkipsDiffusion(t *testing.T) {
	logger, logs := bufferLogger()
	scheme, err := New(2, 3, WithLogger(logger))
	require.NoError(t, err)

	shares, err := scheme.Split("abc", "")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "diffusion")

	logs.Reset()
	secret, err := scheme.Combine(shares[:2])
	require.NoError(t, err)
	assert.Equal(t, "abc", secret)
	assert.Contains(t, logs.String(), "diffusion")
}

func TestDiffusionMustMatch(t *testing.T) {
	on, err := New(2, 3, WithLogger(quietLogger()))
	require.NoError(t, err)
	off, err := New(2, 3, WithDiffusion(false), WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := off.Split("abcdefghij", "")
	require.NoError(t, err)

	secret, err := off.Combine(shares[:2])
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij", secret)

	secret, err = on.Combine(shares[:2])
	require.NoError(t, err)
	assert.NotEqual(t, "abcdefghij", secret)
}

func TestHexSecretPadding(t *testing.T) {
	logger, logs := bufferLogger()
	scheme, err := New(2, 2, WithHex(true), WithLogger(logger))
	require.NoError(t, err)

	shares, err := scheme.Split("abc", "")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "padding")
	for _, share := range shares {
		assert.Len(t, strings.Split(share, "-")[1], 4)
	}

	secret, err := scheme.Combine(shares)
	require.NoError(t, err)
	assert.Equal(t, "0abc", secret)
}

func TestNonPrintableSecret(t *testing.T) {
	logger, logs := bufferLogger()
	scheme, err := New(2, 2, WithLogger(logger))
	require.NoError(t, err)

	shares, err := scheme.Split("a\x01b\x7fcdefgh", "")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "non-ASCII")

	secret, err := scheme.Combine(shares)
	require.NoError(t, err)
	assert.Equal(t, "a.b.cdefgh", secret)
}

func TestIndexWidth(t *testing.T) {
	scheme, err := New(2, 10, WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := scheme.Split("abcdefgh", "t")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(shares[0], "t-01-"))
	assert.True(t, strings.HasPrefix(shares[9], "t-10-"))
}

func TestDeterministicRandom(t *testing.T) {
	split := func() []string {
		scheme, err := New(3, 5,
			WithRandom(rand.New(rand.NewSource(7))),
			WithLogger(quietLogger()))
		require.NoError(t, err)
		shares, err := scheme.Split("repeatable", "")
		require.NoError(t, err)
		return shares
	}

	assert.Equal(t, split(), split())
}

func TestSplitSharesAndCombineShares(t *testing.T) {
	scheme, err := New(2, 4, WithLogger(quietLogger()))
	require.NoError(t, err)

	shares, err := scheme.SplitShares("structured", "id")
	require.NoError(t, err)
	require.Len(t, shares, 4)
	for i, share := range shares {
		assert.Equal(t, i+1, share.Index)
		assert.Equal(t, uint(80), share.Degree)
		assert.Equal(t, "id", share.Token)
	}

	secret, err := scheme.CombineShares([]Share{shares[3], shares[1]})
	require.NoError(t, err)
	assert.Equal(t, "structured", secret)

	_, err = scheme.CombineShares([]Share{shares[0], {Index: 2, Degree: 80}})
	assert.ErrorIs(t, err, ErrInvalidSyntax)
}

func TestConcurrentUse(t *testing.T) {
	scheme, err := New(3, 5, WithLogger(quietLogger()))
	require.NoError(t, err)

	secrets := []string{"first secret", "second secret", "a third, longer secret"}

	var wg sync.WaitGroup
	errs := make(chan error, 4*len(secrets))
	for i := 0; i < 4; i++ {
		for _, want := range secrets {
			wg.Add(1)
			go func(want string) {
				defer wg.Done()
				shares, err := scheme.Split(want, "")
				if err != nil {
					errs <- err
					return
				}
				got, err := scheme.Combine(shares[2:])
				if err != nil {
					errs <- err
					return
				}
				if got != want {
					errs <- assert.AnError
				}
			}(want)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestHorner(t *testing.T) {
	f, err := gf2n.New(8)
	require.NoError(t, err)

	// x^2 + 3x + 5 at x = 2: 4 ^ 6 ^ 5 = 7
	y := horner(f, big.NewInt(2), []*big.Int{big.NewInt(5), big.NewInt(3)})
	assert.Equal(t, int64(7), y.Int64())

	// x + 9 at x = 4
	y = horner(f, big.NewInt(4), []*big.Int{big.NewInt(9)})
	assert.Equal(t, int64(13), y.Int64())
}
