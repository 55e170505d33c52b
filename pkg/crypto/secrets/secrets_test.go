package secrets

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecret(t *testing.T) {
	s, err := NewSecret(MasterSize)
	require.NoError(t, err)
	assert.Equal(t, MasterSize, s.Len())
	assert.Len(t, s.Hex(), 2*MasterSize)

	_, err = NewSecret(0)
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestReadSecretShortSource(t *testing.T) {
	_, err := ReadSecret(bytes.NewReader([]byte{1, 2, 3}), 4)
	assert.Error(t, err)
}

func TestHexRoundTrip(t *testing.T) {
	s, err := ReadSecret(bytes.NewReader([]byte{0x00, 0x0f, 0xa0, 0xff}), 4)
	require.NoError(t, err)
	assert.Equal(t, "000fa0ff", s.Hex())

	back, err := FromHex(s.Hex(), 4)
	require.NoError(t, err)
	assert.Equal(t, s.Bytes(), back.Bytes())

	_, err = FromHex("000fa0", 4)
	assert.ErrorIs(t, err, ErrInvalidSecret)

	_, err = FromHex(strings.Repeat("zz", 4), 4)
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestDestroy(t *testing.T) {
	s, err := NewSecret(16)
	require.NoError(t, err)

	raw := s.Bytes()
	s.Destroy()
	assert.Equal(t, make([]byte, 16), raw)
	assert.Nil(t, s.Bytes())
	assert.Zero(t, s.Len())

	// Idempotent.
	s.Destroy()
}
