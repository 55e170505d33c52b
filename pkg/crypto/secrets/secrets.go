package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// MasterSize is the length of the master secret that seal splits across
// files. In hex it is a 256-bit field element.
const MasterSize = 32

var ErrInvalidSecret = errors.New("invalid secret encoding")

// Secret wraps a byte slice that contains sensitive data.
// It provides a mechanism to zero out the memory when no longer needed.
type Secret struct {
	data []byte
}

// NewSecret reads size bytes from crypto/rand.
func NewSecret(size int) (*Secret, error) {
	return ReadSecret(rand.Reader, size)
}

// ReadSecret reads size bytes from r.
func ReadSecret(r io.Reader, size int) (*Secret, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidSecret, size)
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to generate random secret: %w", err)
	}
	return &Secret{data: key}, nil
}

// FromHex decodes a secret rendered by Hex. The result must be exactly size
// bytes long.
func FromHex(s string, size int) (*Secret, error) {
	if len(s) != 2*size {
		return nil, fmt.Errorf("%w: want %d hex digits, got %d", ErrInvalidSecret, 2*size, len(s))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return &Secret{data: data}, nil
}

// Bytes returns the raw bytes of the secret.
// Use with caution and ensure the Secret is destroyed after use.
func (s *Secret) Bytes() []byte {
	return s.data
}

// Hex returns the secret as lower-case hex, two digits per byte.
func (s *Secret) Hex() string {
	return hex.EncodeToString(s.data)
}

// Len returns the number of bytes held.
func (s *Secret) Len() int {
	return len(s.data)
}

// Destroy overwrites the secret data with zeros. It is idempotent.
func (s *Secret) Destroy() {
	if s.data != nil {
		clear(s.data)
		s.data = nil
	}
}
