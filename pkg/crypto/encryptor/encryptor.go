package encryptor

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of the payload key.
const KeySize = chacha20poly1305.KeySize

const keyInfo = "ssss seal payload key v1"

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey expands the master secret into a payload key with HKDF-SHA256.
// The salt binds the key to one group of sealed files.
func DeriveKey(master, salt []byte) ([]byte, error) {
	if len(master) == 0 {
		return nil, errors.New("empty master secret")
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, salt, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext with XChaCha20-Poly1305 under key. additionalData
// is authenticated but not stored.
// Format: [Nonce | Ciphertext | Tag]
func Encrypt(plaintext, key, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Decrypt reverses Encrypt. It fails if the ciphertext, key or additional
// data were altered.
func Decrypt(ciphertext, key, additionalData []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	nonce, actualCiphertext := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, actualCiphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("decryption/authentication failed: %w", err)
	}

	return plaintext, nil
}
