package postgres

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// sealVersion is the version byte of the sealed token format
	sealVersion = 0x01

	// nonceSize is the AES-GCM nonce size
	nonceSize = 12

	// keySize is the required key size for AES-256
	keySize = 32
)

var (
	// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

	// ErrInvalidBlobSize is returned when the sealed blob is too small.
	ErrInvalidBlobSize = errors.New("sealed token is too small")

	// ErrUnsupportedVersion is returned when the blob version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported sealed token version")

	// ErrDecryptionFailed is returned when the key is wrong, the blob is
	// corrupted, or the blob was sealed for another profile or column.
	ErrDecryptionFailed = errors.New("failed to open sealed token")
)

// TokenSealer encrypts tokens at rest with AES-256-GCM.
// Format: version(1) || nonce(12) || ciphertext(N).
// The profile and column name are bound as additional data, so a blob
// copied to another row or column does not open.
type TokenSealer struct {
	gcm cipher.AEAD
}

// NewTokenSealer creates a sealer with the given 32-byte key.
func NewTokenSealer(key []byte) (*TokenSealer, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &TokenSealer{gcm: gcm}, nil
}

// NewTokenSealerFromHex creates a sealer from a hex-encoded 32-byte key.
func NewTokenSealerFromHex(hexKey string) (*TokenSealer, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	return NewTokenSealer(key)
}

func additionalData(profile, column string) []byte {
	return []byte(profile + "\x00" + column)
}

// Seal encrypts token for the given profile and column.
func (s *TokenSealer) Seal(profile, column, token string) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nil, nonce, []byte(token), additionalData(profile, column))

	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = sealVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return blob, nil
}

// Open decrypts a blob produced by Seal for the same profile and column.
func (s *TokenSealer) Open(profile, column string, blob []byte) (string, error) {
	minSize := 1 + nonceSize + s.gcm.Overhead()
	if len(blob) < minSize {
		return "", ErrInvalidBlobSize
	}

	if blob[0] != sealVersion {
		return "", fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, blob[0])
	}

	nonce := blob[1 : 1+nonceSize]
	ciphertext := blob[1+nonceSize:]

	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, additionalData(profile, column))
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
