package postgres

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, keySize)
}

func TestTokenSealer_RoundTrip(t *testing.T) {
	sealer, err := NewTokenSealer(testKey())
	if err != nil {
		t.Fatalf("failed to create sealer: %v", err)
	}

	tokens := []string{"", "A1", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1In0.sig"}
	for _, token := range tokens {
		blob, err := sealer.Seal("dev", "access_token", token)
		if err != nil {
			t.Fatalf("failed to seal %q: %v", token, err)
		}
		if token != "" && bytes.Contains(blob, []byte(token)) {
			t.Errorf("sealed blob contains plaintext %q", token)
		}

		got, err := sealer.Open("dev", "access_token", blob)
		if err != nil {
			t.Fatalf("failed to open %q: %v", token, err)
		}
		if got != token {
			t.Errorf("expected %q, got %q", token, got)
		}
	}
}

func TestTokenSealer_InvalidKeySize(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33} {
		_, err := NewTokenSealer(make([]byte, size))
		if !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("size %d: expected ErrInvalidKeySize, got %v", size, err)
		}
	}
}

func TestNewTokenSealerFromHex(t *testing.T) {
	if _, err := NewTokenSealerFromHex(hex.EncodeToString(testKey())); err != nil {
		t.Errorf("expected valid hex key, got %v", err)
	}
	if _, err := NewTokenSealerFromHex("zz"); err == nil {
		t.Error("expected error for invalid hex")
	}
	if _, err := NewTokenSealerFromHex("abcd"); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestTokenSealer_OpenInvalidBlob(t *testing.T) {
	sealer, _ := NewTokenSealer(testKey())

	if _, err := sealer.Open("dev", "access_token", []byte{sealVersion, 1, 2}); !errors.Is(err, ErrInvalidBlobSize) {
		t.Errorf("expected ErrInvalidBlobSize, got %v", err)
	}

	blob, _ := sealer.Seal("dev", "access_token", "A1")
	blob[0] = 0x7f
	if _, err := sealer.Open("dev", "access_token", blob); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestTokenSealer_BoundToProfileAndColumn(t *testing.T) {
	sealer, _ := NewTokenSealer(testKey())
	blob, _ := sealer.Seal("dev", "access_token", "A1")

	if _, err := sealer.Open("prod", "access_token", blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected other profile to fail, got %v", err)
	}
	if _, err := sealer.Open("dev", "refresh_token", blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected other column to fail, got %v", err)
	}
}

func TestTokenSealer_WrongKey(t *testing.T) {
	sealer1, _ := NewTokenSealer(testKey())
	sealer2, _ := NewTokenSealer(bytes.Repeat([]byte{0x24}, keySize))

	blob, _ := sealer1.Seal("dev", "access_token", "A1")
	if _, err := sealer2.Open("dev", "access_token", blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestTokenSealer_UniqueNonce(t *testing.T) {
	sealer, _ := NewTokenSealer(testKey())

	a, _ := sealer.Seal("dev", "access_token", "A1")
	b, _ := sealer.Seal("dev", "access_token", "A1")
	if bytes.Equal(a, b) {
		t.Error("expected different blobs for the same token")
	}
}
