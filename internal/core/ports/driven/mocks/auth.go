package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Ensure MockClaimsDecoder implements ClaimsDecoder
var _ driven.ClaimsDecoder = (*MockClaimsDecoder)(nil)

// MockClaimsDecoder reads base64-encoded JSON claims instead of JWTs.
// NOT a token format - only for testing.
type MockClaimsDecoder struct{}

// NewMockClaimsDecoder creates a new MockClaimsDecoder
func NewMockClaimsDecoder() *MockClaimsDecoder {
	return &MockClaimsDecoder{}
}

// EncodeClaims builds a token the mock decoder understands
func EncodeClaims(claims *domain.TokenClaims) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode decodes a base64-encoded JSON token and returns claims
func (m *MockClaimsDecoder) Decode(token string) (*domain.TokenClaims, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	var claims domain.TokenClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, domain.ErrTokenInvalid
	}

	return &claims, nil
}
