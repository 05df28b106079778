package driven

import "github.com/custodia-labs/sercha-basicauth/internal/core/domain"

// ClaimsDecoder reads the payload of an access token.
// This does NOT verify signatures - verification belongs to the backend.
type ClaimsDecoder interface {
	Decode(accessToken string) (*domain.TokenClaims, error)
}
