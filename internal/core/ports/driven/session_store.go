package driven

import (
	"context"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

// SessionStore persists the client's session tokens across restarts.
// It is the sole owner of the token lifecycle on the client side.
type SessionStore interface {
	// SetTokens stores the access and refresh token as one atomic write
	SetTokens(ctx context.Context, tokens domain.SessionTokens) error

	// Tokens returns the stored pair, or domain.ErrNoSession when empty
	Tokens(ctx context.Context) (*domain.SessionTokens, error)

	// ClearAccessToken removes the access token. Clearing an empty store is not an error.
	ClearAccessToken(ctx context.Context) error

	// ClearRefreshToken removes the refresh token. Clearing an empty store is not an error.
	ClearRefreshToken(ctx context.Context) error
}
