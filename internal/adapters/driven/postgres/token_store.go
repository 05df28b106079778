package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*TokenStore)(nil)

const (
	columnAccessToken  = "access_token"
	columnRefreshToken = "refresh_token"
)

// TokenStore implements driven.SessionStore using PostgreSQL.
// Both tokens live in one row per profile, so SetTokens is a single upsert.
type TokenStore struct {
	db      *DB
	profile string
	sealer  *TokenSealer
}

// NewTokenStore creates a new TokenStore.
// A nil sealer stores tokens unencrypted.
func NewTokenStore(db *DB, profile string, sealer *TokenSealer) *TokenStore {
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{db: db, profile: profile, sealer: sealer}
}

func (s *TokenStore) seal(column, token string) ([]byte, error) {
	if token == "" {
		return nil, nil
	}
	if s.sealer == nil {
		return []byte(token), nil
	}
	return s.sealer.Seal(s.profile, column, token)
}

func (s *TokenStore) open(column string, blob []byte) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}
	if s.sealer == nil {
		return string(blob), nil
	}
	return s.sealer.Open(s.profile, column, blob)
}

// SetTokens stores the access/refresh pair
func (s *TokenStore) SetTokens(ctx context.Context, tokens domain.SessionTokens) error {
	access, err := s.seal(columnAccessToken, tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	refresh, err := s.seal(columnRefreshToken, tokens.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	query := `
		INSERT INTO session_tokens (profile, access_token, refresh_token, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (profile) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, s.profile, access, refresh); err != nil {
		return fmt.Errorf("failed to save session tokens: %w", err)
	}
	return nil
}

// Tokens returns the stored pair, or domain.ErrNoSession if nothing is stored
func (s *TokenStore) Tokens(ctx context.Context) (*domain.SessionTokens, error) {
	query := `
		SELECT access_token, refresh_token
		FROM session_tokens
		WHERE profile = $1
	`

	var access, refresh []byte
	err := s.db.QueryRowContext(ctx, query, s.profile).Scan(&access, &refresh)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session tokens: %w", err)
	}
	if len(access) == 0 && len(refresh) == 0 {
		return nil, domain.ErrNoSession
	}

	var tokens domain.SessionTokens
	if tokens.AccessToken, err = s.open(columnAccessToken, access); err != nil {
		return nil, fmt.Errorf("failed to open access token: %w", err)
	}
	if tokens.RefreshToken, err = s.open(columnRefreshToken, refresh); err != nil {
		return nil, fmt.Errorf("failed to open refresh token: %w", err)
	}
	return &tokens, nil
}

// ClearAccessToken removes the access token and leaves the refresh token in place
func (s *TokenStore) ClearAccessToken(ctx context.Context) error {
	return s.clear(ctx, columnAccessToken)
}

// ClearRefreshToken removes the refresh token
func (s *TokenStore) ClearRefreshToken(ctx context.Context) error {
	return s.clear(ctx, columnRefreshToken)
}

func (s *TokenStore) clear(ctx context.Context, column string) error {
	// column is one of the two constants above, never user input
	query := fmt.Sprintf(`UPDATE session_tokens SET %s = NULL, updated_at = NOW() WHERE profile = $1`, column)
	if _, err := s.db.ExecContext(ctx, query, s.profile); err != nil {
		return fmt.Errorf("failed to clear %s: %w", column, err)
	}
	return nil
}
