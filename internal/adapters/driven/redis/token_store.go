package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*TokenStore)(nil)

const (
	// Key prefix for session hashes
	sessionPrefix = "sercha:session:"

	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
)

// TokenStore implements driven.SessionStore using a Redis hash per profile.
// Both tokens live in one hash so a sign-in writes them in a single transaction.
type TokenStore struct {
	client *redis.Client
	key    string
}

// NewTokenStore creates a new Redis-backed TokenStore for the given profile
func NewTokenStore(client *redis.Client, profile string) *TokenStore {
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{
		client: client,
		key:    sessionPrefix + profile,
	}
}

// Connect parses a redis:// URL and verifies the server is reachable
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// SetTokens stores the access/refresh pair atomically
func (s *TokenStore) SetTokens(ctx context.Context, tokens domain.SessionTokens) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key,
			fieldAccessToken, tokens.AccessToken,
			fieldRefreshToken, tokens.RefreshToken,
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session tokens: %w", err)
	}
	return nil
}

// Tokens returns the stored pair, or domain.ErrNoSession if nothing is stored
func (s *TokenStore) Tokens(ctx context.Context) (*domain.SessionTokens, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get session tokens: %w", err)
	}
	if len(values) == 0 {
		return nil, domain.ErrNoSession
	}

	return &domain.SessionTokens{
		AccessToken:  values[fieldAccessToken],
		RefreshToken: values[fieldRefreshToken],
	}, nil
}

// ClearAccessToken removes the access token and leaves the refresh token in place
func (s *TokenStore) ClearAccessToken(ctx context.Context) error {
	if err := s.client.HDel(ctx, s.key, fieldAccessToken).Err(); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}
	return nil
}

// ClearRefreshToken removes the refresh token
func (s *TokenStore) ClearRefreshToken(ctx context.Context) error {
	if err := s.client.HDel(ctx, s.key, fieldRefreshToken).Err(); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// Ping checks if redis is reachable
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
