package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

// setupTestTokenStore creates a test Redis client and TokenStore
func setupTestTokenStore(t *testing.T, profile string) (*TokenStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewTokenStore(client, profile), mr
}

func TestNewTokenStore_DefaultProfile(t *testing.T) {
	store, _ := setupTestTokenStore(t, "")
	if store.key != "sercha:session:default" {
		t.Errorf("expected default key, got %s", store.key)
	}
}

func TestTokenStore_EmptyStore(t *testing.T) {
	store, _ := setupTestTokenStore(t, "dev")

	_, err := store.Tokens(context.Background())
	if !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestTokenStore_SetAndGet(t *testing.T) {
	store, mr := setupTestTokenStore(t, "dev")
	ctx := context.Background()

	err := store.SetTokens(ctx, domain.SessionTokens{AccessToken: "A1", RefreshToken: "R1"})
	if err != nil {
		t.Fatalf("failed to set tokens: %v", err)
	}

	tokens, err := store.Tokens(ctx)
	if err != nil {
		t.Fatalf("failed to get tokens: %v", err)
	}
	if tokens.AccessToken != "A1" || tokens.RefreshToken != "R1" {
		t.Errorf("unexpected tokens: %+v", tokens)
	}

	if got := mr.HGet("sercha:session:dev", "access_token"); got != "A1" {
		t.Errorf("expected access token in hash, got %q", got)
	}
}

func TestTokenStore_SetReplacesPair(t *testing.T) {
	store, _ := setupTestTokenStore(t, "dev")
	ctx := context.Background()

	_ = store.SetTokens(ctx, domain.SessionTokens{AccessToken: "A1", RefreshToken: "R1"})
	_ = store.SetTokens(ctx, domain.SessionTokens{AccessToken: "A2", RefreshToken: "R2"})

	tokens, err := store.Tokens(ctx)
	if err != nil {
		t.Fatalf("failed to get tokens: %v", err)
	}
	if tokens.AccessToken != "A2" || tokens.RefreshToken != "R2" {
		t.Errorf("expected second pair, got %+v", tokens)
	}
}

func TestTokenStore_ClearAccessTokenKeepsRefresh(t *testing.T) {
	store, _ := setupTestTokenStore(t, "dev")
	ctx := context.Background()
	_ = store.SetTokens(ctx, domain.SessionTokens{AccessToken: "A1", RefreshToken: "R1"})

	if err := store.ClearAccessToken(ctx); err != nil {
		t.Fatalf("failed to clear access token: %v", err)
	}

	tokens, err := store.Tokens(ctx)
	if err != nil {
		t.Fatalf("failed to get tokens: %v", err)
	}
	if tokens.HasAccessToken() {
		t.Error("expected access token to be cleared")
	}
	if tokens.RefreshToken != "R1" {
		t.Errorf("expected refresh token to survive, got %q", tokens.RefreshToken)
	}

	// Clearing twice is a no-op
	if err := store.ClearAccessToken(ctx); err != nil {
		t.Errorf("expected second clear to succeed, got %v", err)
	}
}

func TestTokenStore_ClearBoth(t *testing.T) {
	store, _ := setupTestTokenStore(t, "dev")
	ctx := context.Background()
	_ = store.SetTokens(ctx, domain.SessionTokens{AccessToken: "A1", RefreshToken: "R1"})

	_ = store.ClearAccessToken(ctx)
	_ = store.ClearRefreshToken(ctx)

	_, err := store.Tokens(ctx)
	if !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected ErrNoSession after clearing both, got %v", err)
	}
}

func TestTokenStore_ProfilesAreIsolated(t *testing.T) {
	store, _ := setupTestTokenStore(t, "dev")
	other := NewTokenStore(store.client, "prod")
	ctx := context.Background()

	_ = store.SetTokens(ctx, domain.SessionTokens{AccessToken: "A1", RefreshToken: "R1"})

	_, err := other.Tokens(ctx)
	if !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected other profile to be empty, got %v", err)
	}
}

func TestTokenStore_ServerDown(t *testing.T) {
	store, mr := setupTestTokenStore(t, "dev")
	mr.Close()

	err := store.SetTokens(context.Background(), domain.SessionTokens{AccessToken: "A1"})
	if err == nil {
		t.Error("expected error when redis is down")
	}
	_, err = store.Tokens(context.Background())
	if err == nil || errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := Connect(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("expected connect to succeed: %v", err)
	}
	client.Close()

	if _, err := Connect(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}
