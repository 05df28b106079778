package identity

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-basicauth/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Ensure MemoryBackend implements IdentityBackend
var _ driven.IdentityBackend = (*MemoryBackend)(nil)

// MemoryConfig holds configuration for the in-process identity backend
type MemoryConfig struct {
	Tokens   *auth.Adapter
	TokenTTL time.Duration
	Logger   *slog.Logger
}

type account struct {
	subject      string
	email        string
	firstName    string
	lastName     string
	passwordHash string
	resetToken   string
}

// MemoryBackend is an in-process identity backend for local development and demos.
// It answers with the same statuses as the real basic-auth API.
type MemoryBackend struct {
	mu       sync.RWMutex
	accounts map[string]*account
	tokens   *auth.Adapter
	ttl      time.Duration
	logger   *slog.Logger

	emailDeliveryFailing bool
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend(cfg MemoryConfig) *MemoryBackend {
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = auth.NewAdapter(uuid.NewString())
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryBackend{
		accounts: make(map[string]*account),
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetEmailDeliveryFailing makes registration and reset requests report 424
// after the account change has been applied.
func (b *MemoryBackend) SetEmailDeliveryFailing(failing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emailDeliveryFailing = failing
}

// ResetToken returns the pending reset token for email, if one was issued.
func (b *MemoryBackend) ResetToken(email string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acc, ok := b.accounts[normalizeEmail(email)]
	if !ok || acc.resetToken == "" {
		return "", false
	}
	return acc.resetToken, true
}

// CheckEmailExists reports whether an account is registered for email.
func (b *MemoryBackend) CheckEmailExists(_ context.Context, email string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.accounts[normalizeEmail(email)]
	return ok, nil
}

// SignIn verifies the password and mints a token pair.
func (b *MemoryBackend) SignIn(_ context.Context, creds domain.Credentials) (*domain.SignInResponse, error) {
	// Copy under the lock; CompletePasswordReset rewrites the hash in place.
	b.mu.RLock()
	acc, ok := b.accounts[normalizeEmail(creds.Email)]
	var subject, email, passwordHash string
	if ok {
		subject, email, passwordHash = acc.subject, acc.email, acc.passwordHash
	}
	b.mu.RUnlock()

	if !ok || !b.tokens.VerifyPassword(creds.Password, passwordHash) {
		return nil, &domain.AuthError{Status: http.StatusUnauthorized, Message: domain.ErrInvalidCredentials.Error()}
	}

	now := time.Now()
	access, err := b.tokens.GenerateToken(&domain.TokenClaims{
		Subject:   subject,
		Email:     email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(b.ttl).Unix(),
	})
	if err != nil {
		return nil, &domain.AuthError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	return &domain.SignInResponse{
		AccessToken:    access,
		RefreshToken:   uuid.NewString(),
		TokenType:      "Bearer",
		ExpiryDuration: now.Add(b.ttl).UnixMilli(),
	}, nil
}

// Register creates an account. With email delivery failing the account is
// still created and 424 is returned.
func (b *MemoryBackend) Register(_ context.Context, req domain.RegistrationRequest) (int, error) {
	key := normalizeEmail(req.Email)
	if key == "" || req.Password == "" {
		return http.StatusBadRequest, &domain.AuthError{Status: http.StatusBadRequest, Message: domain.ErrInvalidInput.Error()}
	}

	hash, err := b.tokens.HashPassword(req.Password)
	if err != nil {
		return http.StatusInternalServerError, &domain.AuthError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[key]; exists {
		return http.StatusConflict, &domain.AuthError{Status: http.StatusConflict, Message: domain.ErrAlreadyExists.Error()}
	}
	b.accounts[key] = &account{
		subject:      uuid.NewString(),
		email:        key,
		firstName:    req.FirstName,
		lastName:     req.LastName,
		passwordHash: hash,
	}
	b.logger.Debug("account registered", "email", key)

	if b.emailDeliveryFailing {
		return domain.StatusFailedDependency, &domain.AuthError{
			Status:  domain.StatusFailedDependency,
			Message: "account created but confirmation email could not be sent",
		}
	}
	return http.StatusOK, nil
}

// RequestPasswordReset issues a reset token for email.
func (b *MemoryBackend) RequestPasswordReset(_ context.Context, email string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[normalizeEmail(email)]
	if !ok {
		return &domain.AuthError{Status: http.StatusNotFound, Message: domain.ErrNotFound.Error()}
	}
	acc.resetToken = uuid.NewString()
	b.logger.Info("password reset token issued", "email", acc.email, "reset_token", acc.resetToken)

	if b.emailDeliveryFailing {
		return &domain.AuthError{
			Status:  domain.StatusFailedDependency,
			Message: "reset link generated but email could not be sent",
		}
	}
	return nil
}

// CompletePasswordReset switches the password when the token matches.
// The token is single use.
func (b *MemoryBackend) CompletePasswordReset(_ context.Context, req domain.PasswordResetRequest) (bool, error) {
	if req.Password == "" || req.Password != req.ConfirmPassword {
		return false, &domain.AuthError{Status: http.StatusBadRequest, Message: "passwords do not match"}
	}

	hash, err := b.tokens.HashPassword(req.NewPassword())
	if err != nil {
		return false, &domain.AuthError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[normalizeEmail(req.Username)]
	if !ok || acc.resetToken == "" || acc.resetToken != req.Token {
		return false, &domain.AuthError{Status: http.StatusBadRequest, Message: domain.ErrTokenInvalid.Error()}
	}
	acc.passwordHash = hash
	acc.resetToken = ""
	return true, nil
}
