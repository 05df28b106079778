package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
)

// Ensure sessionService implements SessionService
var _ driving.SessionService = (*sessionService)(nil)

// sessionService implements the SessionService interface
type sessionService struct {
	sessions driven.SessionStore
	decoder  driven.ClaimsDecoder
}

// NewSessionService creates a new SessionService
func NewSessionService(sessions driven.SessionStore, decoder driven.ClaimsDecoder) driving.SessionService {
	return &sessionService{
		sessions: sessions,
		decoder:  decoder,
	}
}

// Current returns the decoded claims of the stored access token
func (s *sessionService) Current(ctx context.Context) (*domain.SessionInfo, error) {
	tokens, err := s.sessions.Tokens(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session tokens: %w", err)
	}
	if !tokens.HasAccessToken() {
		return nil, domain.ErrNoSession
	}

	claims, err := s.decoder.Decode(tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	return &domain.SessionInfo{
		Claims:          claims,
		HasRefreshToken: tokens.RefreshToken != "",
	}, nil
}
