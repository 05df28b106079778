package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Ensure MockSessionStore implements SessionStore
var _ driven.SessionStore = (*MockSessionStore)(nil)

// MockSessionStore is an in-memory SessionStore for testing
type MockSessionStore struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string

	// SetErr is returned by SetTokens when non-nil
	SetErr error
	// ClearErr is returned by the Clear methods when non-nil
	ClearErr error

	setCalls   int
	clearCalls int
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

func (m *MockSessionStore) SetTokens(ctx context.Context, tokens domain.SessionTokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.accessToken = tokens.AccessToken
	m.refreshToken = tokens.RefreshToken
	return nil
}

func (m *MockSessionStore) Tokens(ctx context.Context) (*domain.SessionTokens, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.accessToken == "" && m.refreshToken == "" {
		return nil, domain.ErrNoSession
	}
	return &domain.SessionTokens{
		AccessToken:  m.accessToken,
		RefreshToken: m.refreshToken,
	}, nil
}

func (m *MockSessionStore) ClearAccessToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.accessToken = ""
	return nil
}

func (m *MockSessionStore) ClearRefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.refreshToken = ""
	return nil
}

// Helper methods for testing

// AccessToken returns the stored access token
func (m *MockSessionStore) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken
}

// RefreshToken returns the stored refresh token
func (m *MockSessionStore) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken
}

// SetCalls returns how many times SetTokens was called
func (m *MockSessionStore) SetCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.setCalls
}

// ClearCalls returns how many times a Clear method was called
func (m *MockSessionStore) ClearCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clearCalls
}

// Touched reports whether any mutation was attempted
func (m *MockSessionStore) Touched() bool {
	return m.SetCalls() > 0 || m.ClearCalls() > 0
}

func (m *MockSessionStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessToken = ""
	m.refreshToken = ""
	m.SetErr = nil
	m.ClearErr = nil
	m.setCalls = 0
	m.clearCalls = 0
}
