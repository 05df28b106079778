package mocks

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Ensure MockIdentityBackend implements IdentityBackend
var _ driven.IdentityBackend = (*MockIdentityBackend)(nil)

// Call names recorded by MockIdentityBackend
const (
	CallCheckEmail    = "CheckEmailExists"
	CallSignIn        = "SignIn"
	CallRegister      = "Register"
	CallRequestReset  = "RequestPasswordReset"
	CallCompleteReset = "CompletePasswordReset"
)

// MockIdentityBackend is a scriptable IdentityBackend for testing.
// Accounts are plain email/password pairs; the exported fields override results.
type MockIdentityBackend struct {
	mu       sync.Mutex
	accounts map[string]string
	calls    []string

	CheckErr            error
	SignInResponse      *domain.SignInResponse
	SignInErr           error
	RegisterStatus      int
	RegisterErr         error
	RequestResetErr     error
	CompleteResetResult bool
	CompleteResetErr    error
}

// NewMockIdentityBackend creates a MockIdentityBackend whose calls succeed by default
func NewMockIdentityBackend() *MockIdentityBackend {
	return &MockIdentityBackend{
		accounts:            make(map[string]string),
		RegisterStatus:      http.StatusOK,
		CompleteResetResult: true,
	}
}

// AddAccount registers an account
func (m *MockIdentityBackend) AddAccount(email, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[strings.ToLower(email)] = password
}

func (m *MockIdentityBackend) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallCheckEmail)
	if m.CheckErr != nil {
		return false, m.CheckErr
	}
	_, ok := m.accounts[strings.ToLower(email)]
	return ok, nil
}

func (m *MockIdentityBackend) SignIn(ctx context.Context, creds domain.Credentials) (*domain.SignInResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallSignIn)
	if m.SignInErr != nil {
		return nil, m.SignInErr
	}
	password, ok := m.accounts[strings.ToLower(creds.Email)]
	if !ok || password != creds.Password {
		return nil, &domain.AuthError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	if m.SignInResponse != nil {
		return m.SignInResponse, nil
	}
	return &domain.SignInResponse{
		AccessToken:  "access-" + creds.Email,
		RefreshToken: "refresh-" + creds.Email,
		TokenType:    "Bearer",
	}, nil
}

func (m *MockIdentityBackend) Register(ctx context.Context, req domain.RegistrationRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallRegister)
	if m.RegisterErr != nil {
		return 0, m.RegisterErr
	}
	if m.RegisterStatus == http.StatusOK {
		m.accounts[strings.ToLower(req.Email)] = req.Password
	}
	return m.RegisterStatus, nil
}

func (m *MockIdentityBackend) RequestPasswordReset(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallRequestReset)
	return m.RequestResetErr
}

func (m *MockIdentityBackend) CompletePasswordReset(ctx context.Context, req domain.PasswordResetRequest) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CallCompleteReset)
	if m.CompleteResetErr != nil {
		return false, m.CompleteResetErr
	}
	return m.CompleteResetResult, nil
}

// Helper methods for testing

// Calls returns the recorded call names in order
func (m *MockIdentityBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the named call was made
func (m *MockIdentityBackend) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}
