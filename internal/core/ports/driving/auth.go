package driving

import (
	"context"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

// AuthFlowService orchestrates the basic-auth flows.
// No method returns an error: every path ends in a classified outcome.
type AuthFlowService interface {
	// HandleLogin checks the email is registered, signs in and stores the tokens
	HandleLogin(ctx context.Context, email, password string) *domain.FlowResult

	// HandleRegister checks the email is free and creates the account
	HandleRegister(ctx context.Context, req domain.RegistrationRequest) *domain.FlowResult

	// HandleForgotPassword asks the backend to send a reset link
	HandleForgotPassword(ctx context.Context, email string) *domain.FlowResult

	// HandleResetPassword completes a password reset
	HandleResetPassword(ctx context.Context, req domain.PasswordResetRequest) *domain.FlowResult

	// HandleLogout clears the access token and returns to sign-in
	HandleLogout(ctx context.Context) *domain.FlowResult
}

// SessionService inspects the locally stored session
type SessionService interface {
	// Current returns the decoded claims of the stored access token
	Current(ctx context.Context) (*domain.SessionInfo, error)
}
