package driven

import (
	"context"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

// IdentityBackend is the remote account service used by the basic-auth flows.
// Unreachable backends fail with *domain.TransportError, rejected calls with
// *domain.AuthError carrying the HTTP status.
type IdentityBackend interface {
	// CheckEmailExists reports whether an account is registered for email
	CheckEmailExists(ctx context.Context, email string) (bool, error)

	// SignIn exchanges credentials for a token pair
	SignIn(ctx context.Context, creds domain.Credentials) (*domain.SignInResponse, error)

	// Register creates an account and returns the backend status code.
	// A 424 error means the account exists but the confirmation email failed.
	Register(ctx context.Context, req domain.RegistrationRequest) (int, error)

	// RequestPasswordReset asks the backend to mail a reset link
	RequestPasswordReset(ctx context.Context, email string) error

	// CompletePasswordReset sets the new password using the reset token
	CompletePasswordReset(ctx context.Context, req domain.PasswordResetRequest) (bool, error)
}
