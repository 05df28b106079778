package console

import "github.com/custodia-labs/sercha-basicauth/internal/core/domain"

// messages is the English rendering of the message catalog
var messages = map[domain.MessageKey]string{
	domain.MsgUnauthorizedUser:         "You have entered an invalid email or password.",
	domain.MsgEmailNotFound:            "No account is registered for this email.",
	domain.MsgEmailFound:               "An account with this email already exists.",
	domain.MsgUnexpectedServerResponse: "The server returned an unexpected response.",
	domain.MsgEmailVerificationError:   "The confirmation email could not be sent.",
	domain.MsgForgotPasswordEmailError: "The password reset email could not be sent.",
	domain.MsgSessionStoreError:        "Signed in, but the session could not be saved.",
	domain.MsgCreateUserAccount:        "Account created successfully.",
	domain.MsgResetPasswordSuccess:     "Password reset successfully.",
	domain.MsgEmailConfirmation:        "Check your inbox to confirm your email address.",
}

// Message renders key as text, falling back to the key itself
func Message(key domain.MessageKey) string {
	if text, ok := messages[key]; ok {
		return text
	}
	return string(key)
}
