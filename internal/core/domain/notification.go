package domain

// NotificationKind is the presentation category of a notification
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyInfo    NotificationKind = "info"
	NotifyError   NotificationKind = "error"
)

// MessageKey identifies an entry in the UI message catalog.
// Rendering the text is the presentation layer's job.
type MessageKey string

const (
	MsgUnauthorizedUser         MessageKey = "api-error-messages.unauthorized-user"
	MsgEmailNotFound            MessageKey = "api-error-messages.email-not-found"
	MsgEmailFound               MessageKey = "api-error-messages.email-found"
	MsgUnexpectedServerResponse MessageKey = "api-error-messages.unexpected-server-response"
	MsgEmailVerificationError   MessageKey = "api-error-messages.email-verification-err"
	MsgForgotPasswordEmailError MessageKey = "api-error-messages.forgot-password-email-err"
	MsgSessionStoreError        MessageKey = "api-error-messages.session-store-error"
	MsgCreateUserAccount        MessageKey = "api-success-messages.create-user-account"
	MsgResetPasswordSuccess     MessageKey = "api-success-messages.reset-password-success"
	MsgEmailConfirmation        MessageKey = "label.email-confirmation"
)

// Notification is one event handed to the notification sink
type Notification struct {
	Kind  NotificationKind `json:"kind"`
	Key   MessageKey       `json:"key"`
	Error string           `json:"error,omitempty"`
}
