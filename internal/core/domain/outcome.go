package domain

// Flow names one user-triggered authentication operation
type Flow string

const (
	FlowLogin          Flow = "login"
	FlowRegister       Flow = "register"
	FlowForgotPassword Flow = "forgot_password"
	FlowResetPassword  Flow = "reset_password"
	FlowLogout         Flow = "logout"
)

// OutcomeKind tags a FlowOutcome
type OutcomeKind string

const (
	OutcomeLoginSucceeded             OutcomeKind = "login_succeeded"
	OutcomeLoginFailed                OutcomeKind = "login_failed"
	OutcomeRegistrationSucceeded      OutcomeKind = "registration_succeeded"
	OutcomeRegistrationFailed         OutcomeKind = "registration_failed"
	OutcomePasswordResetRequested     OutcomeKind = "password_reset_requested"
	OutcomePasswordResetRequestFailed OutcomeKind = "password_reset_request_failed"
	OutcomePasswordResetCompleted     OutcomeKind = "password_reset_completed"
	OutcomePasswordResetFailed        OutcomeKind = "password_reset_failed"
	OutcomeLoggedOut                  OutcomeKind = "logged_out"
)

// IsFailure reports whether the kind is one of the failure variants
func (k OutcomeKind) IsFailure() bool {
	switch k {
	case OutcomeLoginFailed,
		OutcomeRegistrationFailed,
		OutcomePasswordResetRequestFailed,
		OutcomePasswordResetFailed:
		return true
	default:
		return false
	}
}

// FailureReason classifies why a flow failed
type FailureReason string

const (
	ReasonNone                     FailureReason = ""
	ReasonUnauthorized             FailureReason = "unauthorized"
	ReasonEmailNotFound            FailureReason = "email_not_found"
	ReasonEmailFound               FailureReason = "email_found"
	ReasonUnexpectedServerResponse FailureReason = "unexpected_server_response"
	ReasonEmailVerificationError   FailureReason = "email_verification_error"
	ReasonResetLinkError           FailureReason = "reset_link_error"
	ReasonSessionStoreError        FailureReason = "session_store_error"
)

// FlowOutcome is the terminal signal of a flow. Ephemeral, never persisted.
type FlowOutcome struct {
	Kind     OutcomeKind   `json:"kind"`
	Reason   FailureReason `json:"reason,omitempty"`
	Identity *Identity     `json:"identity,omitempty"`
}

// Succeeded builds a success outcome
func Succeeded(kind OutcomeKind) FlowOutcome {
	return FlowOutcome{Kind: kind}
}

// Failed builds a failure outcome with a classified reason
func Failed(kind OutcomeKind, reason FailureReason) FlowOutcome {
	return FlowOutcome{Kind: kind, Reason: reason}
}

// LoginSucceeded builds the login success outcome carrying the identity
func LoginSucceeded(identity Identity) FlowOutcome {
	return FlowOutcome{Kind: OutcomeLoginSucceeded, Identity: &identity}
}

// FlowResult collects the outcomes emitted by one flow invocation.
// A partially successful registration emits two outcomes.
type FlowResult struct {
	Flow     Flow          `json:"flow"`
	FlowID   string        `json:"flow_id"`
	Outcomes []FlowOutcome `json:"outcomes"`
}

// Last returns the final outcome of the invocation
func (r *FlowResult) Last() FlowOutcome {
	if len(r.Outcomes) == 0 {
		return FlowOutcome{}
	}
	return r.Outcomes[len(r.Outcomes)-1]
}

// Has reports whether an outcome of the given kind was emitted
func (r *FlowResult) Has(kind OutcomeKind) bool {
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			return true
		}
	}
	return false
}

// Failed reports whether the invocation ended on a failure outcome
func (r *FlowResult) Failed() bool {
	return r.Last().Kind.IsFailure()
}

// Reason returns the reason of the first failure outcome, if any
func (r *FlowResult) Reason() FailureReason {
	for _, o := range r.Outcomes {
		if o.Kind.IsFailure() {
			return o.Reason
		}
	}
	return ReasonNone
}
