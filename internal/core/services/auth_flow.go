package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
)

// Ensure authFlowService implements AuthFlowService
var _ driving.AuthFlowService = (*authFlowService)(nil)

// LoginCallbacks are the caller's hooks for HandleLogin.
// Exactly one of them runs per invocation.
type LoginCallbacks struct {
	OnSuccess func(identity domain.Identity)
	OnFailure func()
}

// AuthFlowConfig holds dependencies for the auth flow controller.
// Everything except LogoutPolicy, Observer and Logger is required.
type AuthFlowConfig struct {
	Backend      driven.IdentityBackend
	Sessions     driven.SessionStore
	Notifier     driven.NotificationSink
	Navigator    driven.NavigationSink
	Loading      driven.LoadingIndicator
	Callbacks    LoginCallbacks
	LogoutPolicy domain.LogoutPolicy
	Observer     driven.FlowObserver
	Logger       *slog.Logger
}

// authFlowService is the basic-auth state machine.
// Each flow is a short linear sequence ending in a classified outcome:
//  1. Acquire the busy guard (register acquires it after the email check)
//  2. Call the identity backend
//  3. Interpret the result or classify the error
//  4. Mutate the session store, notify, navigate
//  5. Release the busy guard
type authFlowService struct {
	backend      driven.IdentityBackend
	sessions     driven.SessionStore
	notifier     driven.NotificationSink
	navigator    driven.NavigationSink
	busy         *busyTracker
	callbacks    LoginCallbacks
	logoutPolicy domain.LogoutPolicy
	observer     driven.FlowObserver
	logger       *slog.Logger
}

// NewAuthFlowService creates the auth flow controller.
// Missing collaborators are reported here rather than at call time.
func NewAuthFlowService(cfg AuthFlowConfig) (driving.AuthFlowService, error) {
	missing := func(name string) error {
		return fmt.Errorf("%w: %s", domain.ErrMissingDependency, name)
	}
	switch {
	case cfg.Backend == nil:
		return nil, missing("identity backend")
	case cfg.Sessions == nil:
		return nil, missing("session store")
	case cfg.Notifier == nil:
		return nil, missing("notification sink")
	case cfg.Navigator == nil:
		return nil, missing("navigation sink")
	case cfg.Loading == nil:
		return nil, missing("loading indicator")
	case cfg.Callbacks.OnSuccess == nil:
		return nil, missing("login success callback")
	case cfg.Callbacks.OnFailure == nil:
		return nil, missing("login failure callback")
	}

	policy := cfg.LogoutPolicy
	if policy == "" {
		policy = domain.RetainRefreshToken
	}
	if policy != domain.RetainRefreshToken && policy != domain.ClearRefreshToken {
		return nil, fmt.Errorf("%w: logout policy %q", domain.ErrInvalidInput, policy)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observer := cfg.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	return &authFlowService{
		backend:      cfg.Backend,
		sessions:     cfg.Sessions,
		notifier:     cfg.Notifier,
		navigator:    cfg.Navigator,
		busy:         newBusyTracker(cfg.Loading),
		callbacks:    cfg.Callbacks,
		logoutPolicy: policy,
		observer:     observer,
		logger:       logger,
	}, nil
}

// flowRun accumulates the outcomes of one invocation
type flowRun struct {
	result   *domain.FlowResult
	logger   *slog.Logger
	observer driven.FlowObserver
	started  time.Time
}

func (s *authFlowService) begin(flow domain.Flow) *flowRun {
	id := uuid.NewString()
	run := &flowRun{
		result:   &domain.FlowResult{Flow: flow, FlowID: id},
		logger:   s.logger.With("flow", string(flow), "flow_id", id),
		observer: s.observer,
		started:  time.Now(),
	}
	run.logger.Debug("flow started")
	return run
}

func (r *flowRun) emit(outcome domain.FlowOutcome) {
	r.result.Outcomes = append(r.result.Outcomes, outcome)
	r.observer.OutcomeEmitted(r.result.Flow, outcome)
	if outcome.Kind.IsFailure() {
		r.logger.Warn("flow failed", "outcome", string(outcome.Kind), "reason", string(outcome.Reason))
		return
	}
	r.logger.Info("flow succeeded", "outcome", string(outcome.Kind))
}

func (r *flowRun) finish() {
	elapsed := time.Since(r.started)
	r.observer.FlowCompleted(r.result.Flow, elapsed)
	r.logger.Debug("flow finished", "elapsed", elapsed)
}

type noopObserver struct{}

func (noopObserver) OutcomeEmitted(domain.Flow, domain.FlowOutcome) {}
func (noopObserver) FlowCompleted(domain.Flow, time.Duration) {}

// HandleLogin signs in after confirming the email is registered.
func (s *authFlowService) HandleLogin(ctx context.Context, email, password string) *domain.FlowResult {
	run := s.begin(domain.FlowLogin)
	defer run.finish()
	release := s.busy.Acquire()
	defer release()

	// Step 1: Existence gate
	exists, err := s.backend.CheckEmailExists(ctx, email)
	if err != nil {
		return s.failLogin(run, domain.ReasonUnauthorized, domain.MsgUnauthorizedUser, err)
	}
	if !exists {
		return s.failLogin(run, domain.ReasonEmailNotFound, domain.MsgEmailNotFound, nil)
	}

	// Step 2: Sign in
	resp, err := s.backend.SignIn(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		return s.failLogin(run, domain.ReasonUnauthorized, domain.MsgUnauthorizedUser, err)
	}
	var tokens domain.SessionTokens
	if resp != nil {
		tokens = resp.Tokens()
	}
	if !tokens.HasAccessToken() {
		return s.failLogin(run, domain.ReasonUnauthorized, domain.MsgUnauthorizedUser, nil)
	}

	// Step 3: Persist the pair before anyone sees the identity
	if err := s.sessions.SetTokens(ctx, tokens); err != nil {
		return s.failLogin(run, domain.ReasonSessionStoreError, domain.MsgSessionStoreError, err)
	}

	identity := domain.NewIdentity(tokens.AccessToken, email)
	run.emit(domain.LoginSucceeded(identity))
	s.callbacks.OnSuccess(identity)
	return run.result
}

func (s *authFlowService) failLogin(run *flowRun, reason domain.FailureReason, key domain.MessageKey, err error) *domain.FlowResult {
	if err != nil {
		run.logger.Debug("login step failed", "error", err)
	}
	run.emit(domain.Failed(domain.OutcomeLoginFailed, reason))
	s.notifier.Notify(domain.NotifyError, key, err)
	s.callbacks.OnFailure()
	return run.result
}

// HandleRegister creates an account when the email is not in use.
// The busy guard is only taken once the email check has passed.
func (s *authFlowService) HandleRegister(ctx context.Context, req domain.RegistrationRequest) *domain.FlowResult {
	run := s.begin(domain.FlowRegister)
	defer run.finish()

	exists, err := s.backend.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return s.failRegister(run, domain.ReasonUnexpectedServerResponse, domain.MsgUnexpectedServerResponse, err)
	}
	if exists {
		return s.failRegister(run, domain.ReasonEmailFound, domain.MsgEmailFound, nil)
	}

	release := s.busy.Acquire()
	defer release()

	status, err := s.backend.Register(ctx, req)
	switch {
	case err != nil && domain.IsFailedDependency(err):
		// Account exists, confirmation email did not go out
		run.emit(domain.Succeeded(domain.OutcomeRegistrationSucceeded))
		s.notifier.Notify(domain.NotifySuccess, domain.MsgCreateUserAccount, nil)
		s.failRegister(run, domain.ReasonEmailVerificationError, domain.MsgEmailVerificationError, err)
		s.navigator.NavigateTo(domain.RouteSignIn)
	case err != nil:
		s.failRegister(run, domain.ReasonUnexpectedServerResponse, domain.MsgUnexpectedServerResponse, err)
	case status == http.StatusOK:
		run.emit(domain.Succeeded(domain.OutcomeRegistrationSucceeded))
		s.notifier.Notify(domain.NotifySuccess, domain.MsgCreateUserAccount, nil)
		s.notifier.Notify(domain.NotifyInfo, domain.MsgEmailConfirmation, nil)
		s.navigator.NavigateTo(domain.RouteSignIn)
	default:
		run.logger.Debug("unexpected register status", "status", status)
		s.failRegister(run, domain.ReasonUnexpectedServerResponse, domain.MsgUnexpectedServerResponse, nil)
	}

	return run.result
}

func (s *authFlowService) failRegister(run *flowRun, reason domain.FailureReason, key domain.MessageKey, err error) *domain.FlowResult {
	if err != nil {
		run.logger.Debug("register step failed", "error", err)
	}
	run.emit(domain.Failed(domain.OutcomeRegistrationFailed, reason))
	s.notifier.Notify(domain.NotifyError, key, err)
	return run.result
}

// HandleForgotPassword requests a reset link for email.
// A 424 means the link was generated but could not be mailed.
func (s *authFlowService) HandleForgotPassword(ctx context.Context, email string) *domain.FlowResult {
	run := s.begin(domain.FlowForgotPassword)
	defer run.finish()
	release := s.busy.Acquire()
	defer release()

	err := s.backend.RequestPasswordReset(ctx, email)
	if err == nil {
		run.emit(domain.Succeeded(domain.OutcomePasswordResetRequested))
		return run.result
	}

	run.logger.Debug("reset link request failed", "error", err)
	if domain.IsFailedDependency(err) {
		run.emit(domain.Failed(domain.OutcomePasswordResetRequestFailed, domain.ReasonResetLinkError))
		s.notifier.Notify(domain.NotifyError, domain.MsgForgotPasswordEmailError, nil)
		return run.result
	}

	run.emit(domain.Failed(domain.OutcomePasswordResetRequestFailed, domain.ReasonEmailNotFound))
	s.notifier.Notify(domain.NotifyError, domain.MsgEmailNotFound, nil)
	return run.result
}

// HandleResetPassword completes a reset with the token from the reset link.
func (s *authFlowService) HandleResetPassword(ctx context.Context, req domain.PasswordResetRequest) *domain.FlowResult {
	run := s.begin(domain.FlowResetPassword)
	defer run.finish()
	release := s.busy.Acquire()
	defer release()

	ok, err := s.backend.CompletePasswordReset(ctx, req)
	if err != nil || !ok {
		if err != nil {
			run.logger.Debug("password reset failed", "error", err)
		}
		run.emit(domain.Failed(domain.OutcomePasswordResetFailed, domain.ReasonUnexpectedServerResponse))
		s.notifier.Notify(domain.NotifyError, domain.MsgUnexpectedServerResponse, err)
		return run.result
	}

	run.emit(domain.Succeeded(domain.OutcomePasswordResetCompleted))
	s.notifier.Notify(domain.NotifySuccess, domain.MsgResetPasswordSuccess, nil)
	return run.result
}

// HandleLogout clears the access token and sends the user to sign-in.
// Store failures are logged; the user is signed out of the UI regardless.
func (s *authFlowService) HandleLogout(ctx context.Context) *domain.FlowResult {
	run := s.begin(domain.FlowLogout)
	defer run.finish()

	if err := s.sessions.ClearAccessToken(ctx); err != nil {
		run.logger.Error("failed to clear access token", "error", err)
	}
	if s.logoutPolicy == domain.ClearRefreshToken {
		if err := s.sessions.ClearRefreshToken(ctx); err != nil {
			run.logger.Error("failed to clear refresh token", "error", err)
		}
	}

	s.navigator.NavigateTo(domain.RouteSignIn)
	run.emit(domain.Succeeded(domain.OutcomeLoggedOut))
	return run.result
}
