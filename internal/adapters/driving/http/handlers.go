package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// LoginRequest is the body of the login endpoint
// @Description Basic-auth sign-in
type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// EmailRequest is the body of the forgot-password endpoint
// @Description Password reset link request
type EmailRequest struct {
	Email string `json:"email" example:"ada@example.com"`
}

// FlowResponse reports everything one flow invocation produced
// @Description Outcomes and presentation side effects of an auth flow
type FlowResponse struct {
	Flow          domain.Flow           `json:"flow" example:"login"`
	FlowID        string                `json:"flow_id"`
	Outcomes      []domain.FlowOutcome  `json:"outcomes"`
	Notifications []domain.Notification `json:"notifications"`
	NavigateTo    domain.Route          `json:"navigate_to,omitempty" example:"/signin"`
}

// SessionResponse describes the stored session
// @Description Decoded claims of the stored access token
type SessionResponse struct {
	Email           string `json:"email"`
	Subject         string `json:"subject"`
	IsBot           bool   `json:"is_bot"`
	ExpiresAt       int64  `json:"expires_at,omitempty"`
	Expired         bool   `json:"expired"`
	HasRefreshToken bool   `json:"has_refresh_token"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks the session token store)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Token store unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.tokenStore != nil {
		if err := s.tokenStore.Ping(r.Context()); err != nil {
			s.logger.Warn("token store not ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "token store unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Auth flow endpoints

// handleLogin godoc
// @Summary      Sign in
// @Description  Checks the email is registered, signs in and stores the token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Login credentials"
// @Success      200      {object}  FlowResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  FlowResponse   "Unknown email or wrong password"
// @Failure      500      {object}  FlowResponse   "Session could not be stored"
// @Router       /api/v1/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.runFlow(w, r, func(ctx context.Context, flows driving.AuthFlowService) *domain.FlowResult {
		return flows.HandleLogin(ctx, req.Email, req.Password)
	})
}

// handleRegister godoc
// @Summary      Register
// @Description  Creates a basic-auth account when the email is not in use
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RegistrationRequest  true  "New account"
// @Success      200      {object}  FlowResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      409      {object}  FlowResponse   "Email already registered"
// @Failure      424      {object}  FlowResponse   "Account created, confirmation email failed"
// @Failure      502      {object}  FlowResponse   "Unexpected backend response"
// @Router       /api/v1/auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegistrationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.runFlow(w, r, func(ctx context.Context, flows driving.AuthFlowService) *domain.FlowResult {
		return flows.HandleRegister(ctx, req)
	})
}

// handleForgotPassword godoc
// @Summary      Request password reset
// @Description  Asks the identity backend to email a password reset link
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      EmailRequest  true  "Account email"
// @Success      200      {object}  FlowResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      404      {object}  FlowResponse   "Email not registered"
// @Failure      424      {object}  FlowResponse   "Reset link could not be emailed"
// @Router       /api/v1/auth/forgot-password [post]
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	s.runFlow(w, r, func(ctx context.Context, flows driving.AuthFlowService) *domain.FlowResult {
		return flows.HandleForgotPassword(ctx, req.Email)
	})
}

// handleResetPassword godoc
// @Summary      Reset password
// @Description  Sets a new password using the token from the reset link
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.PasswordResetRequest  true  "Reset token and new password"
// @Success      200      {object}  FlowResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      502      {object}  FlowResponse   "Reset rejected by the backend"
// @Router       /api/v1/auth/reset-password [post]
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Token == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, token and password are required")
		return
	}

	s.runFlow(w, r, func(ctx context.Context, flows driving.AuthFlowService) *domain.FlowResult {
		return flows.HandleResetPassword(ctx, req)
	})
}

// handleLogout godoc
// @Summary      Sign out
// @Description  Clears the stored access token
// @Tags         Authentication
// @Produce      json
// @Success      200  {object}  FlowResponse
// @Router       /api/v1/auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.runFlow(w, r, func(ctx context.Context, flows driving.AuthFlowService) *domain.FlowResult {
		return flows.HandleLogout(ctx)
	})
}

// Session endpoints

// handleGetSession godoc
// @Summary      Current session
// @Description  Returns the unverified claims of the stored access token
// @Tags         Session
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      401  {object}  ErrorResponse  "No active session"
// @Failure      500  {object}  ErrorResponse  "Session could not be read"
// @Router       /api/v1/session [get]
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.sessionService.Current(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSession):
			writeError(w, http.StatusUnauthorized, "no active session")
		case errors.Is(err, domain.ErrTokenInvalid):
			writeError(w, http.StatusUnauthorized, "stored token is invalid")
		default:
			s.logger.Error("failed to read session", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read session")
		}
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Email:           info.Claims.Email,
		Subject:         info.Claims.Subject,
		IsBot:           info.Claims.IsBot,
		ExpiresAt:       info.Claims.ExpiresAt,
		Expired:         info.Expired(),
		HasRefreshToken: info.HasRefreshToken,
	})
}

// runFlow builds a request-scoped controller, runs fn and writes the result
func (s *Server) runFlow(w http.ResponseWriter, r *http.Request, fn func(context.Context, driving.AuthFlowService) *domain.FlowResult) {
	collector := NewCollector()
	flows, err := s.buildFlow(collector)
	if err != nil {
		s.logger.Error("failed to build auth flow", "error", err)
		writeError(w, http.StatusInternalServerError, "auth flow unavailable")
		return
	}

	result := fn(r.Context(), flows)
	notifications := collector.Notifications()

	writeJSON(w, flowStatus(result), FlowResponse{
		Flow:          result.Flow,
		FlowID:        result.FlowID,
		Outcomes:      result.Outcomes,
		Notifications: notifications,
		NavigateTo:    collector.NavigateToRoute(),
	})
}

// flowStatus maps a flow result onto an HTTP status code
func flowStatus(result *domain.FlowResult) int {
	if !result.Failed() {
		return http.StatusOK
	}

	switch result.Reason() {
	case domain.ReasonUnauthorized:
		return http.StatusUnauthorized
	case domain.ReasonEmailNotFound:
		if result.Flow == domain.FlowLogin {
			return http.StatusUnauthorized
		}
		return http.StatusNotFound
	case domain.ReasonEmailFound:
		return http.StatusConflict
	case domain.ReasonEmailVerificationError, domain.ReasonResetLinkError:
		return http.StatusFailedDependency
	case domain.ReasonSessionStoreError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// decodeBody decodes a JSON request body, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
