package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-basicauth/internal/core/services"
)

type testServer struct {
	server  *Server
	backend *mocks.MockIdentityBackend
	store   *mocks.MockSessionStore
	pinger  *stubPinger
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		backend: mocks.NewMockIdentityBackend(),
		store:   mocks.NewMockSessionStore(),
		pinger:  &stubPinger{},
	}

	build := func(c *Collector) (driving.AuthFlowService, error) {
		return services.NewAuthFlowService(services.AuthFlowConfig{
			Backend:   ts.backend,
			Sessions:  ts.store,
			Notifier:  c,
			Navigator: c,
			Loading:   c,
			Callbacks: services.LoginCallbacks{
				OnSuccess: c.OnLoginSuccess,
				OnFailure: c.OnLoginFailure,
			},
			Logger: logger,
		})
	}

	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	cfg.Logger = logger
	srv, err := NewServer(cfg, build, services.NewSessionService(ts.store, mocks.NewMockClaimsDecoder()), ts.pinger)
	require.NoError(t, err)
	ts.server = srv
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeFlow(t *testing.T, rr *httptest.ResponseRecorder) FlowResponse {
	t.Helper()
	var resp FlowResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func notificationKeys(resp FlowResponse) []domain.MessageKey {
	var keys []domain.MessageKey
	for _, n := range resp.Notifications {
		keys = append(keys, n.Key)
	}
	return keys
}

func TestNewServer_MissingDependencies(t *testing.T) {
	sessions := services.NewSessionService(mocks.NewMockSessionStore(), mocks.NewMockClaimsDecoder())
	build := func(c *Collector) (driving.AuthFlowService, error) { return nil, nil }

	_, err := NewServer(DefaultConfig(), nil, sessions, nil)
	assert.ErrorIs(t, err, domain.ErrMissingDependency)

	_, err = NewServer(DefaultConfig(), build, nil, nil)
	assert.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	ts.pinger.err = errors.New("connection refused")
	rr = ts.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(ts *testServer)
		body       any
		wantStatus int
		wantKind   domain.OutcomeKind
		wantReason domain.FailureReason
	}{
		{
			name:       "success",
			setup:      func(ts *testServer) { ts.backend.AddAccount("a@x.io", "pw") },
			body:       LoginRequest{Email: "a@x.io", Password: "pw"},
			wantStatus: http.StatusOK,
			wantKind:   domain.OutcomeLoginSucceeded,
		},
		{
			name:       "unknown email",
			body:       LoginRequest{Email: "ghost@x.io", Password: "pw"},
			wantStatus: http.StatusUnauthorized,
			wantKind:   domain.OutcomeLoginFailed,
			wantReason: domain.ReasonEmailNotFound,
		},
		{
			name:       "wrong password",
			setup:      func(ts *testServer) { ts.backend.AddAccount("a@x.io", "pw") },
			body:       LoginRequest{Email: "a@x.io", Password: "nope"},
			wantStatus: http.StatusUnauthorized,
			wantKind:   domain.OutcomeLoginFailed,
			wantReason: domain.ReasonUnauthorized,
		},
		{
			name: "session store failure",
			setup: func(ts *testServer) {
				ts.backend.AddAccount("a@x.io", "pw")
				ts.store.SetErr = errors.New("redis down")
			},
			body:       LoginRequest{Email: "a@x.io", Password: "pw"},
			wantStatus: http.StatusInternalServerError,
			wantKind:   domain.OutcomeLoginFailed,
			wantReason: domain.ReasonSessionStoreError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.setup != nil {
				tt.setup(ts)
			}

			rr := ts.do(t, http.MethodPost, "/api/v1/auth/login", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)

			resp := decodeFlow(t, rr)
			assert.Equal(t, domain.FlowLogin, resp.Flow)
			assert.NotEmpty(t, resp.FlowID)
			require.Len(t, resp.Outcomes, 1)
			assert.Equal(t, tt.wantKind, resp.Outcomes[0].Kind)
			assert.Equal(t, tt.wantReason, resp.Outcomes[0].Reason)
		})
	}
}

func TestHandleLogin_StoresTokensAndReturnsIdentity(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.AddAccount("a@x.io", "pw")

	rr := ts.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: "a@x.io", Password: "pw"})
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeFlow(t, rr)
	require.NotNil(t, resp.Outcomes[0].Identity)
	assert.Equal(t, "access-a@x.io", resp.Outcomes[0].Identity.IDToken)
	assert.Equal(t, "a@x.io", resp.Outcomes[0].Identity.Profile.Email)
	assert.Empty(t, resp.Notifications)
	assert.Equal(t, "access-a@x.io", ts.store.AccessToken())
	assert.Equal(t, "refresh-a@x.io", ts.store.RefreshToken())
}

func TestHandleLogin_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/api/v1/auth/login", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rr.Body.String())

	rr = ts.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: "a@x.io"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Zero(t, ts.backend.CallCount(mocks.CallCheckEmail))
}

func TestHandleRegister(t *testing.T) {
	req := domain.RegistrationRequest{FirstName: "Ada", LastName: "L", Email: "a@x.io", Password: "pw"}

	t.Run("success", func(t *testing.T) {
		ts := newTestServer(t)
		rr := ts.do(t, http.MethodPost, "/api/v1/auth/register", req)
		assert.Equal(t, http.StatusOK, rr.Code)

		resp := decodeFlow(t, rr)
		assert.Equal(t, []domain.MessageKey{domain.MsgCreateUserAccount, domain.MsgEmailConfirmation}, notificationKeys(resp))
		assert.Equal(t, domain.RouteSignIn, resp.NavigateTo)
	})

	t.Run("email in use", func(t *testing.T) {
		ts := newTestServer(t)
		ts.backend.AddAccount("a@x.io", "old")
		rr := ts.do(t, http.MethodPost, "/api/v1/auth/register", req)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Zero(t, ts.backend.CallCount(mocks.CallRegister))
	})

	t.Run("confirmation email failed", func(t *testing.T) {
		ts := newTestServer(t)
		ts.backend.RegisterStatus = http.StatusFailedDependency
		ts.backend.RegisterErr = &domain.AuthError{Status: http.StatusFailedDependency}

		rr := ts.do(t, http.MethodPost, "/api/v1/auth/register", req)
		assert.Equal(t, http.StatusFailedDependency, rr.Code)

		resp := decodeFlow(t, rr)
		require.Len(t, resp.Outcomes, 2)
		assert.Equal(t, domain.OutcomeRegistrationSucceeded, resp.Outcomes[0].Kind)
		assert.Equal(t, domain.ReasonEmailVerificationError, resp.Outcomes[1].Reason)
		assert.Equal(t, domain.RouteSignIn, resp.NavigateTo)
	})

	t.Run("backend error", func(t *testing.T) {
		ts := newTestServer(t)
		ts.backend.RegisterErr = &domain.AuthError{Status: http.StatusInternalServerError}
		rr := ts.do(t, http.MethodPost, "/api/v1/auth/register", req)
		assert.Equal(t, http.StatusBadGateway, rr.Code)

		resp := decodeFlow(t, rr)
		assert.Empty(t, resp.NavigateTo)
	})
}

func TestHandleForgotPassword(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason domain.FailureReason
	}{
		{name: "sent", wantStatus: http.StatusOK},
		{name: "not found", err: &domain.AuthError{Status: http.StatusNotFound}, wantStatus: http.StatusNotFound, wantReason: domain.ReasonEmailNotFound},
		{name: "email failed", err: &domain.AuthError{Status: http.StatusFailedDependency}, wantStatus: http.StatusFailedDependency, wantReason: domain.ReasonResetLinkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.backend.RequestResetErr = tt.err

			rr := ts.do(t, http.MethodPost, "/api/v1/auth/forgot-password", EmailRequest{Email: "a@x.io"})
			assert.Equal(t, tt.wantStatus, rr.Code)
			resp := decodeFlow(t, rr)
			assert.Equal(t, tt.wantReason, resp.Outcomes[0].Reason)
		})
	}
}

func TestHandleResetPassword(t *testing.T) {
	body := domain.PasswordResetRequest{Username: "a@x.io", Token: "t", Password: "new", ConfirmPassword: "new"}

	ts := newTestServer(t)
	rr := ts.do(t, http.MethodPost, "/api/v1/auth/reset-password", body)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []domain.MessageKey{domain.MsgResetPasswordSuccess}, notificationKeys(decodeFlow(t, rr)))

	ts.backend.CompleteResetResult = false
	rr = ts.do(t, http.MethodPost, "/api/v1/auth/reset-password", body)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/auth/reset-password", domain.PasswordResetRequest{Username: "a@x.io"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginSessionLogout(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.AddAccount("a@x.io", "pw")
	token, err := mocks.EncodeClaims(&domain.TokenClaims{
		Subject:   "u-1",
		Email:     "a@x.io",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	ts.backend.SignInResponse = &domain.SignInResponse{AccessToken: token, RefreshToken: "R1"}

	rr := ts.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: "a@x.io", Password: "pw"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var session SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&session))
	assert.Equal(t, "a@x.io", session.Email)
	assert.Equal(t, "u-1", session.Subject)
	assert.False(t, session.Expired)
	assert.True(t, session.HasRefreshToken)

	rr = ts.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeFlow(t, rr)
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, domain.OutcomeLoggedOut, resp.Outcomes[0].Kind)
	assert.Equal(t, domain.RouteSignIn, resp.NavigateTo)

	assert.Empty(t, ts.store.AccessToken())
	assert.Equal(t, "R1", ts.store.RefreshToken())

	rr = ts.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRunFlow_BuilderError(t *testing.T) {
	build := func(c *Collector) (driving.AuthFlowService, error) {
		return nil, domain.ErrMissingDependency
	}
	srv, err := NewServer(DefaultConfig(), build,
		services.NewSessionService(mocks.NewMockSessionStore(), mocks.NewMockClaimsDecoder()), nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestFlowStatus(t *testing.T) {
	tests := []struct {
		flow   domain.Flow
		kind   domain.OutcomeKind
		reason domain.FailureReason
		want   int
	}{
		{domain.FlowLogin, domain.OutcomeLoginSucceeded, domain.ReasonNone, http.StatusOK},
		{domain.FlowLogin, domain.OutcomeLoginFailed, domain.ReasonEmailNotFound, http.StatusUnauthorized},
		{domain.FlowForgotPassword, domain.OutcomePasswordResetRequestFailed, domain.ReasonEmailNotFound, http.StatusNotFound},
		{domain.FlowRegister, domain.OutcomeRegistrationFailed, domain.ReasonEmailFound, http.StatusConflict},
		{domain.FlowForgotPassword, domain.OutcomePasswordResetRequestFailed, domain.ReasonResetLinkError, http.StatusFailedDependency},
		{domain.FlowResetPassword, domain.OutcomePasswordResetFailed, domain.ReasonUnexpectedServerResponse, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(string(tt.flow)+"/"+string(tt.reason), func(t *testing.T) {
			result := &domain.FlowResult{
				Flow:     tt.flow,
				Outcomes: []domain.FlowOutcome{{Kind: tt.kind, Reason: tt.reason}},
			}
			assert.Equal(t, tt.want, flowStatus(result))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	sessions := services.NewSessionService(mocks.NewMockSessionStore(), mocks.NewMockClaimsDecoder())
	build := func(c *Collector) (driving.AuthFlowService, error) { return nil, nil }

	srv, err := NewServer(DefaultConfig(), build, sessions, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	cfg := DefaultConfig()
	cfg.Metrics = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("flow_metrics 1\n"))
	})
	srv, err = NewServer(cfg, build, sessions, nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "flow_metrics 1\n", rr.Body.String())
}
