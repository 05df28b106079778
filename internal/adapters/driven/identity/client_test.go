package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, DefaultConfig().BaseURL, c.baseURL)
	assert.Equal(t, DefaultConfig().Timeout, c.httpClient.Timeout)
}

func TestClient_CheckEmailExists(t *testing.T) {
	var gotEmail, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/checkEmailInUse", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotRequestID = r.Header.Get(RequestIDHeader)

		var body emailBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotEmail = body.Email
		_, _ = w.Write([]byte("true"))
	})

	exists, err := c.CheckEmailExists(context.Background(), "a@x.io")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "a@x.io", gotEmail)
	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err, "request id should be a uuid")
}

func TestClient_SignIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login", r.URL.Path)
		var creds domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":401,"message":"You have entered an invalid username or password."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(domain.SignInResponse{
			AccessToken:  "A1",
			RefreshToken: "R1",
			TokenType:    "Bearer",
		})
	})

	resp, err := c.SignIn(context.Background(), domain.Credentials{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionTokens{AccessToken: "A1", RefreshToken: "R1"}, resp.Tokens())

	_, err = c.SignIn(context.Background(), domain.Credentials{Email: "a@x.io", Password: "bad"})
	require.Error(t, err)
	var authErr *domain.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, "You have entered an invalid username or password.", authErr.Message)
}

func TestClient_Register(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantErr    bool
		want424    bool
	}{
		{name: "created", status: http.StatusOK, wantStatus: http.StatusOK},
		{name: "email failed", status: http.StatusFailedDependency, body: "mail down", wantStatus: http.StatusFailedDependency, wantErr: true, want424: true},
		{name: "server error", status: http.StatusInternalServerError, wantStatus: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/users/signup", r.URL.Path)
				var req domain.RegistrationRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "Ada", req.FirstName)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			status, err := c.Register(context.Background(), domain.RegistrationRequest{
				FirstName: "Ada", LastName: "L", Email: "a@x.io", Password: "pw",
			})
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.want424, domain.IsFailedDependency(err))
		})
	}
}

func TestClient_RequestPasswordReset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/generatePasswordResetLink", r.URL.Path)
		var body emailBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Email == "ghost@x.io" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.RequestPasswordReset(context.Background(), "a@x.io"))

	err := c.RequestPasswordReset(context.Background(), "ghost@x.io")
	status, ok := domain.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestClient_CompletePasswordReset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/password/reset", r.URL.Path)
		var req domain.PasswordResetRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Token {
		case "good":
			w.WriteHeader(http.StatusOK)
		case "accepted":
			w.WriteHeader(http.StatusAccepted)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	ok, err := c.CompletePasswordReset(context.Background(), domain.PasswordResetRequest{Username: "a@x.io", Token: "good"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CompletePasswordReset(context.Background(), domain.PasswordResetRequest{Username: "a@x.io", Token: "accepted"})
	require.NoError(t, err)
	assert.False(t, ok, "only 200 counts as a completed reset")

	ok, err = c.CompletePasswordReset(context.Background(), domain.PasswordResetRequest{Username: "a@x.io", Token: "bad"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, &domain.AuthError{})
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := NewClient(Config{BaseURL: url, Timeout: time.Second})
		_, err := c.CheckEmailExists(context.Background(), "a@x.io")
		require.Error(t, err)
		assert.ErrorIs(t, err, &domain.TransportError{})
		_, isAuth := domain.StatusOf(err)
		assert.False(t, isAuth)
	})

	t.Run("undecodable body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		})
		_, err := c.SignIn(context.Background(), domain.Credentials{Email: "a@x.io", Password: "pw"})
		var transportErr *domain.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, "sign in", transportErr.Op)
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("false"))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.CheckEmailExists(ctx, "a@x.io")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
