package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Ensure Client implements IdentityBackend
var _ driven.IdentityBackend = (*Client)(nil)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// Config holds configuration for the HTTP identity client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for a local backend
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8585/api/v1",
		Timeout: 30 * time.Second,
	}
}

// Client talks to the basic-auth endpoints of the identity backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new identity backend client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

type emailBody struct {
	Email string `json:"email"`
}

// errorBody is the backend's JSON error envelope
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CheckEmailExists reports whether an account is registered for email.
func (c *Client) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if _, err := c.post(ctx, "check email", "/users/checkEmailInUse", emailBody{Email: email}, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SignIn exchanges credentials for a token pair.
func (c *Client) SignIn(ctx context.Context, creds domain.Credentials) (*domain.SignInResponse, error) {
	var resp domain.SignInResponse
	if _, err := c.post(ctx, "sign in", "/users/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns the backend's status code.
func (c *Client) Register(ctx context.Context, req domain.RegistrationRequest) (int, error) {
	return c.post(ctx, "register", "/users/signup", req, nil)
}

// RequestPasswordReset asks the backend to email a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := c.post(ctx, "request password reset", "/users/generatePasswordResetLink", emailBody{Email: email}, nil)
	return err
}

// CompletePasswordReset sets a new password using a reset token.
func (c *Client) CompletePasswordReset(ctx context.Context, req domain.PasswordResetRequest) (bool, error) {
	status, err := c.post(ctx, "reset password", "/users/password/reset", req, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// post sends a JSON body and decodes a JSON reply into out when out is non-nil.
// Non-2xx replies become *domain.AuthError; everything else that goes wrong
// on the wire becomes *domain.TransportError.
func (c *Client) post(ctx context.Context, op, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal %s request: %w", op, err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return 0, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &domain.AuthError{
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return resp.StatusCode, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// readErrorMessage pulls the message out of an error body, falling back to the raw text
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
		return eb.Message
	}
	return strings.TrimSpace(string(raw))
}
