package domain

import (
	"strings"
	"time"
)

// Credentials is a sign-in attempt. Never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegistrationRequest represents a basic-auth sign-up
type RegistrationRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// PasswordResetRequest completes a password reset using the token from the reset link
type PasswordResetRequest struct {
	Username        string `json:"username"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// NewPassword returns the password the account will be switched to
func (r PasswordResetRequest) NewPassword() string {
	return r.Password
}

// SessionTokens is the access/refresh token pair of an authenticated session.
// Both fields are written together on sign-in.
type SessionTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// HasAccessToken reports whether the pair carries a usable access token
func (t *SessionTokens) HasAccessToken() bool {
	return t != nil && strings.TrimSpace(t.AccessToken) != ""
}

// SignInResponse is what the identity backend returns on a successful sign-in
type SignInResponse struct {
	AccessToken    string `json:"accessToken"`
	RefreshToken   string `json:"refreshToken"`
	TokenType      string `json:"tokenType,omitempty"`
	ExpiryDuration int64  `json:"expiryDuration,omitempty"`
}

// Tokens returns the session token pair carried by the response
func (r *SignInResponse) Tokens() SessionTokens {
	return SessionTokens{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

// Profile is the user shell handed to the caller on login
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Identity is the opaque identity assertion passed to the login success callback.
// IDToken is the raw access token; decoding its claims is up to the caller.
type Identity struct {
	IDToken string  `json:"id_token"`
	Scope   string  `json:"scope"`
	Profile Profile `json:"profile"`
}

// NewIdentity builds the identity for a freshly signed-in user
func NewIdentity(accessToken, email string) Identity {
	return Identity{
		IDToken: accessToken,
		Profile: Profile{
			Email:   email,
			Name:    "",
			Picture: "",
		},
	}
}

// TokenClaims is the unverified payload of a basic-auth access token
type TokenClaims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	IsBot     bool   `json:"isBot"`
	Issuer    string `json:"iss"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// SessionInfo describes the session currently held by the token store
type SessionInfo struct {
	Claims          *TokenClaims `json:"claims"`
	HasRefreshToken bool         `json:"has_refresh_token"`
}

// Expired reports whether the access token's exp claim lies in the past.
// Tokens without an exp claim never expire from the client's point of view.
func (s *SessionInfo) Expired() bool {
	if s.Claims == nil || s.Claims.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() > s.Claims.ExpiresAt
}

// LogoutPolicy controls what happens to the refresh token on sign-out
type LogoutPolicy string

const (
	// RetainRefreshToken clears only the access token
	RetainRefreshToken LogoutPolicy = "retain_refresh"
	// ClearRefreshToken clears both tokens
	ClearRefreshToken LogoutPolicy = "clear_refresh"
)

// Route is a navigation target understood by the UI router
type Route string

// RouteSignIn is where every flow that navigates sends the user
const RouteSignIn Route = "/signin"
