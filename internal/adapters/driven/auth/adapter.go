package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// Ensure Adapter implements ClaimsDecoder
var _ driven.ClaimsDecoder = (*Adapter)(nil)

// DefaultIssuer is the iss claim of tokens minted by the local backend
const DefaultIssuer = "sercha-basicauth"

// jwtClaims wraps domain.TokenClaims for JWT compatibility
type jwtClaims struct {
	Email string `json:"email"`
	IsBot bool   `json:"isBot"`
	jwt.RegisteredClaims
}

// Adapter handles token and password operations using JWT and bcrypt.
// Decode does not verify signatures; the identity backend owns verification.
// Signing and hashing are only used by the local identity backend.
type Adapter struct {
	jwtSecret  []byte
	bcryptCost int
	parser     *jwt.Parser
}

// NewAdapter creates a new auth adapter with the given JWT secret
func NewAdapter(jwtSecret string) *Adapter {
	return NewAdapterWithCost(jwtSecret, bcrypt.DefaultCost)
}

// NewAdapterWithCost creates a new auth adapter with custom bcrypt cost
func NewAdapterWithCost(jwtSecret string, bcryptCost int) *Adapter {
	return &Adapter{
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		parser:     jwt.NewParser(),
	}
}

// HashPassword generates a bcrypt hash from a plaintext password
func (a *Adapter) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a bcrypt hash
func (a *Adapter) VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken creates a signed JWT from domain claims
func (a *Adapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	issuer := claims.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	jc := jwtClaims{
		Email: claims.Email,
		IsBot: claims.IsBot,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(a.jwtSecret)
}

// Decode extracts domain claims from a JWT without verifying its signature
func (a *Adapter) Decode(tokenString string) (*domain.TokenClaims, error) {
	var jc jwtClaims
	if _, _, err := a.parser.ParseUnverified(tokenString, &jc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims := &domain.TokenClaims{
		Subject: jc.Subject,
		Email:   jc.Email,
		IsBot:   jc.IsBot,
		Issuer:  jc.Issuer,
	}
	if jc.IssuedAt != nil {
		claims.IssuedAt = jc.IssuedAt.Unix()
	}
	if jc.ExpiresAt != nil {
		claims.ExpiresAt = jc.ExpiresAt.Unix()
	}

	return claims, nil
}
