// Package auth holds the dashboard's view of backend credentials: the
// identity contract of the backend and local inspection of access tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Claims are the access token claims the dashboard looks at.
type Claims struct {
	UserID string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenInspector reads backend access tokens without verifying their
// signature. The signing key stays with the backend; the dashboard only
// needs the expiry to skip doomed identity calls.
type TokenInspector struct {
	parser *jwt.Parser
	leeway time.Duration
	now    func() time.Time
}

// NewTokenInspector creates an inspector that treats tokens expiring within
// leeway as already expired.
func NewTokenInspector(leeway time.Duration) *TokenInspector {
	return &TokenInspector{
		parser: jwt.NewParser(),
		leeway: leeway,
		now:    time.Now,
	}
}

// Inspect decodes the claims of a token.
func (i *TokenInspector) Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Expired reports whether a token is known to be expired. Tokens that are
// not JWTs, or carry no exp claim, are left for the backend to judge.
func (i *TokenInspector) Expired(token string) bool {
	if token == "" {
		return true
	}
	claims, err := i.Inspect(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !i.now().Add(i.leeway).Before(claims.ExpiresAt.Time)
}
