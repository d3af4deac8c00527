// Package auth validates the bearer tokens that scope generation requests.
// Tokens are issued elsewhere; this service never signs them.
package auth

import (
	"context"
	"time"
)

// JWTService validates access tokens.
type JWTService interface {
	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims if the token is valid, or an error if validation fails
	// (expired, invalid signature, wrong token type, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated claims of an access token.
type Claims struct {
	// Subject identifies the user the token was issued for. It is used as
	// the user's cache scope.
	Subject string `json:"sub,omitempty"`

	// TokenType is "access" when present.
	TokenType string `json:"type,omitempty"`

	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
