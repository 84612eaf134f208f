package auth

import (
	"context"
	"time"
)

// PasswordHasher hides the slow salted hash. Verify does its own
// constant-time comparison.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type Claims struct {
	TokenID       string
	AccountNumber string
	Email         string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// TokenService signs and verifies session tokens. Verify fails for a bad
// signature, a malformed token or an expired one.
type TokenService interface {
	Sign(accountNumber, email string) (token string, claims *Claims, err error)
	Verify(token string) (*Claims, error)
}

// SessionStore tracks revoked token ids until they would have expired anyway.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
