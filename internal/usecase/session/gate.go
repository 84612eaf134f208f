package session

import (
	"context"
	"errors"
	"strings"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/auth"
)

// Gate turns a presented token into the acting account.
type Gate struct {
	accounts account.Repository
	tokens   auth.TokenService
	sessions auth.SessionStore
}

// NewGate: sessions may be nil, in which case revocation is not checked.
func NewGate(accounts account.Repository, tokens auth.TokenService, sessions auth.SessionStore) *Gate {
	return &Gate{accounts: accounts, tokens: tokens, sessions: sessions}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Authenticate prefers the Authorization header over the cookie value.
func (g *Gate) Authenticate(ctx context.Context, authorization, cookie string) (*account.Account, *auth.Claims, error) {
	token := BearerToken(authorization)
	if token == "" {
		token = strings.TrimSpace(cookie)
	}
	if token == "" {
		return nil, nil, account.ErrNoToken
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, nil, account.ErrInvalidToken
	}
	if g.sessions != nil {
		revoked, err := g.sessions.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, account.ErrInvalidToken
		}
	}

	a, err := g.accounts.GetByAccountNumber(ctx, claims.AccountNumber)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, nil, account.ErrAccountGone
		}
		return nil, nil, err
	}
	return a, claims, nil
}

// RequireRole passes only when acting holds one of the allowed roles.
func RequireRole(acting *account.Account, allowed ...account.Role) error {
	if acting == nil {
		return account.ErrUnauthenticated
	}
	if !acting.AccountRole.In(allowed...) {
		return account.ErrForbidden
	}
	return nil
}
