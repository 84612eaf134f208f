package middleware

import (
	"context"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/auth"
	"ownbank-account-service/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

const (
	TokenCookie = "token"

	ctxAccount = "acting_account"
	ctxClaims  = "acting_claims"
)

// Authenticator resolves the presented token; satisfied by *session.Gate.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization, cookie string) (*account.Account, *auth.Claims, error)
}

func cookieValue(c echo.Context) string {
	ck, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return ck.Value
}

// RequireAuth rejects the request unless a valid session is presented and
// binds the acting account to the context.
func RequireAuth(gate Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			a, claims, err := gate.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization), cookieValue(c))
			if err != nil {
				return err
			}
			c.Set(ctxAccount, a)
			c.Set(ctxClaims, claims)
			return next(c)
		}
	}
}

// OptionalAuth binds the acting account when a valid session is presented
// and otherwise continues anonymously.
func OptionalAuth(gate Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			a, claims, err := gate.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization), cookieValue(c))
			if err == nil {
				c.Set(ctxAccount, a)
				c.Set(ctxClaims, claims)
			}
			return next(c)
		}
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(allowed ...account.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := session.RequireRole(ActingAccount(c), allowed...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// ActingAccount returns the account bound by the auth middleware, or nil.
func ActingAccount(c echo.Context) *account.Account {
	a, _ := c.Get(ctxAccount).(*account.Account)
	return a
}

func SessionClaims(c echo.Context) *auth.Claims {
	cl, _ := c.Get(ctxClaims).(*auth.Claims)
	return cl
}
