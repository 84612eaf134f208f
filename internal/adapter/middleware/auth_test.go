package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/domain/auth"

	"github.com/labstack/echo/v4"
)

type fakeGate struct {
	gotHeader, gotCookie string
	acct                 *account.Account
	err                  error
}

func (g *fakeGate) Authenticate(_ context.Context, header, cookie string) (*account.Account, *auth.Claims, error) {
	g.gotHeader, g.gotCookie = header, cookie
	if g.err != nil {
		return nil, nil, g.err
	}
	return g.acct, &auth.Claims{TokenID: "jti", AccountNumber: g.acct.AccountNumber}, nil
}

// errStatus maps a handful of domain errors the way the http adapter does.
func errStatus(err error, c echo.Context) {
	switch account.KindOf(err) {
	case account.KindAuthentication:
		_ = c.NoContent(http.StatusUnauthorized)
	case account.KindAuthorization:
		_ = c.NoContent(http.StatusForbidden)
	default:
		_ = c.NoContent(http.StatusInternalServerError)
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = errStatus
	return e
}

func whoami(c echo.Context) error {
	a := ActingAccount(c)
	if a == nil {
		return c.String(http.StatusOK, "anonymous")
	}
	if SessionClaims(c) == nil {
		return c.String(http.StatusInternalServerError, "claims missing")
	}
	return c.String(http.StatusOK, a.AccountNumber)
}

func TestRequireAuth(t *testing.T) {
	gate := &fakeGate{acct: &account.Account{AccountNumber: "1001"}}
	e := newEcho()
	e.GET("/me", whoami, RequireAuth(gate))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "from-cookie"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "1001" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
	if gate.gotHeader != "Bearer abc" || gate.gotCookie != "from-cookie" {
		t.Fatalf("gate saw header=%q cookie=%q", gate.gotHeader, gate.gotCookie)
	}

	gate.err = account.ErrNoToken
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token => want 401, got %d", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	gate := &fakeGate{err: account.ErrInvalidToken}
	e := newEcho()
	e.GET("/me", whoami, OptionalAuth(gate))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}

	gate.err = nil
	gate.acct = &account.Account{AccountNumber: "1002"}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Body.String() != "1002" {
		t.Fatalf("got %q", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role account.Role
		want int
	}{
		{name: "admin", role: account.RoleAdmin, want: http.StatusOK},
		{name: "sub-admin", role: account.RoleSubAdmin, want: http.StatusOK},
		{name: "user", role: account.RoleUser, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &fakeGate{acct: &account.Account{AccountNumber: "1", AccountRole: tt.role}}
			e := newEcho()
			e.GET("/approve", whoami, RequireAuth(gate), RequireRole(account.RoleAdmin, account.RoleSubAdmin))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/approve", nil))
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d", tt.want, rec.Code)
			}
		})
	}

	// without RequireAuth in front there is no acting account
	e := newEcho()
	e.GET("/approve", whoami, RequireRole(account.RoleAdmin))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/approve", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no session => want 401, got %d", rec.Code)
	}
}

func TestRequireAuth_InfraErrorIs500(t *testing.T) {
	gate := &fakeGate{err: errors.New("redis down")}
	e := newEcho()
	e.GET("/me", whoami, RequireAuth(gate))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
}
