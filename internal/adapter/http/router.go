package http

import (
	"time"

	"ownbank-account-service/internal/adapter/middleware"
	"ownbank-account-service/internal/domain/account"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Routes struct {
	Health    *HealthHandler
	Accounts  *AccountHandler
	Sessions  *SessionHandler
	Approvals *ApprovalHandler

	Gate           middleware.Authenticator
	LoginLimiter   middleware.AttemptLimiter
	Redis          *redis.Client
	IdempotencyTTL time.Duration
}

// Register mounts every route on e and installs the validator and error handler.
func Register(e *echo.Echo, r Routes) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", r.Health.Health)

	auth := middleware.RequireAuth(r.Gate)
	optional := middleware.OptionalAuth(r.Gate)
	idem := middleware.IdempotencyMiddleware(r.Redis, r.IdempotencyTTL)
	privileged := middleware.RequireRole(account.RoleAdmin, account.RoleSubAdmin)

	v1 := e.Group("/api/v1/account")
	v1.POST("/request", r.Accounts.Create, optional, idem)
	v1.POST("/login", r.Sessions.Login, middleware.LoginRateLimit(r.LoginLimiter))
	v1.GET("/logout", r.Sessions.Logout, optional)
	v1.GET("/approve", r.Approvals.ListPending, auth, privileged)
	v1.POST("/approve", r.Approvals.Approve, auth, privileged, idem)
	v1.POST("/link-accounts", r.Accounts.LinkAccounts, auth, idem)
	v1.POST("/switch", r.Sessions.Switch, auth)
	v1.GET("", r.Accounts.List, auth)
	v1.PATCH("", r.Accounts.UpdateSelf, auth, idem)
	v1.GET("/:accountNumber", r.Accounts.Get, auth)
}
