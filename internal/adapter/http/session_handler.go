package http

import (
	"net/http"
	"time"

	"ownbank-account-service/internal/adapter/middleware"
	domain "ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/usecase/credential"
	"ownbank-account-service/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

type SessionHandler struct {
	svc          *session.Service
	cookieSecure bool
}

func NewSessionHandler(svc *session.Service, cookieSecure bool) *SessionHandler {
	return &SessionHandler{svc: svc, cookieSecure: cookieSecure}
}

type loginReq struct {
	AccountNumber string `json:"accountNumber"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

type switchReq struct {
	AccountNumber string `json:"accountNumber" validate:"required,acctnum"`
}

func (h *SessionHandler) setCookie(c echo.Context, value string, expires time.Time) {
	ck := &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	c.SetCookie(ck)
}

func (h *SessionHandler) respondWithToken(c echo.Context, res *session.Result) error {
	h.setCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Token:  res.Token,
		Data:   map[string]any{"account": res.Account},
	})
}

func (h *SessionHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	res, err := h.svc.Login(c.Request().Context(), credential.Identifier{
		AccountNumber: req.AccountNumber,
		Email:         req.Email,
	}, req.Password)
	if err != nil {
		// every credential or approval failure is a 401, including missing
		// or malformed identifiers; the body still carries the precise code
		if domain.KindOf(err) != "" {
			return writeErrorStatus(c, http.StatusUnauthorized, err)
		}
		return writeError(c, err)
	}
	return h.respondWithToken(c, res)
}

func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.svc.Logout(c.Request().Context(), middleware.SessionClaims(c)); err != nil {
		return writeError(c, err)
	}
	h.setCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (h *SessionHandler) Switch(c echo.Context) error {
	var req switchReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	res, err := h.svc.Switch(c.Request().Context(), middleware.ActingAccount(c), req.AccountNumber)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondWithToken(c, res)
}
