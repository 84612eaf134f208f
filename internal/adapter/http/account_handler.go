package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ownbank-account-service/internal/adapter/middleware"
	domain "ownbank-account-service/internal/domain/account"
	accountuc "ownbank-account-service/internal/usecase/account"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct{ uc *accountuc.Usecase }

func NewAccountHandler(uc *accountuc.Usecase) *AccountHandler { return &AccountHandler{uc: uc} }

type createAccountReq struct {
	AccountNumber string `json:"accountNumber" validate:"required,acctnum"`
	AccountName   string `json:"accountName"   validate:"required,max=255"`
	Email         string `json:"email"         validate:"omitempty,email,max=320"`
	Password      string `json:"password"      validate:"required,min=8,max=72"`
	AccountRole   string `json:"accountRole"   validate:"omitempty,role"`
	// no approvedBy: approval only happens through the approve route
	LinkedAccounts []accountuc.Credentials `json:"linkedAccounts"`
}

type linkAccountsReq struct {
	AccountsToLink []accountuc.Credentials `json:"accountsToLink"`
}

func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	view, err := h.uc.Create(c.Request().Context(), middleware.ActingAccount(c), accountuc.CreateInput{
		AccountNumber:  req.AccountNumber,
		AccountName:    req.AccountName,
		Email:          req.Email,
		Password:       req.Password,
		AccountRole:    req.AccountRole,
		LinkedAccounts: req.LinkedAccounts,
	})
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusCreated, map[string]any{"account": view})
}

func (h *AccountHandler) List(c echo.Context) error {
	views, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return successList(c, map[string]any{"accounts": views}, len(views))
}

func (h *AccountHandler) Get(c echo.Context) error {
	view, err := h.uc.Get(c.Request().Context(), c.Param("accountNumber"))
	if err != nil {
		// unknown account numbers are a bad request on this route
		if errors.Is(err, domain.ErrNotFound) {
			return writeErrorStatus(c, http.StatusBadRequest, err)
		}
		return writeError(c, err)
	}
	return success(c, http.StatusOK, map[string]any{"account": view})
}

func (h *AccountHandler) UpdateSelf(c echo.Context) error {
	fields := map[string]any{}
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
		return invalidBody(c)
	}
	view, err := h.uc.UpdateSelf(c.Request().Context(), middleware.ActingAccount(c), fields)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, map[string]any{"account": view})
}

func (h *AccountHandler) LinkAccounts(c echo.Context) error {
	var req linkAccountsReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if len(req.AccountsToLink) == 0 {
		return writeError(c, domain.ErrNoAccountsToLink)
	}
	view, err := h.uc.LinkAccounts(c.Request().Context(), middleware.ActingAccount(c), req.AccountsToLink)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, map[string]any{"account": view})
}
