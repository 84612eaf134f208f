package http

import (
	"net/http"

	"ownbank-account-service/internal/adapter/middleware"
	"ownbank-account-service/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type approveReq struct {
	AccountNumber string `json:"accountNumber" validate:"required,acctnum"`
}

func (h *ApprovalHandler) Approve(c echo.Context) error {
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Approve(c.Request().Context(), middleware.ActingAccount(c), req.AccountNumber)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, http.StatusOK, dto)
}

func (h *ApprovalHandler) ListPending(c echo.Context) error {
	views, err := h.uc.ListPending(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return successList(c, map[string]any{"accounts": views}, len(views))
}
