package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"ownbank-account-service/internal/domain/account"
	"ownbank-account-service/internal/usecase/linking"

	"github.com/labstack/echo/v4"
)

type successResponse struct {
	Status string `json:"status"`
	Total  *int   `json:"total,omitempty"`
	Token  string `json:"token,omitempty"`
	Data   any    `json:"data"`
}

func success(c echo.Context, code int, data any) error {
	return c.JSON(code, successResponse{Status: "success", Data: data})
}

func successList(c echo.Context, data any, total int) error {
	return c.JSON(http.StatusOK, successResponse{Status: "success", Total: &total, Data: data})
}

// statusFor is the single mapping from domain error kind to HTTP status.
func statusFor(err error) int {
	switch account.KindOf(err) {
	case account.KindValidation:
		return http.StatusBadRequest
	case account.KindAuthentication:
		return http.StatusUnauthorized
	case account.KindAuthorization, account.KindPendingApproval:
		return http.StatusForbidden
	case account.KindConflict:
		return http.StatusConflict
	case account.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	return writeErrorStatus(c, statusFor(err), err)
}

func writeErrorStatus(c echo.Context, code int, err error) error {
	var de *account.Error
	if errors.As(err, &de) {
		return c.JSON(code, ErrorResponse{Error: de.Message, Kind: string(de.Kind), Code: de.Code})
	}
	var perr *linking.PartialLinkError
	if errors.As(err, &perr) {
		log.Printf("partial link: %v", perr)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "linking was interrupted, retry the request",
			Code:  "partial_link",
			Details: []FieldError{
				{Field: "updated", Message: strings.Join(perr.Updated, ",")},
				{Field: "pending", Message: strings.Join(perr.Pending, ",")},
			},
		})
	}
	log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Kind:    string(account.KindValidation),
		Code:    "invalid_body",
		Details: ToFieldErrors(err),
	})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Kind: string(account.KindValidation), Code: "invalid_body"})
}

// ErrorHandler maps errors returned by middleware and handlers. Install it as
// echo's HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: msg})
		return
	}
	_ = writeError(c, err)
}
