package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	ecoerrors "github.com/crystalrealm/ecobank/internal/errors"
	"github.com/crystalrealm/ecobank/internal/services"
)

// RequestIDContextKey is the context key carrying the request id.
const RequestIDContextKey = "request_id"

// SuccessResponse wraps successful API responses.
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the standard rejection payload. Code is a stable machine
// readable reason; Message is the default human text for it.
type ErrorResponse struct {
	Code      ecoerrors.ReasonCode `json:"code"`
	Message   string               `json:"message"`
	RequestID string               `json:"request_id,omitempty"`
}

func requestID(c echo.Context) string {
	id, _ := c.Get(RequestIDContextKey).(string)
	return id
}

// SendResult renders a facade result: 200 for accepted operations, the
// mapped status for rejections.
func SendResult(c echo.Context, res *services.Result) error {
	if res.OK {
		return c.JSON(http.StatusOK, SuccessResponse{Data: res, Message: res.Message})
	}
	return c.JSON(statusFor(res.Code), ErrorResponse{
		Code:      res.Code,
		Message:   res.Message,
		RequestID: requestID(c),
	})
}

// SendError sends a rejection for a bare reason code.
func SendError(c echo.Context, code ecoerrors.ReasonCode) error {
	return c.JSON(statusFor(code), ErrorResponse{
		Code:      code,
		Message:   ecoerrors.Message(code),
		RequestID: requestID(c),
	})
}

// SendSystemError hides internal details behind a generic 500.
func SendSystemError(c echo.Context, logger *slog.Logger, err error) error {
	logger.Error("internal error",
		"path", c.Path(), "request_id", requestID(c), "error", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:      "internal_error",
		Message:   "Internal server error",
		RequestID: requestID(c),
	})
}

// statusFor maps reason codes to HTTP statuses.
func statusFor(code ecoerrors.ReasonCode) int {
	switch code {
	case ecoerrors.AccountFrozen:
		return http.StatusForbidden
	case ecoerrors.DepositNotFound, ecoerrors.LoanNotFound, ecoerrors.PlanNotFound:
		return http.StatusNotFound
	case ecoerrors.TooManyDeposits, ecoerrors.TooManyLoans:
		return http.StatusConflict
	case ecoerrors.RateLimited, ecoerrors.DepositCooldown, ecoerrors.LoanCooldown:
		return http.StatusTooManyRequests
	case ecoerrors.InsufficientFunds, ecoerrors.InsufficientFundsWithTax,
		ecoerrors.InsufficientCollateral:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}
