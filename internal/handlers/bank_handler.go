package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/crystalrealm/ecobank/internal/services"
)

// BankHandler exposes the player-facing banking operations.
type BankHandler struct {
	bank   *services.BankService
	logger *slog.Logger
}

func NewBankHandler(bank *services.BankService, logger *slog.Logger) *BankHandler {
	return &BankHandler{bank: bank, logger: logger}
}

// Register mounts the player routes on the group.
func (h *BankHandler) Register(g *echo.Group) {
	g.GET("/plans", h.ListPlans)
	g.GET("/inflation", h.Inflation)
	g.GET("/accounts/:owner", h.GetAccount)
	g.GET("/accounts/:owner/credit", h.GetCreditScore)
	g.GET("/accounts/:owner/audit", h.GetAuditTrail)
	g.GET("/accounts/:owner/loan-rate", h.QuoteLoanRate)
	g.POST("/accounts/:owner/deposits", h.OpenDeposit)
	g.POST("/accounts/:owner/deposits/:id/close", h.CloseDeposit)
	g.POST("/accounts/:owner/loans", h.TakeLoan)
	g.POST("/accounts/:owner/loans/:id/repay", h.RepayLoan)
}

// ListPlans returns the configured deposit products.
func (h *BankHandler) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{Data: h.bank.Plans()})
}

// Inflation returns the current inflation rate.
func (h *BankHandler) Inflation(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{Data: map[string]interface{}{
		"rate": h.bank.InflationRate(),
	}})
}

// GetAccount returns the owner's full account state.
func (h *BankHandler) GetAccount(c echo.Context) error {
	account, err := h.bank.Account(c.Param("owner"))
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: account})
}

// GetCreditScore returns the owner's credit score and rating.
func (h *BankHandler) GetCreditScore(c echo.Context) error {
	score, err := h.bank.CreditScore(c.Param("owner"))
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: map[string]interface{}{
		"score":  score,
		"rating": score.Rating(),
	}})
}

// GetAuditTrail returns the owner's newest audit entries.
func (h *BankHandler) GetAuditTrail(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	entries, err := h.bank.AuditTrail(c.Param("owner"), limit)
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: entries})
}

// QuoteLoanRate prices a loan for the owner's current credit standing.
func (h *BankHandler) QuoteLoanRate(c echo.Context) error {
	rate, err := h.bank.QuoteLoanRate(c.Param("owner"))
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: map[string]interface{}{
		"rate": rate,
	}})
}

// OpenDepositRequest is the body for opening a deposit.
type OpenDepositRequest struct {
	Plan   string          `json:"plan" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// OpenDeposit opens a fixed-term deposit from the owner's wallet.
func (h *BankHandler) OpenDeposit(c echo.Context) error {
	var req OpenDepositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.bank.OpenDeposit(c.Param("owner"), req.Plan, req.Amount)
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return SendResult(c, res)
}

// CloseDeposit pays out a deposit.
func (h *BankHandler) CloseDeposit(c echo.Context) error {
	res, err := h.bank.CloseDeposit(c.Param("owner"), c.Param("id"))
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return SendResult(c, res)
}

// TakeLoanRequest is the body for taking a loan.
type TakeLoanRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// TakeLoan issues a loan against wallet collateral.
func (h *BankHandler) TakeLoan(c echo.Context) error {
	var req TakeLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.bank.TakeLoan(c.Param("owner"), req.Amount)
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return SendResult(c, res)
}

// RepayLoanRequest is the body for a loan repayment.
type RepayLoanRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// RepayLoan pays wallet money toward an open loan.
func (h *BankHandler) RepayLoan(c echo.Context) error {
	var req RepayLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.bank.RepayLoan(c.Param("owner"), c.Param("id"), req.Amount)
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return SendResult(c, res)
}
