package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crystalrealm/ecobank/internal/services"
)

// AdminHandler exposes operator endpoints: freezes, reporting, and manual
// triggers for the scheduled jobs.
type AdminHandler struct {
	bank   *services.BankService
	logger *slog.Logger
}

func NewAdminHandler(bank *services.BankService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{bank: bank, logger: logger}
}

// Register mounts the admin routes on the group.
func (h *AdminHandler) Register(g *echo.Group) {
	g.GET("/accounts", h.ListAccounts)
	g.GET("/credit-scores", h.ListCreditScores)
	g.POST("/accounts/:owner/freeze", h.Freeze)
	g.POST("/accounts/:owner/unfreeze", h.Unfreeze)
	g.POST("/jobs/daily-batch", h.RunDailyBatch)
	g.POST("/jobs/inflation", h.UpdateInflation)
	g.POST("/jobs/save", h.SaveAll)
}

// ListAccounts returns every bank account.
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	accounts, err := h.bank.Accounts()
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: accounts})
}

// ListCreditScores returns every credit score.
func (h *AdminHandler) ListCreditScores(c echo.Context) error {
	scores, err := h.bank.CreditScores()
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: scores})
}

// FreezeRequest carries the freeze reason.
type FreezeRequest struct {
	Reason string `json:"reason"`
}

// Freeze blocks all operations on an account.
func (h *AdminHandler) Freeze(c echo.Context) error {
	var req FreezeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.bank.Freeze(c.Param("owner"), req.Reason)
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return SendResult(c, res)
}

// Unfreeze lifts a freeze.
func (h *AdminHandler) Unfreeze(c echo.Context) error {
	res, err := h.bank.Unfreeze(c.Param("owner"))
	if err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return SendResult(c, res)
}

// RunDailyBatch triggers one daily processing cycle immediately.
func (h *AdminHandler) RunDailyBatch(c echo.Context) error {
	if err := h.bank.RunDailyBatch(); err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "daily batch complete"})
}

// UpdateInflation triggers one inflation drift step immediately.
func (h *AdminHandler) UpdateInflation(c echo.Context) error {
	rate := h.bank.UpdateInflation()
	return c.JSON(http.StatusOK, SuccessResponse{Data: map[string]interface{}{
		"rate": rate,
	}})
}

// SaveAll flushes all cached state to the database.
func (h *AdminHandler) SaveAll(c echo.Context) error {
	if err := h.bank.SaveAll(); err != nil {
		return SendSystemError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "state saved"})
}
