package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	check func() error
}

// NewHealthHandler takes a dependency check, typically the database ping.
func NewHealthHandler(check func() error) *HealthHandler {
	return &HealthHandler{check: check}
}

func (h *HealthHandler) Health(c echo.Context) error {
	if h.check != nil {
		if err := h.check(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
