package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crystalrealm/ecobank/internal/handlers"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to each request, honoring one supplied by
// the client.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(handlers.RequestIDContextKey, id)
			c.Response().Header().Set(requestIDHeader, id)
			return next(c)
		}
	}
}
