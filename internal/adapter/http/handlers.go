package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the operational endpoints outside the loan core.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// Health reports liveness for the field apps polling the service.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "palmcash",
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	})
}
