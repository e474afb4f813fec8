package display

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Handler handles the public TV display endpoint.
type Handler struct {
	service Service
}

// NewHandler creates a new display handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// View returns the assembled display payload (GET /tv/:slug).
func (h *Handler) View(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return apperror.NewBadRequest("slug is required")
	}

	view, err := h.service.GetView(c.Request().Context(), slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}
