package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Handler handles the admin settings endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new settings handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List returns every global setting (GET /settings, admin only).
func (h *Handler) List(c echo.Context) error {
	values, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, values)
}

// Get returns a single setting document (GET /settings/:key, admin only).
func (h *Handler) Get(c echo.Context) error {
	key := c.Param("key")
	value, err := h.service.Get(c.Request().Context(), key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"key": key, "value": value})
}

// Update replaces one setting document (PUT /settings/:key, admin only).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if err := h.service.Set(c.Request().Context(), c.Param("key"), req.Value); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
