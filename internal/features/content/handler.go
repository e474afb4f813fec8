package content

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Handler handles the dashboard content endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new content handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Dashboard returns all categories for a school year
// (GET /content/dashboard?year=2026).
func (h *Handler) Dashboard(c echo.Context) error {
	dashboard, err := h.service.GetDashboard(c.Request().Context(), c.QueryParam("year"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboard)
}

// Years returns the selectable school years (GET /content/years).
func (h *Handler) Years(c echo.Context) error {
	years, err := h.service.ListYears(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, years)
}

// TermGroups returns the term labels for one type
// (GET /content/terms/:type).
func (h *Handler) TermGroups(c echo.Context) error {
	groups, err := h.service.ListTermGroups(c.Request().Context(), Type(c.Param("type")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}

// Create inserts a new entry (POST /content, admin only).
func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	entry, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// Update edits an existing entry (PUT /content/:id, admin only).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	entry, err := h.service.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete removes an entry (DELETE /content/:id, admin only).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
