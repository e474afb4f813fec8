package school

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/apperror"
	"github.com/harborkids/portal-server/internal/features/auth"
)

// Handler handles the director portal's school content endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new school content handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Me returns the content map for the school bound to the caller's session
// (GET /portal/me). The school ID always comes from the session, never
// from the request, so a director cannot enumerate other schools.
func (h *Handler) Me(c echo.Context) error {
	session := auth.GetSession(c)
	if session == nil {
		return apperror.NewUnauthorized("authentication required")
	}

	content, err := h.service.GetContent(c.Request().Context(), session.EntityID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, content)
}

// Patch applies a partial content update (PATCH /portal/school/:id).
// The RequireSchoolMatch middleware has already verified the path ID
// against the session, so the ID is trusted here.
func (h *Handler) Patch(c echo.Context) error {
	session := auth.GetSession(c)
	if session == nil {
		return apperror.NewUnauthorized("authentication required")
	}

	var patch PatchRequest
	if err := c.Bind(&patch); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if err := h.service.PatchContent(c.Request().Context(), session.EntityID, patch); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
