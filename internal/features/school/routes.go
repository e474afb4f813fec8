package school

import (
	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/features/auth"
)

// RegisterRoutes sets up the director portal routes on the given group.
// All routes require a director session; the PATCH route additionally
// verifies the path ID matches the session's school.
func RegisterRoutes(g *echo.Group, h *Handler, authService auth.Service) {
	director := g.Group("/portal",
		auth.RequireSession(authService),
		auth.RequireKind(auth.KindDirector),
	)

	director.GET("/me", h.Me)
	director.PATCH("/school/:id", h.Patch, auth.RequireSchoolMatch())
}
