package content

import (
	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/features/auth"
)

// RegisterRoutes sets up the dashboard content routes. Read routes require
// any valid session (family or director); write routes require the admin
// claim on top of that.
func RegisterRoutes(g *echo.Group, h *Handler, authService auth.Service) {
	authed := g.Group("/content", auth.RequireSession(authService))

	authed.GET("/dashboard", h.Dashboard)
	authed.GET("/years", h.Years)
	authed.GET("/terms/:type", h.TermGroups)

	admin := authed.Group("", auth.RequireAdmin())
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}
