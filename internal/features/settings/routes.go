package settings

import (
	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/features/auth"
)

// RegisterRoutes sets up the admin settings routes.
func RegisterRoutes(g *echo.Group, h *Handler, authService auth.Service) {
	admin := g.Group("/settings", auth.RequireSession(authService), auth.RequireAdmin())
	admin.GET("", h.List)
	admin.GET("/:key", h.Get)
	admin.PUT("/:key", h.Update)
}
