package display

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the public display route. Displays never
// authenticate; the slug is the only lookup key.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/tv/:slug", h.View)
}
