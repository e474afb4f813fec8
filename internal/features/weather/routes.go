package weather

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the public weather route. No session is required;
// the endpoint serves TV displays that never authenticate.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/weather", h.Current)
}
