package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/middleware"
)

// RegisterRoutes sets up the auth endpoints on the given route group.
// Login routes are public; the session middleware is exported separately
// for other features to apply to their own groups.
//
// Login endpoints are rate-limited per IP to slow down PIN brute-forcing
// and stolen-token replay attempts.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.POST("/auth/login", h.LoginPIN, middleware.RateLimit(10, time.Minute))
	g.POST("/auth/google", h.LoginGoogle, middleware.RateLimit(10, time.Minute))
	g.POST("/auth/logout", h.Logout)
}
