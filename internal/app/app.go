// Package app assembles the Echo application: middleware stack, error
// handling, and route registration. Construction is pure wiring; main
// owns the external resources (DB, Redis) and their lifecycles.
package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/harborkids/portal-server/internal/apperror"
	"github.com/harborkids/portal-server/internal/config"
	"github.com/harborkids/portal-server/internal/features/auth"
	"github.com/harborkids/portal-server/internal/middleware"
)

// App holds the wired application.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Redis  *redis.Client
	Echo   *echo.Echo
}

// New builds the Echo instance with the shared middleware stack. Routes
// are registered separately so tests can wire a partial app.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client, verifier auth.TokenVerifier) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	middleware.TrustedProxies(e, cfg.TrustedProxyCIDRs)

	// Order matters: recovery outermost so a panic in any later middleware
	// still produces a JSON 500, then logging so every request is recorded.
	e.Use(middleware.Recovery())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   append([]string{cfg.BaseURL}, cfg.AllowedOrigins...),
		AllowCredentials: false,
	}))

	a := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Echo:   e,
	}
	a.registerRoutes(verifier)
	return a
}

// Start begins serving HTTP on the configured port.
func (a *App) Start() error {
	return a.Echo.Start(fmt.Sprintf(":%d", a.Config.Port))
}

// errorHandler maps errors to JSON responses. AppError carries its own
// status and client-safe message; echo.HTTPError covers router-level
// errors (404 on unknown paths, 405); everything else is a masked 500.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			slog.Error("request failed",
				slog.String("path", c.Request().URL.Path),
				slog.Any("error", appErr.Internal),
			)
		}
		if jsonErr := c.JSON(appErr.Code, appErr); jsonErr != nil {
			slog.Error("writing error response failed", slog.Any("error", jsonErr))
		}
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			message = s
		}
		if jsonErr := c.JSON(httpErr.Code, map[string]string{
			"type":    "http_error",
			"message": message,
		}); jsonErr != nil {
			slog.Error("writing error response failed", slog.Any("error", jsonErr))
		}
		return
	}

	slog.Error("unhandled error",
		slog.String("path", c.Request().URL.Path),
		slog.Any("error", err),
	)
	internal := apperror.NewInternal(err)
	if jsonErr := c.JSON(internal.Code, internal); jsonErr != nil {
		slog.Error("writing error response failed", slog.Any("error", jsonErr))
	}
}
