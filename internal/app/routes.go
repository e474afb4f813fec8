package app

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harborkids/portal-server/internal/features/auth"
	"github.com/harborkids/portal-server/internal/features/content"
	"github.com/harborkids/portal-server/internal/features/display"
	"github.com/harborkids/portal-server/internal/features/school"
	"github.com/harborkids/portal-server/internal/features/settings"
	"github.com/harborkids/portal-server/internal/features/weather"
)

// schoolDirectory adapts the school repository to the lookup interface the
// auth service binds director sessions through.
type schoolDirectory struct {
	repo school.Repository
}

func (d schoolDirectory) FindByDirectorEmail(ctx context.Context, email string) (*auth.DirectorSchool, error) {
	sch, err := d.repo.FindByDirectorEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &auth.DirectorSchool{ID: sch.ID, Slug: sch.Slug, Title: sch.Title}, nil
}

// registerRoutes constructs every feature's repository/service/handler
// chain and mounts it under /api/v1.
func (a *App) registerRoutes(verifier auth.TokenVerifier) {
	cfg := a.Config

	// Repositories.
	familyRepo := auth.NewFamilyRepository(a.DB)
	schoolRepo := school.NewRepository(a.DB)
	contentRepo := content.NewRepository(a.DB)
	settingsRepo := settings.NewRepository(a.DB)

	// Services.
	authService := auth.NewService(
		familyRepo,
		schoolDirectory{repo: schoolRepo},
		verifier,
		a.Redis,
		cfg.Auth.FamilySessionTTL,
		cfg.Auth.DirectorSessionTTL,
		cfg.Auth.AdminEmails,
	)
	schoolService := school.NewService(schoolRepo)
	contentService := content.NewService(contentRepo)
	settingsService := settings.NewService(settingsRepo)
	weatherService := weather.NewService(
		cfg.Weather.BaseURL,
		cfg.Weather.Timeout,
		a.Redis,
		cfg.Weather.CacheTTL,
	)
	displayService := display.NewService(schoolRepo, schoolService, weatherService, settingsService)

	// Liveness probe. Deliberately shallow: it answers whether the process
	// serves HTTP, not whether MariaDB or Redis are reachable.
	a.Echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := a.Echo.Group("/api/v1")
	auth.RegisterRoutes(v1, auth.NewHandler(authService))
	school.RegisterRoutes(v1, school.NewHandler(schoolService), authService)
	content.RegisterRoutes(v1, content.NewHandler(contentService), authService)
	settings.RegisterRoutes(v1, settings.NewHandler(settingsService), authService)
	weather.RegisterRoutes(v1, weather.NewHandler(weatherService))
	display.RegisterRoutes(v1, display.NewHandler(displayService))
}
