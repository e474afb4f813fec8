// Command server runs the portal API: session auth for families and
// directors, school content management, dashboard content, and the public
// TV display and weather endpoints.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborkids/portal-server/internal/app"
	"github.com/harborkids/portal-server/internal/config"
	"github.com/harborkids/portal-server/internal/database"
	"github.com/harborkids/portal-server/internal/features/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	setupLogging(cfg)

	db, err := database.NewMariaDB(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
		slog.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer rdb.Close()

	// Director login needs the Google verifier; without a client ID
	// (local development) PIN login still works and Google login returns
	// an internal error.
	var verifier auth.TokenVerifier
	if cfg.Auth.GoogleClientID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		verifier, err = auth.NewGoogleVerifier(ctx, cfg.Auth.GoogleIssuerURL, cfg.Auth.GoogleClientID)
		cancel()
		if err != nil {
			slog.Error("failed to initialize google verifier", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		slog.Warn("GOOGLE_CLIENT_ID not set; director login disabled")
	}

	a := app.New(cfg, db, rdb, verifier)

	go func() {
		slog.Info("starting server",
			slog.Int("port", cfg.Port),
			slog.String("env", cfg.Env),
		)
		if err := a.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
}

// setupLogging configures the global slog handler. Development gets
// human-readable text; everything else gets JSON for log aggregation.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
