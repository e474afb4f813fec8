// Package display serves the public TV/kiosk endpoint. A display is an
// unauthenticated screen in a school lobby: it knows only its school's slug
// and polls for the assembled view. The view must never include anything
// private -- no director email, no coordinates, no session data.
package display

import (
	"context"
	"log/slog"

	"github.com/harborkids/portal-server/internal/features/school"
	"github.com/harborkids/portal-server/internal/features/settings"
	"github.com/harborkids/portal-server/internal/features/weather"
)

// View is the full payload a TV display renders.
type View struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug"`
	Timezone string          `json:"timezone"`
	Content  map[string]any  `json:"content"`
	Weather  *weather.Report `json:"weather"`
	Globals  map[string]any  `json:"globals"`
}

// Service assembles display views.
type Service interface {
	GetView(ctx context.Context, slug string) (*View, error)
}

// service implements Service by composing the school, weather, and
// settings features.
type service struct {
	schools  school.Repository
	content  school.Service
	weather  weather.Service
	settings settings.Service
}

// NewService creates a new display service.
func NewService(schools school.Repository, content school.Service, w weather.Service, st settings.Service) Service {
	return &service{
		schools:  schools,
		content:  content,
		weather:  w,
		settings: st,
	}
}

// GetView resolves a school by slug and assembles its display payload.
// Weather is only fetched when the school has coordinates configured, and
// its absence never fails the view. Global settings likewise degrade to an
// empty map on failure -- a display with stale globals beats a dark screen.
func (s *service) GetView(ctx context.Context, slug string) (*View, error) {
	sch, err := s.schools.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	content, err := s.content.GetContent(ctx, sch.ID)
	if err != nil {
		return nil, err
	}

	var report *weather.Report
	if sch.Latitude != nil && sch.Longitude != nil {
		report = s.weather.Get(ctx, *sch.Latitude, *sch.Longitude)
	}

	globals, err := s.settings.GetAll(ctx)
	if err != nil {
		slog.Warn("loading globals for display failed",
			slog.String("slug", slug),
			slog.Any("error", err),
		)
		globals = map[string]any{}
	}

	return &View{
		ID:       sch.ID,
		Title:    sch.Title,
		Slug:     sch.Slug,
		Timezone: sch.Timezone,
		Content:  content.Content,
		Weather:  report,
		Globals:  globals,
	}, nil
}
