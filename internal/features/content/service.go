package content

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborkids/portal-server/internal/apperror"
	"github.com/harborkids/portal-server/internal/sanitize"
)

// yearRe extracts the leading 4-digit year from labels like "2026-2027".
var yearRe = regexp.MustCompile(`(\d{4})`)

// Service defines the business logic contract for dashboard content.
type Service interface {
	// GetDashboard assembles all six categories for a school year.
	// An empty or unparseable year falls back to the current year.
	GetDashboard(ctx context.Context, year string) (*Dashboard, error)

	// ListYears returns the selectable school years, newest first.
	ListYears(ctx context.Context) ([]YearOption, error)

	// ListTermGroups returns the term labels in use for one entry type.
	ListTermGroups(ctx context.Context, t Type) ([]string, error)

	// Admin operations.
	Create(ctx context.Context, input CreateRequest) (*Entry, error)
	Update(ctx context.Context, id string, input UpdateRequest) (*Entry, error)
	Delete(ctx context.Context, id string) error
}

// service implements Service on top of the content repository.
type service struct {
	repo Repository
}

// NewService creates a new content service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetDashboard reads every category for the resolved year. Categories are
// independent reads; a failure in any aborts the whole response rather
// than returning a partially filled dashboard.
func (s *service) GetDashboard(ctx context.Context, year string) (*Dashboard, error) {
	resolved := resolveYear(year)

	d := &Dashboard{Year: resolved}
	for _, c := range []struct {
		t    Type
		dest *[]Entry
	}{
		{TypeAnnouncement, &d.Announcements},
		{TypeLessonPlan, &d.LessonPlans},
		{TypeMealPlan, &d.MealPlans},
		{TypeResource, &d.Resources},
		{TypeForm, &d.Forms},
		{TypeEvent, &d.Events},
	} {
		entries, err := s.repo.ListByTypeAndYear(ctx, c.t, resolved)
		if err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("loading %s entries: %w", c.t, err))
		}
		if entries == nil {
			entries = []Entry{}
		}
		*c.dest = entries
	}

	return d, nil
}

// ListYears converts stored school-year labels into picker options,
// skipping labels that don't start with a 4-digit year.
func (s *service) ListYears(ctx context.Context) ([]YearOption, error) {
	years, err := s.repo.ListYears(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing years: %w", err))
	}

	options := make([]YearOption, 0, len(years))
	for _, label := range years {
		if match := yearRe.FindString(label); match != "" {
			options = append(options, YearOption{Value: match, Label: label})
		}
	}
	return options, nil
}

// ListTermGroups returns the distinct term labels for one type.
func (s *service) ListTermGroups(ctx context.Context, t Type) ([]string, error) {
	if !IsValidType(t) {
		return nil, apperror.NewBadRequest("invalid content type")
	}

	groups, err := s.repo.ListTermGroups(ctx, t)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing term groups: %w", err))
	}
	if groups == nil {
		groups = []string{}
	}
	return groups, nil
}

// Create validates and inserts a new entry. The body is sanitized the same
// way director-edited scalar fields are.
func (s *service) Create(ctx context.Context, input CreateRequest) (*Entry, error) {
	if !IsValidType(input.Type) {
		return nil, apperror.NewValidation("invalid content type")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperror.NewValidation("title is required")
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:         uuid.NewString(),
		Type:       input.Type,
		Title:      strings.TrimSpace(input.Title),
		Body:       sanitize.HTML(input.Body),
		PDFURL:     strings.TrimSpace(input.PDFURL),
		SchoolYear: strings.TrimSpace(input.SchoolYear),
		TermGroup:  strings.TrimSpace(input.TermGroup),
		SchoolName: strings.TrimSpace(input.SchoolName),
		Priority:   input.Priority,
		EventDate:  strings.TrimSpace(input.EventDate),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating entry: %w", err))
	}

	slog.Info("content entry created",
		slog.String("id", entry.ID),
		slog.String("type", string(entry.Type)),
	)

	return entry, nil
}

// Update loads the entry, applies the submitted fields, and rewrites it.
// Empty strings leave the prior value in place, matching the admin UI's
// partial submissions.
func (s *service) Update(ctx context.Context, id string, input UpdateRequest) (*Entry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		entry.Title = strings.TrimSpace(input.Title)
	}
	if input.Body != "" {
		entry.Body = sanitize.HTML(input.Body)
	}
	if input.PDFURL != "" {
		entry.PDFURL = strings.TrimSpace(input.PDFURL)
	}
	if input.SchoolYear != "" {
		entry.SchoolYear = strings.TrimSpace(input.SchoolYear)
	}
	if input.TermGroup != "" {
		entry.TermGroup = strings.TrimSpace(input.TermGroup)
	}
	if input.SchoolName != "" {
		entry.SchoolName = strings.TrimSpace(input.SchoolName)
	}
	if input.Priority != nil {
		entry.Priority = *input.Priority
	}
	if input.EventDate != "" {
		entry.EventDate = strings.TrimSpace(input.EventDate)
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Delete removes an entry permanently.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("content entry deleted", slog.String("id", id))
	return nil
}

// resolveYear extracts a 4-digit year from the caller's input, falling
// back to the current year for empty or malformed values.
func resolveYear(year string) string {
	if match := yearRe.FindString(year); match != "" {
		return match
	}
	return time.Now().Format("2006")
}
