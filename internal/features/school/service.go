package school

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/harborkids/portal-server/internal/apperror"
	"github.com/harborkids/portal-server/internal/sanitize"
)

// Service defines the business logic contract for school content.
// Handlers call these methods -- they never touch the repository directly.
type Service interface {
	// GetContent assembles the full allowlisted field map for a school.
	// Missing fields default to empty rather than being omitted.
	GetContent(ctx context.Context, schoolID int64) (*Content, error)

	// PatchContent applies a partial field map. Only allowlisted keys are
	// written; complex fields are replaced wholesale, scalar fields are
	// sanitized. Stamps last_updated on success. All-or-nothing result:
	// the first storage failure aborts the patch.
	PatchContent(ctx context.Context, schoolID int64, patch PatchRequest) error
}

// service implements Service on top of the school repository.
type service struct {
	repo Repository
}

// NewService creates a new school content service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetContent reads every allowlisted field for the school and assembles the
// content map the director portal and TV display consume.
func (s *service) GetContent(ctx context.Context, schoolID int64) (*Content, error) {
	sch, err := s.repo.FindByID(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.GetFields(ctx, schoolID, ContentFields())
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading fields for school %d: %w", schoolID, err))
	}

	content := make(map[string]any, len(contentFields))
	for _, key := range contentFields {
		raw, ok := stored[key]
		if !ok {
			// Enumerate every known key so clients can rely on the shape.
			if IsComplexField(key) {
				content[key] = nil
			} else {
				content[key] = ""
			}
			continue
		}
		content[key] = decodeFieldValue(key, raw)
	}

	return &Content{
		ID:      sch.ID,
		Title:   sch.Title,
		Slug:    sch.Slug,
		Content: content,
	}, nil
}

// PatchContent iterates the allowlist only -- keys the caller sends that are
// not on it are silently dropped, never stored.
func (s *service) PatchContent(ctx context.Context, schoolID int64, patch PatchRequest) error {
	if _, err := s.repo.FindByID(ctx, schoolID); err != nil {
		return err
	}

	written := 0
	for _, key := range contentFields {
		raw, ok := patch[key]
		if !ok {
			continue
		}

		value, err := encodeFieldValue(key, raw)
		if err != nil {
			return err
		}

		if err := s.repo.SetField(ctx, schoolID, key, value); err != nil {
			return apperror.NewInternal(fmt.Errorf("writing field %q for school %d: %w", key, schoolID, err))
		}
		written++
	}

	// Stamp last_updated so displays can cheaply poll for changes.
	stamp := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.repo.SetField(ctx, schoolID, lastUpdatedKey, stamp); err != nil {
		return apperror.NewInternal(fmt.Errorf("stamping last_updated for school %d: %w", schoolID, err))
	}

	slog.Info("school content patched",
		slog.Int64("school_id", schoolID),
		slog.Int("fields_written", written),
	)

	return nil
}

// encodeFieldValue converts an incoming patch value to its stored string
// form. Complex fields keep their JSON document verbatim (full replacement,
// no merge). Scalar fields must be JSON strings and are HTML-sanitized.
func encodeFieldValue(key string, raw json.RawMessage) (string, error) {
	if IsComplexField(key) {
		if !json.Valid(raw) {
			return "", apperror.NewValidation(fmt.Sprintf("field %q must be valid JSON", key))
		}
		return string(raw), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", apperror.NewValidation(fmt.Sprintf("field %q must be a string", key))
	}
	return sanitize.HTML(text), nil
}

// decodeFieldValue converts a stored string back to its response form.
// Complex fields decode to arbitrary JSON; a corrupt document degrades to
// null rather than failing the whole read.
func decodeFieldValue(key, stored string) any {
	if !IsComplexField(key) {
		return stored
	}
	var doc any
	if err := json.Unmarshal([]byte(stored), &doc); err != nil {
		slog.Warn("corrupt complex field, returning null",
			slog.String("field", key),
		)
		return nil
	}
	return doc
}
