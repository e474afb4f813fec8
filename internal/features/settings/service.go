package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Service defines the business logic contract for global settings.
type Service interface {
	// GetAll returns every allowlisted setting decoded as JSON. Keys that
	// were never set decode to null.
	GetAll(ctx context.Context) (map[string]any, error)

	// Get returns one allowlisted setting decoded as JSON, or nil when it
	// was never set.
	Get(ctx context.Context, key string) (any, error)

	// Set validates and stores a setting document.
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// service implements Service on top of the settings repository.
type service struct {
	repo Repository
}

// NewService creates a new settings service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetAll enumerates the allowlist so the response shape is stable even
// when nothing has been stored yet.
func (s *service) GetAll(ctx context.Context) (map[string]any, error) {
	stored, err := s.repo.GetAll(ctx, settingKeys)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading settings: %w", err))
	}

	values := make(map[string]any, len(settingKeys))
	for _, key := range settingKeys {
		raw, ok := stored[key]
		if !ok {
			values[key] = nil
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			// A corrupt document shouldn't take down the display.
			slog.Warn("discarding corrupt setting document", slog.String("key", key))
			values[key] = nil
			continue
		}
		values[key] = decoded
	}
	return values, nil
}

// Get reads one setting document. Unset and corrupt documents both come
// back as nil, matching what GetAll reports for them.
func (s *service) Get(ctx context.Context, key string) (any, error) {
	if !isKnownKey(key) {
		return nil, apperror.NewNotFound("unknown setting")
	}

	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewInternal(fmt.Errorf("loading setting %s: %w", key, err))
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		slog.Warn("discarding corrupt setting document", slog.String("key", key))
		return nil, nil
	}
	return decoded, nil
}

// Set stores a JSON document under an allowlisted key.
func (s *service) Set(ctx context.Context, key string, value json.RawMessage) error {
	if !isKnownKey(key) {
		return apperror.NewNotFound("unknown setting")
	}
	if !json.Valid(value) {
		return apperror.NewValidation("value must be valid JSON")
	}

	if err := s.repo.Set(ctx, key, string(value)); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing setting: %w", err))
	}

	slog.Info("setting updated", slog.String("key", key))
	return nil
}
