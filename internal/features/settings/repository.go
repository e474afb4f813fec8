package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Repository defines persistence for global settings.
type Repository interface {
	// Get returns the raw stored value for a key, or sql.ErrNoRows.
	Get(ctx context.Context, key string) (string, error)

	// GetAll returns the stored values for a set of keys. Missing keys are
	// simply absent from the result.
	GetAll(ctx context.Context, keys []string) (map[string]string, error)

	// Set inserts or replaces a key's value.
	Set(ctx context.Context, key, value string) error
}

// repository implements Repository against MariaDB.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Get returns a single setting value.
func (r *repository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT setting_value FROM site_settings WHERE setting_key = ?",
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sql.ErrNoRows
		}
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, nil
}

// GetAll returns the stored values for the given keys.
func (r *repository) GetAll(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT setting_key, setting_value FROM site_settings WHERE setting_key IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating settings: %w", err)
	}
	return values, nil
}

// Set upserts a setting value.
func (r *repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO site_settings (setting_key, setting_value) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upserting setting %s: %w", key, err)
	}
	return nil
}
