package school

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Repository defines the data access contract for schools and their
// content fields. All SQL lives in the concrete implementation.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*School, error)
	FindBySlug(ctx context.Context, slug string) (*School, error)
	FindByDirectorEmail(ctx context.Context, email string) (*School, error)

	// GetFields returns the stored values for the given field keys.
	// Keys with no stored row are absent from the result map.
	GetFields(ctx context.Context, schoolID int64, keys []string) (map[string]string, error)

	// SetField upserts a single content field value.
	SetField(ctx context.Context, schoolID int64, key, value string) error
}

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new school repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const schoolColumns = `id, slug, title, director_email, timezone, latitude, longitude, created_at`

// scanSchool scans a school row from any single-row query.
func scanSchool(row *sql.Row) (*School, error) {
	s := &School{}
	err := row.Scan(
		&s.ID,
		&s.Slug,
		&s.Title,
		&s.DirectorEmail,
		&s.Timezone,
		&s.Latitude,
		&s.Longitude,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("school not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning school row: %w", err)
	}
	return s, nil
}

// FindByID retrieves a school by its numeric ID.
func (r *repository) FindByID(ctx context.Context, id int64) (*School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = ?`
	return scanSchool(r.db.QueryRowContext(ctx, query, id))
}

// FindBySlug retrieves a school by its URL slug. Used by the public TV
// display endpoint.
func (r *repository) FindBySlug(ctx context.Context, slug string) (*School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE slug = ?`
	return scanSchool(r.db.QueryRowContext(ctx, query, slug))
}

// FindByDirectorEmail retrieves the school managed by the given director.
// The director_email column is indexed so login stays O(1).
func (r *repository) FindByDirectorEmail(ctx context.Context, email string) (*School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE director_email = ?`
	return scanSchool(r.db.QueryRowContext(ctx, query, email))
}

// GetFields returns the stored content field values for the given keys.
func (r *repository) GetFields(ctx context.Context, schoolID int64, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	query := `SELECT field_key, field_value FROM school_fields
	          WHERE school_id = ? AND field_key IN (?` // first placeholder
	args := make([]any, 0, len(keys)+1)
	args = append(args, schoolID, keys[0])
	for _, key := range keys[1:] {
		query += ", ?"
		args = append(args, key)
	}
	query += ")"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying school fields: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning school field row: %w", err)
		}
		result[key] = value
	}
	return result, rows.Err()
}

// SetField upserts a content field using INSERT ... ON DUPLICATE KEY UPDATE.
func (r *repository) SetField(ctx context.Context, schoolID int64, key, value string) error {
	query := `INSERT INTO school_fields (school_id, field_key, field_value)
	          VALUES (?, ?, ?)
	          ON DUPLICATE KEY UPDATE field_value = VALUES(field_value)`

	if _, err := r.db.ExecContext(ctx, query, schoolID, key, value); err != nil {
		return fmt.Errorf("upserting school field %q: %w", key, err)
	}
	return nil
}
