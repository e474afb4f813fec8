package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborkids/portal-server/internal/apperror"
)

// Repository defines the data access contract for dashboard entries.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Entry, error)

	// ListByTypeAndYear returns published entries of one type whose
	// school year contains the given 4-digit year ("2026" matches both
	// "2026" and "2026-2027").
	ListByTypeAndYear(ctx context.Context, t Type, year string) ([]Entry, error)

	// ListYears returns the distinct school-year labels, newest first.
	ListYears(ctx context.Context) ([]string, error)

	// ListTermGroups returns the distinct term labels used by one type.
	ListTermGroups(ctx context.Context, t Type) ([]string, error)

	Create(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id string) error
}

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a new content repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const entryColumns = `id, content_type, title, body, pdf_url, school_year,
	term_group, school_name, priority, event_date, created_at, updated_at`

// scanEntry scans one entry row.
func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	e := &Entry{}
	var pdfURL, eventDate sql.NullString
	err := scan(
		&e.ID, &e.Type, &e.Title, &e.Body, &pdfURL, &e.SchoolYear,
		&e.TermGroup, &e.SchoolName, &e.Priority, &eventDate,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.PDFURL = pdfURL.String
	e.EventDate = eventDate.String
	return e, nil
}

// FindByID retrieves a single entry.
func (r *repository) FindByID(ctx context.Context, id string) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM content_entries WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("content not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry by id: %w", err)
	}
	return e, nil
}

// ListByTypeAndYear lists one category for the dashboard, highest priority
// first, then newest.
func (r *repository) ListByTypeAndYear(ctx context.Context, t Type, year string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM content_entries
	          WHERE content_type = ? AND school_year LIKE CONCAT('%', ?, '%')
	          ORDER BY priority DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, t, year)
	if err != nil {
		return nil, fmt.Errorf("listing %s entries: %w", t, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListYears returns the distinct school-year labels, newest first.
func (r *repository) ListYears(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT school_year FROM content_entries ORDER BY school_year DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing school years: %w", err)
	}
	defer rows.Close()

	var years []string
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scanning year row: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// ListTermGroups returns the distinct term labels for one entry type.
func (r *repository) ListTermGroups(ctx context.Context, t Type) ([]string, error) {
	query := `SELECT DISTINCT term_group FROM content_entries
	          WHERE content_type = ? AND term_group <> '' ORDER BY term_group`

	rows, err := r.db.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("listing term groups: %w", err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scanning term group row: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Create inserts a new entry row.
func (r *repository) Create(ctx context.Context, e *Entry) error {
	query := `INSERT INTO content_entries
	          (id, content_type, title, body, pdf_url, school_year, term_group,
	           school_name, priority, event_date, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Type, e.Title, e.Body, nullable(e.PDFURL), e.SchoolYear,
		e.TermGroup, e.SchoolName, e.Priority, nullable(e.EventDate),
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// Update rewrites all mutable columns of an entry row.
func (r *repository) Update(ctx context.Context, e *Entry) error {
	query := `UPDATE content_entries SET
	          title = ?, body = ?, pdf_url = ?, school_year = ?, term_group = ?,
	          school_name = ?, priority = ?, event_date = ?, updated_at = ?
	          WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		e.Title, e.Body, nullable(e.PDFURL), e.SchoolYear, e.TermGroup,
		e.SchoolName, e.Priority, nullable(e.EventDate), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("content not found")
	}
	return nil
}

// Delete removes an entry row.
func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM content_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("content not found")
	}
	return nil
}

// nullable converts "" to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
