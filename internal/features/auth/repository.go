package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FamilyRepository defines the data access contract for family credential
// records. All SQL lives in the concrete implementation.
type FamilyRepository interface {
	// FindByLookupHash returns every family whose fast PIN lookup hash
	// matches. More than one row can match (the lookup hash is not
	// required to be unique); the caller verifies each candidate against
	// the slow hash.
	FindByLookupHash(ctx context.Context, lookupHash string) ([]Family, error)

	// UpdateLastLogin sets last_login_at to now for the given family.
	UpdateLastLogin(ctx context.Context, id int64) error
}

// familyRepository implements FamilyRepository with MariaDB queries.
type familyRepository struct {
	db *sql.DB
}

// NewFamilyRepository creates a new family repository backed by the given DB pool.
func NewFamilyRepository(db *sql.DB) FamilyRepository {
	return &familyRepository{db: db}
}

// FindByLookupHash retrieves candidate families by the indexed lookup hash.
func (r *familyRepository) FindByLookupHash(ctx context.Context, lookupHash string) ([]Family, error) {
	query := `SELECT id, name, pin_lookup_hash, pin_verify_hash, created_at, last_login_at
	          FROM families WHERE pin_lookup_hash = ?`

	rows, err := r.db.QueryContext(ctx, query, lookupHash)
	if err != nil {
		return nil, fmt.Errorf("querying families by lookup hash: %w", err)
	}
	defer rows.Close()

	var families []Family
	for rows.Next() {
		var f Family
		var lastLogin sql.NullTime
		if err := rows.Scan(&f.ID, &f.Name, &f.PINLookupHash, &f.PINVerifyHash, &f.CreatedAt, &lastLogin); err != nil {
			return nil, fmt.Errorf("scanning family row: %w", err)
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			f.LastLoginAt = &t
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

// UpdateLastLogin stamps the last successful login time.
func (r *familyRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	query := `UPDATE families SET last_login_at = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}
