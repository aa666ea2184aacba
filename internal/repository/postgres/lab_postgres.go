package postgres

import (
	"context"
	"database/sql"

	"github.com/sajor2000/labmanager-sub005/internal/model"
	"github.com/sajor2000/labmanager-sub005/internal/repository"
)

// LabPostgres is a PostgreSQL implementation of repository.LabRepository.
// Counter mutations are single UPDATE statements so they stay atomic under
// concurrent commits to the same lab.
type LabPostgres struct {
	db *sql.DB
}

// NewLabPostgres creates a new LabPostgres repository.
func NewLabPostgres(db *sql.DB) *LabPostgres {
	return &LabPostgres{db: db}
}

var _ repository.LabRepository = (*LabPostgres)(nil)

// FindByID fetches a lab by its ID.
func (r *LabPostgres) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	const q = `SELECT id, name, storage_used, storage_limit, created_at FROM labs WHERE id = $1`
	var l model.Lab
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&l.ID,
		&l.Name,
		&l.StorageUsed,
		&l.StorageLimit,
		&l.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

// AddUsage atomically adds bytes to storage_used and returns the new value.
func (r *LabPostgres) AddUsage(ctx context.Context, labID string, bytes int64) (int64, error) {
	const q = `UPDATE labs SET storage_used = storage_used + $2 WHERE id = $1 RETURNING storage_used`
	var used int64
	if err := r.db.QueryRowContext(ctx, q, labID, bytes).Scan(&used); err != nil {
		return 0, err
	}
	return used, nil
}

// SubtractUsage atomically subtracts bytes from storage_used, clamping at
// zero. The CTE captures the previous value in the same statement so callers
// can tell a clean decrement from a clamp.
func (r *LabPostgres) SubtractUsage(ctx context.Context, labID string, bytes int64) (repository.UsageDelta, error) {
	const q = `
		WITH prev AS (SELECT storage_used FROM labs WHERE id = $1)
		UPDATE labs SET storage_used = GREATEST(storage_used - $2, 0)
		WHERE id = $1
		RETURNING storage_used, (SELECT storage_used FROM prev)
	`
	var delta repository.UsageDelta
	if err := r.db.QueryRowContext(ctx, q, labID, bytes).Scan(&delta.Current, &delta.Previous); err != nil {
		return repository.UsageDelta{}, err
	}
	return delta, nil
}

// SetUsage overwrites storage_used, used by the reconciliation pass.
func (r *LabPostgres) SetUsage(ctx context.Context, labID string, bytes int64) error {
	const q = `UPDATE labs SET storage_used = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, labID, bytes)
	return err
}

// ListIDs returns all lab ids.
func (r *LabPostgres) ListIDs(ctx context.Context) ([]string, error) {
	const q = `SELECT id FROM labs ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
