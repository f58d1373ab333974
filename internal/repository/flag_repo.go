package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/internal/models"
)

// flagRepo is the concrete implementation of FlagRepository
type flagRepo struct {
	db *database.DB
}

// NewFlagRepo creates a new flag repository
func NewFlagRepo(db *database.DB) FlagRepository {
	return &flagRepo{db: db}
}

const flagSelect = `
	SELECT f.id, f.artwork_id, f.reporter_id, f.reason, f.details, f.status,
		f.created_at, f.resolved_at, f.resolved_by,
		COALESCE(a.title, '` + models.UnknownDisplayName + `'),
		CASE WHEN f.reporter_id IS NULL THEN '` + models.AnonymousDisplayName + `'
			ELSE COALESCE(u.username, '` + models.UnknownDisplayName + `') END
	FROM flags f
	LEFT JOIN artworks a ON a.id = f.artwork_id
	LEFT JOIN users u ON u.id = f.reporter_id`

// Create inserts a new flag; a missing artwork surfaces as models.ErrNotFound
func (r *flagRepo) Create(ctx context.Context, flag *models.Flag) error {
	query := `
		INSERT INTO flags (artwork_id, reporter_id, reason, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var reporter sql.NullInt64
	if flag.ReporterID != nil {
		reporter = sql.NullInt64{Int64: *flag.ReporterID, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		flag.ArtworkID, reporter, string(flag.Reason), flag.Details, string(flag.Status), flag.CreatedAt,
	).Scan(&flag.ID)
	if err != nil {
		return fmt.Errorf("failed to create flag: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a flag with its joined display fields
func (r *flagRepo) GetByID(ctx context.Context, id int64) (*models.Flag, error) {
	flag, err := scanFlag(r.db.QueryRowContext(ctx, flagSelect+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return flag, nil
}

// Resolve marks an open flag resolved; resolving twice leaves the first resolution intact
func (r *flagRepo) Resolve(ctx context.Context, id, resolvedBy int64, at time.Time) (*models.Flag, error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE flags SET status = $1, resolved_at = $2, resolved_by = $3
		WHERE id = $4 AND status = $5
	`, string(models.FlagStatusResolved), at, resolvedBy, id, string(models.FlagStatusOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve flag: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a flag
func (r *flagRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flags WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete flag: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// List returns flags newest first, optionally filtered by status
func (r *flagRepo) List(ctx context.Context, status *models.FlagStatus) ([]*models.Flag, error) {
	query := flagSelect
	var args []interface{}
	if status != nil {
		query += ` WHERE f.status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY f.created_at DESC, f.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	defer rows.Close()

	flags := make([]*models.Flag, 0)
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}

// CountOpen returns the number of unresolved flags
func (r *flagRepo) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flags WHERE status = $1`, string(models.FlagStatusOpen)).Scan(&count)
	return count, err
}

func scanFlag(row rowScanner) (*models.Flag, error) {
	var f models.Flag
	var reporter, resolvedBy sql.NullInt64
	var resolvedAt sql.NullTime
	var reason, status string
	err := row.Scan(&f.ID, &f.ArtworkID, &reporter, &reason, &f.Details, &status,
		&f.CreatedAt, &resolvedAt, &resolvedBy, &f.ArtworkTitle, &f.ReporterName)
	if err != nil {
		return nil, err
	}
	f.Reason = models.FlagReason(reason)
	f.Status = models.FlagStatus(status)
	f.ResolvedAt = timePtr(resolvedAt)
	if reporter.Valid {
		f.ReporterID = &reporter.Int64
	}
	if resolvedBy.Valid {
		f.ResolvedBy = &resolvedBy.Int64
	}
	return &f, nil
}
