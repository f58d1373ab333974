package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/internal/models"
)

// moderationLogRepo reads moderation_log; writes happen inside artwork transactions
type moderationLogRepo struct {
	db *database.DB
}

// NewModerationLogRepo creates a new moderation log repository
func NewModerationLogRepo(db *database.DB) ModerationLogRepository {
	return &moderationLogRepo{db: db}
}

const logSelect = `
	SELECT l.id, l.artwork_id, l.action, l.performed_by, l.notes, l.new_status, l.created_at,
		a.title, COALESCE(u.username, '')
	FROM moderation_log l
	LEFT JOIN artworks a ON a.id = l.artwork_id
	LEFT JOIN users u ON u.id = l.performed_by`

// List returns the newest log entries first
func (r *moderationLogRepo) List(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error) {
	if limit <= 0 {
		limit = models.DefaultLogLimit
	}
	return r.query(ctx, logSelect+` ORDER BY l.created_at DESC, l.id DESC LIMIT $1`, limit)
}

// ListByArtwork returns one artwork's history, oldest first
func (r *moderationLogRepo) ListByArtwork(ctx context.Context, artworkID int64) ([]*models.ModerationLogEntry, error) {
	return r.query(ctx, logSelect+` WHERE l.artwork_id = $1 ORDER BY l.created_at ASC, l.id ASC`, artworkID)
}

func (r *moderationLogRepo) query(ctx context.Context, query string, args ...interface{}) ([]*models.ModerationLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read moderation log: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.ModerationLogEntry, 0)
	for rows.Next() {
		var e models.ModerationLogEntry
		var action, status string
		var title sql.NullString
		if err := rows.Scan(&e.ID, &e.ArtworkID, &action, &e.PerformedBy, &e.Notes, &status,
			&e.CreatedAt, &title, &e.PerformedByUsername); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.Action = models.ModerationAction(action)
		e.NewStatus = models.ArtworkStatus(status)
		e.ArtworkTitle = stringPtr(title)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
