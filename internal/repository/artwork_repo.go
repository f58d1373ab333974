package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/internal/models"
)

// artworkRepo is the PostgreSQL implementation of ArtworkRepository
type artworkRepo struct {
	db *database.DB
}

// NewArtworkRepo creates a new artwork repository
func NewArtworkRepo(db *database.DB) ArtworkRepository {
	return &artworkRepo{db: db}
}

// Insert stores a pending artwork and its "submitted" log entry in one transaction
func (r *artworkRepo) Insert(ctx context.Context, art *models.Artwork, entry *models.ModerationLogEntry) error {
	query := `
		INSERT INTO artworks (title, description, artist_name, indigenous_community,
			creation_technique, materials_used, cultural_significance,
			art_type_id, period_id, region_id,
			latitude, longitude, location_name, country, is_sensitive_location,
			submitted_by, submitted_at, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			(SELECT id FROM art_types WHERE code = $8),
			(SELECT id FROM art_periods WHERE code = $9),
			(SELECT id FROM regions WHERE code = $10),
			$11, $12, $13, $14, $15, $16, $17, $18, $17)
		RETURNING id
	`

	inserted := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query,
			art.Title, art.Description, nullStringPtr(art.ArtistName), nullStringPtr(art.Community),
			art.CreationTechnique, art.MaterialsUsed, art.CulturalSignificance,
			nullString(refCode(art.ArtType)), nullString(refCode(art.Period)), nullString(refCode(art.Region)),
			nullFloat(art.Location.Latitude), nullFloat(art.Location.Longitude),
			art.Location.Name, art.Location.Country, art.Location.Sensitive,
			art.SubmittedBy, art.SubmittedAt, string(art.Status),
		).Scan(&art.ID)
		if err != nil {
			return fmt.Errorf("failed to insert artwork: %w", translateError(err))
		}
		inserted = true

		entry.ArtworkID = art.ID
		if err := insertLogEntry(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to append submission log entry: %w", err)
		}
		return nil
	})
	if err != nil {
		art.ID = 0
		return partialWriteError(err, inserted)
	}
	art.UpdatedAt = art.SubmittedAt
	return nil
}

// GetByID retrieves an artwork without touching its view count
func (r *artworkRepo) GetByID(ctx context.Context, id int64) (*models.Artwork, error) {
	return getArtwork(ctx, r.db, id)
}

// View increments the view count and reads the record in one transaction
func (r *artworkRepo) View(ctx context.Context, id int64) (*models.Artwork, error) {
	var art *models.Artwork
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE artworks SET view_count = view_count + 1 WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to increment view count: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return models.ErrNotFound
		}
		art, err = getArtwork(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return art, nil
}

// List returns artworks matching the filter in the requested order
func (r *artworkRepo) List(ctx context.Context, filter models.ArtworkFilter) ([]*models.Artwork, error) {
	where, args := buildArtworkWhere(filter, 1)
	query := "SELECT " + artworkColumns + artworkJoins + " " + where + " " + buildArtworkOrderBy(filter.Sort)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artworks: %w", err)
	}
	defer rows.Close()

	artworks := make([]*models.Artwork, 0)
	for rows.Next() {
		art, err := scanArtwork(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artwork: %w", err)
		}
		artworks = append(artworks, art)
	}
	return artworks, rows.Err()
}

// Update applies a partial edit of descriptive fields
func (r *artworkRepo) Update(ctx context.Context, id int64, update models.ArtworkUpdate, expected *models.ArtworkStatus, at time.Time) (*models.Artwork, error) {
	sets, args := buildArtworkSet(update)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, at, id)

	query := fmt.Sprintf("UPDATE artworks SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if expected != nil {
		args = append(args, string(*expected))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update artwork: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		if expected == nil {
			return nil, models.ErrNotFound
		}
		// Distinguish a missing record from one that left the expected status
		if _, err := getArtwork(ctx, r.db, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: artwork %d is no longer %s", models.ErrForbidden, id, *expected)
	}
	return getArtwork(ctx, r.db, id)
}

// Transition performs the status change guarded by the expected current status,
// so concurrent moderators serialize on the row and only the first succeeds
func (r *artworkRepo) Transition(ctx context.Context, t models.Transition) (*models.Artwork, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	dateColumn := "approved_at"
	reason := sql.NullString{}
	if t.To == models.StatusRejected {
		dateColumn = "rejected_at"
		reason = sql.NullString{String: t.Notes, Valid: true}
	}

	query := fmt.Sprintf(`
		UPDATE artworks
		SET status = $1, %s = $2, moderation_notes = $3, rejection_reason = $4, updated_at = $2
		WHERE id = $5 AND status = $6
	`, dateColumn)

	updated := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, string(t.To), t.At, t.Notes, reason, t.ArtworkID, string(t.From))
		if err != nil {
			return fmt.Errorf("failed to update artwork status: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			var current string
			err := tx.QueryRowContext(ctx, `SELECT status FROM artworks WHERE id = $1`, t.ArtworkID).Scan(&current)
			if err != nil {
				return translateError(err)
			}
			return fmt.Errorf("%w: artwork %d is %s", models.ErrInvalidTransition, t.ArtworkID, current)
		}
		updated = true

		entry := &models.ModerationLogEntry{
			ArtworkID:   t.ArtworkID,
			Action:      t.Action,
			PerformedBy: t.PerformedBy,
			Notes:       t.Notes,
			NewStatus:   t.To,
			CreatedAt:   t.At,
		}
		if err := insertLogEntry(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to append moderation log entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, partialWriteError(err, updated)
	}
	return getArtwork(ctx, r.db, t.ArtworkID)
}

// Delete removes an artwork; images and flags cascade, log entries remain
func (r *artworkRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM artworks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete artwork: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// AddImage stores an image reference; a new primary image demotes the previous one
func (r *artworkRepo) AddImage(ctx context.Context, img *models.ArtworkImage) error {
	query := `
		INSERT INTO artwork_images (artwork_id, image_path, caption, is_primary, display_order, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(display_order) + 1, 0) FROM artwork_images WHERE artwork_id = $1),
			$5, $6)
		RETURNING id, display_order
	`
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if img.IsPrimary {
			_, err := tx.ExecContext(ctx,
				`UPDATE artwork_images SET is_primary = FALSE WHERE artwork_id = $1 AND is_primary`, img.ArtworkID)
			if err != nil {
				return fmt.Errorf("failed to demote primary image: %w", err)
			}
		}
		err := tx.QueryRowContext(ctx, query,
			img.ArtworkID, img.ImagePath, img.Caption, img.IsPrimary, img.FileSize, img.UploadedAt,
		).Scan(&img.ID, &img.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to insert image: %w", translateError(err))
		}
		return nil
	})
}

// Images lists an artwork's images, primary first then by display order
func (r *artworkRepo) Images(ctx context.Context, artworkID int64) ([]models.ArtworkImage, error) {
	query := `
		SELECT id, artwork_id, image_path, caption, is_primary, display_order, file_size, uploaded_at
		FROM artwork_images WHERE artwork_id = $1
		ORDER BY is_primary DESC, display_order, id
	`
	rows, err := r.db.QueryContext(ctx, query, artworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]models.ArtworkImage, 0)
	for rows.Next() {
		var img models.ArtworkImage
		if err := rows.Scan(&img.ID, &img.ArtworkID, &img.ImagePath, &img.Caption,
			&img.IsPrimary, &img.DisplayOrder, &img.FileSize, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// CountByStatus returns the number of artworks per status
func (r *artworkRepo) CountByStatus(ctx context.Context) (map[models.ArtworkStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM artworks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count artworks: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ArtworkStatus]int, len(models.ValidStatuses))
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.ArtworkStatus(status)] = count
	}
	return counts, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func getArtwork(ctx context.Context, q queryer, id int64) (*models.Artwork, error) {
	query := "SELECT " + artworkColumns + artworkJoins + " WHERE a.id = $1"
	art, err := scanArtwork(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get artwork: %w", err)
	}
	return art, nil
}

func scanArtwork(row rowScanner) (*models.Artwork, error) {
	var art models.Artwork
	var artistName, community, rejectionReason sql.NullString
	var typeCode, typeName, periodCode, periodName, regionCode, regionName sql.NullString
	var lat, lon sql.NullFloat64
	var approvedAt, rejectedAt sql.NullTime
	var status string

	err := row.Scan(
		&art.ID, &art.Title, &art.Description, &artistName, &community,
		&art.CreationTechnique, &art.MaterialsUsed, &art.CulturalSignificance,
		&typeCode, &typeName, &periodCode, &periodName, &regionCode, &regionName,
		&lat, &lon, &art.Location.Name, &art.Location.Country, &art.Location.Sensitive,
		&art.SubmittedBy, &art.SubmitterUsername, &art.SubmittedAt, &status,
		&approvedAt, &rejectedAt, &rejectionReason, &art.ModerationNotes,
		&art.ViewCount, &art.UpdatedAt, &art.PrimaryImage,
	)
	if err != nil {
		return nil, err
	}

	art.ArtistName = stringPtr(artistName)
	art.Community = stringPtr(community)
	art.RejectionReason = stringPtr(rejectionReason)
	art.ArtType = taxonomyRef(typeCode, typeName)
	art.Period = taxonomyRef(periodCode, periodName)
	art.Region = taxonomyRef(regionCode, regionName)
	art.Location.Latitude = floatPtr(lat)
	art.Location.Longitude = floatPtr(lon)
	art.Status = models.ArtworkStatus(status)
	art.ApprovedAt = timePtr(approvedAt)
	art.RejectedAt = timePtr(rejectedAt)
	return &art, nil
}

// buildArtworkSet turns a partial update into SET assignments numbered from $1
func buildArtworkSet(u models.ArtworkUpdate) ([]string, []interface{}) {
	var sets []string
	var args []interface{}
	add := func(expr string, arg interface{}) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if u.Title != nil {
		add("title = $%d", *u.Title)
	}
	if u.Description != nil {
		add("description = $%d", *u.Description)
	}
	if u.ArtistName != nil {
		add("artist_name = $%d", nullStringPtr(u.ArtistName))
	}
	if u.Community != nil {
		add("indigenous_community = $%d", nullStringPtr(u.Community))
	}
	if u.CreationTechnique != nil {
		add("creation_technique = $%d", *u.CreationTechnique)
	}
	if u.MaterialsUsed != nil {
		add("materials_used = $%d", *u.MaterialsUsed)
	}
	if u.CulturalSignificance != nil {
		add("cultural_significance = $%d", *u.CulturalSignificance)
	}
	if u.ArtType != nil {
		add("art_type_id = (SELECT id FROM art_types WHERE code = $%d)", nullStringPtr(u.ArtType))
	}
	if u.Period != nil {
		add("period_id = (SELECT id FROM art_periods WHERE code = $%d)", nullStringPtr(u.Period))
	}
	if u.Region != nil {
		add("region_id = (SELECT id FROM regions WHERE code = $%d)", nullStringPtr(u.Region))
	}
	if u.Latitude != nil {
		add("latitude = $%d", *u.Latitude)
	}
	if u.Longitude != nil {
		add("longitude = $%d", *u.Longitude)
	}
	if u.LocationName != nil {
		add("location_name = $%d", *u.LocationName)
	}
	if u.Country != nil {
		add("country = $%d", *u.Country)
	}
	if u.Sensitive != nil {
		add("is_sensitive_location = $%d", *u.Sensitive)
	}
	return sets, args
}

func insertLogEntry(ctx context.Context, q queryer, entry *models.ModerationLogEntry) error {
	query := `
		INSERT INTO moderation_log (artwork_id, action, performed_by, notes, new_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return q.QueryRowContext(ctx, query,
		entry.ArtworkID, string(entry.Action), entry.PerformedBy, entry.Notes, string(entry.NewStatus), entry.CreatedAt,
	).Scan(&entry.ID)
}

// partialWriteError marks a failed multi-step write as inconsistent when an
// earlier step succeeded and the rollback could not undo it
func partialWriteError(err error, partial bool) error {
	var rbErr *database.RollbackError
	if partial && errors.As(err, &rbErr) {
		return fmt.Errorf("%w: %v", models.ErrInconsistency, err)
	}
	return err
}

func refCode(ref *models.TaxonomyRef) string {
	if ref == nil {
		return ""
	}
	return ref.Code
}

func taxonomyRef(code, name sql.NullString) *models.TaxonomyRef {
	if !code.Valid {
		return nil
	}
	return &models.TaxonomyRef{Code: code.String, Name: name.String}
}
