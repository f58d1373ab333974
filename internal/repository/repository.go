package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/indigenous-art-atlas/internal/database"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/lib/pq"
)

// ArtworkRepository is the catalog store. Reads return models.ErrNotFound for unknown ids.
type ArtworkRepository interface {
	// Insert stores a pending artwork and its initial log entry atomically,
	// setting art.ID and entry.ArtworkID to the generated id
	Insert(ctx context.Context, art *models.Artwork, entry *models.ModerationLogEntry) error
	GetByID(ctx context.Context, id int64) (*models.Artwork, error)
	// View increments the view count and returns the updated record
	View(ctx context.Context, id int64) (*models.Artwork, error)
	List(ctx context.Context, filter models.ArtworkFilter) ([]*models.Artwork, error)
	// Update applies a partial edit. A non-nil expected status guards the write: when the record's
	// current status differs, nothing is written and models.ErrForbidden is returned.
	Update(ctx context.Context, id int64, update models.ArtworkUpdate, expected *models.ArtworkStatus, at time.Time) (*models.Artwork, error)
	// Transition applies a guarded status change and appends its log entry atomically.
	// It fails with models.ErrInvalidTransition when the current status is not t.From.
	Transition(ctx context.Context, t models.Transition) (*models.Artwork, error)
	Delete(ctx context.Context, id int64) (bool, error)
	AddImage(ctx context.Context, img *models.ArtworkImage) error
	Images(ctx context.Context, artworkID int64) ([]models.ArtworkImage, error)
	CountByStatus(ctx context.Context) (map[models.ArtworkStatus]int, error)
}

// ModerationLogRepository reads the append-only moderation audit log
type ModerationLogRepository interface {
	// List returns the newest entries first
	List(ctx context.Context, limit int) ([]*models.ModerationLogEntry, error)
	ListByArtwork(ctx context.Context, artworkID int64) ([]*models.ModerationLogEntry, error)
}

// FlagRepository defines the interface for flag data operations
type FlagRepository interface {
	// Create fails with models.ErrNotFound when the artwork does not exist
	Create(ctx context.Context, flag *models.Flag) error
	GetByID(ctx context.Context, id int64) (*models.Flag, error)
	// Resolve moves an open flag to resolved; an already resolved flag is returned unchanged
	Resolve(ctx context.Context, id, resolvedBy int64, at time.Time) (*models.Flag, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// List filters by status; nil means every status
	List(ctx context.Context, status *models.FlagStatus) ([]*models.Flag, error)
	CountOpen(ctx context.Context) (int, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.User, error)
	Count(ctx context.Context) (total int, active int, err error)
}

// TaxonomyRepository reads the closed classification tables
type TaxonomyRepository interface {
	List(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Artwork       ArtworkRepository
	ModerationLog ModerationLogRepository
	Flag          FlagRepository
	User          UserRepository
	Taxonomy      TaxonomyRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Artwork:       NewArtworkRepo(db),
		ModerationLog: NewModerationLogRepo(db),
		Flag:          NewFlagRepo(db),
		User:          NewUserRepo(db),
		Taxonomy:      NewTaxonomyRepo(db),
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// foreignKeyViolation is the PostgreSQL error code for a missing referenced row
const foreignKeyViolation = "23503"

// translateError maps driver errors onto the models error taxonomy
func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return models.ErrNotFound
	}
	return err
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
