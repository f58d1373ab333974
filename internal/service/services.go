package service

import (
	"context"

	"github.com/indigenous-art-atlas/internal/config"
	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/policy"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/validation"
	"github.com/rs/zerolog"
)

// CatalogService defines filtered retrieval and owner edits of artworks
type CatalogService interface {
	List(ctx context.Context, actor *models.Actor, query models.ArtworkQuery) ([]*models.Artwork, error)
	Get(ctx context.Context, actor *models.Actor, id int64) (*models.Artwork, error)
	Edit(ctx context.Context, actor *models.Actor, id int64, req *models.EditRequest) (*models.Artwork, error)
	AttachImage(ctx context.Context, actor *models.Actor, id int64, req *models.ImageRequest) (*models.ArtworkImage, error)
	Taxonomies(ctx context.Context) (*models.Taxonomies, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// SubmissionService defines creation of pending artworks
type SubmissionService interface {
	Submit(ctx context.Context, actor *models.Actor, req *models.SubmitRequest) (*models.Artwork, error)
}

// ModerationService defines the administrator workflow over the artwork lifecycle
type ModerationService interface {
	Approve(ctx context.Context, actor *models.Actor, id int64, notes string) (*models.Artwork, error)
	Reject(ctx context.Context, actor *models.Actor, id int64, notes string) (*models.Artwork, error)
	Delete(ctx context.Context, actor *models.Actor, id int64) error
	ListByStatus(ctx context.Context, actor *models.Actor, status string) ([]*models.Artwork, error)
	Pending(ctx context.Context, actor *models.Actor) ([]*models.Artwork, error)
	Log(ctx context.Context, actor *models.Actor, limit int) ([]*models.ModerationLogEntry, error)
	History(ctx context.Context, actor *models.Actor, artworkID int64) ([]*models.ModerationLogEntry, error)
}

// FlagService defines community flags and their resolution
type FlagService interface {
	File(ctx context.Context, actor *models.Actor, artworkID int64, req *models.FlagRequest) (*models.Flag, error)
	Resolve(ctx context.Context, actor *models.Actor, flagID int64) (*models.Flag, error)
	Delete(ctx context.Context, actor *models.Actor, flagID int64) (bool, error)
	List(ctx context.Context, actor *models.Actor, status string) ([]*models.Flag, error)
}

// AdminService defines account administration
type AdminService interface {
	ListUsers(ctx context.Context, actor *models.Actor) ([]*models.User, error)
	SetUserActive(ctx context.Context, actor *models.Actor, userID int64, req *models.UserStatusRequest) (*models.User, error)
}

// Services holds all service interfaces
type Services struct {
	Catalog    CatalogService
	Submission SubmissionService
	Moderation ModerationService
	Flags      FlagService
	Admin      AdminService
}

// NewServices creates all services using the system clock
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return NewServicesWithClock(repos, cfg, log, SystemClock())
}

// NewServicesWithClock creates all services with an injected clock
func NewServicesWithClock(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, clock Clock) *Services {
	v := validation.NewValidator()
	obfuscator := policy.NewLocationObfuscator(cfg.Catalog.ObfuscationDegrees)
	taxonomies := newTaxonomyCache(repos.Taxonomy, cfg.Catalog.TaxonomyCacheTTL)

	return &Services{
		Catalog:    newCatalogService(repos, taxonomies, obfuscator, v, clock, log),
		Submission: newSubmissionService(repos.Artwork, taxonomies, v, clock, log),
		Moderation: newModerationService(repos, obfuscator, v, clock, cfg.Catalog.LogMaxLimit, log),
		Flags:      newFlagService(repos, v, clock, log),
		Admin:      newAdminService(repos.User, v, log),
	}
}

// requireActor fails with ErrUnauthorized for anonymous or inactive callers
func requireActor(actor *models.Actor) error {
	if !policy.IsAuthenticated(actor) {
		return models.ErrUnauthorized
	}
	return nil
}

// requireAdmin fails with ErrUnauthorized for anonymous callers and ErrForbidden for non-admins
func requireAdmin(actor *models.Actor, allowed func(*models.Actor) bool) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !allowed(actor) {
		return models.ErrForbidden
	}
	return nil
}

func actorID(actor *models.Actor) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
