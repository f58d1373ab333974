package service

import (
	"context"
	"fmt"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/policy"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/validation"
	"github.com/rs/zerolog"
)

// catalogService is the concrete implementation of CatalogService
type catalogService struct {
	artworks   repository.ArtworkRepository
	users      repository.UserRepository
	flags      repository.FlagRepository
	taxonomies *taxonomyCache
	obfuscator *policy.LocationObfuscator
	validator  *validation.Validator
	clock      Clock
	log        zerolog.Logger
}

func newCatalogService(
	repos *repository.Repositories,
	taxonomies *taxonomyCache,
	obfuscator *policy.LocationObfuscator,
	v *validation.Validator,
	clock Clock,
	log zerolog.Logger,
) *catalogService {
	return &catalogService{
		artworks:   repos.Artwork,
		users:      repos.User,
		flags:      repos.Flag,
		taxonomies: taxonomies,
		obfuscator: obfuscator,
		validator:  v,
		clock:      clock,
		log:        log.With().Str("service", "catalog").Logger(),
	}
}

// List returns the artworks matching every given facet. Without a status only
// approved records are listed; other statuses and "all" are for administrators.
func (s *catalogService) List(ctx context.Context, actor *models.Actor, query models.ArtworkQuery) ([]*models.Artwork, error) {
	if err := s.validator.ValidateQuery(&query); err != nil {
		return nil, err
	}

	filter, err := buildFilter(actor, query)
	if err != nil {
		return nil, err
	}

	artworks, err := s.artworks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list artworks: %w", err)
	}
	for _, art := range artworks {
		s.obfuscator.Apply(actor, art)
	}
	return artworks, nil
}

// buildFilter turns raw query parameters into a store filter, enforcing status visibility
func buildFilter(actor *models.Actor, query models.ArtworkQuery) (models.ArtworkFilter, error) {
	sort, err := models.ParseArtworkSort(query.Sort)
	if err != nil {
		return models.ArtworkFilter{}, err
	}

	filter := models.ArtworkFilter{
		Search:  query.Search,
		ArtType: query.ArtType,
		Period:  query.Period,
		Region:  query.Region,
		Sort:    sort,
	}

	switch query.Status {
	case "":
		status := models.StatusApproved
		filter.Status = &status
	case "all":
		if !actor.IsAdmin() {
			return models.ArtworkFilter{}, models.ErrForbidden
		}
	default:
		status, err := models.ParseArtworkStatus(query.Status)
		if err != nil {
			return models.ArtworkFilter{}, err
		}
		if !policy.CanViewStatus(actor, status) {
			return models.ArtworkFilter{}, models.ErrForbidden
		}
		filter.Status = &status
	}
	return filter, nil
}

// Get returns one artwork with its images and counts the view. Records the
// caller may not see are reported as not found.
func (s *catalogService) Get(ctx context.Context, actor *models.Actor, id int64) (*models.Artwork, error) {
	art, err := s.artworks.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, art) {
		return nil, models.ErrNotFound
	}

	images, err := s.artworks.Images(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	art.Images = images
	if art.Images == nil {
		art.Images = []models.ArtworkImage{}
	}

	s.obfuscator.Apply(actor, art)
	return art, nil
}

// Edit changes descriptive fields. Status and moderation fields are never touched.
func (s *catalogService) Edit(ctx context.Context, actor *models.Actor, id int64, req *models.EditRequest) (*models.Artwork, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateEdit(req); err != nil {
		return nil, err
	}

	art, err := s.artworks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, art) {
		return nil, models.ErrNotFound
	}
	if !policy.CanEdit(actor, art) {
		return nil, models.ErrForbidden
	}

	if _, _, _, err := resolveTaxonomies(ctx, s.taxonomies, deref(req.ArtType), deref(req.Period), deref(req.Region)); err != nil {
		return nil, err
	}

	// Owners may only edit while pending; the store re-checks that at write time
	var expected *models.ArtworkStatus
	if !actor.IsAdmin() {
		pending := models.StatusPending
		expected = &pending
	}

	updated, err := s.artworks.Update(ctx, id, req.Update(), expected, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("artwork_id", id).
		Int64("actor_id", actor.ID).
		Msg("Artwork edited")

	s.obfuscator.Apply(actor, updated)
	return updated, nil
}

// AttachImage stores an image reference produced by the upload collaborator
func (s *catalogService) AttachImage(ctx context.Context, actor *models.Actor, id int64, req *models.ImageRequest) (*models.ArtworkImage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateImage(req); err != nil {
		return nil, err
	}

	art, err := s.artworks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, art) {
		return nil, models.ErrNotFound
	}
	if !policy.CanAttachImage(actor, art) {
		return nil, models.ErrForbidden
	}

	img := &models.ArtworkImage{
		ArtworkID:  id,
		ImagePath:  req.ImagePath,
		Caption:    req.Caption,
		IsPrimary:  req.IsPrimary,
		FileSize:   req.FileSize,
		UploadedAt: s.clock.Now(),
	}
	if err := s.artworks.AddImage(ctx, img); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("artwork_id", id).
		Int64("image_id", img.ID).
		Bool("primary", img.IsPrimary).
		Msg("Image attached")
	return img, nil
}

// Taxonomies returns every classification table
func (s *catalogService) Taxonomies(ctx context.Context) (*models.Taxonomies, error) {
	return s.taxonomies.All(ctx)
}

// Stats returns public catalog counters
func (s *catalogService) Stats(ctx context.Context) (*models.Stats, error) {
	counts, err := s.artworks.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count artworks: %w", err)
	}
	total, active, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	open, err := s.flags.CountOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count flags: %w", err)
	}

	return &models.Stats{
		ApprovedArtworks: counts[models.StatusApproved],
		PendingArtworks:  counts[models.StatusPending],
		RejectedArtworks: counts[models.StatusRejected],
		TotalUsers:       total,
		ActiveUsers:      active,
		OpenFlags:        open,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

