package service

import (
	"context"
	"errors"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/policy"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/validation"
	"github.com/rs/zerolog"
)

// submissionService is the concrete implementation of SubmissionService
type submissionService struct {
	artworks   repository.ArtworkRepository
	taxonomies *taxonomyCache
	validator  *validation.Validator
	clock      Clock
	log        zerolog.Logger
}

func newSubmissionService(
	artworks repository.ArtworkRepository,
	taxonomies *taxonomyCache,
	v *validation.Validator,
	clock Clock,
	log zerolog.Logger,
) *submissionService {
	return &submissionService{
		artworks:   artworks,
		taxonomies: taxonomies,
		validator:  v,
		clock:      clock,
		log:        log.With().Str("service", "submission").Logger(),
	}
}

// Submit creates a pending artwork owned by the actor together with its
// "submitted" log entry
func (s *submissionService) Submit(ctx context.Context, actor *models.Actor, req *models.SubmitRequest) (*models.Artwork, error) {
	if !policy.CanSubmit(actor) {
		return nil, models.ErrUnauthorized
	}
	if err := s.validator.ValidateSubmit(req); err != nil {
		return nil, err
	}

	art, err := s.buildArtwork(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	entry := &models.ModerationLogEntry{
		Action:      models.ActionSubmitted,
		PerformedBy: actor.ID,
		Notes:       models.InitialSubmissionNote,
		NewStatus:   models.StatusPending,
		CreatedAt:   art.SubmittedAt,
	}

	if err := s.artworks.Insert(ctx, art, entry); err != nil {
		if errors.Is(err, models.ErrInconsistency) {
			inconsistenciesTotal.Inc()
			s.log.Error().Err(err).
				Int64("artwork_id", art.ID).
				Int64("actor_id", actor.ID).
				Msg("Submission partially written, operator attention required")
		}
		return nil, err
	}

	submissionsTotal.Inc()
	s.log.Info().
		Int64("artwork_id", art.ID).
		Int64("actor_id", actor.ID).
		Str("title", art.Title).
		Msg("Artwork submitted")

	art.SubmitterUsername = actor.Username
	return art, nil
}

func (s *submissionService) buildArtwork(ctx context.Context, actor *models.Actor, req *models.SubmitRequest) (*models.Artwork, error) {
	artType, period, region, err := resolveTaxonomies(ctx, s.taxonomies, req.ArtType, req.Period, req.Region)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &models.Artwork{
		Title:                req.Title,
		Description:          req.Description,
		ArtistName:           req.ArtistName,
		Community:            req.Community,
		CreationTechnique:    req.CreationTechnique,
		MaterialsUsed:        req.MaterialsUsed,
		CulturalSignificance: req.CulturalSignificance,
		ArtType:              artType,
		Period:               period,
		Region:               region,
		Location: models.Location{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Name:      req.LocationName,
			Country:   req.Country,
			Sensitive: req.Sensitive,
		},
		SubmittedBy: actor.ID,
		SubmittedAt: now,
		Status:      models.StatusPending,
		UpdatedAt:   now,
	}, nil
}

// resolveTaxonomies checks all three classification codes and reports every
// unknown one at once
func resolveTaxonomies(ctx context.Context, c *taxonomyCache, artType, period, region string) (*models.TaxonomyRef, *models.TaxonomyRef, *models.TaxonomyRef, error) {
	var errs models.ValidationErrors
	refs := make([]*models.TaxonomyRef, 3)
	lookups := []struct {
		kind  models.TaxonomyKind
		field string
		code  string
	}{
		{models.TaxonomyArtTypes, "art_type", artType},
		{models.TaxonomyPeriods, "period", period},
		{models.TaxonomyRegions, "region", region},
	}
	for i, l := range lookups {
		ref, err := c.Resolve(ctx, l.kind, l.field, l.code)
		if err != nil {
			var ve models.ValidationErrors
			if !errors.As(err, &ve) {
				return nil, nil, nil, err
			}
			errs = append(errs, ve...)
			continue
		}
		refs[i] = ref
	}
	if len(errs) > 0 {
		return nil, nil, nil, errs
	}
	return refs[0], refs[1], refs[2], nil
}
