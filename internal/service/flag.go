package service

import (
	"context"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/policy"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/validation"
	"github.com/rs/zerolog"
)

// flagService is the concrete implementation of FlagService
type flagService struct {
	flags     repository.FlagRepository
	artworks  repository.ArtworkRepository
	validator *validation.Validator
	clock     Clock
	log       zerolog.Logger
}

func newFlagService(repos *repository.Repositories, v *validation.Validator, clock Clock, log zerolog.Logger) *flagService {
	return &flagService{
		flags:     repos.Flag,
		artworks:  repos.Artwork,
		validator: v,
		clock:     clock,
		log:       log.With().Str("service", "flags").Logger(),
	}
}

// File records a community flag. Anonymous callers are stored without a reporter.
func (s *flagService) File(ctx context.Context, actor *models.Actor, artworkID int64, req *models.FlagRequest) (*models.Flag, error) {
	if err := s.validator.ValidateFlag(req); err != nil {
		return nil, err
	}

	art, err := s.artworks.GetByID(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	if !policy.CanFlag(actor, art) {
		return nil, models.ErrNotFound
	}

	flag := &models.Flag{
		ArtworkID: artworkID,
		Reason:    models.FlagReason(req.Reason),
		Details:   req.Details,
		Status:    models.FlagStatusOpen,
		CreatedAt: s.clock.Now(),
	}
	if policy.IsAuthenticated(actor) {
		id := actor.ID
		flag.ReporterID = &id
	}

	if err := s.flags.Create(ctx, flag); err != nil {
		return nil, err
	}

	flagsFiledTotal.WithLabelValues(string(flag.Reason)).Inc()
	s.log.Info().
		Int64("flag_id", flag.ID).
		Int64("artwork_id", artworkID).
		Int64("actor_id", actorID(actor)).
		Str("reason", string(flag.Reason)).
		Msg("Flag filed")

	flag.ArtworkTitle = art.Title
	flag.ReporterName = models.AnonymousDisplayName
	if flag.ReporterID != nil {
		flag.ReporterName = actor.Username
	}
	return flag, nil
}

// Resolve closes an open flag. Resolving a resolved flag returns it unchanged.
func (s *flagService) Resolve(ctx context.Context, actor *models.Actor, flagID int64) (*models.Flag, error) {
	if err := requireAdmin(actor, policy.CanResolveFlag); err != nil {
		return nil, err
	}

	current, err := s.flags.GetByID(ctx, flagID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.FlagStatusResolved {
		return current, nil
	}

	flag, err := s.flags.Resolve(ctx, flagID, actor.ID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	flagsResolvedTotal.Inc()
	s.log.Info().
		Int64("flag_id", flagID).
		Int64("artwork_id", flag.ArtworkID).
		Int64("actor_id", actor.ID).
		Msg("Flag resolved")
	return flag, nil
}

// Delete removes a flag and reports whether it existed
func (s *flagService) Delete(ctx context.Context, actor *models.Actor, flagID int64) (bool, error) {
	if err := requireAdmin(actor, policy.CanResolveFlag); err != nil {
		return false, err
	}

	deleted, err := s.flags.Delete(ctx, flagID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().
			Int64("flag_id", flagID).
			Int64("actor_id", actor.ID).
			Msg("Flag deleted")
	}
	return deleted, nil
}

// List returns flags in the given status: open (default), resolved or all
func (s *flagService) List(ctx context.Context, actor *models.Actor, status string) ([]*models.Flag, error) {
	if err := requireAdmin(actor, policy.CanResolveFlag); err != nil {
		return nil, err
	}
	parsed, err := models.ParseFlagStatus(status)
	if err != nil {
		return nil, err
	}
	return s.flags.List(ctx, parsed)
}
