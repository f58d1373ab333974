package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/policy"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/validation"
	"github.com/rs/zerolog"
)

// moderationService is the concrete implementation of ModerationService
type moderationService struct {
	artworks   repository.ArtworkRepository
	logs       repository.ModerationLogRepository
	obfuscator *policy.LocationObfuscator
	validator  *validation.Validator
	clock      Clock
	maxLimit   int
	log        zerolog.Logger
}

func newModerationService(
	repos *repository.Repositories,
	obfuscator *policy.LocationObfuscator,
	v *validation.Validator,
	clock Clock,
	maxLimit int,
	log zerolog.Logger,
) *moderationService {
	if maxLimit < models.DefaultLogLimit {
		maxLimit = models.DefaultLogLimit
	}
	return &moderationService{
		artworks:   repos.Artwork,
		logs:       repos.ModerationLog,
		obfuscator: obfuscator,
		validator:  v,
		clock:      clock,
		maxLimit:   maxLimit,
		log:        log.With().Str("service", "moderation").Logger(),
	}
}

// Approve moves a pending artwork to approved
func (s *moderationService) Approve(ctx context.Context, actor *models.Actor, id int64, notes string) (*models.Artwork, error) {
	return s.transition(ctx, actor, id, notes, models.StatusApproved, models.ActionApproved)
}

// Reject moves a pending artwork to rejected, keeping the notes as the rejection reason
func (s *moderationService) Reject(ctx context.Context, actor *models.Actor, id int64, notes string) (*models.Artwork, error) {
	return s.transition(ctx, actor, id, notes, models.StatusRejected, models.ActionRejected)
}

func (s *moderationService) transition(
	ctx context.Context,
	actor *models.Actor,
	id int64,
	notes string,
	to models.ArtworkStatus,
	action models.ModerationAction,
) (*models.Artwork, error) {
	if err := requireAdmin(actor, policy.CanModerate); err != nil {
		return nil, err
	}

	req := &models.ModerationRequest{Notes: notes}
	if err := s.validator.ValidateModeration(req); err != nil {
		return nil, err
	}

	art, err := s.artworks.Transition(ctx, models.Transition{
		ArtworkID:   id,
		From:        models.StatusPending,
		To:          to,
		Action:      action,
		PerformedBy: actor.ID,
		Notes:       req.Notes,
		At:          s.clock.Now(),
	})
	if err != nil {
		moderationTransitionsTotal.WithLabelValues(string(action), outcome(err)).Inc()
		switch {
		case errors.Is(err, models.ErrInconsistency):
			inconsistenciesTotal.Inc()
			s.log.Error().Err(err).
				Int64("artwork_id", id).
				Int64("actor_id", actor.ID).
				Str("action", string(action)).
				Msg("Moderation partially written, operator attention required")
		case errors.Is(err, models.ErrInvalidTransition):
			s.log.Warn().
				Int64("artwork_id", id).
				Int64("actor_id", actor.ID).
				Str("action", string(action)).
				Msg("Transition refused, artwork is not pending")
		}
		return nil, err
	}

	moderationTransitionsTotal.WithLabelValues(string(action), "ok").Inc()
	s.log.Info().
		Int64("artwork_id", id).
		Int64("actor_id", actor.ID).
		Str("action", string(action)).
		Str("status", string(art.Status)).
		Msg("Artwork moderated")
	return art, nil
}

// Delete removes an artwork regardless of status. Its log entries remain.
func (s *moderationService) Delete(ctx context.Context, actor *models.Actor, id int64) error {
	if err := requireAdmin(actor, policy.CanModerate); err != nil {
		return err
	}

	deleted, err := s.artworks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return models.ErrNotFound
	}

	artworksDeletedTotal.Inc()
	s.log.Info().
		Int64("artwork_id", id).
		Int64("actor_id", actor.ID).
		Msg("Artwork deleted")
	return nil
}

// ListByStatus lists every artwork in one status; only approved is public
func (s *moderationService) ListByStatus(ctx context.Context, actor *models.Actor, status string) ([]*models.Artwork, error) {
	parsed, err := models.ParseArtworkStatus(status)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewStatus(actor, parsed) {
		return nil, models.ErrForbidden
	}
	return s.list(ctx, actor, parsed, models.SortDateDesc)
}

// Pending returns the moderation queue, oldest submission first
func (s *moderationService) Pending(ctx context.Context, actor *models.Actor) ([]*models.Artwork, error) {
	if err := requireAdmin(actor, policy.CanModerate); err != nil {
		return nil, err
	}
	return s.list(ctx, actor, models.StatusPending, models.SortDateAsc)
}

func (s *moderationService) list(ctx context.Context, actor *models.Actor, status models.ArtworkStatus, sort models.ArtworkSort) ([]*models.Artwork, error) {
	artworks, err := s.artworks.List(ctx, models.ArtworkFilter{Status: &status, Sort: sort})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s artworks: %w", status, err)
	}
	for _, art := range artworks {
		s.obfuscator.Apply(actor, art)
	}
	return artworks, nil
}

// Log returns the newest log entries. Non-positive limits use the default.
func (s *moderationService) Log(ctx context.Context, actor *models.Actor, limit int) ([]*models.ModerationLogEntry, error) {
	if err := requireAdmin(actor, policy.CanModerate); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = models.DefaultLogLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.logs.List(ctx, limit)
}

// History returns every log entry of one artwork, also after it was deleted
func (s *moderationService) History(ctx context.Context, actor *models.Actor, artworkID int64) ([]*models.ModerationLogEntry, error) {
	if err := requireAdmin(actor, policy.CanModerate); err != nil {
		return nil, err
	}
	return s.logs.ListByArtwork(ctx, artworkID)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, models.ErrInconsistency):
		return "inconsistency"
	}
	return "error"
}
