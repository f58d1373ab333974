package service

import (
	"context"

	"github.com/indigenous-art-atlas/internal/models"
	"github.com/indigenous-art-atlas/internal/policy"
	"github.com/indigenous-art-atlas/internal/repository"
	"github.com/indigenous-art-atlas/internal/validation"
	"github.com/rs/zerolog"
)

type adminService struct {
	users     repository.UserRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newAdminService(users repository.UserRepository, v *validation.Validator, log zerolog.Logger) *adminService {
	return &adminService{
		users:     users,
		validator: v,
		log:       log.With().Str("service", "admin").Logger(),
	}
}

// ListUsers returns every account, newest first
func (s *adminService) ListUsers(ctx context.Context, actor *models.Actor) ([]*models.User, error) {
	if err := requireAdmin(actor, policy.CanManageUsers); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// SetUserActive enables or disables an account. Administrators cannot disable themselves.
func (s *adminService) SetUserActive(ctx context.Context, actor *models.Actor, userID int64, req *models.UserStatusRequest) (*models.User, error) {
	if err := requireAdmin(actor, policy.CanManageUsers); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUserStatus(req); err != nil {
		return nil, err
	}
	if userID == actor.ID && !*req.Active {
		return nil, models.NewValidationError("active", "administrators cannot deactivate their own account", false)
	}

	user, err := s.users.SetActive(ctx, userID, *req.Active)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("user_id", userID).
		Int64("actor_id", actor.ID).
		Bool("active", user.Active).
		Msg("User status changed")
	return user, nil
}
