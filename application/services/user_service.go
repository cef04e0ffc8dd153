package services

import (
	"context"

	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/entities"
	"audiohub-backend/domain/policy"
	pkgerrors "audiohub-backend/pkg/errors"
)

// UserService handles profile reads and updates.
type UserService struct {
	users   ports.UserRepository
	devices ports.DeviceRepository
	presets ports.PresetRepository
	logger  *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users ports.UserRepository,
	devices ports.DeviceRepository,
	presets ports.PresetRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:   users,
		devices: devices,
		presets: presets,
		logger:  logger,
	}
}

// Permissions summarizes what the caller is allowed to do, for the
// client's benefit.
type Permissions struct {
	IsAdmin                bool `json:"isAdmin"`
	CanCreatePublicPresets bool `json:"canCreatePublicPresets"`
	CanManageUsers         bool `json:"canManageUsers"`
}

// ProfileResult is the full own-profile response.
type ProfileResult struct {
	User        entities.APIView `json:"user"`
	Permissions Permissions      `json:"permissions"`
}

// GetProfile returns the actor's own profile with private fields and
// a permission summary. Stored device/preset counters that drifted
// from reality are re-synced best-effort.
func (s *UserService) GetProfile(ctx context.Context, actor policy.Actor) (*ProfileResult, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	s.syncStats(ctx, user)

	return &ProfileResult{
		User: user.ToAPIView(true),
		Permissions: Permissions{
			IsAdmin:                actor.IsAdmin(),
			CanCreatePublicPresets: policy.CanCreatePublicPreset(actor, true),
			CanManageUsers:         policy.CanManageUsers(actor),
		},
	}, nil
}

// GetUser returns another user's profile. Private fields are included
// only when the actor is the user themselves or an admin; everyone
// else gets the public shape.
func (s *UserService) GetUser(ctx context.Context, actor policy.Actor, userID string) (interface{}, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if policy.CanViewPrivateProfile(actor, userID) {
		return user.ToAPIView(true), nil
	}
	return user.ToPublicProfile(), nil
}

// UpdateProfile applies an allow-listed partial update to the actor's
// own profile.
func (s *UserService) UpdateProfile(ctx context.Context, actor policy.Actor, patch entities.UserPatch) (*entities.User, error) {
	// Validate the merged result before writing.
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := user.Update(patch); err != nil {
		return nil, err
	}

	updated, err := s.users.PatchProfile(ctx, actor.UserID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User profile updated", zap.String("userID", actor.UserID))
	return updated, nil
}

// ListByRole returns the users holding a role. Admin use only.
func (s *UserService) ListByRole(ctx context.Context, actor policy.Actor, role string) ([]*entities.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, pkgerrors.NewForbiddenError("You do not have permission to list users").
			WithCode("USER_ADMIN_DENIED")
	}
	return s.users.ListByRole(ctx, role)
}

// syncStats reconciles stored device/preset counters with the actual
// item counts. Drift is corrected best-effort; failures only log.
func (s *UserService) syncStats(ctx context.Context, user *entities.User) {
	devices, err := s.devices.ListByOwner(ctx, user.UserID)
	if err != nil {
		s.logger.Warn("Failed to count devices for stat sync",
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return
	}
	presets, err := s.presets.ListByOwner(ctx, user.UserID)
	if err != nil {
		s.logger.Warn("Failed to count presets for stat sync",
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return
	}

	deviceCount, presetCount := len(devices), len(presets)
	if user.Stats.DevicesCount == deviceCount && user.Stats.PresetsCount == presetCount {
		return
	}

	patch := entities.StatsPatch{
		DevicesCount: &deviceCount,
		PresetsCount: &presetCount,
	}
	if err := s.users.UpdateStats(ctx, user.UserID, patch); err != nil {
		s.logger.Warn("Failed to sync user stats",
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
		return
	}
	user.Stats.DevicesCount = deviceCount
	user.Stats.PresetsCount = presetCount
}
