package services

import (
	"context"

	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
	"audiohub-backend/domain/policy"
	pkgerrors "audiohub-backend/pkg/errors"
)

// PresetService handles preset listing and creation.
type PresetService struct {
	presets ports.PresetRepository
	logger  *zap.Logger
}

// NewPresetService creates a new PresetService
func NewPresetService(presets ports.PresetRepository, logger *zap.Logger) *PresetService {
	return &PresetService{
		presets: presets,
		logger:  logger,
	}
}

// ListFilter narrows a preset listing.
type ListFilter struct {
	DeviceID string
	Category string
}

// List returns the presets visible to the actor, optionally narrowed
// to a device scope and category. Visibility is evaluated per preset:
// admins see everything, users see public presets plus their own.
func (s *PresetService) List(ctx context.Context, actor policy.Actor, filter ListFilter) ([]*entities.Preset, error) {
	all, err := s.presets.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*entities.Preset, 0, len(all))
	for _, preset := range all {
		if !policy.CanViewPreset(actor, preset) {
			continue
		}
		if filter.DeviceID != "" && !preset.AppliesTo(filter.DeviceID) {
			continue
		}
		visible = append(visible, preset)
	}

	return entities.FilterByCategory(visible, filter.Category), nil
}

// CreatePresetInput carries the fields for a new preset.
type CreatePresetInput struct {
	Name        string
	Category    string
	Description string
	IsPublic    bool
	DeviceID    string
	Profile     audio.Profile
}

// Create stores a new preset for the actor. The public flag is gated
// on the administrator role before anything else, and preset names are
// unique per creator.
func (s *PresetService) Create(ctx context.Context, actor policy.Actor, input CreatePresetInput) (*entities.Preset, error) {
	if !policy.CanCreatePublicPreset(actor, input.IsPublic) {
		return nil, pkgerrors.NewForbiddenError("Only admins can create public presets").
			WithCode("PUBLIC_PRESET_DENIED")
	}

	if input.Category == "" {
		input.Category = "custom"
	}

	preset, err := entities.NewPreset(
		input.Name,
		input.Category,
		input.Description,
		actor.UserID,
		actor.Role,
		input.IsPublic,
		input.Profile,
	)
	if err != nil {
		return nil, err
	}
	preset.DeviceID = input.DeviceID

	existing, err := s.presets.FindByOwnerAndName(ctx, actor.UserID, preset.PresetName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("A preset with this name already exists").
			WithCode("PRESET_NAME_TAKEN")
	}

	if err := s.presets.Create(ctx, preset); err != nil {
		return nil, err
	}

	s.logger.Info("Preset created",
		zap.String("presetID", preset.PresetID),
		zap.String("userID", actor.UserID),
		zap.Bool("isPublic", preset.IsPublic),
	)
	return preset, nil
}

// SeedDefaults installs the built-in preset catalog, skipping entries
// that already exist. Intended for environment bootstrap.
func (s *PresetService) SeedDefaults(ctx context.Context) error {
	for _, preset := range entities.DefaultPresets() {
		existing, err := s.presets.FindByOwnerAndName(ctx, entities.SystemUserID, preset.PresetName)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.presets.Create(ctx, preset); err != nil {
			return err
		}
		s.logger.Info("Default preset seeded", zap.String("presetName", preset.PresetName))
	}
	return nil
}
