// Package services orchestrates domain rules, authorization policy and
// persistence, one thin method per API operation.
package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
	"audiohub-backend/domain/policy"
	pkgerrors "audiohub-backend/pkg/errors"
	"audiohub-backend/pkg/utils"
)

// DeviceService handles device listing, state updates and preset
// application.
type DeviceService struct {
	devices ports.DeviceRepository
	presets ports.PresetRepository
	events  ports.UsagePublisher
	metrics ports.MetricsRecorder
	logger  *zap.Logger
}

// NewDeviceService creates a new DeviceService
func NewDeviceService(
	devices ports.DeviceRepository,
	presets ports.PresetRepository,
	events ports.UsagePublisher,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *DeviceService {
	return &DeviceService{
		devices: devices,
		presets: presets,
		events:  events,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns the devices visible to the actor: admins see the whole
// fleet, everyone else their own devices.
func (s *DeviceService) List(ctx context.Context, actor policy.Actor) ([]*entities.Device, error) {
	if actor.IsAdmin() {
		return s.devices.ListAll(ctx)
	}
	return s.devices.ListByOwner(ctx, actor.UserID)
}

// Update applies a partial update to a device: the name and any of the
// audio-state fields. Input is validated strictly: any out-of-range
// value or invalid name rejects the whole request before a write is
// attempted.
func (s *DeviceService) Update(ctx context.Context, actor policy.Actor, deviceID string, patch entities.DevicePatch) (*entities.Device, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if !policy.CanOperateDevice(actor, device) {
		return nil, pkgerrors.NewForbiddenError("You do not have permission to update this device").
			WithCode("DEVICE_ACCESS_DENIED")
	}

	if patch.IsEmpty() {
		return nil, pkgerrors.NewValidationError("No valid fields provided for update").
			WithCode("EMPTY_UPDATE")
	}
	if err := patch.State.Validate(); err != nil {
		return nil, err
	}
	if patch.DeviceName != nil {
		trimmed := strings.TrimSpace(*patch.DeviceName)
		patch.DeviceName = &trimmed
		// Validate the merged result the same way a fresh device would.
		if err := device.UpdateInfo(entities.DeviceInfoPatch{DeviceName: patch.DeviceName}); err != nil {
			return nil, err
		}
	}

	updated, err := s.devices.Patch(ctx, deviceID, patch)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter(ctx, "DevicesUpdated")
	s.logger.Info("Device state updated",
		zap.String("deviceID", deviceID),
		zap.String("userID", actor.UserID),
		zap.Int("syncVersion", updated.State.SyncVersion),
	)
	return updated, nil
}

// ApplyPreset replaces a device's audio state with a preset's profile.
// The device must be operable by the actor, the preset visible to the
// actor and applicable to the device.
func (s *DeviceService) ApplyPreset(ctx context.Context, actor policy.Actor, deviceID, presetID string) (*entities.Device, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if !policy.CanOperateDevice(actor, device) {
		return nil, pkgerrors.NewForbiddenError("You do not have permission to modify this device").
			WithCode("DEVICE_ACCESS_DENIED")
	}

	preset, err := s.presets.GetByID(ctx, presetID)
	if err != nil {
		return nil, err
	}

	if !preset.AppliesTo(deviceID) {
		return nil, pkgerrors.NewValidationError("Preset does not apply to this device").
			WithCode("PRESET_DEVICE_MISMATCH")
	}

	if !policy.CanUsePreset(actor, preset) {
		return nil, pkgerrors.NewForbiddenError("You do not have permission to use this preset").
			WithCode("PRESET_ACCESS_DENIED")
	}

	profile := audio.FromPreset(preset.Profile, preset.PresetID)
	updated, err := s.devices.ApplyProfile(ctx, deviceID, profile)
	if err != nil {
		return nil, err
	}

	// Usage tracking and analytics are best-effort.
	if err := s.presets.IncrementUsage(ctx, preset.PresetID); err != nil {
		s.logger.Warn("Failed to increment preset usage",
			zap.String("presetID", preset.PresetID),
			zap.Error(err),
		)
	}
	if err := s.events.PresetApplied(ctx, ports.PresetAppliedEvent{
		DeviceID:    deviceID,
		PresetID:    preset.PresetID,
		PresetName:  preset.PresetName,
		UserID:      actor.UserID,
		UserRole:    actor.Role,
		Profile:     updated.State.Summary(),
		AppliedAt:   utils.NowRFC3339(),
		UsageNumber: preset.UsageCount + 1,
	}); err != nil {
		s.logger.Warn("Failed to publish preset usage event",
			zap.String("presetID", preset.PresetID),
			zap.Error(err),
		)
	}
	s.metrics.IncrementCounter(ctx, "PresetsApplied")

	s.logger.Info("Preset applied to device",
		zap.String("deviceID", deviceID),
		zap.String("presetID", preset.PresetID),
		zap.String("userID", actor.UserID),
	)
	return updated, nil
}

// SetPresence marks a device online or offline.
func (s *DeviceService) SetPresence(ctx context.Context, actor policy.Actor, deviceID string, online bool) error {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	if !policy.CanOperateDevice(actor, device) {
		return pkgerrors.NewForbiddenError("You do not have permission to update this device").
			WithCode("DEVICE_ACCESS_DENIED")
	}

	return s.devices.SetPresence(ctx, deviceID, online)
}
