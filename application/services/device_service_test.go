package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
	"audiohub-backend/domain/policy"
	pkgerrors "audiohub-backend/pkg/errors"
)

func newDeviceService(devices *mockDeviceRepo, presets *mockPresetRepo) *DeviceService {
	return NewDeviceService(devices, presets, nopPublisher{}, nopMetrics{}, zap.NewNop())
}

func testDevice(ownerID string) *entities.Device {
	device, err := entities.NewDevice("Speaker", "AH-200", ownerID)
	if err != nil {
		panic(err)
	}
	return device
}

func testPublicPreset() *entities.Preset {
	return entities.DefaultPresets()[1] // Rock
}

func TestDeviceServiceList(t *testing.T) {
	ctx := context.Background()

	t.Run("admin sees the whole fleet", func(t *testing.T) {
		devices := new(mockDeviceRepo)
		devices.On("ListAll", ctx).Return([]*entities.Device{testDevice("a"), testDevice("b")}, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		out, err := svc.List(ctx, policy.Actor{UserID: "admin-1", Role: entities.RoleAdmin})

		require.NoError(t, err)
		assert.Len(t, out, 2)
		devices.AssertExpectations(t)
	})

	t.Run("user sees only their own devices", func(t *testing.T) {
		devices := new(mockDeviceRepo)
		devices.On("ListByOwner", ctx, "user-1").Return([]*entities.Device{testDevice("user-1")}, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		out, err := svc.List(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser})

		require.NoError(t, err)
		assert.Len(t, out, 1)
		devices.AssertNotCalled(t, "ListAll", ctx)
	})
}

func TestDeviceServiceUpdate(t *testing.T) {
	ctx := context.Background()
	volume := 0.8

	t.Run("owner updates state", func(t *testing.T) {
		device := testDevice("user-1")
		updated := testDevice("user-1")
		updated.State.Volume = 0.8
		updated.State.SyncVersion = 2

		patch := entities.DevicePatch{State: audio.Patch{Volume: &volume}}

		devices := new(mockDeviceRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)
		devices.On("Patch", ctx, device.DeviceID, patch).Return(updated, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		out, err := svc.Update(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, patch)

		require.NoError(t, err)
		assert.Equal(t, 0.8, out.State.Volume)
		assert.Equal(t, 2, out.State.SyncVersion)
	})

	t.Run("owner renames the device without touching state", func(t *testing.T) {
		device := testDevice("user-1")
		name := "Living Room"
		updated := testDevice("user-1")
		updated.DeviceName = name
		updated.State.SyncVersion = 2

		devices := new(mockDeviceRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)
		devices.On("Patch", ctx, device.DeviceID, entities.DevicePatch{DeviceName: &name}).Return(updated, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		out, err := svc.Update(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, entities.DevicePatch{DeviceName: &name})

		require.NoError(t, err)
		assert.Equal(t, "Living Room", out.DeviceName)
		devices.AssertExpectations(t)
	})

	t.Run("blank name after trimming is a validation error", func(t *testing.T) {
		device := testDevice("user-1")
		blank := "   "

		devices := new(mockDeviceRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		_, err := svc.Update(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, entities.DevicePatch{DeviceName: &blank})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
		devices.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-owner is rejected before any write", func(t *testing.T) {
		device := testDevice("user-1")

		devices := new(mockDeviceRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		_, err := svc.Update(ctx, policy.Actor{UserID: "intruder", Role: entities.RoleUser}, device.DeviceID, entities.DevicePatch{State: audio.Patch{Volume: &volume}})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsForbidden(err))
		devices.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty patch is a validation error", func(t *testing.T) {
		device := testDevice("user-1")

		devices := new(mockDeviceRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		_, err := svc.Update(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, entities.DevicePatch{})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("out-of-range value rejects the whole request", func(t *testing.T) {
		device := testDevice("user-1")
		tooLoud := 1.5

		devices := new(mockDeviceRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)

		svc := newDeviceService(devices, new(mockPresetRepo))
		_, err := svc.Update(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, entities.DevicePatch{State: audio.Patch{Volume: &tooLoud}})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
		devices.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeviceServiceApplyPreset(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a visible preset and replaces state", func(t *testing.T) {
		device := testDevice("user-1")
		preset := testPublicPreset()

		applied := testDevice("user-1")
		applied.State = audio.FromPreset(preset.Profile, preset.PresetID)

		devices := new(mockDeviceRepo)
		presets := new(mockPresetRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)
		presets.On("GetByID", ctx, preset.PresetID).Return(preset, nil)
		devices.On("ApplyProfile", ctx, device.DeviceID, mock.MatchedBy(func(p audio.Profile) bool {
			return p.LastPresetID == preset.PresetID && p.SyncVersion == 1
		})).Return(applied, nil)
		presets.On("IncrementUsage", ctx, preset.PresetID).Return(nil)

		svc := newDeviceService(devices, presets)
		out, err := svc.ApplyPreset(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, preset.PresetID)

		require.NoError(t, err)
		assert.Equal(t, preset.PresetID, out.State.LastPresetID)
		assert.Equal(t, 1, out.State.SyncVersion)
		devices.AssertExpectations(t)
		presets.AssertExpectations(t)
	})

	t.Run("private preset of someone else is forbidden", func(t *testing.T) {
		device := testDevice("user-1")
		private, err := entities.NewPreset("Secret", "", "", "someone-else", entities.RoleUser, false, testPublicPreset().Profile)
		require.NoError(t, err)

		devices := new(mockDeviceRepo)
		presets := new(mockPresetRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)
		presets.On("GetByID", ctx, private.PresetID).Return(private, nil)

		svc := newDeviceService(devices, presets)
		_, err = svc.ApplyPreset(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, private.PresetID)

		require.Error(t, err)
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("device-scoped preset does not apply elsewhere", func(t *testing.T) {
		device := testDevice("user-1")
		scoped := testPublicPreset()
		scoped.DeviceID = "another-device"

		devices := new(mockDeviceRepo)
		presets := new(mockPresetRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)
		presets.On("GetByID", ctx, scoped.PresetID).Return(scoped, nil)

		svc := newDeviceService(devices, presets)
		_, err := svc.ApplyPreset(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, scoped.PresetID)

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("usage tracking failure does not fail the apply", func(t *testing.T) {
		device := testDevice("user-1")
		preset := testPublicPreset()
		applied := testDevice("user-1")
		applied.State = audio.FromPreset(preset.Profile, preset.PresetID)

		devices := new(mockDeviceRepo)
		presets := new(mockPresetRepo)
		devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)
		presets.On("GetByID", ctx, preset.PresetID).Return(preset, nil)
		devices.On("ApplyProfile", ctx, device.DeviceID, mock.Anything).Return(applied, nil)
		presets.On("IncrementUsage", ctx, preset.PresetID).Return(pkgerrors.NewDatabaseError("update preset", nil))

		svc := newDeviceService(devices, presets)
		_, err := svc.ApplyPreset(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, preset.PresetID)

		assert.NoError(t, err)
	})
}

func TestDeviceServiceSetPresence(t *testing.T) {
	ctx := context.Background()
	device := testDevice("user-1")

	devices := new(mockDeviceRepo)
	devices.On("GetByID", ctx, device.DeviceID).Return(device, nil)
	devices.On("SetPresence", ctx, device.DeviceID, true).Return(nil)

	svc := newDeviceService(devices, new(mockPresetRepo))
	require.NoError(t, svc.SetPresence(ctx, policy.Actor{UserID: "user-1", Role: entities.RoleUser}, device.DeviceID, true))

	err := svc.SetPresence(ctx, policy.Actor{UserID: "intruder", Role: entities.RoleUser}, device.DeviceID, true)
	assert.True(t, pkgerrors.IsForbidden(err))
}
