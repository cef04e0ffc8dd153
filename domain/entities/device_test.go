package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiohub-backend/domain/audio"
)

func TestNewDevice(t *testing.T) {
	device, err := NewDevice("  Living Room Speaker  ", "AH-200", "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, device.DeviceID)
	assert.Equal(t, "Living Room Speaker", device.DeviceName)
	assert.Equal(t, "AH-200", device.DeviceModel)
	assert.Equal(t, "user-1", device.OwnerID)
	assert.False(t, device.IsOnline)
	assert.Equal(t, 0.5, device.State.Volume)
	assert.Equal(t, 1, device.State.SyncVersion)
}

func TestNewDeviceValidation(t *testing.T) {
	tests := []struct {
		name       string
		deviceName string
		ownerID    string
	}{
		{"empty name", "", "user-1"},
		{"whitespace name", "   ", "user-1"},
		{"name too long", strings.Repeat("a", MaxDeviceNameLength+1), "user-1"},
		{"missing owner", "Speaker", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDevice(tt.deviceName, "AH-200", tt.ownerID)
			assert.Error(t, err)
		})
	}
}

func TestNewDefaultDevice(t *testing.T) {
	device, err := NewDefaultDevice("user-1")
	require.NoError(t, err)

	assert.Equal(t, DefaultDeviceName, device.DeviceName)
	assert.Equal(t, DefaultDeviceModel, device.DeviceModel)
	assert.Equal(t, "user-1", device.OwnerID)
}

func TestDeviceApplyPresetReplacesWholeState(t *testing.T) {
	device, err := NewDevice("Speaker", "AH-200", "user-1")
	require.NoError(t, err)

	// Accumulate some state so there is something to lose.
	volume := 0.9
	device.UpdateState(audio.Patch{Volume: &volume, EQ: []int{1, 1, 1, 1, 1}})
	device.State.LastPresetID = "old-preset"
	require.Greater(t, device.State.SyncVersion, 1)

	preset := &Preset{
		PresetID: "preset-rock",
		Profile: audio.Profile{
			Volume:      0.65,
			EQ:          []int{3, 2, -1, 2, 4},
			Reverb:      0.4,
			SyncVersion: 7,
		},
	}

	device.ApplyPreset(preset)

	assert.Equal(t, 0.65, device.State.Volume)
	assert.Equal(t, []int{3, 2, -1, 2, 4}, device.State.EQ)
	assert.Equal(t, 0.4, device.State.Reverb)
	assert.Equal(t, "preset-rock", device.State.LastPresetID)
	assert.Equal(t, 1, device.State.SyncVersion, "apply starts a fresh sync lineage")
}

func TestDeviceUpdateInfo(t *testing.T) {
	device, err := NewDevice("Speaker", "AH-200", "user-1")
	require.NoError(t, err)

	name := " Bedroom Speaker "
	require.NoError(t, device.UpdateInfo(DeviceInfoPatch{DeviceName: &name}))
	assert.Equal(t, "Bedroom Speaker", device.DeviceName)
	assert.Equal(t, "AH-200", device.DeviceModel)

	empty := ""
	assert.Error(t, device.UpdateInfo(DeviceInfoPatch{DeviceName: &empty}))
}

func TestDevicePresence(t *testing.T) {
	device, err := NewDevice("Speaker", "AH-200", "user-1")
	require.NoError(t, err)

	device.SetOnline()
	assert.True(t, device.IsOnline)
	assert.NotEmpty(t, device.LastSeen)

	device.SetOffline()
	assert.False(t, device.IsOnline)
}

func TestDeviceIsOwnedBy(t *testing.T) {
	device, err := NewDevice("Speaker", "AH-200", "user-1")
	require.NoError(t, err)

	assert.True(t, device.IsOwnedBy("user-1"))
	assert.False(t, device.IsOwnedBy("user-2"))
}
