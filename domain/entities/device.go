package entities

import (
	"strings"

	"github.com/google/uuid"

	"audiohub-backend/domain/audio"
	pkgerrors "audiohub-backend/pkg/errors"
	"audiohub-backend/pkg/utils"
)

const (
	MaxDeviceNameLength  = 50
	MaxDeviceModelLength = 100

	// DefaultDeviceName is given to the demo device provisioned at
	// registration.
	DefaultDeviceName  = "Default Audio Device"
	DefaultDeviceModel = "AudioHub Standard"
)

// Device is a registered audio output device owned by a single user.
// Its audio state is an embedded Profile value object.
type Device struct {
	DeviceID    string        `json:"device_id"`
	DeviceName  string        `json:"device_name"`
	DeviceModel string        `json:"device_model"`
	OwnerID     string        `json:"owner_id"`
	State       audio.Profile `json:"state"`
	IsOnline    bool          `json:"is_online"`
	LastSeen    string        `json:"last_seen,omitempty"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
}

// DeviceInfoPatch carries a partial update of device metadata.
type DeviceInfoPatch struct {
	DeviceName  *string
	DeviceModel *string
}

// DevicePatch is the partial update accepted by the device update
// endpoint: metadata and audio state together.
type DevicePatch struct {
	DeviceName *string
	State      audio.Patch
}

// IsEmpty reports whether the patch carries no fields at all.
func (p DevicePatch) IsEmpty() bool {
	return p.DeviceName == nil && p.State.IsEmpty()
}

// NewDevice creates a validated device with factory audio settings.
func NewDevice(name, model, ownerID string) (*Device, error) {
	now := utils.NowRFC3339()
	device := &Device{
		DeviceID:    uuid.New().String(),
		DeviceName:  strings.TrimSpace(name),
		DeviceModel: strings.TrimSpace(model),
		OwnerID:     ownerID,
		State:       audio.DefaultProfile(),
		IsOnline:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := device.Validate(); err != nil {
		return nil, err
	}
	return device, nil
}

// NewDefaultDevice provisions the demo device new accounts start with.
func NewDefaultDevice(ownerID string) (*Device, error) {
	return NewDevice(DefaultDeviceName, DefaultDeviceModel, ownerID)
}

// Validate checks structural invariants.
func (d *Device) Validate() error {
	var fields []string

	if d.DeviceID == "" {
		fields = append(fields, "device_id is required")
	}
	if d.DeviceName == "" {
		fields = append(fields, "device_name is required")
	} else if len(d.DeviceName) > MaxDeviceNameLength {
		fields = append(fields, "device_name must be 50 characters or less")
	}
	if len(d.DeviceModel) > MaxDeviceModelLength {
		fields = append(fields, "device_model must be 100 characters or less")
	}
	if d.OwnerID == "" {
		fields = append(fields, "owner_id is required")
	}

	if len(fields) > 0 {
		return pkgerrors.NewValidationError("Invalid device").
			WithCode("VALIDATION_ERROR").
			WithFieldErrors(fields)
	}
	return d.State.Validate()
}

// UpdateInfo updates device metadata only; audio state is untouched.
func (d *Device) UpdateInfo(patch DeviceInfoPatch) error {
	if patch.DeviceName != nil {
		d.DeviceName = strings.TrimSpace(*patch.DeviceName)
	}
	if patch.DeviceModel != nil {
		d.DeviceModel = strings.TrimSpace(*patch.DeviceModel)
	}
	d.UpdatedAt = utils.NowRFC3339()
	return d.Validate()
}

// UpdateState applies a partial audio-state update. Values are clamped
// by the profile; the sync version advances.
func (d *Device) UpdateState(patch audio.Patch) {
	d.State.Update(patch)
	d.UpdatedAt = utils.NowRFC3339()
}

// ApplyPreset replaces the whole audio state with the preset's profile.
// The device starts a fresh sync lineage pointing at the preset; no
// field of the previous state survives.
func (d *Device) ApplyPreset(preset *Preset) {
	d.State = audio.FromPreset(preset.Profile, preset.PresetID)
	d.UpdatedAt = utils.NowRFC3339()
}

// SetOnline marks the device as connected.
func (d *Device) SetOnline() {
	d.IsOnline = true
	d.LastSeen = utils.NowRFC3339()
	d.UpdatedAt = d.LastSeen
}

// SetOffline marks the device as disconnected.
func (d *Device) SetOffline() {
	d.IsOnline = false
	d.LastSeen = utils.NowRFC3339()
	d.UpdatedAt = d.LastSeen
}

// IsOwnedBy reports whether the given user owns this device.
func (d *Device) IsOwnedBy(userID string) bool {
	return d.OwnerID == userID
}
