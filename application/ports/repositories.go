// Package ports defines the interfaces the application layer depends
// on. Infrastructure adapters implement them; services consume them.
package ports

import (
	"context"

	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
)

// DeviceRepository persists devices in the single-table store.
type DeviceRepository interface {
	// GetByID returns the device or a NOT_FOUND error.
	GetByID(ctx context.Context, deviceID string) (*entities.Device, error)

	// Create stores a new device. Fails with CONFLICT if the ID exists.
	Create(ctx context.Context, device *entities.Device) error

	// ListByOwner returns the owner's devices, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Device, error)

	// ListAll returns every device. Admin use only.
	ListAll(ctx context.Context) ([]*entities.Device, error)

	// Patch applies a partial update of device metadata and audio
	// state in place, advancing the sync version atomically. Returns
	// the updated device.
	Patch(ctx context.Context, deviceID string, patch entities.DevicePatch) (*entities.Device, error)

	// ApplyProfile replaces the device's whole audio state.
	ApplyProfile(ctx context.Context, deviceID string, profile audio.Profile) (*entities.Device, error)

	// SetPresence flips the online flag and refreshes last_seen.
	SetPresence(ctx context.Context, deviceID string, online bool) error
}

// PresetRepository persists presets in the single-table store.
type PresetRepository interface {
	// GetByID returns the preset or a NOT_FOUND error.
	GetByID(ctx context.Context, presetID string) (*entities.Preset, error)

	// Create stores a new preset. Fails with CONFLICT if the ID exists.
	Create(ctx context.Context, preset *entities.Preset) error

	// ListAll returns every preset; visibility filtering is the
	// caller's responsibility.
	ListAll(ctx context.Context) ([]*entities.Preset, error)

	// ListByOwner returns the presets created by the given user.
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Preset, error)

	// FindByOwnerAndName returns the owner's preset with the given
	// name, or nil when none exists.
	FindByOwnerAndName(ctx context.Context, ownerID, name string) (*entities.Preset, error)

	// IncrementUsage bumps the usage counter atomically.
	IncrementUsage(ctx context.Context, presetID string) error
}

// UserRepository persists user records in the single-table store.
type UserRepository interface {
	// GetByID returns the user or a NOT_FOUND error.
	GetByID(ctx context.Context, userID string) (*entities.User, error)

	// GetByEmail looks the user up through the email index; nil when
	// no account uses the address.
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// ListByRole returns the users holding the given role.
	ListByRole(ctx context.Context, role string) ([]*entities.User, error)

	// Create stores a new user. Fails with CONFLICT if the ID exists.
	Create(ctx context.Context, user *entities.User) error

	// PatchProfile applies an allow-listed partial profile update and
	// returns the updated user.
	PatchProfile(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error)

	// UpdateStats applies a partial stats update.
	UpdateStats(ctx context.Context, userID string, patch entities.StatsPatch) error

	// RecordLogin refreshes activity timestamps and increments the
	// login counter atomically.
	RecordLogin(ctx context.Context, userID string) error
}
