package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
)

type mockDeviceRepo struct {
	mock.Mock
}

func (m *mockDeviceRepo) GetByID(ctx context.Context, deviceID string) (*entities.Device, error) {
	args := m.Called(ctx, deviceID)
	if device := args.Get(0); device != nil {
		return device.(*entities.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceRepo) Create(ctx context.Context, device *entities.Device) error {
	return m.Called(ctx, device).Error(0)
}

func (m *mockDeviceRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Device, error) {
	args := m.Called(ctx, ownerID)
	if devices := args.Get(0); devices != nil {
		return devices.([]*entities.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceRepo) ListAll(ctx context.Context) ([]*entities.Device, error) {
	args := m.Called(ctx)
	if devices := args.Get(0); devices != nil {
		return devices.([]*entities.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceRepo) Patch(ctx context.Context, deviceID string, patch entities.DevicePatch) (*entities.Device, error) {
	args := m.Called(ctx, deviceID, patch)
	if device := args.Get(0); device != nil {
		return device.(*entities.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceRepo) ApplyProfile(ctx context.Context, deviceID string, profile audio.Profile) (*entities.Device, error) {
	args := m.Called(ctx, deviceID, profile)
	if device := args.Get(0); device != nil {
		return device.(*entities.Device), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceRepo) SetPresence(ctx context.Context, deviceID string, online bool) error {
	return m.Called(ctx, deviceID, online).Error(0)
}

type mockPresetRepo struct {
	mock.Mock
}

func (m *mockPresetRepo) GetByID(ctx context.Context, presetID string) (*entities.Preset, error) {
	args := m.Called(ctx, presetID)
	if preset := args.Get(0); preset != nil {
		return preset.(*entities.Preset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPresetRepo) Create(ctx context.Context, preset *entities.Preset) error {
	return m.Called(ctx, preset).Error(0)
}

func (m *mockPresetRepo) ListAll(ctx context.Context) ([]*entities.Preset, error) {
	args := m.Called(ctx)
	if presets := args.Get(0); presets != nil {
		return presets.([]*entities.Preset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPresetRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Preset, error) {
	args := m.Called(ctx, ownerID)
	if presets := args.Get(0); presets != nil {
		return presets.([]*entities.Preset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPresetRepo) FindByOwnerAndName(ctx context.Context, ownerID, name string) (*entities.Preset, error) {
	args := m.Called(ctx, ownerID, name)
	if preset := args.Get(0); preset != nil {
		return preset.(*entities.Preset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPresetRepo) IncrementUsage(ctx context.Context, presetID string) error {
	return m.Called(ctx, presetID).Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*entities.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*entities.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role string) ([]*entities.User, error) {
	args := m.Called(ctx, role)
	if users := args.Get(0); users != nil {
		return users.([]*entities.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) PatchProfile(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error) {
	args := m.Called(ctx, userID, patch)
	if user := args.Get(0); user != nil {
		return user.(*entities.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdateStats(ctx context.Context, userID string, patch entities.StatsPatch) error {
	return m.Called(ctx, userID, patch).Error(0)
}

func (m *mockUserRepo) RecordLogin(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, fullName, role string) (string, error) {
	args := m.Called(ctx, email, password, fullName, role)
	return args.String(0), args.Error(1)
}

func (m *mockIdentity) Authenticate(ctx context.Context, email, password string) (*ports.AuthTokens, error) {
	args := m.Called(ctx, email, password)
	if tokens := args.Get(0); tokens != nil {
		return tokens.(*ports.AuthTokens), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIdentity) Describe(ctx context.Context, username string) (entities.IdentityAttributes, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(entities.IdentityAttributes), args.Error(1)
}

func (m *mockIdentity) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

// nopPublisher and nopMetrics satisfy the side-effect ports for tests
// that do not assert on them.
type nopPublisher struct{}

func (nopPublisher) PresetApplied(context.Context, ports.PresetAppliedEvent) error { return nil }
func (nopPublisher) UserLoggedIn(context.Context, ports.UserLoggedInEvent) error   { return nil }

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(context.Context, string) {}
