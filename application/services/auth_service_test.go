package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/entities"
	pkgerrors "audiohub-backend/pkg/errors"
)

func newAuthService(identity *mockIdentity, users *mockUserRepo, devices *mockDeviceRepo) *AuthService {
	return NewAuthService(identity, users, devices, nopPublisher{}, nopMetrics{}, zap.NewNop())
}

func testTokens() *ports.AuthTokens {
	return &ports.AuthTokens{
		AccessToken: "access",
		IDToken:     "id",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
	}
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()
	input := RegisterInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Username: "alice",
		FullName: "Alice Doe",
	}

	t.Run("creates identity, user record and demo device", func(t *testing.T) {
		identity := new(mockIdentity)
		users := new(mockUserRepo)
		devices := new(mockDeviceRepo)

		users.On("GetByEmail", ctx, input.Email).Return(nil, nil)
		identity.On("SignUp", ctx, input.Email, input.Password, input.FullName, entities.RoleUser).Return("cognito-1", nil)
		users.On("Create", ctx, mock.AnythingOfType("*entities.User")).Return(nil)
		devices.On("Create", ctx, mock.MatchedBy(func(d *entities.Device) bool {
			return d.DeviceName == entities.DefaultDeviceName
		})).Return(nil)
		users.On("UpdateStats", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("entities.StatsPatch")).Return(nil)

		svc := newAuthService(identity, users, devices)
		user, err := svc.Register(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, entities.RoleUser, user.Role, "role defaults to user")
		assert.Equal(t, "cognito-1", user.CognitoID)
		assert.True(t, user.EmailVerified)
		assert.Equal(t, 1, user.Stats.DevicesCount)
		identity.AssertExpectations(t)
		devices.AssertExpectations(t)
	})

	t.Run("existing email conflicts before touching the identity provider", func(t *testing.T) {
		existing, err := entities.NewUser(input.Email, "alice", "Alice Doe", entities.RoleUser, "")
		require.NoError(t, err)

		identity := new(mockIdentity)
		users := new(mockUserRepo)
		users.On("GetByEmail", ctx, input.Email).Return(existing, nil)

		svc := newAuthService(identity, users, new(mockDeviceRepo))
		_, err = svc.Register(ctx, input)

		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		identity.AssertNotCalled(t, "SignUp", ctx, input.Email, input.Password, input.FullName, entities.RoleUser)
	})

	t.Run("rolls back the identity when the user record cannot be stored", func(t *testing.T) {
		identity := new(mockIdentity)
		users := new(mockUserRepo)

		users.On("GetByEmail", ctx, input.Email).Return(nil, nil)
		identity.On("SignUp", ctx, input.Email, input.Password, input.FullName, entities.RoleUser).Return("cognito-1", nil)
		users.On("Create", ctx, mock.AnythingOfType("*entities.User")).Return(pkgerrors.NewDatabaseError("create user", nil))
		identity.On("Delete", ctx, input.Email).Return(nil)

		svc := newAuthService(identity, users, new(mockDeviceRepo))
		_, err := svc.Register(ctx, input)

		require.Error(t, err)
		identity.AssertCalled(t, "Delete", ctx, input.Email)
	})

	t.Run("demo device failure does not fail registration", func(t *testing.T) {
		identity := new(mockIdentity)
		users := new(mockUserRepo)
		devices := new(mockDeviceRepo)

		users.On("GetByEmail", ctx, input.Email).Return(nil, nil)
		identity.On("SignUp", ctx, input.Email, input.Password, input.FullName, entities.RoleUser).Return("cognito-1", nil)
		users.On("Create", ctx, mock.AnythingOfType("*entities.User")).Return(nil)
		devices.On("Create", ctx, mock.Anything).Return(pkgerrors.NewDatabaseError("create device", nil))

		svc := newAuthService(identity, users, devices)
		user, err := svc.Register(ctx, input)

		require.NoError(t, err)
		assert.Zero(t, user.Stats.DevicesCount)
	})
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tokens and the user view", func(t *testing.T) {
		user, err := entities.NewUser("alice@example.com", "alice", "Alice Doe", entities.RoleUser, "cognito-1")
		require.NoError(t, err)

		identity := new(mockIdentity)
		users := new(mockUserRepo)
		identity.On("Authenticate", ctx, "alice@example.com", "pw").Return(testTokens(), nil)
		users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)
		users.On("RecordLogin", ctx, user.UserID).Return(nil)

		svc := newAuthService(identity, users, new(mockDeviceRepo))
		result, err := svc.Login(ctx, "alice@example.com", "pw")

		require.NoError(t, err)
		assert.Equal(t, "access", result.Tokens.AccessToken)
		assert.Equal(t, user.UserID, result.User.ID)
		assert.NotEmpty(t, result.User.Stats.LastLogin, "login is recorded on the returned view")
	})

	t.Run("bad credentials surface the provider error", func(t *testing.T) {
		identity := new(mockIdentity)
		users := new(mockUserRepo)
		identity.On("Authenticate", ctx, "alice@example.com", "wrong").
			Return(nil, pkgerrors.NewUnauthorizedError("Incorrect username or password"))

		svc := newAuthService(identity, users, new(mockDeviceRepo))
		_, err := svc.Login(ctx, "alice@example.com", "wrong")

		require.Error(t, err)
		assert.True(t, pkgerrors.IsUnauthorized(err))
		users.AssertNotCalled(t, "GetByEmail", ctx, "alice@example.com")
	})

	t.Run("lazily creates a record for an out-of-band identity", func(t *testing.T) {
		identity := new(mockIdentity)
		users := new(mockUserRepo)
		identity.On("Authenticate", ctx, "bob@example.com", "pw").Return(testTokens(), nil)
		users.On("GetByEmail", ctx, "bob@example.com").Return(nil, nil)
		identity.On("Describe", ctx, "bob@example.com").Return(entities.IdentityAttributes{
			IdentityID:    "cognito-2",
			Email:         "bob@example.com",
			Name:          "Bob Smith",
			EmailVerified: true,
			Confirmed:     true,
		}, nil)
		users.On("Create", ctx, mock.AnythingOfType("*entities.User")).Return(nil)
		users.On("RecordLogin", ctx, mock.AnythingOfType("string")).Return(nil)

		svc := newAuthService(identity, users, new(mockDeviceRepo))
		result, err := svc.Login(ctx, "bob@example.com", "pw")

		require.NoError(t, err)
		assert.Equal(t, "bob", result.User.Username)
		users.AssertCalled(t, "Create", ctx, mock.AnythingOfType("*entities.User"))
	})

	t.Run("concurrent lazy creation falls back to the existing record", func(t *testing.T) {
		existing, err := entities.NewUser("bob@example.com", "bob", "Bob Smith", entities.RoleUser, "cognito-2")
		require.NoError(t, err)

		identity := new(mockIdentity)
		users := new(mockUserRepo)
		identity.On("Authenticate", ctx, "bob@example.com", "pw").Return(testTokens(), nil)
		users.On("GetByEmail", ctx, "bob@example.com").Return(nil, nil).Once()
		identity.On("Describe", ctx, "bob@example.com").Return(entities.IdentityAttributes{
			IdentityID: "cognito-2",
			Email:      "bob@example.com",
			Name:       "Bob Smith",
			Confirmed:  true,
		}, nil)
		users.On("Create", ctx, mock.AnythingOfType("*entities.User")).
			Return(pkgerrors.NewConflictError("User already exists"))
		users.On("GetByEmail", ctx, "bob@example.com").Return(existing, nil)
		users.On("RecordLogin", ctx, existing.UserID).Return(nil)

		svc := newAuthService(identity, users, new(mockDeviceRepo))
		result, err := svc.Login(ctx, "bob@example.com", "pw")

		require.NoError(t, err)
		assert.Equal(t, existing.UserID, result.User.ID)
	})
}
