package services

import (
	"context"

	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/entities"
	pkgerrors "audiohub-backend/pkg/errors"
	"audiohub-backend/pkg/utils"
)

// AuthService handles registration and login against the external
// identity provider.
type AuthService struct {
	identity ports.IdentityProvider
	users    ports.UserRepository
	devices  ports.DeviceRepository
	events   ports.UsagePublisher
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	identity ports.IdentityProvider,
	users ports.UserRepository,
	devices ports.DeviceRepository,
	events ports.UsagePublisher,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		identity: identity,
		users:    users,
		devices:  devices,
		events:   events,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	FullName string
	Role     string
}

// Register creates an identity, the local user record, and a demo
// device. If the user record cannot be stored, the identity is rolled
// back so the email is not burned.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entities.User, error) {
	role := input.Role
	if role == "" {
		role = entities.RoleUser
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("An account with this email already exists").
			WithCode("USER_EXISTS")
	}

	identityID, err := s.identity.SignUp(ctx, input.Email, input.Password, input.FullName, role)
	if err != nil {
		return nil, err
	}

	user, err := entities.NewUser(input.Email, input.Username, input.FullName, role, identityID)
	if err != nil {
		s.rollbackIdentity(ctx, input.Email)
		return nil, err
	}
	user.EmailVerified = true

	if err := s.users.Create(ctx, user); err != nil {
		s.rollbackIdentity(ctx, input.Email)
		return nil, err
	}

	// Demo device provisioning is best-effort; the account stands
	// without it.
	if device, err := entities.NewDefaultDevice(user.UserID); err == nil {
		if err := s.devices.Create(ctx, device); err != nil {
			s.logger.Warn("Failed to provision demo device",
				zap.String("userID", user.UserID),
				zap.Error(err),
			)
		} else {
			deviceCount := 1
			if err := s.users.UpdateStats(ctx, user.UserID, entities.StatsPatch{DevicesCount: &deviceCount}); err != nil {
				s.logger.Warn("Failed to initialize device count",
					zap.String("userID", user.UserID),
					zap.Error(err),
				)
			} else {
				user.Stats.DevicesCount = deviceCount
			}
		}
	}

	s.metrics.IncrementCounter(ctx, "Registrations")
	s.logger.Info("User registered",
		zap.String("userID", user.UserID),
		zap.String("role", user.Role),
	)
	return user, nil
}

// LoginResult carries the token set and the user record.
type LoginResult struct {
	Tokens *ports.AuthTokens `json:"tokens"`
	User   entities.APIView  `json:"user"`
}

// Login authenticates against the identity provider. A login for an
// identity with no local record lazily creates one from the provider's
// attributes, so accounts created out of band still work.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	tokens, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.createFromIdentity(ctx, email)
		if err != nil {
			return nil, err
		}
	}

	// Activity tracking is best-effort.
	if err := s.users.RecordLogin(ctx, user.UserID); err != nil {
		s.logger.Warn("Failed to record login",
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
	} else {
		user.RecordLogin()
	}
	if err := s.events.UserLoggedIn(ctx, ports.UserLoggedInEvent{
		UserID:     user.UserID,
		Email:      user.Email,
		Role:       user.Role,
		LoginCount: user.Stats.LoginCount,
		LoggedInAt: utils.NowRFC3339(),
	}); err != nil {
		s.logger.Warn("Failed to publish login event",
			zap.String("userID", user.UserID),
			zap.Error(err),
		)
	}
	s.metrics.IncrementCounter(ctx, "Logins")

	return &LoginResult{
		Tokens: tokens,
		User:   user.ToAPIView(true),
	}, nil
}

// createFromIdentity hydrates a local user record from the identity
// provider's attributes.
func (s *AuthService) createFromIdentity(ctx context.Context, email string) (*entities.User, error) {
	attrs, err := s.identity.Describe(ctx, email)
	if err != nil {
		return nil, err
	}

	user, err := entities.FromIdentity(attrs)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent login may have created the record first.
		if pkgerrors.IsConflict(err) {
			if existing, getErr := s.users.GetByEmail(ctx, email); getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.logger.Info("User record created from identity",
		zap.String("userID", user.UserID),
	)
	return user, nil
}

func (s *AuthService) rollbackIdentity(ctx context.Context, email string) {
	if err := s.identity.Delete(ctx, email); err != nil {
		s.logger.Error("Failed to roll back identity after registration failure",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}
