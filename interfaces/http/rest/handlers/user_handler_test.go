package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audiohub-backend/application/services"
	"audiohub-backend/domain/entities"
	"audiohub-backend/pkg/auth"
	pkgerrors "audiohub-backend/pkg/errors"
)

// stubUserRepo is an in-memory UserRepository for handler tests.
type stubUserRepo struct {
	users map[string]*entities.User
}

func newStubUserRepo(users ...*entities.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[string]*entities.User)}
	for _, u := range users {
		repo.users[u.UserID] = u
	}
	return repo
}

func (s *stubUserRepo) GetByID(_ context.Context, userID string) (*entities.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("User").WithCode("USER_NOT_FOUND")
	}
	return user, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) ListByRole(_ context.Context, role string) ([]*entities.User, error) {
	out := make([]*entities.User, 0)
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUserRepo) Create(_ context.Context, user *entities.User) error {
	s.users[user.UserID] = user
	return nil
}

func (s *stubUserRepo) PatchProfile(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Update(patch); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *stubUserRepo) UpdateStats(ctx context.Context, userID string, patch entities.StatsPatch) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.UpdateStats(patch)
	return nil
}

func (s *stubUserRepo) RecordLogin(ctx context.Context, userID string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.RecordLogin()
	return nil
}

func newUserHandler(users *stubUserRepo) *UserHandler {
	svc := services.NewUserService(users, newStubDeviceRepo(), newStubPresetRepo(), zap.NewNop())
	return NewUserHandler(svc, zap.NewNop())
}

func mustNewUser(t *testing.T, email, username, role string) *entities.User {
	t.Helper()
	user, err := entities.NewUser(email, username, username+" Test", role, "cognito-"+username)
	require.NoError(t, err)
	return user
}

func TestUserHandlerList(t *testing.T) {
	alice := mustNewUser(t, "alice@example.com", "alice", entities.RoleUser)
	bob := mustNewUser(t, "bob@example.com", "bob", entities.RoleUser)
	root := mustNewUser(t, "root@example.com", "root", entities.RoleAdmin)
	handler := newUserHandler(newStubUserRepo(alice, bob, root))

	admin := &auth.UserContext{UserID: root.UserID, Role: entities.RoleAdmin}

	t.Run("admin lists users by role", func(t *testing.T) {
		rec := doRequest(handler.List, http.MethodGet, "/api/users", "/api/users", "", admin)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data struct {
				Count int                `json:"count"`
				Users []entities.APIView `json:"users"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Data.Count)

		rec = doRequest(handler.List, http.MethodGet, "/api/users?role=admin", "/api/users", "", admin)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.Count)
		assert.Equal(t, "root", resp.Data.Users[0].Username)
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		rec := doRequest(handler.List, http.MethodGet, "/api/users", "/api/users", "", ownerContext(alice.UserID))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUserHandlerGetUser(t *testing.T) {
	alice := mustNewUser(t, "alice@example.com", "alice", entities.RoleUser)
	handler := newUserHandler(newStubUserRepo(alice))

	t.Run("strangers get the public shape", func(t *testing.T) {
		rec := doRequest(handler.GetUser, http.MethodGet,
			"/api/users/"+alice.UserID, "/api/users/{userID}", "", ownerContext("someone-else"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "alice@example.com")
	})

	t.Run("self gets private fields", func(t *testing.T) {
		self := &auth.UserContext{UserID: alice.UserID, Role: entities.RoleUser}
		rec := doRequest(handler.GetUser, http.MethodGet,
			"/api/users/"+alice.UserID, "/api/users/{userID}", "", self)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alice@example.com")
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rec := doRequest(handler.GetUser, http.MethodGet,
			"/api/users/nope", "/api/users/{userID}", "", ownerContext("someone"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
