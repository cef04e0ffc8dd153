package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"audiohub-backend/application/services"
	"audiohub-backend/domain/entities"
	"audiohub-backend/pkg/common"
	"audiohub-backend/pkg/utils"
)

// UserHandler serves profile reads and updates.
type UserHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.users.GetProfile(r.Context(), actor)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

type updateProfileRequest struct {
	FullName    *string               `json:"full_name" validate:"omitempty,max=100"`
	AvatarURL   *string               `json:"avatar_url" validate:"omitempty,url"`
	Phone       *string               `json:"phone" validate:"omitempty,max=30"`
	Preferences *entities.Preferences `json:"preferences"`
	Profile     *entities.ProfileInfo `json:"profile"`
}

// UpdateProfile handles PUT /api/users/profile. Only the allow-listed
// fields are accepted; anything else in the body fails parsing.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), actor, entities.UserPatch{
		FullName:    req.FullName,
		AvatarURL:   req.AvatarURL,
		Phone:       req.Phone,
		Preferences: req.Preferences,
		Profile:     req.Profile,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user": user.ToAPIView(true),
	})
}

// List handles GET /api/users. Admin only; filters by role.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = entities.RoleUser
	}

	users, err := h.users.ListByRole(r.Context(), actor, role)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	views := make([]entities.APIView, 0, len(users))
	for _, u := range users {
		views = append(views, u.ToAPIView(true))
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"users": views,
		"count": len(views),
	})
}

// GetUser handles GET /api/users/{userID}. The response shape depends
// on whether the caller may see private fields.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userID")

	view, err := h.users.GetUser(r.Context(), actor, userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user": view,
	})
}
