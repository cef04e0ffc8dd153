package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"audiohub-backend/application/services"
	"audiohub-backend/domain/audio"
	"audiohub-backend/pkg/common"
	"audiohub-backend/pkg/utils"
)

// PresetHandler serves preset listing and creation.
type PresetHandler struct {
	presets *services.PresetService
	logger  *zap.Logger
}

// NewPresetHandler creates a new PresetHandler
func NewPresetHandler(presets *services.PresetService, logger *zap.Logger) *PresetHandler {
	return &PresetHandler{
		presets: presets,
		logger:  logger,
	}
}

// List handles GET /api/presets and GET /api/devices/{deviceID}/presets.
// The device scope comes from the path when present, otherwise from
// the device_id query parameter.
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	deviceID := chi.URLParam(r, "deviceID")
	if deviceID == "" {
		deviceID = r.URL.Query().Get("device_id")
	}

	presets, err := h.presets.List(r.Context(), actor, services.ListFilter{
		DeviceID: deviceID,
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"presets": presets,
		"count":   len(presets),
	})
}

// createPresetRequest takes the audio fields at the top level of the
// body, alongside the metadata.
type createPresetRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Category    string   `json:"category" validate:"omitempty,max=50"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	IsPublic    bool     `json:"is_public"`
	Volume      *float64 `json:"volume" validate:"required,gte=0,lte=1"`
	EQ          []int    `json:"eq" validate:"required,len=5,dive,gte=-12,lte=12"`
	Reverb      *float64 `json:"reverb" validate:"required,gte=0,lte=1"`
}

// Create handles POST /api/presets and POST /api/devices/{deviceID}/presets
func (h *PresetHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req createPresetRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	profile := audio.DefaultProfile()
	profile.Update(audio.Patch{
		Volume: req.Volume,
		EQ:     req.EQ,
		Reverb: req.Reverb,
	})
	profile.SyncVersion = 1

	preset, err := h.presets.Create(r.Context(), actor, services.CreatePresetInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		DeviceID:    chi.URLParam(r, "deviceID"),
		Profile:     profile,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"preset": preset,
	})
}
