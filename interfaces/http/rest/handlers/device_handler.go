package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"audiohub-backend/application/services"
	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
	"audiohub-backend/pkg/common"
	"audiohub-backend/pkg/utils"
)

// DeviceHandler serves device listing, state updates and preset
// application.
type DeviceHandler struct {
	devices *services.DeviceService
	logger  *zap.Logger
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(devices *services.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		devices: devices,
		logger:  logger,
	}
}

// List handles GET /api/devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	devices, err := h.devices.List(r.Context(), actor)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"devices": devices,
		"count":   len(devices),
	})
}

type updateDeviceRequest struct {
	DeviceName *string  `json:"deviceName" validate:"omitempty,max=50"`
	Volume     *float64 `json:"volume" validate:"omitempty,gte=0,lte=1"`
	EQ         []int    `json:"eq" validate:"omitempty,len=5,dive,gte=-12,lte=12"`
	Reverb     *float64 `json:"reverb" validate:"omitempty,gte=0,lte=1"`
}

// Update handles PUT /api/devices/{deviceID}: a partial update of the
// name and audio fields. Out-of-range input rejects the whole request;
// nothing is clamped at this boundary.
func (h *DeviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	deviceID := chi.URLParam(r, "deviceID")

	var req updateDeviceRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	device, err := h.devices.Update(r.Context(), actor, deviceID, entities.DevicePatch{
		DeviceName: req.DeviceName,
		State: audio.Patch{
			Volume: req.Volume,
			EQ:     req.EQ,
			Reverb: req.Reverb,
		},
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"device": device,
	})
}

type applyPresetRequest struct {
	PresetID string `json:"preset_id" validate:"required,uuid"`
}

// ApplyPreset handles POST /api/devices/{deviceID}/apply-preset
func (h *DeviceHandler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	deviceID := chi.URLParam(r, "deviceID")

	var req applyPresetRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	device, err := h.devices.ApplyPreset(r.Context(), actor, deviceID, req.PresetID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"device": device,
	})
}

type presenceRequest struct {
	IsOnline *bool `json:"is_online" validate:"required"`
}

// SetPresence handles POST /api/devices/{deviceID}/presence
func (h *DeviceHandler) SetPresence(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	deviceID := chi.URLParam(r, "deviceID")

	var req presenceRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.devices.SetPresence(r.Context(), actor, deviceID, *req.IsOnline); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"device_id": deviceID,
		"is_online": *req.IsOnline,
	})
}
