package entities

import (
	"strings"

	"github.com/google/uuid"

	"audiohub-backend/domain/audio"
	pkgerrors "audiohub-backend/pkg/errors"
	"audiohub-backend/pkg/utils"
)

const (
	MaxPresetNameLength = 50

	// SystemUserID owns the built-in preset catalog.
	SystemUserID = "system"
)

// Preset is a named, reusable audio profile. Private presets are
// visible only to their creator (and admins); public presets are
// visible to everyone but may only be created by admins.
type Preset struct {
	PresetID       string        `json:"preset_id"`
	PresetName     string        `json:"preset_name"`
	PresetCategory string        `json:"preset_category,omitempty"`
	Profile        audio.Profile `json:"profile"`
	CreatedBy      string        `json:"created_by"`
	CreatorRole    string        `json:"creator_role"`
	IsPublic       bool          `json:"is_public"`
	Description    string        `json:"description,omitempty"`
	UsageCount     int           `json:"usage_count"`
	DeviceID       string        `json:"device_id,omitempty"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

// NewPreset creates a validated preset.
func NewPreset(name, category, description, createdBy, creatorRole string, isPublic bool, profile audio.Profile) (*Preset, error) {
	now := utils.NowRFC3339()
	preset := &Preset{
		PresetID:       uuid.New().String(),
		PresetName:     strings.TrimSpace(name),
		PresetCategory: strings.TrimSpace(category),
		Profile:        profile,
		CreatedBy:      createdBy,
		CreatorRole:    creatorRole,
		IsPublic:       isPublic,
		Description:    description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	return preset, nil
}

// Validate checks structural invariants, including the rule that a
// public preset must have an admin creator.
func (p *Preset) Validate() error {
	var fields []string

	if p.PresetName == "" {
		fields = append(fields, "preset name is required")
	} else if len(p.PresetName) > MaxPresetNameLength {
		fields = append(fields, "preset name must not exceed 50 characters")
	}
	if p.CreatedBy == "" {
		fields = append(fields, "creator id is required")
	}
	if p.CreatorRole != RoleAdmin && p.CreatorRole != RoleUser {
		fields = append(fields, "creator role must be either admin or user")
	}
	if p.IsPublic && p.CreatorRole != RoleAdmin {
		fields = append(fields, "only admins can create public presets")
	}

	if len(fields) > 0 {
		return pkgerrors.NewValidationError("Invalid preset").
			WithCode("VALIDATION_ERROR").
			WithFieldErrors(fields)
	}
	return p.Profile.Validate()
}

// AppliesTo reports whether the preset can be applied to the given
// device. An unscoped preset applies to any device.
func (p *Preset) AppliesTo(deviceID string) bool {
	return p.DeviceID == "" || p.DeviceID == deviceID
}

// IncrementUsage bumps the usage counter.
func (p *Preset) IncrementUsage() {
	p.UsageCount++
	p.UpdatedAt = utils.NowRFC3339()
}

// FilterByCategory returns the presets matching the category; an empty
// category or "all" disables filtering.
func FilterByCategory(presets []*Preset, category string) []*Preset {
	if category == "" || category == "all" {
		return presets
	}
	out := make([]*Preset, 0, len(presets))
	for _, p := range presets {
		if p.PresetCategory == category {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPresets returns the built-in catalog. All entries are public
// and system-owned with an admin creator role.
func DefaultPresets() []*Preset {
	now := utils.NowRFC3339()

	build := func(name, category, description string, volume float64, eq []int, reverb float64) *Preset {
		return &Preset{
			PresetID:       uuid.New().String(),
			PresetName:     name,
			PresetCategory: category,
			Profile: audio.Profile{
				Volume:      volume,
				EQ:          eq,
				Reverb:      reverb,
				UpdatedAt:   now,
				SyncVersion: 1,
			},
			CreatedBy:   SystemUserID,
			CreatorRole: RoleAdmin,
			IsPublic:    true,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return []*Preset{
		build("Flat", "Standard", "Balanced audio settings suitable for most content", 0.5, []int{0, 0, 0, 0, 0}, 0.3),
		build("Rock", "Music", "Boosts lows and highs, tailored for rock music", 0.65, []int{3, 2, -1, 2, 4}, 0.4),
		build("Pop", "Music", "Highlights vocals, ideal for pop tracks", 0.6, []int{-1, 2, 3, 1, 2}, 0.35),
		build("Classical", "Music", "Natural tonality tuned for classical music", 0.55, []int{0, -2, 0, 2, 1}, 0.5),
		build("Cinema", "Entertainment", "Wider dynamic range for movie soundtracks", 0.7, []int{2, 0, -1, 3, 2}, 0.6),
	}
}
