package audio

import (
	pkgerrors "audiohub-backend/pkg/errors"
	"audiohub-backend/pkg/utils"
)

// Range limits for profile fields. Volume and reverb are normalized
// levels; EQ bands are gain offsets in dB.
const (
	MinVolume = 0.0
	MaxVolume = 1.0
	MinReverb = 0.0
	MaxReverb = 1.0
	MinEQGain = -12
	MaxEQGain = 12
	EQBands   = 5
)

// Defaults for a freshly provisioned device.
const (
	DefaultVolume = 0.5
	DefaultReverb = 0.3
)

// Profile is the audio state embedded in devices and presets. It is a
// value object: it never exists as a standalone item in storage.
type Profile struct {
	Volume       float64 `json:"volume" dynamodbav:"volume"`
	EQ           []int   `json:"eq" dynamodbav:"eq"`
	Reverb       float64 `json:"reverb" dynamodbav:"reverb"`
	LastPresetID string  `json:"last_preset_id,omitempty" dynamodbav:"last_preset_id,omitempty"`
	UpdatedAt    string  `json:"updated_at" dynamodbav:"updated_at"`
	SyncVersion  int     `json:"sync_version" dynamodbav:"sync_version"`
}

// Patch carries a partial profile update. Nil fields are left untouched.
type Patch struct {
	Volume *float64
	EQ     []int
	Reverb *float64
}

// IsEmpty reports whether the patch carries no changes.
func (p Patch) IsEmpty() bool {
	return p.Volume == nil && p.EQ == nil && p.Reverb == nil
}

// Normalized returns a copy of the patch with every supplied value
// clamped into range, matching what Update would store.
func (p Patch) Normalized() Patch {
	out := Patch{}
	if p.Volume != nil {
		v := clamp(*p.Volume, MinVolume, MaxVolume)
		out.Volume = &v
	}
	if p.EQ != nil {
		bands := make([]int, EQBands)
		for i := 0; i < EQBands && i < len(p.EQ); i++ {
			bands[i] = clampGain(p.EQ[i])
		}
		out.EQ = bands
	}
	if p.Reverb != nil {
		v := clamp(*p.Reverb, MinReverb, MaxReverb)
		out.Reverb = &v
	}
	return out
}

// Validate checks a patch strictly, rejecting out-of-range values
// instead of clamping them. Ingress boundaries use this before any
// write is attempted.
func (p Patch) Validate() error {
	var fields []string

	if p.Volume != nil && (*p.Volume < MinVolume || *p.Volume > MaxVolume) {
		fields = append(fields, "volume must be a number between 0 and 1")
	}
	if p.EQ != nil {
		if len(p.EQ) != EQBands {
			fields = append(fields, "eq must be an array of exactly 5 bands")
		} else {
			for _, gain := range p.EQ {
				if gain < MinEQGain || gain > MaxEQGain {
					fields = append(fields, "eq bands must be numbers between -12 and 12")
					break
				}
			}
		}
	}
	if p.Reverb != nil && (*p.Reverb < MinReverb || *p.Reverb > MaxReverb) {
		fields = append(fields, "reverb must be a number between 0 and 1")
	}

	if len(fields) > 0 {
		return pkgerrors.NewValidationError("Invalid audio settings").
			WithCode("VALIDATION_ERROR").
			WithFieldErrors(fields)
	}
	return nil
}

// DefaultProfile returns a profile with factory settings.
func DefaultProfile() Profile {
	return Profile{
		Volume:      DefaultVolume,
		EQ:          make([]int, EQBands),
		Reverb:      DefaultReverb,
		UpdatedAt:   utils.NowRFC3339(),
		SyncVersion: 1,
	}
}

// Validate checks every field against its allowed range.
func (p *Profile) Validate() error {
	var fields []string

	if p.Volume < MinVolume || p.Volume > MaxVolume {
		fields = append(fields, "volume must be a number between 0 and 1")
	}
	if len(p.EQ) != EQBands {
		fields = append(fields, "eq must be an array of exactly 5 bands")
	} else {
		for _, gain := range p.EQ {
			if gain < MinEQGain || gain > MaxEQGain {
				fields = append(fields, "eq bands must be numbers between -12 and 12")
				break
			}
		}
	}
	if p.Reverb < MinReverb || p.Reverb > MaxReverb {
		fields = append(fields, "reverb must be a number between 0 and 1")
	}

	if len(fields) > 0 {
		return pkgerrors.NewValidationError("Invalid audio profile").
			WithCode("VALIDATION_ERROR").
			WithFieldErrors(fields)
	}
	return nil
}

// Update applies a partial update, clamping each supplied value into
// range rather than rejecting it. Ingress boundaries validate strictly
// before calling this; internal callers (preset application, device
// sync) rely on the clamping. Any update bumps the sync version.
func (p *Profile) Update(patch Patch) {
	if patch.Volume != nil {
		p.Volume = clamp(*patch.Volume, MinVolume, MaxVolume)
	}
	if patch.EQ != nil {
		bands := make([]int, EQBands)
		for i := 0; i < EQBands && i < len(patch.EQ); i++ {
			bands[i] = clampGain(patch.EQ[i])
		}
		p.EQ = bands
	}
	if patch.Reverb != nil {
		p.Reverb = clamp(*patch.Reverb, MinReverb, MaxReverb)
	}

	p.SyncVersion++
	p.UpdatedAt = utils.NowRFC3339()
}

// Reset restores factory settings. Counts as a regular update for
// synchronization purposes.
func (p *Profile) Reset() {
	p.Volume = DefaultVolume
	p.EQ = make([]int, EQBands)
	p.Reverb = DefaultReverb
	p.LastPresetID = ""
	p.SyncVersion++
	p.UpdatedAt = utils.NowRFC3339()
}

// Equals compares the audible settings only; timestamps, sync versions
// and preset provenance are ignored.
func (p *Profile) Equals(other *Profile) bool {
	if other == nil {
		return false
	}
	if p.Volume != other.Volume || p.Reverb != other.Reverb {
		return false
	}
	if len(p.EQ) != len(other.EQ) {
		return false
	}
	for i := range p.EQ {
		if p.EQ[i] != other.EQ[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (p *Profile) Clone() Profile {
	out := *p
	out.EQ = append([]int(nil), p.EQ...)
	return out
}

// FromPreset builds a device profile from a preset's stored profile.
// The result starts a fresh sync lineage (version 1) and records which
// preset it came from.
func FromPreset(source Profile, presetID string) Profile {
	out := source.Clone()
	out.LastPresetID = presetID
	out.SyncVersion = 1
	out.UpdatedAt = utils.NowRFC3339()
	return out
}

// Summary returns a compact view for logs and analytics events.
func (p *Profile) Summary() map[string]interface{} {
	return map[string]interface{}{
		"volume":       p.Volume,
		"eq":           append([]int(nil), p.EQ...),
		"reverb":       p.Reverb,
		"sync_version": p.SyncVersion,
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampGain(v int) int {
	if v < MinEQGain {
		return MinEQGain
	}
	if v > MaxEQGain {
		return MaxEQGain
	}
	return v
}
