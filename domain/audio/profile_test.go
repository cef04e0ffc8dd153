package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	assert.Equal(t, 0.5, p.Volume)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, p.EQ)
	assert.Equal(t, 0.3, p.Reverb)
	assert.Equal(t, 1, p.SyncVersion)
	assert.Empty(t, p.LastPresetID)
	assert.NotEmpty(t, p.UpdatedAt)
	assert.NoError(t, p.Validate())
}

func TestProfileUpdateClampsValues(t *testing.T) {
	tests := []struct {
		name       string
		patch      Patch
		wantVolume float64
		wantEQ     []int
		wantReverb float64
	}{
		{
			name:       "in-range values pass through",
			patch:      Patch{Volume: floatPtr(0.8), EQ: []int{3, -2, 0, 5, 12}, Reverb: floatPtr(0.1)},
			wantVolume: 0.8,
			wantEQ:     []int{3, -2, 0, 5, 12},
			wantReverb: 0.1,
		},
		{
			name:       "volume above range clamps to max",
			patch:      Patch{Volume: floatPtr(1.7)},
			wantVolume: 1.0,
			wantEQ:     []int{0, 0, 0, 0, 0},
			wantReverb: 0.3,
		},
		{
			name:       "volume below range clamps to min",
			patch:      Patch{Volume: floatPtr(-0.2)},
			wantVolume: 0.0,
			wantEQ:     []int{0, 0, 0, 0, 0},
			wantReverb: 0.3,
		},
		{
			name:       "eq gains clamp to the dB range",
			patch:      Patch{EQ: []int{-30, 30, 0, 12, -12}},
			wantVolume: 0.5,
			wantEQ:     []int{-12, 12, 0, 12, -12},
			wantReverb: 0.3,
		},
		{
			name:       "short eq array pads missing bands with zero",
			patch:      Patch{EQ: []int{4, 4}},
			wantVolume: 0.5,
			wantEQ:     []int{4, 4, 0, 0, 0},
			wantReverb: 0.3,
		},
		{
			name:       "reverb clamps to range",
			patch:      Patch{Reverb: floatPtr(2.5)},
			wantVolume: 0.5,
			wantEQ:     []int{0, 0, 0, 0, 0},
			wantReverb: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			p.Update(tt.patch)

			assert.Equal(t, tt.wantVolume, p.Volume)
			assert.Equal(t, tt.wantEQ, p.EQ)
			assert.Equal(t, tt.wantReverb, p.Reverb)
		})
	}
}

func TestProfileUpdateBumpsSyncVersion(t *testing.T) {
	p := DefaultProfile()
	require.Equal(t, 1, p.SyncVersion)

	p.Update(Patch{Volume: floatPtr(0.9)})
	assert.Equal(t, 2, p.SyncVersion)

	// An empty patch is still an update from the device's point of view.
	p.Update(Patch{})
	assert.Equal(t, 3, p.SyncVersion)
}

func TestProfileReset(t *testing.T) {
	p := DefaultProfile()
	p.Update(Patch{Volume: floatPtr(1.0), EQ: []int{5, 5, 5, 5, 5}})
	p.LastPresetID = "preset-1"
	version := p.SyncVersion

	p.Reset()

	assert.Equal(t, DefaultVolume, p.Volume)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, p.EQ)
	assert.Equal(t, DefaultReverb, p.Reverb)
	assert.Empty(t, p.LastPresetID)
	assert.Equal(t, version+1, p.SyncVersion)
}

func TestPatchValidateStrict(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"empty patch is valid", Patch{}, false},
		{"in-range volume", Patch{Volume: floatPtr(0.5)}, false},
		{"boundary volume", Patch{Volume: floatPtr(1.0)}, false},
		{"volume too high", Patch{Volume: floatPtr(1.01)}, true},
		{"volume negative", Patch{Volume: floatPtr(-0.1)}, true},
		{"valid eq", Patch{EQ: []int{-12, 12, 0, 3, -3}}, false},
		{"eq wrong length", Patch{EQ: []int{1, 2, 3}}, true},
		{"eq gain out of range", Patch{EQ: []int{0, 0, 0, 0, 13}}, true},
		{"reverb too high", Patch{Reverb: floatPtr(1.5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPatchNormalized(t *testing.T) {
	patch := Patch{Volume: floatPtr(3.0), EQ: []int{99}, Reverb: floatPtr(-1.0)}
	norm := patch.Normalized()

	require.NotNil(t, norm.Volume)
	require.NotNil(t, norm.Reverb)
	assert.Equal(t, 1.0, *norm.Volume)
	assert.Equal(t, []int{12, 0, 0, 0, 0}, norm.EQ)
	assert.Equal(t, 0.0, *norm.Reverb)

	// Untouched fields stay nil.
	partial := Patch{Volume: floatPtr(0.4)}.Normalized()
	assert.Nil(t, partial.EQ)
	assert.Nil(t, partial.Reverb)
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Volume: floatPtr(0.5)}.IsEmpty())
	assert.False(t, Patch{EQ: []int{0, 0, 0, 0, 0}}.IsEmpty())
	assert.False(t, Patch{Reverb: floatPtr(0.5)}.IsEmpty())
}

func TestFromPreset(t *testing.T) {
	source := Profile{
		Volume:      0.65,
		EQ:          []int{3, 2, -1, 2, 4},
		Reverb:      0.4,
		SyncVersion: 42,
	}

	out := FromPreset(source, "preset-123")

	assert.Equal(t, 0.65, out.Volume)
	assert.Equal(t, []int{3, 2, -1, 2, 4}, out.EQ)
	assert.Equal(t, 0.4, out.Reverb)
	assert.Equal(t, "preset-123", out.LastPresetID)
	assert.Equal(t, 1, out.SyncVersion, "applied preset starts a fresh sync lineage")

	// The copy must not alias the source EQ slice.
	out.EQ[0] = 99
	assert.Equal(t, 3, source.EQ[0])
}

func TestProfileEquals(t *testing.T) {
	a := Profile{Volume: 0.5, EQ: []int{1, 2, 3, 4, 5}, Reverb: 0.3, SyncVersion: 1}
	b := Profile{Volume: 0.5, EQ: []int{1, 2, 3, 4, 5}, Reverb: 0.3, SyncVersion: 9, LastPresetID: "x"}

	assert.True(t, a.Equals(&b), "sync version and provenance are not audible")

	b.EQ[2] = 0
	assert.False(t, a.Equals(&b))

	assert.False(t, a.Equals(nil))
}

func TestProfileValidate(t *testing.T) {
	p := Profile{Volume: 0.5, EQ: []int{0, 0, 0, 0, 0}, Reverb: 0.3}
	assert.NoError(t, p.Validate())

	bad := Profile{Volume: 2.0, EQ: []int{0, 0, 0}, Reverb: -1.0}
	assert.Error(t, bad.Validate())
}
