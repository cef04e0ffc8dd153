package dynamodb

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
	"audiohub-backend/pkg/utils"
)

// Typed patch builders. Each compiles a domain-level partial update
// into a native update expression, so the set of touched attributes is
// fixed by the type system rather than assembled from strings.

// devicePatch maps a partial device update onto the item: the name at
// the top level, audio fields under the nested state attribute. State
// values are clamped the way the domain profile would clamp them, and
// the sync version advances atomically on every update, name-only
// updates included.
func devicePatch(patch entities.DevicePatch) expression.UpdateBuilder {
	state := patch.State.Normalized()
	now := utils.NowRFC3339()

	update := expression.
		Set(expression.Name("updated_at"), expression.Value(now)).
		Set(expression.Name("state.updated_at"), expression.Value(now)).
		Set(expression.Name("state.sync_version"),
			expression.Name("state.sync_version").Plus(expression.Value(1)))

	if patch.DeviceName != nil {
		update = update.Set(expression.Name("device_name"), expression.Value(*patch.DeviceName))
	}
	if state.Volume != nil {
		update = update.Set(expression.Name("state.volume"), expression.Value(*state.Volume))
	}
	if state.EQ != nil {
		update = update.Set(expression.Name("state.eq"), expression.Value(state.EQ))
	}
	if state.Reverb != nil {
		update = update.Set(expression.Name("state.reverb"), expression.Value(*state.Reverb))
	}

	return update
}

// deviceProfileReplace swaps the whole audio state in one write. Used
// by preset application, where nothing of the previous state survives.
func deviceProfileReplace(profile audio.Profile) expression.UpdateBuilder {
	now := utils.NowRFC3339()
	return expression.
		Set(expression.Name("state"), expression.Value(profile)).
		Set(expression.Name("updated_at"), expression.Value(now))
}

// devicePresencePatch flips the online flag and refreshes last_seen.
func devicePresencePatch(online bool) expression.UpdateBuilder {
	now := utils.NowRFC3339()
	return expression.
		Set(expression.Name("is_online"), expression.Value(online)).
		Set(expression.Name("last_seen"), expression.Value(now)).
		Set(expression.Name("updated_at"), expression.Value(now))
}

// userProfilePatch maps the allow-listed profile fields. Role, email,
// status and stats have no corresponding patch field, so this builder
// cannot touch them. The second return is false when the patch is
// empty.
func userProfilePatch(patch entities.UserPatch) (expression.UpdateBuilder, bool) {
	update := expression.Set(expression.Name("updated_at"), expression.Value(utils.NowRFC3339()))
	changed := false

	if patch.FullName != nil {
		update = update.Set(expression.Name("full_name"), expression.Value(*patch.FullName))
		changed = true
	}
	if patch.AvatarURL != nil {
		update = update.Set(expression.Name("avatar_url"), expression.Value(*patch.AvatarURL))
		changed = true
	}
	if patch.Phone != nil {
		update = update.Set(expression.Name("phone"), expression.Value(*patch.Phone))
		changed = true
	}
	if patch.Preferences != nil {
		update = update.Set(expression.Name("preferences"), expression.Value(*patch.Preferences))
		changed = true
	}
	if patch.Profile != nil {
		update = update.Set(expression.Name("profile"), expression.Value(*patch.Profile))
		changed = true
	}

	return update, changed
}

// userStatsPatch maps a partial stats update.
func userStatsPatch(patch entities.StatsPatch) (expression.UpdateBuilder, bool) {
	update := expression.Set(expression.Name("updated_at"), expression.Value(utils.NowRFC3339()))
	changed := false

	if patch.DevicesCount != nil {
		update = update.Set(expression.Name("stats.devices_count"), expression.Value(*patch.DevicesCount))
		changed = true
	}
	if patch.PresetsCount != nil {
		update = update.Set(expression.Name("stats.presets_count"), expression.Value(*patch.PresetsCount))
		changed = true
	}
	if patch.TotalSessionTime != nil {
		update = update.Set(expression.Name("stats.total_session_time"), expression.Value(*patch.TotalSessionTime))
		changed = true
	}

	return update, changed
}

// userLoginPatch refreshes activity timestamps and increments the
// login counter atomically.
func userLoginPatch() expression.UpdateBuilder {
	now := utils.NowRFC3339()
	return expression.
		Set(expression.Name("last_active_at"), expression.Value(now)).
		Set(expression.Name("stats.last_login"), expression.Value(now)).
		Set(expression.Name("stats.login_count"),
			expression.Name("stats.login_count").Plus(expression.Value(1)))
}

// presetUsagePatch increments the usage counter atomically.
func presetUsagePatch() expression.UpdateBuilder {
	return expression.
		Set(expression.Name("usage_count"),
			expression.Name("usage_count").Plus(expression.Value(1))).
		Set(expression.Name("updated_at"), expression.Value(utils.NowRFC3339()))
}
