// Package policy is the single decision point for authorization. Every
// service asks these predicates instead of comparing roles inline, so
// the access rules live in one place.
package policy

import (
	"audiohub-backend/domain/entities"
)

// Actor identifies the authenticated caller for authorization checks.
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the actor has the administrator role.
func (a Actor) IsAdmin() bool {
	return a.Role == entities.RoleAdmin
}

// CanOperateDevice reports whether the actor may read or mutate the
// device. Admins operate any device; everyone else only their own.
func CanOperateDevice(actor Actor, device *entities.Device) bool {
	return actor.IsAdmin() || device.IsOwnedBy(actor.UserID)
}

// CanViewPreset reports whether the preset is visible to the actor:
// public presets to everyone, private presets to their creator and to
// admins.
func CanViewPreset(actor Actor, preset *entities.Preset) bool {
	return preset.IsPublic || preset.CreatedBy == actor.UserID || actor.IsAdmin()
}

// CanUsePreset reports whether the actor may apply the preset to a
// device. Usability follows visibility.
func CanUsePreset(actor Actor, preset *entities.Preset) bool {
	return CanViewPreset(actor, preset)
}

// CanManagePreset reports whether the actor may modify or delete the
// preset. Admins manage all presets; users only their own.
func CanManagePreset(actor Actor, preset *entities.Preset) bool {
	return actor.IsAdmin() || preset.CreatedBy == actor.UserID
}

// CanCreatePublicPreset reports whether the actor may create a preset
// with the given visibility. Private presets are open to everyone;
// public ones require the administrator role.
func CanCreatePublicPreset(actor Actor, isPublic bool) bool {
	if !isPublic {
		return true
	}
	return actor.IsAdmin()
}

// CanViewPrivateProfile reports whether the actor may see another
// user's private profile fields: only the user themselves and admins.
func CanViewPrivateProfile(actor Actor, userID string) bool {
	return actor.UserID == userID || actor.IsAdmin()
}

// CanManageUsers reports whether the actor may administer accounts.
func CanManageUsers(actor Actor) bool {
	return actor.IsAdmin()
}
