package dynamodb

import "fmt"

// Entity type discriminators stored on every item.
const (
	entityTypeUser   = "User"
	entityTypeDevice = "Device"
	entityTypePreset = "Preset"
)

// Fixed sort keys per entity.
const (
	userSK   = "PROFILE"
	deviceSK = "DEVICE"
	presetSK = "PRESET"
)

// Key prefixes for the composite primary key and the GSIs.
const (
	userPKPrefix   = "USER#"
	devicePKPrefix = "DEVICE#"
	presetPKPrefix = "PRESET#"
	emailPKPrefix  = "EMAIL#"
	rolePKPrefix   = "ROLE#"
)

func userPK(userID string) string {
	return userPKPrefix + userID
}

func devicePK(deviceID string) string {
	return devicePKPrefix + deviceID
}

func presetPK(presetID string) string {
	return presetPKPrefix + presetID
}

// ownerGSI1PK keys GSI1 for by-owner device and preset lookups.
func ownerGSI1PK(ownerID string) string {
	return userPKPrefix + ownerID
}

// emailGSI1PK keys GSI1 for the unique-email user lookup.
func emailGSI1PK(email string) string {
	return emailPKPrefix + email
}

// roleGSI2PK keys GSI2 for by-role user lookups.
func roleGSI2PK(role string) string {
	return rolePKPrefix + role
}

func deviceGSI1SK(deviceID string) string {
	return fmt.Sprintf("%s%s", devicePKPrefix, deviceID)
}

func presetGSI1SK(presetID string) string {
	return fmt.Sprintf("%s%s", presetPKPrefix, presetID)
}
