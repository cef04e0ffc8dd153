package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
)

// The item codecs must be lossless: marshalling an entity to its item,
// through DynamoDB attribute values and back, yields an equal entity.

func roundTrip[T any](t *testing.T, item T) T {
	t.Helper()
	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)

	var out T
	require.NoError(t, attributevalue.UnmarshalMap(av, &out))
	return out
}

func TestDeviceItemRoundTrip(t *testing.T) {
	device, err := entities.NewDevice("Speaker", "AH-200", "user-1")
	require.NoError(t, err)
	device.State.Update(audio.Patch{EQ: []int{3, -2, 0, 1, 4}})
	device.SetOnline()

	item := roundTrip(t, toDeviceItem(device))
	assert.Equal(t, device, item.toEntity())
}

func TestPresetItemRoundTrip(t *testing.T) {
	profile := audio.DefaultProfile()
	profile.SyncVersion = 1

	preset, err := entities.NewPreset("Evening", "Music", "Warm lows", "admin-1", entities.RoleAdmin, true, profile)
	require.NoError(t, err)
	preset.DeviceID = "device-7"
	preset.IncrementUsage()

	item := roundTrip(t, toPresetItem(preset))
	assert.Equal(t, preset, item.toEntity())
}

func TestUserItemRoundTrip(t *testing.T) {
	user, err := entities.NewUser("alice@example.com", "alice", "Alice Jones", entities.RoleUser, "cognito-1")
	require.NoError(t, err)
	user.Stats.DevicesCount = 2
	user.Stats.LoginCount = 7

	item := roundTrip(t, toUserItem(user))
	assert.Equal(t, user, item.toEntity())
}
