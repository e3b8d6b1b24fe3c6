package network

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncodeMessage tests the envelope shape
func TestEncodeMessage(t *testing.T) {
	payload, err := encodeMessage(MsgMatchTimer, map[string]int{"remainingSeconds": 90})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, MsgMatchTimer, msg.Type)
	assert.Greater(t, msg.Timestamp, int64(0))

	var data map[string]int
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, 90, data["remainingSeconds"])
}

// TestEncodeMessageWithoutData tests payload-less kinds
func TestEncodeMessageWithoutData(t *testing.T) {
	payload, err := encodeMessage(MsgRoomClosing, nil)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, MsgRoomClosing, msg.Type)
	assert.Empty(t, msg.Data)
}

// TestInputStateValidate tests the aim angle guard
func TestInputStateValidate(t *testing.T) {
	valid := InputStateData{AimAngle: 1.5, Sequence: 10}
	assert.NoError(t, valid.Validate())

	nan := InputStateData{AimAngle: math.NaN()}
	assert.Error(t, nan.Validate())

	inf := InputStateData{AimAngle: math.Inf(1)}
	assert.Error(t, inf.Validate())
}

// TestShootAndMeleeValidate tests aim guards on attack payloads
func TestShootAndMeleeValidate(t *testing.T) {
	assert.NoError(t, (&PlayerShootData{AimAngle: 0}).Validate())
	assert.Error(t, (&PlayerShootData{AimAngle: math.NaN()}).Validate())
	assert.Error(t, (&PlayerMeleeAttackData{AimAngle: math.Inf(-1)}).Validate())
}

// TestPickupValidate tests the crate id guard
func TestPickupValidate(t *testing.T) {
	assert.Error(t, (&WeaponPickupAttemptData{}).Validate())
	assert.NoError(t, (&WeaponPickupAttemptData{CrateID: "c1"}).Validate())
}

// TestCriticalKinds tests the delivery guarantee classification
func TestCriticalKinds(t *testing.T) {
	for _, kind := range []string{MsgRoomJoined, MsgRoomClosing, MsgPlayerDeath, MsgMatchEnded, MsgWeaponPickupConfirmed} {
		assert.True(t, criticalKinds[kind], "%s must be critical", kind)
	}
	for _, kind := range []string{MsgPlayerMove, MsgStateSnapshot, MsgProjectileSpawn, MsgMatchTimer} {
		assert.False(t, criticalKinds[kind], "%s must be droppable", kind)
	}
}
