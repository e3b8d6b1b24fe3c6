package network

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Message is the wire envelope. Every frame in either direction is a JSON
// object of this shape; Data's schema is fixed per Type.
type Message struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Client → server message kinds. This is a closed vocabulary; anything else
// is a protocol error.
const (
	MsgInputState          = "input:state"
	MsgPlayerShoot         = "player:shoot"
	MsgPlayerReload        = "player:reload"
	MsgWeaponPickupAttempt = "weapon:pickup_attempt"
	MsgPlayerMeleeAttack   = "player:melee_attack"
	MsgPlayerDodgeRoll     = "player:dodge_roll"
)

// Server → client message kinds.
const (
	MsgRoomJoined            = "room:joined"
	MsgRoomClosing           = "room:closing"
	MsgPlayerLeft            = "player:left"
	MsgPlayerMove            = "player:move"
	MsgStateSnapshot         = "state:snapshot"
	MsgStateDelta            = "state:delta"
	MsgProjectileSpawn       = "projectile:spawn"
	MsgProjectileDestroy     = "projectile:destroy"
	MsgWeaponState           = "weapon:state"
	MsgShootFailed           = "shoot:failed"
	MsgPlayerDamaged         = "player:damaged"
	MsgHitConfirmed          = "hit:confirmed"
	MsgPlayerDeath           = "player:death"
	MsgPlayerKillCredit      = "player:kill_credit"
	MsgPlayerRespawn         = "player:respawn"
	MsgMatchTimer            = "match:timer"
	MsgMatchEnded            = "match:ended"
	MsgWeaponSpawned         = "weapon:spawned"
	MsgWeaponPickupConfirmed = "weapon:pickup_confirmed"
	MsgWeaponRespawned       = "weapon:respawned"
	MsgMeleeHit              = "melee:hit"
	MsgRollStart             = "roll:start"
	MsgRollEnd               = "roll:end"
)

// criticalKinds are always enqueued on a full outbound queue; the oldest
// droppable frame makes room instead.
var criticalKinds = map[string]bool{
	MsgRoomJoined:            true,
	MsgRoomClosing:           true,
	MsgPlayerDeath:           true,
	MsgMatchEnded:            true,
	MsgWeaponPickupConfirmed: true,
}

// InputStateData is the input:state payload.
type InputStateData struct {
	Up          bool    `json:"up"`
	Down        bool    `json:"down"`
	Left        bool    `json:"left"`
	Right       bool    `json:"right"`
	AimAngle    float64 `json:"aimAngle"`
	IsSprinting bool    `json:"isSprinting"`
	Sequence    uint64  `json:"sequence"`
}

// Validate rejects values JSON allows but the simulation cannot accept.
func (d *InputStateData) Validate() error {
	if math.IsNaN(d.AimAngle) || math.IsInf(d.AimAngle, 0) {
		return fmt.Errorf("invalid aimAngle")
	}
	return nil
}

// PlayerShootData is the player:shoot payload.
type PlayerShootData struct {
	AimAngle float64 `json:"aimAngle"`
}

func (d *PlayerShootData) Validate() error {
	if math.IsNaN(d.AimAngle) || math.IsInf(d.AimAngle, 0) {
		return fmt.Errorf("invalid aimAngle")
	}
	return nil
}

// PlayerMeleeAttackData is the player:melee_attack payload.
type PlayerMeleeAttackData struct {
	AimAngle float64 `json:"aimAngle"`
}

func (d *PlayerMeleeAttackData) Validate() error {
	if math.IsNaN(d.AimAngle) || math.IsInf(d.AimAngle, 0) {
		return fmt.Errorf("invalid aimAngle")
	}
	return nil
}

// WeaponPickupAttemptData is the weapon:pickup_attempt payload.
type WeaponPickupAttemptData struct {
	CrateID string `json:"crateId"`
}

func (d *WeaponPickupAttemptData) Validate() error {
	if d.CrateID == "" {
		return fmt.Errorf("missing crateId")
	}
	return nil
}

// encodeMessage marshals an envelope around the given payload.
func encodeMessage(kind string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s data: %w", kind, err)
		}
		raw = b
	}
	return json.Marshal(Message{
		Type:      kind,
		Timestamp: time.Now().UnixMilli(),
		Data:      raw,
	})
}
