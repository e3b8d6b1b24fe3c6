package network

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/stick-arena/arena-server/internal/game"
)

// dispatch decodes the envelope and routes it to the matching handler. Any
// returned error counts as a protocol strike against the sender.
func (h *Handler) dispatch(client *Client, room *game.Room, payload []byte) error {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("malformed envelope: %w", err)
	}

	switch msg.Type {
	case MsgInputState:
		return h.handleInputState(client, room, msg.Data)
	case MsgPlayerShoot:
		return h.handleShoot(client, room, msg.Data)
	case MsgPlayerReload:
		return h.handleReload(client, room)
	case MsgWeaponPickupAttempt:
		return h.handlePickupAttempt(client, room, msg.Data)
	case MsgPlayerMeleeAttack:
		return h.handleMeleeAttack(client, room, msg.Data)
	case MsgPlayerDodgeRoll:
		return h.handleDodgeRoll(client, room)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (h *Handler) handleInputState(client *Client, room *game.Room, raw json.RawMessage) error {
	var data InputStateData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("input:state payload: %w", err)
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("input:state: %w", err)
	}

	room.HandleInput(client.PlayerID, game.InputState{
		Up:          data.Up,
		Down:        data.Down,
		Left:        data.Left,
		Right:       data.Right,
		AimAngle:    data.AimAngle,
		IsSprinting: data.IsSprinting,
	}, data.Sequence)
	return nil
}

func (h *Handler) handleShoot(client *Client, room *game.Room, raw json.RawMessage) error {
	var data PlayerShootData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("player:shoot payload: %w", err)
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("player:shoot: %w", err)
	}

	result := room.Shoot(client.PlayerID, data.AimAngle)
	if !result.Success {
		h.sendToPlayer(client.PlayerID, MsgShootFailed, map[string]string{
			"reason": result.Reason,
		})
		// Dry-firing auto-starts a reload; the shooter needs the new state.
		if result.Reason == game.ShootFailedOutOfAmmo {
			h.sendWeaponState(client.PlayerID, room)
		}
		return nil
	}

	h.sendWeaponState(client.PlayerID, room)
	return nil
}

func (h *Handler) handleReload(client *Client, room *game.Room) error {
	if room.Reload(client.PlayerID) {
		h.sendWeaponState(client.PlayerID, room)
	}
	return nil
}

func (h *Handler) handlePickupAttempt(client *Client, room *game.Room, raw json.RawMessage) error {
	var data WeaponPickupAttemptData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("weapon:pickup_attempt payload: %w", err)
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("weapon:pickup_attempt: %w", err)
	}

	result := room.PickupCrate(client.PlayerID, data.CrateID)
	if !result.Success {
		// Rejections are silent on the wire; most are benign races between
		// two players reaching the same crate.
		log.Printf("pickup rejected for %s: crate=%s reason=%s",
			client.PlayerID, data.CrateID, result.Reason)
		return nil
	}

	h.sendWeaponState(client.PlayerID, room)
	return nil
}

func (h *Handler) handleMeleeAttack(client *Client, room *game.Room, raw json.RawMessage) error {
	var data PlayerMeleeAttackData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("player:melee_attack payload: %w", err)
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("player:melee_attack: %w", err)
	}

	result := room.MeleeAttack(client.PlayerID, data.AimAngle)
	if !result.Success {
		log.Printf("melee rejected for %s: reason=%s", client.PlayerID, result.Reason)
	}
	return nil
}

func (h *Handler) handleDodgeRoll(client *Client, room *game.Room) error {
	if _, ok := room.DodgeRoll(client.PlayerID); !ok {
		log.Printf("dodge roll rejected for %s", client.PlayerID)
	}
	return nil
}

// sendWeaponState pushes the player's current ammo/reload view.
func (h *Handler) sendWeaponState(playerID string, room *game.Room) {
	info, ok := room.WeaponInfoFor(playerID)
	if !ok {
		return
	}
	h.sendToPlayer(playerID, MsgWeaponState, info)
}
