package network

import (
	"github.com/stick-arena/arena-server/internal/game"
)

// Handler implements game.RoomListener: every simulation event maps to one
// wire message, either broadcast to the room or targeted at one player.
// These run with the room lock held, so they only encode and enqueue.

func (h *Handler) OnPlayerMove(room *game.Room, players []game.PlayerSnapshot, lastProcessed map[string]uint64) {
	h.broadcastToRoom(room.ID, MsgPlayerMove, map[string]any{
		"players":               players,
		"lastProcessedSequence": lastProcessed,
	})
}

func (h *Handler) OnStateSnapshot(room *game.Room, snap game.StateSnapshot) {
	h.broadcastToRoom(room.ID, MsgStateSnapshot, snap)
}

func (h *Handler) OnMatchTimer(room *game.Room, remainingSeconds int) {
	h.broadcastToRoom(room.ID, MsgMatchTimer, map[string]int{
		"remainingSeconds": remainingSeconds,
	})
}

func (h *Handler) OnMatchEnded(room *game.Room, result game.MatchResult) {
	h.broadcastToRoom(room.ID, MsgMatchEnded, result)
}

func (h *Handler) OnPlayerDamaged(room *game.Room, ev game.DamageEvent) {
	h.broadcastToRoom(room.ID, MsgPlayerDamaged, map[string]any{
		"attackerId":   ev.AttackerID,
		"victimId":     ev.VictimID,
		"projectileId": ev.ProjectileID,
		"weaponType":   ev.WeaponType,
		"damage":       ev.Damage,
		"newHealth":    ev.NewHealth,
	})

	if ev.AttackerID != "" && ev.AttackerID != ev.VictimID {
		h.sendToPlayer(ev.AttackerID, MsgHitConfirmed, map[string]any{
			"victimId":  ev.VictimID,
			"damage":    ev.Damage,
			"newHealth": ev.NewHealth,
		})
	}
}

func (h *Handler) OnPlayerDeath(room *game.Room, attackerID, victimID string) {
	h.broadcastToRoom(room.ID, MsgPlayerDeath, map[string]string{
		"attackerId": attackerID,
		"victimId":   victimID,
	})
}

func (h *Handler) OnKillCredit(room *game.Room, killerID, victimID string, killerKills, killerXP int) {
	h.sendToPlayer(killerID, MsgPlayerKillCredit, map[string]any{
		"victimId": victimID,
		"kills":    killerKills,
		"xp":       killerXP,
	})
}

func (h *Handler) OnPlayerRespawn(room *game.Room, playerID string, position game.Vector2) {
	h.broadcastToRoom(room.ID, MsgPlayerRespawn, map[string]any{
		"playerId": playerID,
		"position": position,
		"health":   game.PlayerMaxHealth,
	})
}

func (h *Handler) OnRollStart(room *game.Room, playerID string, direction game.Vector2) {
	h.broadcastToRoom(room.ID, MsgRollStart, map[string]any{
		"playerId":  playerID,
		"direction": direction,
	})
}

func (h *Handler) OnRollEnd(room *game.Room, playerID, reason string) {
	h.broadcastToRoom(room.ID, MsgRollEnd, map[string]string{
		"playerId": playerID,
		"reason":   reason,
	})
}

func (h *Handler) OnReloadComplete(room *game.Room, playerID string, info game.WeaponInfo) {
	h.sendToPlayer(playerID, MsgWeaponState, info)
}

func (h *Handler) OnProjectileSpawn(room *game.Room, projectile game.ProjectileSnapshot) {
	h.broadcastToRoom(room.ID, MsgProjectileSpawn, projectile)
}

func (h *Handler) OnProjectileDestroy(room *game.Room, projectileID string) {
	h.broadcastToRoom(room.ID, MsgProjectileDestroy, map[string]string{
		"projectileId": projectileID,
	})
}

func (h *Handler) OnProjectileDelta(room *game.Room, projectiles []game.ProjectileSnapshot) {
	h.broadcastToRoom(room.ID, MsgStateDelta, map[string]any{
		"projectiles": projectiles,
	})
}

func (h *Handler) OnMeleeHit(room *game.Room, attackerID string, victimIDs []string, knockbackApplied bool) {
	h.broadcastToRoom(room.ID, MsgMeleeHit, map[string]any{
		"attackerId":       attackerID,
		"victimIds":        victimIDs,
		"knockbackApplied": knockbackApplied,
	})
}

func (h *Handler) OnWeaponPickup(room *game.Room, playerID string, crate game.CrateSnapshot) {
	h.broadcastToRoom(room.ID, MsgWeaponPickupConfirmed, map[string]any{
		"playerId":   playerID,
		"crateId":    crate.ID,
		"weaponType": crate.WeaponType,
	})
}

func (h *Handler) OnWeaponRespawn(room *game.Room, crate game.CrateSnapshot) {
	h.broadcastToRoom(room.ID, MsgWeaponRespawned, crate)
}
