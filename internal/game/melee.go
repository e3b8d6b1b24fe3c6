package game

import "math"

// MeleeAttackResult lists who a swing connected with.
type MeleeAttackResult struct {
	HitPlayers       []*PlayerState
	KnockbackApplied bool
}

// PerformMeleeAttack resolves an instant arc-cone hit test. Every living,
// non-rolling player other than the attacker that is inside both the range
// and the half-angle is hit (AoE). Weapons with knockback translate each
// victim along the aim direction, clamped by walls and arena bounds.
//
// Damage is applied by the caller so the death pipeline stays in one place.
func PerformMeleeAttack(attacker *PlayerState, players []*PlayerState, w *Weapon, arena *ArenaMap) MeleeAttackResult {
	result := MeleeAttackResult{}

	aim := attacker.AimAngle
	halfAngle := (w.ArcDegrees / 2) * math.Pi / 180

	for _, victim := range players {
		if victim.ID == attacker.ID || !victim.IsAlive() || victim.IsRolling {
			continue
		}
		if attacker.Position.DistanceTo(victim.Position) > w.Range {
			continue
		}
		angleToVictim := attacker.Position.AngleTo(victim.Position)
		if math.Abs(WrapAngle(angleToVictim-aim)) > halfAngle {
			continue
		}
		result.HitPlayers = append(result.HitPlayers, victim)
	}

	if w.KnockbackDistance > 0 && len(result.HitPlayers) > 0 {
		dir := Vector2{X: math.Cos(aim), Y: math.Sin(aim)}
		for _, victim := range result.HitPlayers {
			applyKnockback(victim, dir, w.KnockbackDistance, arena)
		}
		result.KnockbackApplied = true
	}

	return result
}

// applyKnockback translates the victim along dir, stopping short of walls.
// The displacement is walked in small steps so a knockback cannot push a
// player through thin geometry.
func applyKnockback(victim *PlayerState, dir Vector2, distance float64, arena *ArenaMap) {
	const step = 4.0
	remaining := distance
	for remaining > 0 {
		d := math.Min(step, remaining)
		next := victim.Position.Add(dir.Scale(d))
		next.X = clamp(next.X, PlayerRadius, arena.Width-PlayerRadius)
		next.Y = clamp(next.Y, PlayerRadius, arena.Height-PlayerRadius)

		blocked := false
		for i := range arena.Walls {
			if arena.Walls[i].IntersectsCircle(next, PlayerRadius) {
				blocked = true
				break
			}
		}
		if blocked {
			return
		}
		victim.Position = next
		remaining -= d
	}
}
