package game

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Projectile is a live round in flight. Position advances by swept segments
// each tick so fast rounds cannot tunnel through walls or players.
type Projectile struct {
	ID         string
	OwnerID    string
	WeaponType string
	Position   Vector2
	Velocity   Vector2
	Damage     int
	SpawnTime  time.Time
	Active     bool

	origin   Vector2
	maxRange float64
}

// Expired reports whether the projectile exceeded its lifetime or weapon range.
func (pr *Projectile) Expired(now time.Time) bool {
	if now.Sub(pr.SpawnTime).Milliseconds() >= ProjectileLifetimeMs {
		return true
	}
	return pr.origin.DistanceTo(pr.Position) >= pr.maxRange
}

// OutOfBounds reports whether the projectile left the arena.
func (pr *Projectile) OutOfBounds(arena *ArenaMap) bool {
	return pr.Position.X < 0 || pr.Position.X > arena.Width ||
		pr.Position.Y < 0 || pr.Position.Y > arena.Height
}

// ProjectileSnapshot is an immutable copy for broadcasting.
type ProjectileSnapshot struct {
	ID         string  `json:"id"`
	OwnerID    string  `json:"ownerId"`
	WeaponType string  `json:"weaponType"`
	Position   Vector2 `json:"position"`
	Velocity   Vector2 `json:"velocity"`
}

// Snapshot copies the projectile's broadcastable state.
func (pr *Projectile) Snapshot() ProjectileSnapshot {
	return ProjectileSnapshot{
		ID:         pr.ID,
		OwnerID:    pr.OwnerID,
		WeaponType: pr.WeaponType,
		Position:   pr.Position,
		Velocity:   pr.Velocity,
	}
}

// SpawnProjectiles resolves a successful fire action into one projectile, or
// a pellet fan for spread weapons. Spread angles are sampled uniformly in
// [-spread/2, +spread/2] around the aim.
func SpawnProjectiles(owner *PlayerState, w *Weapon, aimAngle float64, clock Clock, rng *rand.Rand) []*Projectile {
	count := w.PelletCount
	if count <= 0 {
		count = 1
	}

	now := clock.Now()
	spreadRad := w.SpreadDegrees * math.Pi / 180

	out := make([]*Projectile, 0, count)
	for i := 0; i < count; i++ {
		angle := aimAngle
		if spreadRad > 0 {
			angle += (rng.Float64() - 0.5) * spreadRad
		}

		dir := Vector2{X: math.Cos(angle), Y: math.Sin(angle)}
		// Start at the player's edge so the owner never eats their own round.
		start := owner.Position.Add(dir.Scale(PlayerRadius + ProjectileRadius + 1))

		out = append(out, &Projectile{
			ID:         uuid.New().String(),
			OwnerID:    owner.ID,
			WeaponType: w.Type,
			Position:   start,
			Velocity:   dir.Scale(w.ProjectileSpeed),
			Damage:     w.Damage,
			SpawnTime:  now,
			Active:     true,
			origin:     start,
			maxRange:   w.Range,
		})
	}
	return out
}
