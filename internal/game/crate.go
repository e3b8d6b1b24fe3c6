package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WeaponCrate is a map pickup. Only available crates can be taken; a taken
// crate respawns after the configured delay.
type WeaponCrate struct {
	ID          string
	Position    Vector2
	WeaponType  string
	IsAvailable bool
	RespawnAt   time.Time
}

// CrateSnapshot is an immutable copy for broadcasting.
type CrateSnapshot struct {
	ID          string  `json:"id"`
	Position    Vector2 `json:"position"`
	WeaponType  string  `json:"weaponType"`
	IsAvailable bool    `json:"isAvailable"`
}

func (c *WeaponCrate) snapshot() CrateSnapshot {
	return CrateSnapshot{
		ID:          c.ID,
		Position:    c.Position,
		WeaponType:  c.WeaponType,
		IsAvailable: c.IsAvailable,
	}
}

// WeaponCrateManager seeds crates from the map definition and owns the
// availability/respawn state machine. Availability flips happen under the
// manager lock so two concurrent pickups can never both succeed.
type WeaponCrateManager struct {
	mu           sync.Mutex
	crates       map[string]*WeaponCrate
	order        []string
	clock        Clock
	respawnDelay time.Duration
}

// NewWeaponCrateManager seeds one crate per map crate spawn.
func NewWeaponCrateManager(arena *ArenaMap, clock Clock, respawnDelay time.Duration) *WeaponCrateManager {
	m := &WeaponCrateManager{
		crates:       make(map[string]*WeaponCrate),
		clock:        clock,
		respawnDelay: respawnDelay,
	}
	for _, spawn := range arena.CrateSpawns {
		c := &WeaponCrate{
			ID:          uuid.New().String(),
			Position:    spawn.Position,
			WeaponType:  spawn.WeaponType,
			IsAvailable: true,
		}
		m.crates[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	return m
}

// GetCrate returns a snapshot of one crate.
func (m *WeaponCrateManager) GetCrate(crateID string) (CrateSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crates[crateID]
	if !ok {
		return CrateSnapshot{}, false
	}
	return c.snapshot(), true
}

// Snapshots returns all crates in seeding order.
func (m *WeaponCrateManager) Snapshots() []CrateSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CrateSnapshot, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.crates[id].snapshot())
	}
	return out
}

// Pickup failure reasons. Failures are silent on the wire; reasons exist
// for logging and tests.
const (
	PickupRejectedUnknown     = "unknown_crate"
	PickupRejectedUnavailable = "unavailable"
	PickupRejectedNoPlayer    = "no_player"
	PickupRejectedDead        = "player_dead"
	PickupRejectedTooFar      = "too_far"
)

// AttemptPickup validates and executes a pickup in one critical section:
// crate known, available, player alive, within pickupRadius. On success the
// crate flips unavailable and its respawn is scheduled.
func (m *WeaponCrateManager) AttemptPickup(player *PlayerState, crateID string, pickupRadius float64) (CrateSnapshot, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.crates[crateID]
	if !ok {
		return CrateSnapshot{}, PickupRejectedUnknown
	}
	if !c.IsAvailable {
		return CrateSnapshot{}, PickupRejectedUnavailable
	}
	if !player.IsAlive() {
		return CrateSnapshot{}, PickupRejectedDead
	}
	if player.Position.DistanceTo(c.Position) > pickupRadius {
		return CrateSnapshot{}, PickupRejectedTooFar
	}

	c.IsAvailable = false
	c.RespawnAt = m.clock.Now().Add(m.respawnDelay)
	return c.snapshot(), ""
}

// UpdateRespawns flips crates whose respawn time has arrived back to
// available and returns them.
func (m *WeaponCrateManager) UpdateRespawns() []CrateSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var respawned []CrateSnapshot
	for _, id := range m.order {
		c := m.crates[id]
		if !c.IsAvailable && !c.RespawnAt.After(now) {
			c.IsAvailable = true
			c.RespawnAt = time.Time{}
			respawned = append(respawned, c.snapshot())
		}
	}
	return respawned
}
