package game

import (
	"sync"
)

// World is the in-memory container for one room's entities. All mutation is
// serialized through the world lock; bulk readers return snapshot copies so
// broadcasters never hold the lock across I/O.
type World struct {
	mu          sync.RWMutex
	players     map[string]*PlayerState
	projectiles map[string]*Projectile
	arena       *ArenaMap
	clock       Clock

	spawnCursor int
}

// NewWorld creates a world over the default arena with a real clock.
func NewWorld() *World {
	return NewWorldWithClock(RealClock{})
}

// NewWorldWithClock creates a world with an injectable clock for tests.
func NewWorldWithClock(clock Clock) *World {
	return &World{
		players:     make(map[string]*PlayerState),
		projectiles: make(map[string]*Projectile),
		arena:       DefaultArenaMap(),
		clock:       clock,
	}
}

// Arena returns the static map geometry.
func (w *World) Arena() *ArenaMap {
	return w.arena
}

// AddPlayer creates a player at the next spawn point and registers it.
func (w *World) AddPlayer(id, name string) *PlayerState {
	w.mu.Lock()
	defer w.mu.Unlock()

	spawn := w.arena.SpawnPoints[w.spawnCursor%len(w.arena.SpawnPoints)]
	w.spawnCursor++

	p := NewPlayerState(id, name, spawn, w.clock)
	w.players[id] = p
	return p
}

// RemovePlayer deletes a player from the world.
func (w *World) RemovePlayer(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.players, id)
}

// GetPlayer looks up a player by id.
func (w *World) GetPlayer(id string) (*PlayerState, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[id]
	return p, ok
}

// Players returns the live player pointers. Callers must only mutate them
// while holding the owning room's lock.
func (w *World) Players() []*PlayerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*PlayerState, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	return out
}

// LivingPlayers returns players that are alive this instant.
func (w *World) LivingPlayers() []*PlayerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*PlayerState, 0, len(w.players))
	for _, p := range w.players {
		if p.IsAlive() {
			out = append(out, p)
		}
	}
	return out
}

// PlayerCount returns the number of registered players.
func (w *World) PlayerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.players)
}

// PlayerSnapshots copies every player's broadcastable state.
func (w *World) PlayerSnapshots() []PlayerSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]PlayerSnapshot, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p.Snapshot())
	}
	return out
}

// AddProjectile registers a projectile.
func (w *World) AddProjectile(proj *Projectile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.projectiles[proj.ID] = proj
}

// RemoveProjectile deletes a projectile by id.
func (w *World) RemoveProjectile(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.projectiles, id)
}

// Projectiles returns the live projectile pointers.
func (w *World) Projectiles() []*Projectile {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Projectile, 0, len(w.projectiles))
	for _, pr := range w.projectiles {
		out = append(out, pr)
	}
	return out
}

// ProjectileSnapshots copies every active projectile's broadcastable state.
func (w *World) ProjectileSnapshots() []ProjectileSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]ProjectileSnapshot, 0, len(w.projectiles))
	for _, pr := range w.projectiles {
		if pr.Active {
			out = append(out, pr.Snapshot())
		}
	}
	return out
}

// BalancedSpawnPoint picks the spawn point farthest from living enemies of
// the given player, so respawns don't drop players into a firefight.
func (w *World) BalancedSpawnPoint(playerID string) Vector2 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	best := w.arena.SpawnPoints[0]
	bestScore := -1.0
	for _, sp := range w.arena.SpawnPoints {
		nearest := -1.0
		for id, p := range w.players {
			if id == playerID || !p.IsAlive() {
				continue
			}
			d := sp.DistanceTo(p.Position)
			if nearest < 0 || d < nearest {
				nearest = d
			}
		}
		if nearest < 0 {
			// No living enemies, any point works.
			return sp
		}
		if nearest > bestScore {
			bestScore = nearest
			best = sp
		}
	}
	return best
}
