package game

import (
	"sync"
	"time"
)

// InputState is the latest movement intent received from a client.
type InputState struct {
	Up          bool
	Down        bool
	Left        bool
	Right       bool
	AimAngle    float64
	IsSprinting bool
}

// PlayerState is the authoritative per-player record. All movement and
// combat fields are mutated only by the owning room's tick driver or by
// message handlers holding the room lock. Kill/death/XP stats carry their
// own mutex because damage crediting can arrive from multiple attackers
// resolved in the same tick.
type PlayerState struct {
	ID   string
	Name string

	Position Vector2
	Velocity Vector2
	AimAngle float64

	Health int
	IsDead bool

	// Latest-wins input buffer. The tick consumes input and acknowledges
	// pendingSequence as lastProcessedSequence afterwards.
	input                 InputState
	pendingSequence       uint64
	lastProcessedSequence uint64
	sprintSuppressed      bool

	// Weapon
	WeaponState *WeaponState

	// Dodge roll
	IsRolling     bool
	RollDirection Vector2
	rollStartTime time.Time
	lastRollTime  time.Time

	// Respawn scheduling
	diedAt time.Time

	// Stats, guarded separately.
	statsMu sync.Mutex
	kills   int
	deaths  int
	xp      int

	clock Clock
}

// NewPlayerState creates a player at the given spawn with the default pistol.
func NewPlayerState(id, name string, spawn Vector2, clock Clock) *PlayerState {
	return &PlayerState{
		ID:          id,
		Name:        name,
		Position:    spawn,
		Health:      PlayerMaxHealth,
		WeaponState: NewWeaponStateWithClock(NewPistol(), clock),
		clock:       clock,
	}
}

// IsAlive reports whether the player can act and be hit.
func (p *PlayerState) IsAlive() bool {
	return !p.IsDead && p.Health > 0
}

// SetInput stores a new client input as the latest-wins buffer. A fresh
// input clears any sprint suppression; the client re-asserts its intent.
func (p *PlayerState) SetInput(input InputState, sequence uint64) {
	p.input = input
	if sequence > p.pendingSequence {
		p.pendingSequence = sequence
	}
	p.AimAngle = input.AimAngle
	p.sprintSuppressed = false
}

// Input returns the current input buffer.
func (p *PlayerState) Input() InputState {
	return p.input
}

// AckInput marks the pending input sequence as processed. Called by the
// tick after physics has consumed the buffer.
func (p *PlayerState) AckInput() {
	p.lastProcessedSequence = p.pendingSequence
}

// LastProcessedSequence returns the most recent acknowledged input sequence.
func (p *PlayerState) LastProcessedSequence() uint64 {
	return p.lastProcessedSequence
}

// Sprinting reports whether sprint speed applies this tick.
func (p *PlayerState) Sprinting() bool {
	return p.input.IsSprinting && !p.sprintSuppressed
}

// CancelSprint suppresses sprint until the next client input arrives.
// Centralized rule: firing, reloading, taking damage and rolling all cancel
// sprint through this single hook.
func (p *PlayerState) CancelSprint() {
	p.sprintSuppressed = true
}

// TakeDamage applies damage and returns the new health, clamped at zero.
func (p *PlayerState) TakeDamage(damage int) int {
	p.Health -= damage
	if p.Health < 0 {
		p.Health = 0
	}
	p.CancelSprint()
	return p.Health
}

// MarkDead transitions the player to the dead state: velocity zeroed, any
// reload cleared, any roll ended.
func (p *PlayerState) MarkDead() {
	p.IsDead = true
	p.Health = 0
	p.Velocity = Vector2{}
	p.diedAt = p.clock.Now()
	p.WeaponState.CancelReload()
	p.IsRolling = false
}

// CanRespawn reports whether the respawn delay has elapsed.
func (p *PlayerState) CanRespawn(respawnDelay time.Duration) bool {
	return p.IsDead && p.clock.Now().Sub(p.diedAt) >= respawnDelay
}

// Respawn revives the player at the given position with full health and
// the default pistol.
func (p *PlayerState) Respawn(spawn Vector2) {
	p.Position = spawn
	p.Velocity = Vector2{}
	p.Health = PlayerMaxHealth
	p.IsDead = false
	p.IsRolling = false
	p.WeaponState = NewWeaponStateWithClock(NewPistol(), p.clock)
}

// CanDodgeRoll checks the roll cooldown and that the player is alive and
// not already mid-roll.
func (p *PlayerState) CanDodgeRoll() bool {
	if !p.IsAlive() || p.IsRolling {
		return false
	}
	return p.clock.Now().Sub(p.lastRollTime).Milliseconds() >= RollCooldownMs
}

// StartDodgeRoll locks velocity to the roll direction for the roll window.
// Rolling players are invulnerable to both projectiles and melee.
func (p *PlayerState) StartDodgeRoll(direction Vector2) {
	p.IsRolling = true
	p.RollDirection = direction.Normalized()
	p.rollStartTime = p.clock.Now()
	p.lastRollTime = p.rollStartTime
	p.Velocity = p.RollDirection.Scale(RollSpeed)
	p.CancelSprint()
}

// RollExpired reports whether the roll window has elapsed.
func (p *PlayerState) RollExpired() bool {
	return p.IsRolling && p.clock.Now().Sub(p.rollStartTime).Milliseconds() >= RollDurationMs
}

// EndDodgeRoll clears the rolling state.
func (p *PlayerState) EndDodgeRoll() {
	p.IsRolling = false
	p.Velocity = Vector2{}
}

// IncrementKills atomically adds one kill.
func (p *PlayerState) IncrementKills() {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.kills++
}

// IncrementDeaths atomically adds one death.
func (p *PlayerState) IncrementDeaths() {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.deaths++
}

// AddXP atomically awards experience.
func (p *PlayerState) AddXP(amount int) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.xp += amount
}

// Stats returns a consistent kills/deaths/xp triple.
func (p *PlayerState) Stats() (kills, deaths, xp int) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.kills, p.deaths, p.xp
}

// PlayerSnapshot is an immutable copy of player state for broadcasting.
// Broadcast writers never touch live PlayerState.
type PlayerSnapshot struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Position    Vector2 `json:"position"`
	Velocity    Vector2 `json:"velocity"`
	AimAngle    float64 `json:"aimAngle"`
	Health      int     `json:"health"`
	IsDead      bool    `json:"isDead"`
	IsSprinting bool    `json:"isSprinting"`
	IsRolling   bool    `json:"isRolling"`
	WeaponType  string  `json:"weaponType"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	XP          int     `json:"xp"`
}

// Snapshot copies the player's broadcastable state.
func (p *PlayerState) Snapshot() PlayerSnapshot {
	kills, deaths, xp := p.Stats()
	return PlayerSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Position:    p.Position,
		Velocity:    p.Velocity,
		AimAngle:    p.AimAngle,
		Health:      p.Health,
		IsDead:      p.IsDead,
		IsSprinting: p.Sprinting(),
		IsRolling:   p.IsRolling,
		WeaponType:  p.WeaponState.Weapon.Type,
		Kills:       kills,
		Deaths:      deaths,
		XP:          xp,
	}
}
