package game

// DamageEvent describes one resolved hit. ProjectileID is empty for melee.
type DamageEvent struct {
	AttackerID   string
	VictimID     string
	ProjectileID string
	WeaponType   string
	Damage       int
	NewHealth    int
}

// StateSnapshot is the full per-room state sent at the snapshot cadence to
// bound client drift from dropped deltas.
type StateSnapshot struct {
	Players          []PlayerSnapshot     `json:"players"`
	Projectiles      []ProjectileSnapshot `json:"projectiles"`
	Crates           []CrateSnapshot      `json:"crates"`
	RemainingSeconds int                  `json:"remainingSeconds"`
}

// MatchResult is the end-of-match report: winners plus one score line per
// participant.
type MatchResult struct {
	Winners     []string      `json:"winners"`
	FinalScores []PlayerScore `json:"finalScores"`
	Reason      string        `json:"reason"`
}

// RoomListener receives simulation events from a room's tick driver and
// message handlers. Implementations must not block and must not call back
// into room methods — they run with the room lock held and are expected to
// only enqueue frames onto per-connection writers.
type RoomListener interface {
	// OnPlayerMove is the high-frequency delta: players whose state changed
	// since the last delta, plus per-player input acknowledgements.
	OnPlayerMove(room *Room, players []PlayerSnapshot, lastProcessed map[string]uint64)
	OnStateSnapshot(room *Room, snap StateSnapshot)
	OnMatchTimer(room *Room, remainingSeconds int)
	OnMatchEnded(room *Room, result MatchResult)
	OnPlayerDamaged(room *Room, ev DamageEvent)
	OnPlayerDeath(room *Room, attackerID, victimID string)
	OnKillCredit(room *Room, killerID, victimID string, killerKills, killerXP int)
	OnPlayerRespawn(room *Room, playerID string, position Vector2)
	OnRollEnd(room *Room, playerID, reason string)
	OnReloadComplete(room *Room, playerID string, info WeaponInfo)
	OnProjectileSpawn(room *Room, projectile ProjectileSnapshot)
	OnProjectileDestroy(room *Room, projectileID string)
	// OnProjectileDelta is the projectile drift-correction delta: positions
	// of all rounds in flight, at the delta cadence.
	OnProjectileDelta(room *Room, projectiles []ProjectileSnapshot)
	OnMeleeHit(room *Room, attackerID string, victimIDs []string, knockbackApplied bool)
	OnWeaponPickup(room *Room, playerID string, crate CrateSnapshot)
	OnRollStart(room *Room, playerID string, direction Vector2)
	OnWeaponRespawn(room *Room, crate CrateSnapshot)
}

// NopListener discards all events. Embed it to implement only part of
// RoomListener.
type NopListener struct{}

func (NopListener) OnPlayerMove(*Room, []PlayerSnapshot, map[string]uint64) {}
func (NopListener) OnStateSnapshot(*Room, StateSnapshot)                    {}
func (NopListener) OnMatchTimer(*Room, int)                                 {}
func (NopListener) OnMatchEnded(*Room, MatchResult)                         {}
func (NopListener) OnPlayerDamaged(*Room, DamageEvent)                      {}
func (NopListener) OnPlayerDeath(*Room, string, string)                     {}
func (NopListener) OnKillCredit(*Room, string, string, int, int)            {}
func (NopListener) OnPlayerRespawn(*Room, string, Vector2)                  {}
func (NopListener) OnRollEnd(*Room, string, string)                         {}
func (NopListener) OnReloadComplete(*Room, string, WeaponInfo)              {}
func (NopListener) OnProjectileSpawn(*Room, ProjectileSnapshot)             {}
func (NopListener) OnProjectileDestroy(*Room, string)                       {}
func (NopListener) OnProjectileDelta(*Room, []ProjectileSnapshot)           {}
func (NopListener) OnMeleeHit(*Room, string, []string, bool)                {}
func (NopListener) OnWeaponPickup(*Room, string, CrateSnapshot)             {}
func (NopListener) OnRollStart(*Room, string, Vector2)                      {}
func (NopListener) OnWeaponRespawn(*Room, CrateSnapshot)                    {}
