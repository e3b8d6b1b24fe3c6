package game

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Shoot failure reasons sent back to the shooter.
const (
	ShootFailedNoPlayer   = "no_player"
	ShootFailedDead       = "player_dead"
	ShootFailedRolling    = "rolling"
	ShootFailedReloading  = "reloading"
	ShootFailedOutOfAmmo  = "out_of_ammo"
	ShootFailedCooldown   = "cooldown"
	ShootFailedNotRanged  = "not_ranged"
	ShootFailedMatchEnded = "match_ended"
)

// Melee failure reasons (silent on the wire, used for logging and tests).
const (
	MeleeFailedNoPlayer = "no_player"
	MeleeFailedDead     = "player_dead"
	MeleeFailedRolling  = "rolling"
	MeleeFailedNotMelee = "not_melee"
	MeleeFailedCooldown = "cooldown"
)

// ShootResult is the outcome of a fire attempt.
type ShootResult struct {
	Success     bool
	Reason      string
	Projectiles []ProjectileSnapshot
}

// MeleeResult is the outcome of a melee attempt.
type MeleeResult struct {
	Success          bool
	Reason           string
	VictimIDs        []string
	KnockbackApplied bool
}

// PickupResult is the outcome of a crate pickup attempt.
type PickupResult struct {
	Success    bool
	Reason     string
	Crate      CrateSnapshot
	WeaponType string
}

// WeaponInfo is the ammo/reload view sent in weapon:state messages.
type WeaponInfo struct {
	WeaponType  string `json:"weaponType"`
	CurrentAmmo int    `json:"currentAmmo"`
	MaxAmmo     int    `json:"maxAmmo"`
	IsReloading bool   `json:"isReloading"`
	CanShoot    bool   `json:"canShoot"`
}

// Room owns one world, one match and the membership of up to
// Settings.RoomCapacity players. A single tick goroutine advances the
// simulation; message handlers mutate the same state under the room lock.
// The tick driver never performs network I/O — the listener only enqueues
// onto per-connection writers.
type Room struct {
	ID string

	world    *World
	match    *Match
	crates   *WeaponCrateManager
	physics  *Physics
	clock    Clock
	settings Settings
	listener RoomListener
	rng      *rand.Rand

	mu sync.Mutex

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool

	tickCount     uint64
	prevSnapshots map[string]PlayerSnapshot
}

// NewRoom assembles a room with a real clock.
func NewRoom(id string, settings Settings, listener RoomListener) *Room {
	return NewRoomWithClock(id, settings, listener, RealClock{})
}

// NewRoomWithClock assembles a room with an injectable clock for tests.
func NewRoomWithClock(id string, settings Settings, listener RoomListener, clock Clock) *Room {
	if listener == nil {
		listener = NopListener{}
	}
	world := NewWorldWithClock(clock)
	return &Room{
		ID:       id,
		world:    world,
		match:    NewMatch(id, settings.KillTarget, settings.MatchDuration, clock),
		crates:   NewWeaponCrateManager(world.Arena(), clock, settings.CrateRespawnDelay),
		physics:  NewPhysics(world.Arena()),
		clock:    clock,
		settings: settings,
		listener: listener,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// World returns the room's world.
func (r *Room) World() *World { return r.world }

// Match returns the room's match.
func (r *Room) Match() *Match { return r.match }

// Crates returns the room's crate manager.
func (r *Room) Crates() *WeaponCrateManager { return r.crates }

// Start launches the tick driver and starts the match clock.
func (r *Room) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.match.Start()
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(ctx)
}

// Stop cancels the tick driver and waits for it to exit.
func (r *Room) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// run is the tick loop. A panic in the tick ends this room's match with
// reason "server_error" and stops the driver; other rooms are unaffected.
func (r *Room) run(ctx context.Context) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("room %s: tick panic: %v", r.ID, rec)
			if r.match.EndMatch(EndReasonServerError) {
				r.emitMatchEnded()
			}
		}
	}()

	interval := time.Second / time.Duration(r.settings.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := 1.0 / float64(r.settings.TickRateHz)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			r.Tick(dt)
			if r.settings.TickObserver != nil {
				r.settings.TickObserver(time.Since(start))
			}
		}
	}
}

// Tick advances the simulation by one fixed step. Exposed so deterministic
// tests can drive the room without the ticker.
func (r *Room) Tick(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tickCount++

	// 1+2. Apply buffered inputs through physics for every player.
	for _, p := range r.world.Players() {
		result := r.physics.UpdatePlayer(p, dt)
		if result.RollCancelled {
			r.listener.OnRollEnd(r, p.ID, RollEndWallCollision)
		}
		p.AckInput()
	}

	// 3. Advance projectiles with swept segments; first hit wins.
	r.stepProjectiles(dt)

	// 4. Reload, roll and respawn timers.
	r.stepTimers()

	// 5. Crate respawns.
	for _, crate := range r.crates.UpdateRespawns() {
		r.listener.OnWeaponRespawn(r, crate)
	}

	// 6. Match timer and end condition.
	if r.match.CheckTimeLimit() {
		r.emitMatchEnded()
	}

	// 7. Cadence broadcasts.
	r.emitBroadcasts()
}

func (r *Room) stepProjectiles(dt float64) {
	now := r.clock.Now()
	players := r.world.Players()

	for _, pr := range r.world.Projectiles() {
		hit := r.physics.SweepProjectile(pr, players, dt)
		switch hit.Kind {
		case SweepHitWall:
			r.destroyProjectile(pr)
		case SweepHitPlayer:
			attacker, _ := r.world.GetPlayer(pr.OwnerID)
			r.applyDamage(attacker, hit.Player, pr.Damage, pr.ID, pr.WeaponType)
			r.destroyProjectile(pr)
		default:
			if pr.Expired(now) || pr.OutOfBounds(r.world.Arena()) {
				r.destroyProjectile(pr)
			}
		}
	}
}

func (r *Room) destroyProjectile(pr *Projectile) {
	pr.Active = false
	r.world.RemoveProjectile(pr.ID)
	r.listener.OnProjectileDestroy(r, pr.ID)
}

func (r *Room) stepTimers() {
	for _, p := range r.world.Players() {
		if p.WeaponState.CheckReloadComplete() {
			r.listener.OnReloadComplete(r, p.ID, r.weaponInfoLocked(p))
		}
		if p.RollExpired() {
			p.EndDodgeRoll()
			r.listener.OnRollEnd(r, p.ID, RollEndCompleted)
		}
		if p.CanRespawn(r.settings.RespawnDelay) {
			spawn := r.world.BalancedSpawnPoint(p.ID)
			p.Respawn(spawn)
			r.listener.OnPlayerRespawn(r, p.ID, spawn)
		}
	}
}

func (r *Room) emitBroadcasts() {
	deltaEvery := uint64(r.settings.TickRateHz / r.settings.BroadcastDeltaHz)
	if deltaEvery == 0 {
		deltaEvery = 1
	}
	snapshotEvery := uint64(r.settings.TickRateHz * 1 / r.settings.BroadcastSnapshotHz)
	if snapshotEvery == 0 {
		snapshotEvery = 1
	}
	timerEvery := uint64(r.settings.TickRateHz)

	if r.tickCount%deltaEvery == 0 {
		r.emitDelta()
	}
	if r.tickCount%snapshotEvery == 0 {
		snap := StateSnapshot{
			Players:          r.world.PlayerSnapshots(),
			Projectiles:      r.world.ProjectileSnapshots(),
			Crates:           r.crates.Snapshots(),
			RemainingSeconds: r.match.RemainingSeconds(),
		}
		r.listener.OnStateSnapshot(r, snap)
	}
	if r.tickCount%timerEvery == 0 && !r.match.IsEnded() {
		r.listener.OnMatchTimer(r, r.match.RemainingSeconds())
	}
}

// emitDelta broadcasts only players whose snapshot changed since the last
// delta, plus input acknowledgements for everyone.
func (r *Room) emitDelta() {
	snapshots := r.world.PlayerSnapshots()
	if len(snapshots) == 0 {
		return
	}

	changed := make([]PlayerSnapshot, 0, len(snapshots))
	lastProcessed := make(map[string]uint64, len(snapshots))
	next := make(map[string]PlayerSnapshot, len(snapshots))

	for _, snap := range snapshots {
		next[snap.ID] = snap
		if prev, ok := r.prevSnapshots[snap.ID]; !ok || prev != snap {
			changed = append(changed, snap)
		}
		if p, ok := r.world.GetPlayer(snap.ID); ok {
			lastProcessed[snap.ID] = p.LastProcessedSequence()
		}
	}
	r.prevSnapshots = next

	if len(changed) > 0 {
		r.listener.OnPlayerMove(r, changed, lastProcessed)
	}

	if projectiles := r.world.ProjectileSnapshots(); len(projectiles) > 0 {
		r.listener.OnProjectileDelta(r, projectiles)
	}
}

func (r *Room) emitMatchEnded() {
	result := MatchResult{
		Winners:     r.match.DetermineWinners(),
		FinalScores: r.match.GetFinalScores(r.world),
		Reason:      r.match.EndReason(),
	}
	log.Printf("room %s: match ended (%s), winners=%v", r.ID, result.Reason, result.Winners)
	r.listener.OnMatchEnded(r, result)
}

// AddPlayer creates the player in the world and registers the participant.
func (r *Room) AddPlayer(playerID, name string) *PlayerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.world.AddPlayer(playerID, name)
	r.match.AddParticipant(playerID)
	return p
}

// RemovePlayer releases the player's state. Their participation survives in
// the match: stats are frozen first so final scores still include them.
func (r *Room) RemovePlayer(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.world.GetPlayer(playerID); ok {
		kills, deaths, xp := p.Stats()
		r.match.RecordLeave(playerID, kills, deaths, xp)
	}
	r.world.RemovePlayer(playerID)
	delete(r.prevSnapshots, playerID)
}

// PlayerCount returns the number of players in the room.
func (r *Room) PlayerCount() int {
	return r.world.PlayerCount()
}

// HandleInput stores a client input as the player's latest-wins buffer.
// Inputs are ignored once the match has ended and while the player is dead.
func (r *Room) HandleInput(playerID string, input InputState, sequence uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.match.IsEnded() {
		return
	}
	p, ok := r.world.GetPlayer(playerID)
	if !ok || p.IsDead {
		return
	}
	p.SetInput(input, sequence)
}

// Shoot attempts to fire the player's ranged weapon. An empty magazine
// auto-starts a reload in addition to reporting the failure.
func (r *Room) Shoot(playerID string, aimAngle float64) ShootResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.match.IsEnded() {
		return ShootResult{Reason: ShootFailedMatchEnded}
	}
	p, ok := r.world.GetPlayer(playerID)
	if !ok {
		return ShootResult{Reason: ShootFailedNoPlayer}
	}
	if !p.IsAlive() {
		return ShootResult{Reason: ShootFailedDead}
	}
	if p.IsRolling {
		return ShootResult{Reason: ShootFailedRolling}
	}

	ws := p.WeaponState
	if ws.Weapon.IsMelee() {
		return ShootResult{Reason: ShootFailedNotRanged}
	}
	if ws.Reloading() {
		return ShootResult{Reason: ShootFailedReloading}
	}
	if ws.IsEmpty() {
		ws.StartReload()
		return ShootResult{Reason: ShootFailedOutOfAmmo}
	}
	if !ws.CanShoot() {
		return ShootResult{Reason: ShootFailedCooldown}
	}

	ws.RecordShot()
	p.AimAngle = aimAngle
	p.CancelSprint()

	projectiles := SpawnProjectiles(p, ws.Weapon, aimAngle, r.clock, r.rng)
	snaps := make([]ProjectileSnapshot, 0, len(projectiles))
	for _, pr := range projectiles {
		r.world.AddProjectile(pr)
		snap := pr.Snapshot()
		snaps = append(snaps, snap)
		r.listener.OnProjectileSpawn(r, snap)
	}
	return ShootResult{Success: true, Projectiles: snaps}
}

// Reload begins a reload for a ranged weapon with a non-full magazine.
func (r *Room) Reload(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.world.GetPlayer(playerID)
	if !ok || !p.IsAlive() {
		return false
	}
	if p.WeaponState.StartReload() {
		p.CancelSprint()
		return true
	}
	return false
}

// MeleeAttack resolves an arc swing and applies the damage pipeline to
// every victim. Returns the victim list for the melee:hit broadcast.
func (r *Room) MeleeAttack(playerID string, aimAngle float64) MeleeResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.match.IsEnded() {
		return MeleeResult{Reason: ShootFailedMatchEnded}
	}
	p, ok := r.world.GetPlayer(playerID)
	if !ok {
		return MeleeResult{Reason: MeleeFailedNoPlayer}
	}
	if !p.IsAlive() {
		return MeleeResult{Reason: MeleeFailedDead}
	}
	if p.IsRolling {
		return MeleeResult{Reason: MeleeFailedRolling}
	}

	ws := p.WeaponState
	if !ws.Weapon.IsMelee() {
		return MeleeResult{Reason: MeleeFailedNotMelee}
	}
	if !ws.CooldownElapsed() {
		return MeleeResult{Reason: MeleeFailedCooldown}
	}

	ws.RecordSwing()
	p.AimAngle = aimAngle
	p.CancelSprint()

	attack := PerformMeleeAttack(p, r.world.Players(), ws.Weapon, r.world.Arena())

	victimIDs := make([]string, 0, len(attack.HitPlayers))
	for _, victim := range attack.HitPlayers {
		victimIDs = append(victimIDs, victim.ID)
	}

	// One melee:hit per swing, emitted even with no victims so clients can
	// animate the swing. It precedes the damage events for its victims.
	r.listener.OnMeleeHit(r, p.ID, victimIDs, attack.KnockbackApplied)

	for _, victim := range attack.HitPlayers {
		r.applyDamage(p, victim, ws.Weapon.Damage, "", ws.Weapon.Type)
	}

	return MeleeResult{
		Success:          true,
		VictimIDs:        victimIDs,
		KnockbackApplied: attack.KnockbackApplied,
	}
}

// DodgeRoll starts a roll in the direction of current movement input, or
// toward the aim angle when idle. Returns the roll direction.
func (r *Room) DodgeRoll(playerID string) (Vector2, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.world.GetPlayer(playerID)
	if !ok || !p.CanDodgeRoll() {
		return Vector2{}, false
	}

	input := p.Input()
	dir := Vector2{}
	if input.Up {
		dir.Y--
	}
	if input.Down {
		dir.Y++
	}
	if input.Left {
		dir.X--
	}
	if input.Right {
		dir.X++
	}
	if dir.X == 0 && dir.Y == 0 {
		dir = Vector2{X: math.Cos(p.AimAngle), Y: math.Sin(p.AimAngle)}
	}

	p.StartDodgeRoll(dir)
	r.listener.OnRollStart(r, p.ID, p.RollDirection)
	return p.RollDirection, true
}

// PickupCrate attempts a crate pickup. On success the player's weapon is
// switched with a full magazine and any in-progress reload is cancelled.
func (r *Room) PickupCrate(playerID, crateID string) PickupResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.world.GetPlayer(playerID)
	if !ok {
		return PickupResult{Reason: PickupRejectedNoPlayer}
	}

	crate, reason := r.crates.AttemptPickup(p, crateID, r.settings.PickupRadius)
	if reason != "" {
		return PickupResult{Reason: reason}
	}

	weapon, err := CreateWeaponByType(crate.WeaponType)
	if err != nil {
		// Map seeded an unknown weapon; treat as a bug, not a player error.
		log.Printf("room %s: crate %s has invalid weapon: %v", r.ID, crateID, err)
		return PickupResult{Reason: PickupRejectedUnknown}
	}

	p.WeaponState.CancelReload()
	p.WeaponState = NewWeaponStateWithClock(weapon, r.clock)

	r.listener.OnWeaponPickup(r, playerID, crate)
	return PickupResult{Success: true, Crate: crate, WeaponType: crate.WeaponType}
}

// WeaponInfoFor returns the weapon:state view for a player.
func (r *Room) WeaponInfoFor(playerID string) (WeaponInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.world.GetPlayer(playerID)
	if !ok {
		return WeaponInfo{}, false
	}
	return r.weaponInfoLocked(p), true
}

func (r *Room) weaponInfoLocked(p *PlayerState) WeaponInfo {
	ws := p.WeaponState
	current, max := ws.GetAmmoInfo()
	return WeaponInfo{
		WeaponType:  ws.Weapon.Type,
		CurrentAmmo: current,
		MaxAmmo:     max,
		IsReloading: ws.Reloading(),
		CanShoot:    ws.CanShoot(),
	}
}

// applyDamage runs the shared damage pipeline for projectile and melee
// hits. Rolling and dead victims are skipped, and nothing lands once the
// match has ended, so rounds still in flight at the final kill cannot move
// the frozen scoreboard. Causally-linked events are emitted in order:
// player:damaged, then player:death, then player:kill_credit.
func (r *Room) applyDamage(attacker, victim *PlayerState, damage int, projectileID, weaponType string) bool {
	if r.match.IsEnded() {
		return false
	}
	if victim == nil || !victim.IsAlive() || victim.IsRolling {
		return false
	}

	newHealth := victim.TakeDamage(damage)

	attackerID := ""
	if attacker != nil {
		attackerID = attacker.ID
	}
	r.listener.OnPlayerDamaged(r, DamageEvent{
		AttackerID:   attackerID,
		VictimID:     victim.ID,
		ProjectileID: projectileID,
		WeaponType:   weaponType,
		Damage:       damage,
		NewHealth:    newHealth,
	})

	if newHealth > 0 {
		return true
	}

	victim.MarkDead()
	victim.IncrementDeaths()

	ended := false
	if attacker != nil {
		attacker.IncrementKills()
		attacker.AddXP(KillXPReward)
		ended = r.match.RecordKill(attacker.ID, victim.ID)
	}

	r.listener.OnPlayerDeath(r, attackerID, victim.ID)
	if attacker != nil {
		kills, _, xp := attacker.Stats()
		r.listener.OnKillCredit(r, attacker.ID, victim.ID, kills, xp)
	}

	if ended {
		r.emitMatchEnded()
	}
	return true
}
