package game

import (
	"fmt"
	"sync"
	"time"
)

// Weapon type identifiers as they appear on the wire.
const (
	WeaponPistol  = "pistol"
	WeaponUzi     = "uzi"
	WeaponShotgun = "shotgun"
	WeaponBat     = "bat"
	WeaponKatana  = "katana"
)

// Weapon is an immutable stat block. Ranged weapons have ProjectileSpeed
// and MagazineSize; melee weapons have ArcDegrees and may have knockback.
type Weapon struct {
	Type            string
	Damage          int
	FireRate        float64 // attacks per second
	MagazineSize    int
	ReloadTimeMs    int
	ProjectileSpeed float64 // px/s, 0 for melee
	Range           float64 // max projectile travel, or melee reach

	// Melee
	ArcDegrees        float64
	KnockbackDistance float64

	// Spread (shotgun)
	SpreadDegrees float64
	PelletCount   int
}

// IsMelee reports whether this weapon swings instead of firing.
func (w *Weapon) IsMelee() bool {
	return w.ProjectileSpeed == 0 && w.MagazineSize == 0
}

// CooldownMs returns the minimum interval between attacks.
func (w *Weapon) CooldownMs() int64 {
	return int64(1000 / w.FireRate)
}

// NewPistol is the default spawn weapon.
func NewPistol() *Weapon {
	return &Weapon{
		Type:            WeaponPistol,
		Damage:          15,
		FireRate:        3,
		MagazineSize:    12,
		ReloadTimeMs:    1200,
		ProjectileSpeed: 800,
		Range:           600,
	}
}

func NewUzi() *Weapon {
	return &Weapon{
		Type:            WeaponUzi,
		Damage:          8,
		FireRate:        10,
		MagazineSize:    30,
		ReloadTimeMs:    1800,
		ProjectileSpeed: 900,
		Range:           500,
	}
}

func NewShotgun() *Weapon {
	return &Weapon{
		Type:            WeaponShotgun,
		Damage:          12, // per pellet
		FireRate:        1.2,
		MagazineSize:    6,
		ReloadTimeMs:    2400,
		ProjectileSpeed: 700,
		Range:           350,
		SpreadDegrees:   30,
		PelletCount:     6,
	}
}

func NewBat() *Weapon {
	return &Weapon{
		Type:              WeaponBat,
		Damage:            25,
		FireRate:          1.67,
		Range:             90,
		ArcDegrees:        80,
		KnockbackDistance: 60,
	}
}

func NewKatana() *Weapon {
	return &Weapon{
		Type:       WeaponKatana,
		Damage:     35,
		FireRate:   1.25,
		Range:      110,
		ArcDegrees: 60,
	}
}

// CreateWeaponByType maps a wire identifier to a fresh weapon.
func CreateWeaponByType(weaponType string) (*Weapon, error) {
	switch weaponType {
	case WeaponPistol:
		return NewPistol(), nil
	case WeaponUzi:
		return NewUzi(), nil
	case WeaponShotgun:
		return NewShotgun(), nil
	case WeaponBat:
		return NewBat(), nil
	case WeaponKatana:
		return NewKatana(), nil
	default:
		return nil, fmt.Errorf("unknown weapon type %q", weaponType)
	}
}

// WeaponState tracks a player's ammo, cooldown and reload progress for the
// weapon currently held. Its own mutex keeps ammo math safe when weapon
// views are read outside the room lock.
type WeaponState struct {
	Weapon *Weapon

	mu              sync.Mutex
	currentAmmo     int
	isReloading     bool
	lastFireTime    time.Time
	reloadStartTime time.Time

	clock Clock
}

// NewWeaponState creates weapon state with a real clock.
func NewWeaponState(w *Weapon) *WeaponState {
	return NewWeaponStateWithClock(w, RealClock{})
}

// NewWeaponStateWithClock creates weapon state with a full magazine.
func NewWeaponStateWithClock(w *Weapon, clock Clock) *WeaponState {
	return &WeaponState{
		Weapon:      w,
		currentAmmo: w.MagazineSize,
		clock:       clock,
	}
}

// CanShoot reports whether a ranged attack may fire right now: not
// reloading, ammo left, cooldown elapsed.
func (ws *WeaponState) CanShoot() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.Weapon.IsMelee() {
		return false
	}
	return !ws.isReloading && ws.currentAmmo > 0 && ws.cooldownElapsedLocked()
}

// CooldownElapsed reports whether the attack interval has passed.
func (ws *WeaponState) CooldownElapsed() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.cooldownElapsedLocked()
}

func (ws *WeaponState) cooldownElapsedLocked() bool {
	return ws.clock.Now().Sub(ws.lastFireTime).Milliseconds() >= ws.Weapon.CooldownMs()
}

// IsEmpty reports whether the magazine is empty.
func (ws *WeaponState) IsEmpty() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.currentAmmo <= 0
}

// RecordShot consumes one round and stamps the cooldown.
func (ws *WeaponState) RecordShot() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.currentAmmo > 0 {
		ws.currentAmmo--
	}
	ws.lastFireTime = ws.clock.Now()
}

// RecordSwing stamps the cooldown for a melee attack.
func (ws *WeaponState) RecordSwing() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.lastFireTime = ws.clock.Now()
}

// StartReload begins a reload. Returns false for melee weapons, a full
// magazine or a reload already in progress.
func (ws *WeaponState) StartReload() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.Weapon.IsMelee() || ws.isReloading || ws.currentAmmo >= ws.Weapon.MagazineSize {
		return false
	}
	ws.isReloading = true
	ws.reloadStartTime = ws.clock.Now()
	return true
}

// CancelReload aborts an in-progress reload without restoring ammo.
func (ws *WeaponState) CancelReload() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.isReloading = false
}

// CheckReloadComplete finishes a reload whose time has elapsed, filling the
// magazine. Returns true exactly once per completed reload.
func (ws *WeaponState) CheckReloadComplete() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.isReloading {
		return false
	}
	elapsed := ws.clock.Now().Sub(ws.reloadStartTime).Milliseconds()
	if elapsed < int64(ws.Weapon.ReloadTimeMs) {
		return false
	}
	ws.isReloading = false
	ws.currentAmmo = ws.Weapon.MagazineSize
	return true
}

// Reloading reports whether a reload is in progress.
func (ws *WeaponState) Reloading() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.isReloading
}

// GetAmmoInfo returns current and maximum ammo.
func (ws *WeaponState) GetAmmoInfo() (current, max int) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.currentAmmo, ws.Weapon.MagazineSize
}
