package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInputSequenceMonotonic tests that stale sequences never regress the ack
func TestInputSequenceMonotonic(t *testing.T) {
	p := testPlayer("p1", Vector2{X: 100, Y: 100})

	p.SetInput(InputState{Up: true}, 5)
	p.SetInput(InputState{Down: true}, 3) // stale, still applied as latest input
	p.AckInput()

	assert.Equal(t, uint64(5), p.LastProcessedSequence())
	assert.True(t, p.Input().Down, "latest input wins even with a stale sequence")
}

// TestSprintSuppression tests the cancel-until-next-input rule
func TestSprintSuppression(t *testing.T) {
	p := testPlayer("p1", Vector2{X: 100, Y: 100})

	p.SetInput(InputState{Right: true, IsSprinting: true}, 1)
	require.True(t, p.Sprinting())

	p.CancelSprint()
	assert.False(t, p.Sprinting())

	p.SetInput(InputState{Right: true, IsSprinting: true}, 2)
	assert.True(t, p.Sprinting(), "fresh input re-asserts sprint")
}

// TestTakeDamageClampsAtZero tests health floor and sprint cancellation
func TestTakeDamageClampsAtZero(t *testing.T) {
	p := testPlayer("p1", Vector2{X: 100, Y: 100})
	p.SetInput(InputState{IsSprinting: true}, 1)

	assert.Equal(t, 60, p.TakeDamage(40))
	assert.False(t, p.Sprinting(), "damage cancels sprint")
	assert.Equal(t, 0, p.TakeDamage(200))
	assert.False(t, p.IsAlive())
}

// TestRespawnRestoresDefaults tests the respawn delay and loadout reset
func TestRespawnRestoresDefaults(t *testing.T) {
	clock := NewManualClock()
	p := NewPlayerState("p1", "p1", Vector2{X: 100, Y: 100}, clock)

	p.WeaponState = NewWeaponStateWithClock(NewUzi(), clock)
	p.TakeDamage(PlayerMaxHealth)
	p.MarkDead()

	assert.False(t, p.CanRespawn(3*time.Second))
	clock.Advance(3 * time.Second)
	require.True(t, p.CanRespawn(3*time.Second))

	spawn := Vector2{X: 400, Y: 400}
	p.Respawn(spawn)
	assert.True(t, p.IsAlive())
	assert.Equal(t, PlayerMaxHealth, p.Health)
	assert.Equal(t, spawn, p.Position)
	assert.Equal(t, WeaponPistol, p.WeaponState.Weapon.Type, "respawn always hands back the pistol")
}

// TestDodgeRollWindowAndCooldown tests roll timing via the injected clock
func TestDodgeRollWindowAndCooldown(t *testing.T) {
	clock := NewManualClock()
	p := NewPlayerState("p1", "p1", Vector2{X: 100, Y: 100}, clock)

	require.True(t, p.CanDodgeRoll())
	p.StartDodgeRoll(Vector2{X: 1})
	assert.True(t, p.IsRolling)
	assert.False(t, p.CanDodgeRoll(), "no roll while rolling")
	assert.InDelta(t, RollSpeed, p.Velocity.Length(), 0.001)

	assert.False(t, p.RollExpired())
	clock.Advance(RollDurationMs * time.Millisecond)
	require.True(t, p.RollExpired())
	p.EndDodgeRoll()

	assert.False(t, p.CanDodgeRoll(), "cooldown still running")
	clock.Advance((RollCooldownMs - RollDurationMs) * time.Millisecond)
	assert.True(t, p.CanDodgeRoll())
}

// TestMarkDeadClearsTransientState tests death side effects
func TestMarkDeadClearsTransientState(t *testing.T) {
	clock := NewManualClock()
	p := NewPlayerState("p1", "p1", Vector2{X: 100, Y: 100}, clock)

	p.WeaponState.RecordShot()
	require.True(t, p.WeaponState.StartReload())
	p.StartDodgeRoll(Vector2{X: 1})

	p.MarkDead()
	assert.False(t, p.IsRolling)
	assert.Equal(t, Vector2{}, p.Velocity)
	assert.False(t, p.WeaponState.Reloading(), "death cancels the reload")
}

// TestStatsAccounting tests kill/death/xp counters
func TestStatsAccounting(t *testing.T) {
	p := testPlayer("p1", Vector2{X: 100, Y: 100})
	p.IncrementKills()
	p.IncrementKills()
	p.IncrementDeaths()
	p.AddXP(KillXPReward * 2)

	kills, deaths, xp := p.Stats()
	assert.Equal(t, 2, kills)
	assert.Equal(t, 1, deaths)
	assert.Equal(t, 200, xp)

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.Kills)
	assert.Equal(t, WeaponPistol, snap.WeaponType)
}
