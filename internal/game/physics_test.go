package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDt = 1.0 / 60.0

func testPlayer(id string, pos Vector2) *PlayerState {
	return NewPlayerState(id, id, pos, NewManualClock())
}

// TestPlayerAccelerates tests that held input ramps speed up to the cap
func TestPlayerAccelerates(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	p := testPlayer("p1", Vector2{X: 300, Y: 600})
	p.SetInput(InputState{Right: true}, 1)

	ph.UpdatePlayer(p, testDt)
	first := p.Velocity.Length()
	assert.Greater(t, first, 0.0)
	assert.Less(t, first, PlayerSpeed)

	for i := 0; i < 120; i++ {
		ph.UpdatePlayer(p, testDt)
	}
	assert.InDelta(t, PlayerSpeed, p.Velocity.Length(), 1.0, "speed clamps at the cap")
}

// TestSprintRaisesSpeedCap tests the sprint multiplier
func TestSprintRaisesSpeedCap(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	p := testPlayer("p1", Vector2{X: 300, Y: 600})
	p.SetInput(InputState{Right: true, IsSprinting: true}, 1)

	for i := 0; i < 120; i++ {
		ph.UpdatePlayer(p, testDt)
	}
	assert.InDelta(t, PlayerSpeed*SprintMultiplier, p.Velocity.Length(), 1.0)
}

// TestDecelerationStops tests that released input bleeds speed to zero
func TestDecelerationStops(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	p := testPlayer("p1", Vector2{X: 500, Y: 540})
	p.Velocity = Vector2{X: PlayerSpeed}

	for i := 0; i < 60; i++ {
		ph.UpdatePlayer(p, testDt)
	}
	assert.Equal(t, Vector2{}, p.Velocity, "velocity snaps to zero below epsilon")
}

// TestWallBlocksMovement tests axis-separated wall collision
func TestWallBlocksMovement(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	// Left of the (320,220,80,80) pillar, pushing right into it.
	p := testPlayer("p1", Vector2{X: 280, Y: 260})
	p.SetInput(InputState{Right: true}, 1)

	for i := 0; i < 120; i++ {
		ph.UpdatePlayer(p, testDt)
	}
	assert.Less(t, p.Position.X, 320.0-PlayerRadius+1, "player stops at the wall face")
	assert.InDelta(t, 260.0, p.Position.Y, 0.001, "other axis unaffected")
}

// TestArenaBoundsClamp tests that players cannot leave the field
func TestArenaBoundsClamp(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	p := testPlayer("p1", Vector2{X: 30, Y: 540})
	p.SetInput(InputState{Left: true}, 1)

	for i := 0; i < 60; i++ {
		ph.UpdatePlayer(p, testDt)
	}
	assert.GreaterOrEqual(t, p.Position.X, float64(PlayerRadius))
}

// TestRollCancelsOnWall tests that a dodge roll ends early on wall contact
func TestRollCancelsOnWall(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	p := testPlayer("p1", Vector2{X: 280, Y: 260})
	p.StartDodgeRoll(Vector2{X: 1})

	cancelled := false
	for i := 0; i < 30; i++ {
		if ph.UpdatePlayer(p, testDt).RollCancelled {
			cancelled = true
			break
		}
	}
	assert.True(t, cancelled, "roll into the pillar must cancel")
	assert.False(t, p.IsRolling)
}

// TestDeadPlayerDoesNotMove tests that physics skips dead players
func TestDeadPlayerDoesNotMove(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	p := testPlayer("p1", Vector2{X: 500, Y: 540})
	p.SetInput(InputState{Right: true}, 1)
	p.MarkDead()

	before := p.Position
	ph.UpdatePlayer(p, testDt)
	assert.Equal(t, before, p.Position)
}

// TestSweepProjectileHitsWall tests swept segment vs wall collision
func TestSweepProjectileHitsWall(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	pr := &Projectile{
		ID: "b1", OwnerID: "p1", Position: Vector2{X: 200, Y: 260},
		Velocity: Vector2{X: 1000}, Active: true,
	}

	hit := ph.SweepProjectile(pr, nil, 0.2)
	require.Equal(t, SweepHitWall, hit.Kind)
	// Pillar at x=320, inflated by the projectile radius.
	assert.InDelta(t, 320.0-ProjectileRadius, hit.Point.X, 0.5)
	assert.Equal(t, hit.Point, pr.Position, "projectile stops at the hit point")
}

// TestSweepProjectileHitsPlayer tests swept segment vs player collision
func TestSweepProjectileHitsPlayer(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	target := testPlayer("p2", Vector2{X: 300, Y: 700})
	pr := &Projectile{
		ID: "b1", OwnerID: "p1", Position: Vector2{X: 200, Y: 700},
		Velocity: Vector2{X: 1000}, Active: true,
	}

	hit := ph.SweepProjectile(pr, []*PlayerState{target}, 0.2)
	require.Equal(t, SweepHitPlayer, hit.Kind)
	assert.Same(t, target, hit.Player)
	assert.InDelta(t, 300.0-PlayerRadius-ProjectileRadius, hit.Point.X, 0.5)
}

// TestSweepSkipsOwnerAndRolling tests projectile immunity rules
func TestSweepSkipsOwnerAndRolling(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())

	owner := testPlayer("p1", Vector2{X: 300, Y: 700})
	rolling := testPlayer("p2", Vector2{X: 350, Y: 700})
	rolling.StartDodgeRoll(Vector2{Y: -1})
	dead := testPlayer("p3", Vector2{X: 250, Y: 700})
	dead.MarkDead()

	pr := &Projectile{
		ID: "b1", OwnerID: "p1", Position: Vector2{X: 200, Y: 700},
		Velocity: Vector2{X: 1000}, Active: true,
	}

	hit := ph.SweepProjectile(pr, []*PlayerState{owner, rolling, dead}, 0.2)
	assert.Equal(t, SweepHitNone, hit.Kind, "owner, rolling and dead players are all ignored")
	assert.InDelta(t, 400.0, pr.Position.X, 0.001, "projectile travels the full segment")
}

// TestFastProjectileCannotTunnel tests sweeping across a thin wall in one tick
func TestFastProjectileCannotTunnel(t *testing.T) {
	ph := NewPhysics(DefaultArenaMap())
	// Lower corridor wall is 40px tall; cross it in a single step.
	pr := &Projectile{
		ID: "b1", OwnerID: "p1", Position: Vector2{X: 900, Y: 840},
		Velocity: Vector2{Y: 6000}, Active: true,
	}

	hit := ph.SweepProjectile(pr, nil, testDt)
	assert.Equal(t, SweepHitWall, hit.Kind, "100px step across a 40px wall must still hit")
}
