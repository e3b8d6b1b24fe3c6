package game

import "math"

// Physics advances player movement and sweeps projectiles against walls and
// players. It is stateless apart from the arena geometry, so one instance
// serves a whole room.
type Physics struct {
	arena *ArenaMap
}

// NewPhysics creates a physics stepper over the given arena.
func NewPhysics(arena *ArenaMap) *Physics {
	return &Physics{arena: arena}
}

// MoveResult reports side effects of a player movement step.
type MoveResult struct {
	// RollCancelled is set when a dodge roll ended early on a wall.
	RollCancelled bool
}

// UpdatePlayer integrates one fixed time step for a player.
//
// Rolling players move at locked roll velocity and stop rolling on wall
// contact. Everyone else lerps velocity toward the input direction with
// acceleration, or decelerates toward zero, then resolves wall collisions
// axis-separately and clamps to arena bounds.
func (ph *Physics) UpdatePlayer(p *PlayerState, dt float64) MoveResult {
	var res MoveResult
	if p.IsDead {
		return res
	}

	if p.IsRolling {
		p.Velocity = p.RollDirection.Scale(RollSpeed)
		collided := ph.moveWithCollisions(p, dt)
		if collided {
			p.EndDodgeRoll()
			res.RollCancelled = true
		}
		return res
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
	dir = dir.Normalized()

	maxSpeed := PlayerSpeed
	if p.Sprinting() {
		maxSpeed *= SprintMultiplier
	}

	if dir.X != 0 || dir.Y != 0 {
		target := dir.Scale(maxSpeed)
		p.Velocity = stepToward(p.Velocity, target, PlayerAccel*dt)
	} else {
		p.Velocity = stepToward(p.Velocity, Vector2{}, PlayerDecel*dt)
		if p.Velocity.Length() < VelocityEpsilon {
			p.Velocity = Vector2{}
		}
	}

	if speed := p.Velocity.Length(); speed > maxSpeed {
		p.Velocity = p.Velocity.Scale(maxSpeed / speed)
	}

	ph.moveWithCollisions(p, dt)
	return res
}

// stepToward moves v toward target by at most maxDelta.
func stepToward(v, target Vector2, maxDelta float64) Vector2 {
	diff := target.Sub(v)
	dist := diff.Length()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return v.Add(diff.Scale(maxDelta / dist))
}

// moveWithCollisions advances position axis-separately, zeroing the
// offending velocity axis on wall contact, then clamps to arena bounds.
// Returns whether any wall was hit.
func (ph *Physics) moveWithCollisions(p *PlayerState, dt float64) bool {
	collided := false

	nx := p.Position.X + p.Velocity.X*dt
	if ph.circleHitsWall(Vector2{X: nx, Y: p.Position.Y}) {
		p.Velocity.X = 0
		collided = true
	} else {
		p.Position.X = nx
	}

	ny := p.Position.Y + p.Velocity.Y*dt
	if ph.circleHitsWall(Vector2{X: p.Position.X, Y: ny}) {
		p.Velocity.Y = 0
		collided = true
	} else {
		p.Position.Y = ny
	}

	p.Position.X = clamp(p.Position.X, PlayerRadius, ph.arena.Width-PlayerRadius)
	p.Position.Y = clamp(p.Position.Y, PlayerRadius, ph.arena.Height-PlayerRadius)
	return collided
}

func (ph *Physics) circleHitsWall(center Vector2) bool {
	for _, wall := range ph.arena.Walls {
		if wall.IntersectsCircle(center, PlayerRadius) {
			return true
		}
	}
	return false
}

// SweepHitKind discriminates what a projectile sweep hit first.
type SweepHitKind int

const (
	SweepHitNone SweepHitKind = iota
	SweepHitWall
	SweepHitPlayer
)

// SweepHit is the first intersection along a projectile's tick segment.
type SweepHit struct {
	Kind   SweepHitKind
	Point  Vector2
	Player *PlayerState
}

// SweepProjectile advances a projectile by one tick using its swept segment.
// The segment from the current position to position + velocity*dt is tested
// against walls and living, non-rolling players (owner excluded); the first
// hit wins. On a miss the projectile simply moves to the segment end.
func (ph *Physics) SweepProjectile(pr *Projectile, players []*PlayerState, dt float64) SweepHit {
	start := pr.Position
	end := start.Add(pr.Velocity.Scale(dt))

	best := SweepHit{Kind: SweepHitNone, Point: end}
	bestT := math.Inf(1)

	for i := range ph.arena.Walls {
		if t, ok := segmentRectT(start, end, ph.arena.Walls[i], ProjectileRadius); ok && t < bestT {
			bestT = t
			best = SweepHit{
				Kind:  SweepHitWall,
				Point: lerpPoint(start, end, t),
			}
		}
	}

	for _, target := range players {
		if target.ID == pr.OwnerID || !target.IsAlive() || target.IsRolling {
			continue
		}
		if t, ok := segmentCircleT(start, end, target.Position, PlayerRadius+ProjectileRadius); ok && t < bestT {
			bestT = t
			best = SweepHit{
				Kind:   SweepHitPlayer,
				Point:  lerpPoint(start, end, t),
				Player: target,
			}
		}
	}

	pr.Position = best.Point
	return best
}

func lerpPoint(a, b Vector2, t float64) Vector2 {
	return a.Add(b.Sub(a).Scale(t))
}

// segmentCircleT returns the earliest parameter t in [0,1] where the segment
// a→b enters the circle at center with the given radius.
func segmentCircleT(a, b, center Vector2, radius float64) (float64, bool) {
	d := b.Sub(a)
	f := a.Sub(center)

	aa := d.X*d.X + d.Y*d.Y
	if aa == 0 {
		if f.Length() <= radius {
			return 0, true
		}
		return 0, false
	}
	bb := 2 * (f.X*d.X + f.Y*d.Y)
	cc := f.X*f.X + f.Y*f.Y - radius*radius

	disc := bb*bb - 4*aa*cc
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t1 := (-bb - sq) / (2 * aa)
	t2 := (-bb + sq) / (2 * aa)
	if t1 >= 0 && t1 <= 1 {
		return t1, true
	}
	// Segment starts inside the circle.
	if t1 < 0 && t2 >= 0 {
		return 0, true
	}
	return 0, false
}

// segmentRectT returns the earliest parameter t in [0,1] where the segment
// a→b enters the wall rectangle inflated by radius (slab method).
func segmentRectT(a, b Vector2, wall Wall, radius float64) (float64, bool) {
	minX, maxX := wall.X-radius, wall.X+wall.Width+radius
	minY, maxY := wall.Y-radius, wall.Y+wall.Height+radius

	d := b.Sub(a)
	tmin, tmax := 0.0, 1.0

	for axis := 0; axis < 2; axis++ {
		var origin, delta, lo, hi float64
		if axis == 0 {
			origin, delta, lo, hi = a.X, d.X, minX, maxX
		} else {
			origin, delta, lo, hi = a.Y, d.Y, minY, maxY
		}

		if delta == 0 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - origin) / delta
		t2 := (hi - origin) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
