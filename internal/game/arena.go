package game

// Wall is an axis-aligned solid rectangle.
type Wall struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether a point lies inside the wall.
func (w Wall) Contains(p Vector2) bool {
	return p.X >= w.X && p.X <= w.X+w.Width &&
		p.Y >= w.Y && p.Y <= w.Y+w.Height
}

// ClosestPoint returns the point on the wall nearest to p.
func (w Wall) ClosestPoint(p Vector2) Vector2 {
	return Vector2{
		X: clamp(p.X, w.X, w.X+w.Width),
		Y: clamp(p.Y, w.Y, w.Y+w.Height),
	}
}

// IntersectsCircle reports whether a circle overlaps the wall.
func (w Wall) IntersectsCircle(center Vector2, radius float64) bool {
	return w.ClosestPoint(center).DistanceTo(center) < radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CrateSpawn fixes where a weapon crate appears and what it holds.
type CrateSpawn struct {
	Position   Vector2
	WeaponType string
}

// ArenaMap is the static geometry of a room: bounds, walls, player spawn
// points and weapon crate spawns.
type ArenaMap struct {
	Width       float64
	Height      float64
	Walls       []Wall
	SpawnPoints []Vector2
	CrateSpawns []CrateSpawn
}

// DefaultArenaMap returns the standard arena: a bordered 1920x1080 field
// with center cover, four pillar blocks and side corridors.
func DefaultArenaMap() *ArenaMap {
	return &ArenaMap{
		Width:  ArenaWidth,
		Height: ArenaHeight,
		Walls: []Wall{
			// Center cross cover
			{X: 860, Y: 440, Width: 200, Height: 40},
			{X: 940, Y: 360, Width: 40, Height: 200},
			// Corner pillars
			{X: 320, Y: 220, Width: 80, Height: 80},
			{X: 1520, Y: 220, Width: 80, Height: 80},
			{X: 320, Y: 780, Width: 80, Height: 80},
			{X: 1520, Y: 780, Width: 80, Height: 80},
			// Lower mid corridor wall
			{X: 760, Y: 860, Width: 400, Height: 40},
		},
		SpawnPoints: []Vector2{
			{X: 160, Y: 160},
			{X: 1760, Y: 160},
			{X: 160, Y: 920},
			{X: 1760, Y: 920},
			{X: 960, Y: 120},
			{X: 960, Y: 980},
			{X: 120, Y: 540},
			{X: 1800, Y: 540},
		},
		CrateSpawns: []CrateSpawn{
			{Position: Vector2{X: 960, Y: 240}, WeaponType: WeaponUzi},
			{Position: Vector2{X: 960, Y: 760}, WeaponType: WeaponShotgun},
			{Position: Vector2{X: 240, Y: 540}, WeaponType: WeaponBat},
			{Position: Vector2{X: 1680, Y: 540}, WeaponType: WeaponKatana},
		},
	}
}
