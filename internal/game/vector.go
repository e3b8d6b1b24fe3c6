package game

import "math"

// Vector2 is a 2D point or direction in arena pixels.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

func (v Vector2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized returns the unit vector, or zero for a zero vector.
func (v Vector2) Normalized() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return Vector2{X: v.X / l, Y: v.Y / l}
}

func (v Vector2) DistanceTo(o Vector2) float64 {
	return o.Sub(v).Length()
}

// AngleTo returns the angle in radians from v toward o.
func (v Vector2) AngleTo(o Vector2) float64 {
	return math.Atan2(o.Y-v.Y, o.X-v.X)
}

// WrapAngle normalizes an angle to (-π, π] so angular differences compare
// correctly across the seam.
func WrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
