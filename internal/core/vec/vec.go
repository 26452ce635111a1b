// Package vec holds the 2D vector math used by the puck resolver.
// Vec2 is a value type; every operation returns a new vector.
package vec

import "math"

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func New(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func Add(a, b Vec2) Vec2           { return Vec2{X: a.X + b.X, Y: a.Y + b.Y} }
func Sub(a, b Vec2) Vec2           { return Vec2{X: a.X - b.X, Y: a.Y - b.Y} }
func Scale(v Vec2, s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }
func Len(v Vec2) float64           { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector in v's direction, or the zero vector
// when v has no length.
func Normalize(v Vec2) Vec2 {
	l := Len(v)
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// ClampLen shortens v to maxLen if it is longer. It never grows v.
func ClampLen(v Vec2, maxLen float64) Vec2 {
	if Len(v) <= maxLen {
		return v
	}
	return Scale(Normalize(v), maxLen)
}

// FromAngle returns a vector of the given length pointing at angle radians.
func FromAngle(angle, length float64) Vec2 {
	return Vec2{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}
