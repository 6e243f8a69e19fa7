package physics

import "math"

// Ball is a moving actor. ID stays with the slot even when two balls swap state.
type Ball struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	VX float64 `json:"vx" msgpack:"vx"`
	VY float64 `json:"vy" msgpack:"vy"`

	// tentative position, only meaningful while a step is in progress
	nextX float64
	nextY float64
}

// NewBall creates a ball at rest.
func NewBall(id string, x, y float64) Ball {
	return Ball{ID: id, X: x, Y: y}
}

// Hole is a lethal point in the hard variant.
type Hole struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Contains reports whether a point falls into the hole.
func (h Hole) Contains(x, y float64) bool {
	return distance(h.X, h.Y, x, y) <= HoleRadius
}

// swapState exchanges everything but identity between two balls.
func swapState(a, b *Ball) {
	a.X, b.X = b.X, a.X
	a.Y, b.Y = b.Y, a.Y
	a.VX, b.VX = b.VX, a.VX
	a.VY, b.VY = b.VY, a.VY
	a.nextX, b.nextX = b.nextX, a.nextX
	a.nextY, b.nextY = b.nextY, a.nextY
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// clamp limits v to [-limit, limit].
func clamp(v, limit float64) float64 {
	return math.Max(math.Min(v, limit), -limit)
}

// slow decreases the magnitude of v by delta without changing its sign.
func slow(v, delta float64) float64 {
	if math.Abs(v) <= delta {
		return 0
	}
	if v > 0 {
		return v - delta
	}
	return v + delta
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
