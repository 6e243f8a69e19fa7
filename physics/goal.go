package physics

// Goal is the circular target area in the middle of the board.
type Goal struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

// DefaultGoal is centered on the board.
func DefaultGoal() Goal {
	return Goal{X: GoalX, Y: GoalY, Radius: GoalRadius}
}

// Contains reports whether the ball's center is inside the goal.
func (g Goal) Contains(b Ball) bool {
	return distance(g.X, g.Y, b.X, b.Y) <= g.Radius
}

// AllInGoal reports whether every ball rests in the goal. No balls is not a win.
func AllInGoal(balls []Ball, g Goal) bool {
	if len(balls) == 0 {
		return false
	}
	for _, b := range balls {
		if !g.Contains(b) {
			return false
		}
	}
	return true
}

// Region is an axis aligned rectangle.
type Region struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	W float64 `json:"w" msgpack:"w"`
	H float64 `json:"h" msgpack:"h"`
}

// GoalRegion is the square drawn around g.
func GoalRegion(g Goal) Region {
	return Region{X: g.X - g.Radius, Y: g.Y - g.Radius, W: 2 * g.Radius, H: 2 * g.Radius}
}

// InRegion reports whether the whole ball lies within r.
func InRegion(b Ball, r Region) bool {
	return b.X-BallRadius >= r.X &&
		b.X+BallRadius <= r.X+r.W &&
		b.Y-BallRadius >= r.Y &&
		b.Y+BallRadius <= r.Y+r.H
}
