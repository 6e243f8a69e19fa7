package physics

import "github.com/beka-birhanu/tilt-maze/maze"

const (
	BallSize      = 10.0 // Width and height of a ball
	BallRadius    = BallSize / 2
	WallHalfWidth = maze.WallWidth / 2
	HoleSize      = 18.0
	HoleRadius    = HoleSize / 2
	MaxVelocity   = 1.5 // per axis, pixels per nominal tick

	Gravity       = 2.0
	Friction      = 0.01 // coefficient of friction
	Sensitivity   = 0.8  // degrees of board rotation per degree of device tilt
	JoystickLimit = 15.0 // max joystick displacement in pixels

	GoalX      = 350.0 / 2
	GoalY      = 315.0 / 2
	GoalRadius = 65.0 / 2

	// contactDistance is the closest a ball center can be to a wall's center line or cap.
	contactDistance = WallHalfWidth + BallRadius
)
