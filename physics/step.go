// Package physics moves balls over a maze board tilted by the players.
//
// A Step is a pure function of its inputs: the same balls, walls, holes, tilt and
// time delta always give the same result.
package physics

import (
	"math"

	"github.com/beka-birhanu/tilt-maze/maze"
)

// Outcome is the result kind of a step.
type Outcome byte

const (
	Continue Outcome = iota
	Lost
	Won
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Lost:
		return "lost"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

// Result is what a step reports. BallID names the ball that fell into a hole
// when Outcome is Lost.
type Result struct {
	Outcome Outcome `json:"outcome" msgpack:"outcome"`
	BallID  string  `json:"ballId,omitempty" msgpack:"ballId,omitempty"`
}

// Step advances every ball by one frame and commits the new positions in place.
//
// dt is the elapsed time in nominal frames. It scales acceleration and friction,
// while positions move by the per-frame velocity. When a ball ends up in a hole the
// step reports Lost and leaves balls untouched. Pass nil holes for the easy board.
func Step(balls []Ball, walls []maze.Wall, holes []Hole, tilt Tilt, dt float64) Result {
	if !finite(dt) || dt < 0 {
		dt = 0
	}

	work := make([]Ball, len(balls))
	copy(work, balls)

	for i := range work {
		b := &work[i]
		b.VX = accelerate(b.VX, tilt.AX, tilt.FX, dt)
		b.VY = accelerate(b.VY, tilt.AY, tilt.FY, dt)
		b.nextX = b.X + b.VX
		b.nextY = b.Y + b.VY

		for _, w := range walls {
			*b = collideWall(*b, w)
		}
		b.VX = clamp(b.VX, MaxVelocity)
		b.VY = clamp(b.VY, MaxVelocity)
	}

	collideBalls(work)

	for _, b := range work {
		for _, h := range holes {
			if h.Contains(b.nextX, b.nextY) {
				return Result{Outcome: Lost, BallID: b.ID}
			}
		}
	}

	for i := range work {
		work[i].X = work[i].nextX
		work[i].Y = work[i].nextY
	}
	copy(balls, work)
	return Result{Outcome: Continue}
}

// accelerate applies one axis of tilt to a velocity component.
func accelerate(v, a, f, dt float64) float64 {
	drag := f * dt
	if a == 0 {
		return slow(v, drag)
	}
	v += a * dt
	v -= sign(a) * drag
	return clamp(v, MaxVelocity)
}

// FrameDelta converts elapsed milliseconds into nominal frames, capped so a
// stalled loop does not launch balls through walls.
func FrameDelta(elapsedMs float64) float64 {
	const (
		frameMs  = 16.0
		maxDelta = 4.0
	)
	if !finite(elapsedMs) || elapsedMs <= 0 {
		return 0
	}
	return math.Min(elapsedMs/frameMs, maxDelta)
}
