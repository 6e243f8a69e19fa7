package game

import (
	"context"
	"fmt"
	"time"

	"github.com/beka-birhanu/tilt-maze/physics"
)

// LocalPlayers is the number of balls a local player steers at once.
const LocalPlayers = MaxPlayers

// TiltSource yields the current board tilt. It is polled once per tick.
type TiltSource interface {
	Tilt() physics.Tilt
}

// TiltFunc adapts a function to TiltSource.
type TiltFunc func() physics.Tilt

// Tilt implements TiltSource.
func (f TiltFunc) Tilt() physics.Tilt { return f() }

// Local is a single player round: all four balls share the player's tilt and the
// round is won once every ball rests in the goal.
type Local struct {
	world    *World
	source   TiltSource
	tickRate time.Duration
	lastTick time.Time
	tick     uint64

	// OnTick, when set, receives the positions after every committed tick.
	OnTick func(Positions)
}

// NewLocal fills every spawn slot of the world with a ball.
func NewLocal(world *World, source TiltSource) (*Local, error) {
	for n := 1; n <= LocalPlayers; n++ {
		if err := world.AddBall(fmt.Sprintf("ball-%d", n)); err != nil {
			return nil, err
		}
	}
	return &Local{world: world, source: source, tickRate: defaultTickRate}, nil
}

// Run ticks until the round is won or lost, or ctx is done.
func (l *Local) Run(ctx context.Context) (physics.Result, error) {
	ticker := time.NewTicker(l.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return physics.Result{Outcome: physics.Continue}, ctx.Err()
		case now := <-ticker.C:
			if res := l.Advance(now); res.Outcome != physics.Continue {
				return res, nil
			}
		}
	}
}

// Advance runs the tick happening at now. The first call only records the time.
func (l *Local) Advance(now time.Time) physics.Result {
	if l.lastTick.IsZero() {
		l.lastTick = now
		return physics.Result{Outcome: physics.Continue}
	}
	dt := physics.FrameDelta(float64(now.Sub(l.lastTick)) / float64(time.Millisecond))
	l.lastTick = now

	res := l.world.Step(l.source.Tilt(), dt)
	if res.Outcome != physics.Continue {
		return res
	}
	l.tick++
	if l.OnTick != nil {
		l.OnTick(l.world.Positions(l.tick))
	}
	if l.world.AllInGoal() {
		return physics.Result{Outcome: physics.Won}
	}
	return res
}

// Reset starts a new round on a fresh maze.
func (l *Local) Reset(hard bool) error {
	l.lastTick = time.Time{}
	l.tick = 0
	return l.world.Reset(hard)
}

// Layout describes the current board.
func (l *Local) Layout() Layout {
	return l.world.Layout()
}
