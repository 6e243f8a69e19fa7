package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/beka-birhanu/tilt-maze/maze"
	"github.com/beka-birhanu/tilt-maze/physics"
)

// World-related errors.
var (
	ErrTooManyPlayers = errors.New("too many players")
	ErrDuplicateBall  = errors.New("ball already in the world")
	ErrUnknownBall    = errors.New("ball is not in the world")
)

// MaxPlayers is the number of spawn slots on a board.
const MaxPlayers = 4

// SpawnCells are the starting cells of the balls, one per slot.
var SpawnCells = [MaxPlayers]maze.CellPosition{
	{Col: 1, Row: 1},
	{Col: 8, Row: 1},
	{Col: 1, Row: 8},
	{Col: 8, Row: 8},
}

// HoleCells are the cells holding a hole on the hard board.
var HoleCells = []maze.CellPosition{
	{Col: 0, Row: 5},
	{Col: 2, Row: 0},
	{Col: 2, Row: 4},
	{Col: 4, Row: 6},
	{Col: 6, Row: 2},
	{Col: 6, Row: 8},
	{Col: 8, Row: 1},
	{Col: 8, Row: 2},
}

// MazeFactory builds the maze for a new round.
type MazeFactory func() (*maze.Maze, error)

// DefaultMazeFactory builds a randomly seeded maze of the default size.
func DefaultMazeFactory() (*maze.Maze, error) {
	return maze.New(maze.DefaultWidth, maze.DefaultHeight)
}

// World is one board: a maze, the balls rolling on it and the round settings.
// It is not safe for concurrent use; a Game or Local owns it.
type World struct {
	newMaze  MazeFactory
	maze     *maze.Maze
	walls    []maze.Wall
	solution []maze.CellPosition
	holes    []physics.Hole
	goal     physics.Goal
	hard     bool
	balls    []physics.Ball
	slots    map[string]int // ball ID to spawn slot
}

// NewWorld builds a world with a freshly generated maze and no balls.
func NewWorld(factory MazeFactory, hard bool) (*World, error) {
	if factory == nil {
		factory = DefaultMazeFactory
	}
	w := &World{
		newMaze: factory,
		holes:   safeHoles(),
		goal:    physics.DefaultGoal(),
		slots:   make(map[string]int),
	}
	if err := w.Reset(hard); err != nil {
		return nil, err
	}
	return w, nil
}

// Reset regenerates the maze and sends every ball back to its spawn cell at rest.
func (w *World) Reset(hard bool) error {
	m, err := w.newMaze()
	if err != nil {
		return fmt.Errorf("generating maze: %w", err)
	}

	w.maze = m
	w.walls = m.Walls()
	w.solution, err = m.Solve()
	if err != nil && !errors.Is(err, maze.ErrNoPath) {
		return fmt.Errorf("solving maze: %w", err)
	}
	w.hard = hard

	for i := range w.balls {
		w.balls[i] = spawnBall(w.balls[i].ID, w.slots[w.balls[i].ID])
	}
	return nil
}

// AddBall puts a ball for id on the lowest free spawn slot.
func (w *World) AddBall(id string) error {
	if _, ok := w.slots[id]; ok {
		return ErrDuplicateBall
	}

	slot := -1
	for s := 0; s < MaxPlayers; s++ {
		if !w.slotTaken(s) {
			slot = s
			break
		}
	}
	if slot < 0 {
		return ErrTooManyPlayers
	}

	w.slots[id] = slot
	w.balls = append(w.balls, spawnBall(id, slot))
	return nil
}

// RemoveBall takes the ball of id off the board.
func (w *World) RemoveBall(id string) error {
	if _, ok := w.slots[id]; !ok {
		return ErrUnknownBall
	}
	delete(w.slots, id)
	w.balls = slices.DeleteFunc(w.balls, func(b physics.Ball) bool { return b.ID == id })
	return nil
}

func (w *World) slotTaken(slot int) bool {
	for _, s := range w.slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Step advances the balls by one frame. Holes only count on the hard board.
func (w *World) Step(tilt physics.Tilt, dt float64) physics.Result {
	var holes []physics.Hole
	if w.hard {
		holes = w.holes
	}
	return physics.Step(w.balls, w.walls, holes, tilt, dt)
}

// AllInGoal reports whether every ball rests in the goal.
func (w *World) AllInGoal() bool {
	return physics.AllInGoal(w.balls, w.goal)
}

// InGoalRegion reports whether the ball of id lies fully inside the square around the goal.
func (w *World) InGoalRegion(id string) bool {
	for _, b := range w.balls {
		if b.ID == id {
			return physics.InRegion(b, physics.GoalRegion(w.goal))
		}
	}
	return false
}

// Balls returns a copy of the balls.
func (w *World) Balls() []physics.Ball {
	return slices.Clone(w.balls)
}

// Len returns the number of balls on the board.
func (w *World) Len() int {
	return len(w.balls)
}

// Hard reports whether holes are active.
func (w *World) Hard() bool {
	return w.hard
}

// Layout describes the static board.
func (w *World) Layout() Layout {
	l := Layout{
		Width:    w.maze.Width,
		Height:   w.maze.Height,
		Walls:    slices.Clone(w.walls),
		Goal:     w.goal,
		Solution: slices.Clone(w.solution),
		Hard:     w.hard,
	}
	if w.hard {
		l.Holes = slices.Clone(w.holes)
	}
	return l
}

// Positions describes where the balls are.
func (w *World) Positions(tick uint64) Positions {
	p := Positions{Tick: tick, Balls: make([]BallState, len(w.balls))}
	for i, b := range w.balls {
		p.Balls[i] = BallState{ID: b.ID, X: b.X, Y: b.Y}
	}
	return p
}

func spawnBall(id string, slot int) physics.Ball {
	x, y := maze.CellCenter(SpawnCells[slot])
	return physics.NewBall(id, x, y)
}

// safeHoles places a hole on every hole cell that is not also a spawn cell.
func safeHoles() []physics.Hole {
	holes := make([]physics.Hole, 0, len(HoleCells))
	for _, c := range HoleCells {
		if slices.Contains(SpawnCells[:], c) {
			continue
		}
		x, y := maze.CellCenter(c)
		holes = append(holes, physics.Hole{X: x, Y: y})
	}
	return holes
}
