/*
Package maze generates the playfield of the tilt maze.

A Maze is a bordered grid of cells. Generation runs a randomized depth-first
walk over the interior cells only, so the outer ring keeps all of its walls and
the field stays enclosed. The result is a perfect maze over the interior: every
interior cell is connected to every other one by exactly one simple path.

The package also converts the grid into pixel-space wall segments consumed by
the physics stepper, solves the maze for diagnostics and renders it as ASCII.
*/
package maze

import (
	"errors"
	"math/rand"
	"strings"
	"time"
)

const (
	// DefaultWidth and DefaultHeight are the dimensions of the tilt maze field.
	DefaultWidth  = 10
	DefaultHeight = 10

	minMazeDimension = 3
	maxMazeDimension = 20
)

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
	ErrInvalidStart      = errors.New("start cell must be an interior cell")
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Option configures maze generation.
type Option func(*options)

type options struct {
	shuffler Shuffler
	start    CellPosition
}

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.shuffler = rand.New(rand.NewSource(seed))
	}
}

// WithShuffler sets the source of direction order.
func WithShuffler(s Shuffler) Option {
	return func(o *options) {
		o.shuffler = s
	}
}

// WithStart sets the interior cell the walk starts from. Defaults to (1,1).
func WithStart(p CellPosition) Option {
	return func(o *options) {
		o.start = p
	}
}

// Maze represents a rectangular bordered maze.
type Maze struct {
	Width  int      // Width of the maze (number of columns)
	Height int      // Height of the maze (number of rows)
	Grid   [][]Cell // Grid[row][col]
}

// New initializes a maze of the given dimensions and carves its interior.
func New(width, height int, opts ...Option) (*Maze, error) {
	if min(width, height) < minMazeDimension || max(width, height) > maxMazeDimension {
		return nil, ErrInvalidDimensions
	}

	o := &options{start: CellPosition{Row: 1, Col: 1}}
	for _, opt := range opts {
		opt(o)
	}
	if o.shuffler == nil {
		o.shuffler = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	grid := make([][]Cell, height)
	for i := range grid {
		grid[i] = make([]Cell, width)
		for j := range grid[i] {
			grid[i][j] = closedCell()
		}
	}

	m := &Maze{
		Width:  width,
		Height: height,
		Grid:   grid,
	}
	if !m.interior(o.start) {
		return nil, ErrInvalidStart
	}

	m.carve(o.start, o.shuffler)
	return m, nil
}

// frame is one level of the depth-first walk.
type frame struct {
	pos  CellPosition
	dirs [4]Direction
	next int
}

// carve runs the randomized depth-first walk from start on an explicit stack.
func (m *Maze) carve(start CellPosition, s Shuffler) {
	stack := []*frame{m.enter(start, s)}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.dirs) {
			stack = stack[:len(stack)-1]
			continue
		}

		dir := top.dirs[top.next]
		top.next++

		neighbor := top.pos.Step(dir)
		if !m.interior(neighbor) || m.Grid[neighbor.Row][neighbor.Col].visited {
			continue
		}

		m.openWall(top.pos, dir)
		stack = append(stack, m.enter(neighbor, s))
	}

	for r := range m.Grid {
		for c := range m.Grid[r] {
			m.Grid[r][c].visited = false
		}
	}
}

// enter marks a cell visited and returns its frame with a freshly shuffled direction order.
func (m *Maze) enter(p CellPosition, s Shuffler) *frame {
	m.Grid[p.Row][p.Col].visited = true
	f := &frame{pos: p, dirs: allDirections}
	s.Shuffle(len(f.dirs), func(i, j int) {
		f.dirs[i], f.dirs[j] = f.dirs[j], f.dirs[i]
	})
	return f
}

// openWall removes the wall between p and its neighbor in direction d on both sides.
func (m *Maze) openWall(p CellPosition, d Direction) {
	to := p.Step(d)
	m.Grid[p.Row][p.Col].setWall(d, false)
	m.Grid[to.Row][to.Col].setWall(d.Opposite(), false)
}

// InBound reports whether the position lies inside the grid.
func (m *Maze) InBound(p CellPosition) bool {
	return p.Row >= 0 && p.Row < m.Height && p.Col >= 0 && p.Col < m.Width
}

// interior reports whether the position lies inside the grid but off the outer ring.
func (m *Maze) interior(p CellPosition) bool {
	return p.Row > 0 && p.Row < m.Height-1 && p.Col > 0 && p.Col < m.Width-1
}

// IsOpen reports whether a ball can pass from p towards d.
func (m *Maze) IsOpen(p CellPosition, d Direction) bool {
	to := p.Step(d)
	if !m.InBound(p) || !m.InBound(to) {
		return false
	}
	return !m.Grid[p.Row][p.Col].HasWall(d) && !m.Grid[to.Row][to.Col].HasWall(d.Opposite())
}

// Passages counts the internal partitions that were removed during generation.
func (m *Maze) Passages() int {
	count := 0
	for r := 0; r < m.Height; r++ {
		for c := 0; c < m.Width; c++ {
			if c > 0 && !m.Grid[r][c].WestWall {
				count++
			}
			if r > 0 && !m.Grid[r][c].NorthWall {
				count++
			}
		}
	}
	return count
}

// Snapshot returns a deep copy of the maze. Read-only consumers work on a snapshot.
func (m *Maze) Snapshot() *Maze {
	grid := make([][]Cell, len(m.Grid))
	for i, row := range m.Grid {
		grid[i] = append([]Cell(nil), row...)
	}
	return &Maze{Width: m.Width, Height: m.Height, Grid: grid}
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	var b strings.Builder

	// Top boundary
	b.WriteString("+" + strings.Repeat("---+", m.Width) + "\n")

	for row := 0; row < m.Height; row++ {
		b.WriteString("|")
		for col := 0; col < m.Width; col++ {
			if m.Grid[row][col].EastWall {
				b.WriteString("   |")
			} else {
				b.WriteString("    ")
			}
		}
		b.WriteString("\n+")

		for col := 0; col < m.Width; col++ {
			if m.Grid[row][col].SouthWall {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
