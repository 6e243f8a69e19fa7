package maze

import "errors"

var ErrNoPath = errors.New("no path between cells")

// Solve finds a path between the interior corners of the maze.
func (m *Maze) Solve() ([]CellPosition, error) {
	return m.SolveBetween(
		CellPosition{Row: 1, Col: 1},
		CellPosition{Row: m.Height - 2, Col: m.Width - 2},
	)
}

// SolveBetween runs a depth-first search from start to goal, trying open sides in the
// order top, right, bottom, left, and returns the cells on the path found.
func (m *Maze) SolveBetween(start, goal CellPosition) ([]CellPosition, error) {
	snap := m.Snapshot()
	if !snap.InBound(start) || !snap.InBound(goal) {
		return nil, ErrNoPath
	}

	visited := make([][]bool, snap.Height)
	for i := range visited {
		visited[i] = make([]bool, snap.Width)
	}

	type step struct {
		pos  CellPosition
		next int
	}

	visited[start.Row][start.Col] = true
	stack := []step{{pos: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pos == goal {
			path := make([]CellPosition, len(stack))
			for i, s := range stack {
				path[i] = s.pos
			}
			return path, nil
		}

		if top.next == len(allDirections) {
			stack = stack[:len(stack)-1] // dead end, backtrack
			continue
		}

		dir := allDirections[top.next]
		top.next++

		if snap.Grid[top.pos.Row][top.pos.Col].HasWall(dir) {
			continue
		}
		to := top.pos.Step(dir)
		if !snap.InBound(to) || visited[to.Row][to.Col] {
			continue
		}
		visited[to.Row][to.Col] = true
		stack = append(stack, step{pos: to})
	}

	return nil, ErrNoPath
}
