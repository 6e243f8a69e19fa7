package maze

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityShuffler leaves the direction order untouched.
type identityShuffler struct{}

func (identityShuffler) Shuffle(int, func(i, j int)) {}

func reachable(m *Maze, from CellPosition) map[CellPosition]struct{} {
	seen := map[CellPosition]struct{}{from: {}}
	queue := []CellPosition{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range allDirections {
			if !m.IsOpen(cur, d) {
				continue
			}
			next := cur.Step(d)
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return seen
}

func TestNew(t *testing.T) {
	t.Run("rejects invalid dimensions", func(t *testing.T) {
		for _, dims := range [][2]int{{2, 10}, {10, 2}, {0, 0}, {21, 10}} {
			_, err := New(dims[0], dims[1])
			assert.ErrorIs(t, err, ErrInvalidDimensions, "dims %v", dims)
		}
	})

	t.Run("rejects border start", func(t *testing.T) {
		_, err := New(10, 10, WithStart(CellPosition{Row: 0, Col: 0}))
		assert.ErrorIs(t, err, ErrInvalidStart)
	})

	t.Run("perfect maze over the interior", func(t *testing.T) {
		for seed := int64(1); seed <= 25; seed++ {
			m, err := New(DefaultWidth, DefaultHeight, WithSeed(seed))
			require.NoError(t, err)

			interior := (m.Width - 2) * (m.Height - 2)
			assert.Equal(t, interior-1, m.Passages(), "seed %d", seed)
			assert.Len(t, reachable(m, CellPosition{Row: 1, Col: 1}), interior, "seed %d", seed)
		}
	})

	t.Run("border cells keep every wall", func(t *testing.T) {
		for seed := int64(1); seed <= 25; seed++ {
			m, err := New(DefaultWidth, DefaultHeight, WithSeed(seed))
			require.NoError(t, err)

			for r := 0; r < m.Height; r++ {
				for c := 0; c < m.Width; c++ {
					if r != 0 && c != 0 && r != m.Height-1 && c != m.Width-1 {
						continue
					}
					cell := m.Grid[r][c]
					assert.True(t, cell.NorthWall && cell.EastWall && cell.SouthWall && cell.WestWall,
						"seed %d cell (%d,%d) lost a wall", seed, r, c)
				}
			}
		}
	})

	t.Run("same seed reproduces the maze", func(t *testing.T) {
		a, err := New(DefaultWidth, DefaultHeight, WithSeed(42))
		require.NoError(t, err)
		b, err := New(DefaultWidth, DefaultHeight, WithSeed(42))
		require.NoError(t, err)

		assert.Equal(t, a.Grid, b.Grid)
		assert.Equal(t, 63, a.Passages())
	})

	t.Run("fixed direction order carves a spanning tree", func(t *testing.T) {
		m, err := New(DefaultWidth, DefaultHeight, WithShuffler(identityShuffler{}))
		require.NoError(t, err)

		assert.Equal(t, 63, m.Passages())
		// With the order top, right, bottom, left the first move out of (1,1) is right.
		assert.True(t, m.IsOpen(CellPosition{Row: 1, Col: 1}, East))
	})

	t.Run("walls agree on both sides", func(t *testing.T) {
		m, err := New(DefaultWidth, DefaultHeight, WithSeed(7))
		require.NoError(t, err)

		for r := 0; r < m.Height; r++ {
			for c := 0; c < m.Width-1; c++ {
				assert.Equal(t, m.Grid[r][c].EastWall, m.Grid[r][c+1].WestWall)
			}
		}
		for r := 0; r < m.Height-1; r++ {
			for c := 0; c < m.Width; c++ {
				assert.Equal(t, m.Grid[r][c].SouthWall, m.Grid[r+1][c].NorthWall)
			}
		}
	})
}

func TestSnapshotIsIndependent(t *testing.T) {
	m, err := New(DefaultWidth, DefaultHeight, WithSeed(3))
	require.NoError(t, err)

	snap := m.Snapshot()
	snap.Grid[0][0].NorthWall = false
	assert.True(t, m.Grid[0][0].NorthWall)
}

func TestWalls(t *testing.T) {
	m, err := New(DefaultWidth, DefaultHeight, WithSeed(11))
	require.NoError(t, err)

	walls := m.Walls()
	partitions := (m.Width-1)*m.Height + m.Width*(m.Height-1)
	assert.Len(t, walls, partitions-m.Passages())

	seen := make(map[string]struct{}, len(walls))
	for _, w := range walls {
		key := fmt.Sprintf("%v:%v:%v", w.X, w.Y, w.Horizontal)
		_, dup := seen[key]
		assert.False(t, dup, "duplicate segment %s", key)
		seen[key] = struct{}{}
		assert.Equal(t, Pitch, w.Length)
	}

	t.Run("deterministic order", func(t *testing.T) {
		assert.Equal(t, walls, m.Walls())
	})

	t.Run("first segment seals the top-left border cell", func(t *testing.T) {
		assert.Equal(t, Wall{X: 0, Y: Pitch, Horizontal: true, Length: Pitch}, walls[0])
	})
}

func TestCellCenter(t *testing.T) {
	x, y := CellCenter(CellPosition{Row: 1, Col: 8})
	assert.Equal(t, 8*Pitch+17.5, x)
	assert.Equal(t, Pitch+17.5, y)
}

func TestSolve(t *testing.T) {
	m, err := New(DefaultWidth, DefaultHeight, WithSeed(5))
	require.NoError(t, err)

	path, err := m.Solve()
	require.NoError(t, err)
	require.NotEmpty(t, path)

	assert.Equal(t, CellPosition{Row: 1, Col: 1}, path[0])
	assert.Equal(t, CellPosition{Row: 8, Col: 8}, path[len(path)-1])

	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		moved := false
		for _, d := range allDirections {
			if prev.Step(d) == cur {
				assert.True(t, m.IsOpen(prev, d), "step %d crosses a wall", i)
				moved = true
			}
		}
		assert.True(t, moved, "step %d is not adjacent", i)
	}

	t.Run("grid corners are sealed off", func(t *testing.T) {
		_, err := m.SolveBetween(CellPosition{Row: 0, Col: 0}, CellPosition{Row: 9, Col: 9})
		assert.ErrorIs(t, err, ErrNoPath)
	})

	t.Run("start equals goal", func(t *testing.T) {
		p := CellPosition{Row: 4, Col: 4}
		path, err := m.SolveBetween(p, p)
		require.NoError(t, err)
		assert.Equal(t, []CellPosition{p}, path)
	})
}

func TestString(t *testing.T) {
	m, err := New(3, 3, WithSeed(1))
	require.NoError(t, err)

	want := "+---+---+---+\n" +
		"|   |   |   |\n" +
		"+---+---+---+\n" +
		"|   |   |   |\n" +
		"+---+---+---+\n" +
		"|   |   |   |\n" +
		"+---+---+---+\n"
	assert.Equal(t, want, m.String())
}
