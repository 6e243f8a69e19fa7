package maze

const (
	PathWidth = 25.0                  // Path width in pixels
	WallWidth = 10.0                  // Wall thickness in pixels
	Pitch     = PathWidth + WallWidth // Distance between two wall center lines
)

// Wall is a wall segment in pixel space. X and Y locate the segment's start;
// horizontal segments run right from there, vertical segments run down.
type Wall struct {
	X          float64 `json:"x" msgpack:"x"`
	Y          float64 `json:"y" msgpack:"y"`
	Horizontal bool    `json:"horizontal" msgpack:"horizontal"`
	Length     float64 `json:"length" msgpack:"length"`
}

// Start returns the first endpoint of the segment.
func (w Wall) Start() (float64, float64) {
	return w.X, w.Y
}

// End returns the second endpoint of the segment.
func (w Wall) End() (float64, float64) {
	if w.Horizontal {
		return w.X + w.Length, w.Y
	}
	return w.X, w.Y + w.Length
}

// Walls lists one segment per standing internal partition.
//
// A partition is emitted from the cell to its right or below it only: the west wall
// of every cell off the first column and the north wall of every cell off the first
// row. Cells are visited column by column, and that order is the order the physics
// stepper resolves collisions in.
func (m *Maze) Walls() []Wall {
	snap := m.Snapshot()

	var walls []Wall
	for col := 0; col < snap.Width; col++ {
		for row := 0; row < snap.Height; row++ {
			cell := snap.Grid[row][col]
			if col > 0 && cell.WestWall {
				walls = append(walls, pixelWall(row, col, false))
			}
			if row > 0 && cell.NorthWall {
				walls = append(walls, pixelWall(row, col, true))
			}
		}
	}
	return walls
}

func pixelWall(row, col int, horizontal bool) Wall {
	return Wall{
		X:          float64(col) * Pitch,
		Y:          float64(row) * Pitch,
		Horizontal: horizontal,
		Length:     Pitch,
	}
}

// CellCenter returns the pixel center of the cell at the given position.
func CellCenter(p CellPosition) (float64, float64) {
	return float64(p.Col)*Pitch + (WallWidth/2 + PathWidth/2), float64(p.Row)*Pitch + (WallWidth/2 + PathWidth/2)
}
