package maze

// Direction identifies one side of a cell.
type Direction int

// Directions in the order the solver prefers them: top, right, bottom, left.
const (
	North Direction = iota
	East
	South
	West
)

var (
	// allDirections is the canonical direction order; generation shuffles a copy of it.
	allDirections = [4]Direction{North, East, South, West}

	deltas = map[Direction]CellPosition{
		North: {Row: -1, Col: 0},
		East:  {Row: 0, Col: 1},
		South: {Row: 1, Col: 0},
		West:  {Row: 0, Col: -1},
	}
)

// Opposite returns the side facing d on the neighboring cell.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Cell represents a single cell in a maze grid.
type Cell struct {
	NorthWall bool `json:"north" msgpack:"north"` // NorthWall indicates whether there is a wall on the top side of the cell.
	EastWall  bool `json:"east" msgpack:"east"`   // EastWall indicates whether there is a wall on the right side of the cell.
	SouthWall bool `json:"south" msgpack:"south"` // SouthWall indicates whether there is a wall on the bottom side of the cell.
	WestWall  bool `json:"west" msgpack:"west"`   // WestWall indicates whether there is a wall on the left side of the cell.

	visited bool
}

// closedCell returns a cell with all four walls standing.
func closedCell() Cell {
	return Cell{NorthWall: true, EastWall: true, SouthWall: true, WestWall: true}
}

// HasWall reports whether the wall on side d is standing.
func (c *Cell) HasWall(d Direction) bool {
	switch d {
	case North:
		return c.NorthWall
	case East:
		return c.EastWall
	case South:
		return c.SouthWall
	case West:
		return c.WestWall
	default:
		return true
	}
}

// setWall sets the presence of the wall on side d.
func (c *Cell) setWall(d Direction, hasWall bool) {
	switch d {
	case North:
		c.NorthWall = hasWall
	case East:
		c.EastWall = hasWall
	case South:
		c.SouthWall = hasWall
	case West:
		c.WestWall = hasWall
	}
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	Row int `json:"row" msgpack:"row"` // Row index of the cell
	Col int `json:"col" msgpack:"col"` // Column index of the cell
}

// Step returns the neighboring position in direction d.
func (p CellPosition) Step(d Direction) CellPosition {
	delta := deltas[d]
	return CellPosition{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}
