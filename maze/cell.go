package maze

import "fmt"

// Cell represents a single cell in a maze grid.
// It includes properties for walls on each side, the generation-time visited
// flag and the post-generation obstacle flag.
type Cell struct {
	NorthWall bool // NorthWall indicates whether there is a wall on the north side of the cell.
	SouthWall bool // SouthWall indicates whether there is a wall on the south side of the cell.
	EastWall  bool // EastWall indicates whether there is a wall on the east side of the cell.
	WestWall  bool // WestWall indicates whether there is a wall on the west side of the cell.
	Visited   bool // Visited is set by the generator once the cell joined the maze.
	Obstacle  bool // Obstacle marks a blocked cell placed after generation.
}

// HasWall reports whether the side of the cell facing d is walled.
func (c Cell) HasWall(d Direction) bool {
	switch d {
	case North:
		return c.NorthWall
	case South:
		return c.SouthWall
	case East:
		return c.EastWall
	case West:
		return c.WestWall
	default:
		return true
	}
}

// setWall sets the presence of the wall on the side facing d.
func (c *Cell) setWall(d Direction, hasWall bool) {
	switch d {
	case North:
		c.NorthWall = hasWall
	case South:
		c.SouthWall = hasWall
	case East:
		c.EastWall = hasWall
	case West:
		c.WestWall = hasWall
	}
}

// OpenSides returns how many of the four sides are open.
func (c Cell) OpenSides() int {
	open := 0
	for _, d := range Directions {
		if !c.HasWall(d) {
			open++
		}
	}
	return open
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	Row int // Row index of the cell (y)
	Col int // Column index of the cell (x)
}

// Step returns the position one cell away in direction d.
// The result may be outside of any grid.
func (cp CellPosition) Step(d Direction) CellPosition {
	delta := d.Delta()
	return CellPosition{Row: cp.Row + delta.Row, Col: cp.Col + delta.Col}
}

func (cp CellPosition) String() string {
	return fmt.Sprintf("(%d,%d)", cp.Row, cp.Col)
}
