/*
Package maze provides tools for creating and querying rectangular perfect mazes.

It defines the `Grid` structure, composed of `Cell` objects that carry four
wall flags, the generation-time visited flag and an obstacle flag.

The package includes random maze generation with Prim's algorithm, breadth
first shortest paths over any wall map, obstacle placement that keeps the
entrance-to-exit path clear, a spanning-tree check and ASCII visualization.
*/
package maze

import (
	"fmt"
	"strings"
)

const (
	// MaxDimension is the largest accepted width or height.
	MaxDimension = 200
)

// WallMap is the view of a maze the path finder searches. Both the ground
// truth Grid and a solver's partially discovered map implement it.
type WallMap interface {
	Width() int
	Height() int
	InBound(pos CellPosition) bool
	// IsOpen reports whether a step from pos in direction d is traversable.
	IsOpen(pos CellPosition, d Direction) bool
}

var _ WallMap = &Grid{}

// Grid represents a rectangular maze consisting of cells with walls.
// Walls are only removed during generation; afterwards only obstacle flags change.
type Grid struct {
	width  int       // Width of the maze (number of columns)
	height int       // Height of the maze (number of rows)
	grid   [][]*Cell // 2D grid of cells forming the maze
}

// validateDimensions checks width and height against the accepted range.
func validateDimensions(width, height int) error {
	if width <= 0 {
		return &ConfigError{Field: "width", Reason: fmt.Sprintf("must be positive, got %d", width)}
	}
	if height <= 0 {
		return &ConfigError{Field: "height", Reason: fmt.Sprintf("must be positive, got %d", height)}
	}
	if max(width, height) > MaxDimension {
		return &ConfigError{Field: "dimensions", Reason: fmt.Sprintf("%dx%d exceeds %d", width, height, MaxDimension)}
	}
	return nil
}

// newWalled returns a grid with every wall present and no cell visited.
func newWalled(width, height int) *Grid {
	grid := make([][]*Cell, height)
	for i := range grid {
		grid[i] = make([]*Cell, width)
		for j := range grid[i] {
			grid[i][j] = &Cell{
				NorthWall: true,
				SouthWall: true,
				EastWall:  true,
				WestWall:  true,
			}
		}
	}

	return &Grid{
		width:  width,
		height: height,
		grid:   grid,
	}
}

// Build creates a grid from an explicit description of every cell, e.g. a
// decoded or hand-drawn maze. Walls between neighbours must agree.
func Build(width, height int, cellAt func(pos CellPosition) Cell) (*Grid, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}

	g := newWalled(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			c := cellAt(CellPosition{Row: row, Col: col})
			*g.grid[row][col] = c
		}
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			pos := CellPosition{Row: row, Col: col}
			for _, d := range []Direction{East, South} {
				next := pos.Step(d)
				if !g.InBound(next) {
					continue
				}
				if g.Cell(pos).HasWall(d) != g.Cell(next).HasWall(d.Opposite()) {
					return nil, fmt.Errorf("%w: %s %s", ErrInconsistentWalls, pos, d)
				}
			}
		}
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// InBound reports whether pos lies inside the grid.
func (g *Grid) InBound(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < g.height && pos.Col >= 0 && pos.Col < g.width
}

// Cell returns a copy of the cell at pos. It panics when pos is out of bounds.
func (g *Grid) Cell(pos CellPosition) Cell {
	return *g.grid[pos.Row][pos.Col]
}

// HasObstacle reports whether the cell at pos is blocked by an obstacle.
func (g *Grid) HasObstacle(pos CellPosition) bool {
	return g.InBound(pos) && g.grid[pos.Row][pos.Col].Obstacle
}

// IsOpen reports whether the wall on the d side of pos is open and leads to
// another cell of the grid. Boundary openings (entrance and exit) lead
// nowhere and are not traversable edges.
func (g *Grid) IsOpen(pos CellPosition, d Direction) bool {
	if !g.InBound(pos) || !g.InBound(pos.Step(d)) {
		return false
	}
	return !g.grid[pos.Row][pos.Col].HasWall(d)
}

// Entrance returns the entrance cell, opened on its north side.
func Entrance() CellPosition {
	return CellPosition{Row: 0, Col: 0}
}

// Exit returns the exit cell of g, opened on its south side.
func Exit(g WallMap) CellPosition {
	return CellPosition{Row: g.Height() - 1, Col: g.Width() - 1}
}

// openWall removes the wall between pos and its neighbour in direction d.
// Walls are always removed in pairs; a boundary side only touches pos.
func (g *Grid) openWall(pos CellPosition, d Direction) {
	g.grid[pos.Row][pos.Col].setWall(d, false)
	next := pos.Step(d)
	if g.InBound(next) {
		g.grid[next.Row][next.Col].setWall(d.Opposite(), false)
	}
}

// OpenEdges counts the open walls between pairs of in-bound cells.
func (g *Grid) OpenEdges() int {
	edges := 0
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			pos := CellPosition{Row: row, Col: col}
			if g.IsOpen(pos, East) {
				edges++
			}
			if g.IsOpen(pos, South) {
				edges++
			}
		}
	}
	return edges
}

// Obstacles returns the positions of all obstacle cells in row-major order.
func (g *Grid) Obstacles() []CellPosition {
	var result []CellPosition
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			if g.grid[row][col].Obstacle {
				result = append(result, CellPosition{Row: row, Col: col})
			}
		}
	}
	return result
}

// String provides a textual representation of the maze.
// Obstacles are drawn as " X ".
func (g *Grid) String() string {
	var output strings.Builder

	// Top boundary
	output.WriteString("+")
	for col := 0; col < g.width; col++ {
		if g.grid[0][col].NorthWall {
			output.WriteString("---+")
		} else {
			output.WriteString("   +")
		}
	}
	output.WriteString("\n")

	for row := 0; row < g.height; row++ {
		// Cell rows
		if g.grid[row][0].WestWall {
			output.WriteString("|")
		} else {
			output.WriteString(" ")
		}
		for col := 0; col < g.width; col++ {
			cell := g.grid[row][col]

			if cell.Obstacle {
				output.WriteString(" X ")
			} else {
				output.WriteString("   ")
			}

			// Add east wall or space
			if cell.EastWall {
				output.WriteString("|")
			} else {
				output.WriteString(" ")
			}
		}
		output.WriteString("\n")

		// Wall rows
		output.WriteString("+")
		for col := 0; col < g.width; col++ {
			// Add south wall or space
			if g.grid[row][col].SouthWall {
				output.WriteString("---+")
			} else {
				output.WriteString("   +")
			}
		}
		output.WriteString("\n")
	}

	return output.String()
}
