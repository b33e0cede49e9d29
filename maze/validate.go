package maze

import (
	"fmt"

	"github.com/spakin/disjoint"
)

// CheckPerfect verifies that g is a spanning tree of its cells: every open
// wall joins two previously disconnected regions and, at the end, a single
// region contains all cells. It also checks that walls agree pairwise and
// that the entrance and exit are open.
func (g *Grid) CheckPerfect() error {
	regions := make([][]*disjoint.Element, g.height)
	for row := range regions {
		regions[row] = make([]*disjoint.Element, g.width)
		for col := range regions[row] {
			regions[row][col] = disjoint.NewElement()
		}
	}

	edges := 0
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			pos := CellPosition{Row: row, Col: col}
			for _, d := range []Direction{East, South} {
				next := pos.Step(d)
				if !g.InBound(next) {
					continue
				}
				open := !g.grid[row][col].HasWall(d)
				if open != !g.grid[next.Row][next.Col].HasWall(d.Opposite()) {
					return fmt.Errorf("%w: %s %s", ErrInconsistentWalls, pos, d)
				}
				if !open {
					continue
				}

				a, b := regions[row][col], regions[next.Row][next.Col]
				if a.Find() == b.Find() {
					return fmt.Errorf("%w: loop closed at %s %s", ErrNotPerfect, pos, d)
				}
				disjoint.Union(a, b)
				edges++
			}
		}
	}

	if want := g.width*g.height - 1; edges != want {
		return fmt.Errorf("%w: %d open edges, want %d", ErrNotPerfect, edges, want)
	}
	if g.grid[0][0].NorthWall {
		return fmt.Errorf("%w: entrance is walled", ErrNotPerfect)
	}
	if exit := Exit(g); g.grid[exit.Row][exit.Col].SouthWall {
		return fmt.Errorf("%w: exit is walled", ErrNotPerfect)
	}
	return nil
}
