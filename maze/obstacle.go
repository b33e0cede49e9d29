package maze

import (
	"fmt"
	"math/rand"

	"github.com/zyedidia/generic/mapset"
)

// Placement describes the outcome of PlaceObstacles.
type Placement struct {
	Cells     mapset.Set[CellPosition] // Cells holding an obstacle
	Requested int                      // Number of obstacles asked for
	Placed    int                      // Number of obstacles actually placed
	Path      []CellPosition           // Canonical entrance-to-exit path kept clear
	Clamped   bool                     // Set when Requested exceeded the free cells
}

// PlaceObstacles marks up to count cells of g as obstacles. Cells on the
// canonical shortest path from the entrance to the exit are never chosen, so the
// maze stays solvable. Walls are not modified, and obstacles from a previous
// placement are cleared first.
//
// When count exceeds the number of free cells it is clamped and
// Placement.Clamped is set; this is not an error.
func PlaceObstacles(g *Grid, count int, rng *rand.Rand) (*Placement, error) {
	if count < 0 {
		return nil, &ConfigError{Field: "obstacle count", Reason: fmt.Sprintf("must not be negative, got %d", count)}
	}

	path := ShortestPath(g, Entrance(), Exit(g))
	if len(path) == 0 {
		return nil, fmt.Errorf("entrance %s to exit %s: %w", Entrance(), Exit(g), ErrUnreachable)
	}

	onPath := mapset.New[CellPosition]()
	for _, pos := range path {
		onPath.Put(pos)
	}

	var candidates []CellPosition
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			g.grid[row][col].Obstacle = false
			pos := CellPosition{Row: row, Col: col}
			if !onPath.Has(pos) {
				candidates = append(candidates, pos)
			}
		}
	}

	placement := &Placement{
		Cells:     mapset.New[CellPosition](),
		Requested: count,
		Path:      path,
	}
	if count > len(candidates) {
		count = len(candidates)
		placement.Clamped = true
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, pos := range candidates[:count] {
		g.grid[pos.Row][pos.Col].Obstacle = true
		placement.Cells.Put(pos)
	}
	placement.Placed = count

	return placement, nil
}
