package maze

import (
	"math/rand"
	"time"
)

// Option configures a call to Generate.
type Option func(*generator)

type generator struct {
	rng *rand.Rand
}

// WithSeed makes generation reproducible: the same width, height and seed
// always produce the same walls.
func WithSeed(seed int64) Option {
	return func(g *generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand uses rng as the source of randomness.
func WithRand(rng *rand.Rand) Option {
	return func(g *generator) {
		g.rng = rng
	}
}

// frontier is an insertion-ordered set of positions with O(1) random removal.
// Its order only depends on the sequence of operations, which keeps seeded
// generation deterministic.
type frontier struct {
	items []CellPosition
	index map[CellPosition]int
}

func newFrontier() *frontier {
	return &frontier{index: make(map[CellPosition]int)}
}

func (f *frontier) add(pos CellPosition) {
	if _, seen := f.index[pos]; seen {
		return
	}
	f.index[pos] = len(f.items)
	f.items = append(f.items, pos)
}

func (f *frontier) len() int {
	return len(f.items)
}

// popRandom removes and returns a uniformly chosen member.
func (f *frontier) popRandom(rng *rand.Rand) CellPosition {
	i := rng.Intn(len(f.items))
	picked := f.items[i]

	last := len(f.items) - 1
	f.items[i] = f.items[last]
	f.index[f.items[i]] = i
	f.items = f.items[:last]
	delete(f.index, picked)

	return picked
}

// Generate creates a perfect maze of the given dimensions using randomized
// Prim's algorithm. The entrance at (0,0) is opened on its north side and the
// exit at (height-1, width-1) on its south side.
//
// Width and height must each lie in [1, MaxDimension]; anything else is a
// *ConfigError.
func Generate(width, height int, opts ...Option) (*Grid, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}

	gen := &generator{}
	for _, opt := range opts {
		opt(gen)
	}
	if gen.rng == nil {
		gen.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := newWalled(width, height)
	gen.carve(g)

	g.openWall(Entrance(), North)
	g.openWall(Exit(g), South)
	return g, nil
}

// carve grows the maze from a random start cell until every cell is visited.
func (gen *generator) carve(g *Grid) {
	start := CellPosition{Row: gen.rng.Intn(g.height), Col: gen.rng.Intn(g.width)}
	g.grid[start.Row][start.Col].Visited = true

	front := newFrontier()
	for _, nbr := range g.neighbors(start, false) {
		front.add(nbr)
	}

	for front.len() > 0 {
		cell := front.popRandom(gen.rng)
		g.grid[cell.Row][cell.Col].Visited = true

		// Connect the new cell to one random cell already in the maze.
		if visited := g.neighborDirections(cell, true); len(visited) > 0 {
			g.openWall(cell, visited[gen.rng.Intn(len(visited))])
		}

		for _, nbr := range g.neighbors(cell, false) {
			front.add(nbr)
		}
	}
}

// neighborDirections returns the directions from pos to in-bound neighbours
// whose visited flag equals visited, in N, E, S, W order.
func (g *Grid) neighborDirections(pos CellPosition, visited bool) []Direction {
	var result []Direction
	for _, d := range Directions {
		next := pos.Step(d)
		if g.InBound(next) && g.grid[next.Row][next.Col].Visited == visited {
			result = append(result, d)
		}
	}
	return result
}

// neighbors returns the in-bound neighbours of pos whose visited flag equals visited.
func (g *Grid) neighbors(pos CellPosition, visited bool) []CellPosition {
	var result []CellPosition
	for _, d := range g.neighborDirections(pos, visited) {
		result = append(result, pos.Step(d))
	}
	return result
}
