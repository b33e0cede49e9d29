package maze

// Direction is one of the four cardinal directions of the grid.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists every direction in the fixed visitation order used by the
// generator, the path finder and the explorer. Ties are always broken in this
// order.
var Directions = [...]Direction{North, East, South, West}

var (
	deltas = [...]CellPosition{
		North: {Row: -1, Col: 0},
		East:  {Row: 0, Col: 1},
		South: {Row: 1, Col: 0},
		West:  {Row: 0, Col: -1},
	}

	opposites = [...]Direction{
		North: South,
		East:  West,
		South: North,
		West:  East,
	}

	directionNames = [...]string{
		North: "North",
		East:  "East",
		South: "South",
		West:  "West",
	}
)

// Delta returns the row/column offset of a single step in d.
func (d Direction) Delta() CellPosition {
	return deltas[d]
}

// Opposite returns the direction pointing back at the cell d came from.
func (d Direction) Opposite() Direction {
	return opposites[d]
}

// Valid reports whether d is one of the four cardinal directions.
func (d Direction) Valid() bool {
	return d <= West
}

func (d Direction) String() string {
	if !d.Valid() {
		return "Unknown"
	}
	return directionNames[d]
}

// Between returns the direction of the step from a to b, if a and b are
// orthogonally adjacent.
func Between(a, b CellPosition) (Direction, bool) {
	for _, d := range Directions {
		if a.Step(d) == b {
			return d, true
		}
	}
	return 0, false
}
