package explorer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/beka-birhanu/vinom-maze/maze"
)

// WallState is what the solver knows about one side of a cell.
type WallState uint8

const (
	WallUnknown WallState = iota // Not sensed yet; treated as a wall when planning.
	WallOpen                     // Confirmed open by a sensor reading.
	WallPresent                  // Confirmed wall by a sensor reading.
)

// CellState tracks how much of a cell the solver has seen.
type CellState uint8

const (
	CellUnknown CellState = iota // Nothing sensed from inside the cell.
	CellSensed                   // At least one side sensed from inside the cell.
	CellVisited                  // The robot stood there and sensed all four sides.
)

var _ maze.WallMap = &DiscoveredMap{}

// DiscoveredMap is the solver's sensor-built belief about the maze layout.
// It never shares storage with the ground truth grid. Sides start unknown and
// only change when a sensor reading is recorded.
type DiscoveredMap struct {
	width  int
	height int
	walls  [][][4]WallState
	states [][]CellState
	sync.RWMutex
}

// NewDiscoveredMap returns an empty map of the given dimensions.
func NewDiscoveredMap(width, height int) *DiscoveredMap {
	walls := make([][][4]WallState, height)
	states := make([][]CellState, height)
	for row := range walls {
		walls[row] = make([][4]WallState, width)
		states[row] = make([]CellState, width)
	}

	return &DiscoveredMap{
		width:  width,
		height: height,
		walls:  walls,
		states: states,
	}
}

// Width implements maze.WallMap.
func (m *DiscoveredMap) Width() int {
	return m.width
}

// Height implements maze.WallMap.
func (m *DiscoveredMap) Height() int {
	return m.height
}

// InBound implements maze.WallMap.
func (m *DiscoveredMap) InBound(pos maze.CellPosition) bool {
	return pos.Row >= 0 && pos.Row < m.height && pos.Col >= 0 && pos.Col < m.width
}

// IsOpen implements maze.WallMap. Only sides confirmed open that lead to
// another cell are traversable.
func (m *DiscoveredMap) IsOpen(pos maze.CellPosition, d maze.Direction) bool {
	if !m.InBound(pos) || !m.InBound(pos.Step(d)) {
		return false
	}
	return m.Wall(pos, d) == WallOpen
}

// Wall returns the known state of the d side of pos.
func (m *DiscoveredMap) Wall(pos maze.CellPosition, d maze.Direction) WallState {
	if !m.InBound(pos) || !d.Valid() {
		return WallUnknown
	}

	m.RLock()
	defer m.RUnlock()
	return m.walls[pos.Row][pos.Col][d]
}

// State returns the exploration state of the cell at pos.
func (m *DiscoveredMap) State(pos maze.CellPosition) CellState {
	if !m.InBound(pos) {
		return CellUnknown
	}

	m.RLock()
	defer m.RUnlock()
	return m.states[pos.Row][pos.Col]
}

// Record stores a sensor reading for the d side of pos. The shared side of
// the neighbouring cell is updated too, keeping both sides consistent.
func (m *DiscoveredMap) Record(pos maze.CellPosition, d maze.Direction, wall bool) {
	if !m.InBound(pos) || !d.Valid() {
		return
	}

	state := WallOpen
	if wall {
		state = WallPresent
	}

	m.Lock()
	defer m.Unlock()

	m.walls[pos.Row][pos.Col][d] = state
	if next := pos.Step(d); m.InBound(next) {
		m.walls[next.Row][next.Col][d.Opposite()] = state
	}
	if m.states[pos.Row][pos.Col] == CellUnknown {
		m.states[pos.Row][pos.Col] = CellSensed
	}
}

// MarkVisited records that the robot stood in pos and sensed every side.
func (m *DiscoveredMap) MarkVisited(pos maze.CellPosition) {
	if !m.InBound(pos) {
		return
	}

	m.Lock()
	defer m.Unlock()
	m.states[pos.Row][pos.Col] = CellVisited
}

// VisitedCount returns the number of visited cells.
func (m *DiscoveredMap) VisitedCount() int {
	m.RLock()
	defer m.RUnlock()

	count := 0
	for _, row := range m.states {
		for _, s := range row {
			if s == CellVisited {
				count++
			}
		}
	}
	return count
}

var arrows = [...]string{
	maze.North: "↑",
	maze.East:  "→",
	maze.South: "↓",
	maze.West:  "←",
}

// Render draws the map as a table with north at the top. Each cell lists its
// confirmed open sides as arrows, "?" marks cells never sensed and "R" marks
// robot when it is inside the map.
func (m *DiscoveredMap) Render(robot maze.CellPosition) string {
	const cellWidth = 6

	var out strings.Builder
	out.WriteString(fmt.Sprintf("%4s |", "Y/X"))
	for col := 0; col < m.width; col++ {
		out.WriteString(fmt.Sprintf(" %-*d|", cellWidth-1, col))
	}
	out.WriteString("\n")

	for row := 0; row < m.height; row++ {
		out.WriteString(fmt.Sprintf("%4d |", row))
		for col := 0; col < m.width; col++ {
			pos := maze.CellPosition{Row: row, Col: col}

			var label strings.Builder
			if pos == robot {
				label.WriteString("R")
			}
			if m.State(pos) == CellUnknown && pos != robot {
				label.WriteString("?")
			}
			for _, d := range maze.Directions {
				if m.Wall(pos, d) == WallOpen {
					label.WriteString(arrows[d])
				}
			}
			out.WriteString(fmt.Sprintf(" %-*s|", cellWidth-1, label.String()))
		}
		out.WriteString("\n")
	}

	return out.String()
}

// String renders the map without a robot marker.
func (m *DiscoveredMap) String() string {
	return m.Render(maze.CellPosition{Row: -1, Col: -1})
}
