package maze

import "fmt"

// ShortestPath finds a shortest path from start to goal over the open walls of
// m using breadth-first search. The path includes both endpoints. It returns
// nil when goal is unreachable or either endpoint lies outside of m.
//
// Neighbours are expanded in North, East, South, West order, so equal inputs
// always give the same path. m is never modified.
func ShortestPath(m WallMap, start, goal CellPosition) []CellPosition {
	if !m.InBound(start) || !m.InBound(goal) {
		return nil
	}
	if start == goal {
		return []CellPosition{start}
	}

	cameFrom := map[CellPosition]CellPosition{start: start}
	queue := []CellPosition{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range Directions {
			if !m.IsOpen(current, d) {
				continue
			}
			next := current.Step(d)
			if !m.InBound(next) {
				continue
			}
			if _, seen := cameFrom[next]; seen {
				continue
			}
			cameFrom[next] = current
			if next == goal {
				return reconstructPath(cameFrom, start, goal)
			}
			queue = append(queue, next)
		}
	}

	return nil
}

// reconstructPath walks the BFS tree back from goal to start.
func reconstructPath(cameFrom map[CellPosition]CellPosition, start, goal CellPosition) []CellPosition {
	path := []CellPosition{goal}
	for current := goal; current != start; {
		current = cameFrom[current]
		path = append(path, current)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Moves converts a path of cells into the directions of its steps.
func Moves(path []CellPosition) ([]Direction, error) {
	if len(path) < 2 {
		return nil, nil
	}

	moves := make([]Direction, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		d, ok := Between(path[i-1], path[i])
		if !ok {
			return nil, fmt.Errorf("cells %s and %s are not adjacent", path[i-1], path[i])
		}
		moves = append(moves, d)
	}
	return moves, nil
}
