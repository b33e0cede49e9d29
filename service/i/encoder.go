package i

import "github.com/beka-birhanu/vinom-maze/maze"

// MazeEncoder converts ground truth mazes to and from a compact binary form.
type MazeEncoder interface {
	MarshalMaze(g *maze.Grid, seed int64) ([]byte, error)

	// UnmarshalMaze decodes and validates a maze. Corrupt payloads or payloads
	// that do not describe a perfect maze are rejected.
	UnmarshalMaze(data []byte) (*maze.Grid, int64, error)
}
