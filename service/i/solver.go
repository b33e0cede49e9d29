package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-maze/domain"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/google/uuid"
)

// MazeRequest describes the maze to generate.
type MazeRequest struct {
	Width     int
	Height    int
	Obstacles int
	Seed      *int64 // nil picks a random seed
}

// Scene is a generated maze with its obstacles placed.
type Scene struct {
	Grid      *maze.Grid
	Seed      int64
	Placement *maze.Placement
}

// Solver generates mazes and explores them with a robot.
type Solver interface {
	// Generate builds a maze and places its obstacles.
	Generate(ctx context.Context, req MazeRequest) (*Scene, error)

	// Solve generates a maze and explores it, returning the stored run.
	Solve(ctx context.Context, req MazeRequest) (*dmn.Run, error)

	// Run returns a stored run.
	Run(ctx context.Context, id uuid.UUID) (*dmn.Run, error)
}
