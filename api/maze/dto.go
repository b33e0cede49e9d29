// Package mazeapi provides the request and response bodies of the maze routes.
package mazeapi

import (
	dmn "github.com/beka-birhanu/vinom-maze/domain"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
)

// MazeRequest asks for a maze of the given size.
type MazeRequest struct {
	Width     int    `json:"width" binding:"required,min=1,max=200"`
	Height    int    `json:"height" binding:"required,min=1,max=200"`
	Obstacles int    `json:"obstacles" binding:"min=0"`
	Seed      *int64 `json:"seed"`
}

func (r MazeRequest) toService() i.MazeRequest {
	return i.MazeRequest{
		Width:     r.Width,
		Height:    r.Height,
		Obstacles: r.Obstacles,
		Seed:      r.Seed,
	}
}

// MazeResponse describes a generated maze.
type MazeResponse struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Seed      int64      `json:"seed"`
	Layout    string     `json:"layout"`
	Path      []dmn.Cell `json:"path"`
	Obstacles []dmn.Cell `json:"obstacles"`
	Clamped   bool       `json:"clamped"`
}

func newMazeResponse(scene *i.Scene) MazeResponse {
	return MazeResponse{
		Width:     scene.Grid.Width(),
		Height:    scene.Grid.Height(),
		Seed:      scene.Seed,
		Layout:    scene.Grid.String(),
		Path:      cells(scene.Placement.Path),
		Obstacles: cells(scene.Grid.Obstacles()),
		Clamped:   scene.Placement.Clamped,
	}
}

func cells(positions []maze.CellPosition) []dmn.Cell {
	result := make([]dmn.Cell, 0, len(positions))
	for _, p := range positions {
		result = append(result, dmn.Cell{Row: p.Row, Col: p.Col})
	}
	return result
}
