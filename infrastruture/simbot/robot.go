// Package simbot simulates a differential robot with a single forward range
// sensor inside a ground truth maze.
package simbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/sirupsen/logrus"
)

var (
	// ErrCollision is returned when a pose would put the robot inside an
	// obstacle or outside the maze.
	ErrCollision = errors.New("pose collides with the maze")

	// ErrInjected is returned by calls failed on purpose with FailNextReads
	// or FailNextPoses.
	ErrInjected = errors.New("injected robot fault")
)

var _ i.Robot = &Robot{}

// Config describes the simulated world.
type Config struct {
	CellSize      float64       // Side of a cell in metres
	WallThickness float64       // Walls are centred on cell boundaries
	SensorRange   float64       // Farthest detectable surface
	SettleDelay   time.Duration // Time Step waits for the body to settle
}

// DefaultConfig returns a world of 2 m cells with 10 cm walls.
func DefaultConfig() Config {
	return Config{
		CellSize:      2.0,
		WallThickness: 0.1,
		SensorRange:   5.0,
	}
}

// Robot is an in-memory i.Robot backed by a ground truth grid.
type Robot struct {
	grid       *maze.Grid
	cfg        Config
	logger     *logrus.Entry
	pending    i.Pose
	pose       i.Pose
	history    []i.Pose
	readFaults int
	poseFaults int
	sync.Mutex
}

// New places a robot at the centre of the entrance cell facing East.
func New(g *maze.Grid, cfg Config, logger *logrus.Entry) *Robot {
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = logrus.NewEntry(silent)
	}

	start := i.Pose{X: cfg.CellSize / 2, Y: cfg.CellSize / 2}
	return &Robot{
		grid:    g,
		cfg:     cfg,
		logger:  logger,
		pending: start,
		pose:    start,
	}
}

// FailNextReads makes the next n ReadDistance calls fail.
func (r *Robot) FailNextReads(n int) {
	r.Lock()
	defer r.Unlock()
	r.readFaults = n
}

// FailNextPoses makes the next n SetPose calls fail.
func (r *Robot) FailNextPoses(n int) {
	r.Lock()
	defer r.Unlock()
	r.poseFaults = n
}

// Pose returns the committed pose.
func (r *Robot) Pose() i.Pose {
	r.Lock()
	defer r.Unlock()
	return r.pose
}

// History returns every committed pose in order.
func (r *Robot) History() []i.Pose {
	r.Lock()
	defer r.Unlock()
	return append([]i.Pose(nil), r.history...)
}

// SetPose implements i.Robot.
func (r *Robot) SetPose(ctx context.Context, pose i.Pose) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	if r.poseFaults > 0 {
		r.poseFaults--
		return ErrInjected
	}

	cell := r.cellAt(pose)
	if !r.grid.InBound(cell) || r.grid.HasObstacle(cell) {
		r.logger.WithFields(logrus.Fields{"x": pose.X, "y": pose.Y, "cell": cell}).Warn("Pose rejected")
		return fmt.Errorf("%w: cell %s", ErrCollision, cell)
	}
	r.pending = pose
	return nil
}

// Step implements i.Robot.
func (r *Robot) Step(ctx context.Context) error {
	r.Lock()
	r.pose = r.pending
	r.history = append(r.history, r.pose)
	r.Unlock()

	if r.cfg.SettleDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.cfg.SettleDelay):
		return nil
	}
}

// ReadDistance implements i.Robot. The beam runs along the axis closest to
// the heading and stops at the first wall face or obstacle.
func (r *Robot) ReadDistance(ctx context.Context) (i.Reading, error) {
	if err := ctx.Err(); err != nil {
		return i.Reading{}, err
	}

	r.Lock()
	defer r.Unlock()

	if r.readFaults > 0 {
		r.readFaults--
		return i.Reading{}, ErrInjected
	}

	cell := r.cellAt(r.pose)
	d := direction(r.pose.Yaw)
	boundary := r.boundaryDistance(r.pose, cell, d)

	for boundary-r.cfg.WallThickness/2 <= r.cfg.SensorRange {
		next := cell.Step(d)
		switch {
		case r.grid.Cell(cell).HasWall(d):
			return i.Reading{Detected: true, Distance: boundary - r.cfg.WallThickness/2}, nil
		case !r.grid.InBound(next):
			// Boundary opening, the beam leaves the maze.
			return i.Reading{}, nil
		case r.grid.HasObstacle(next) && boundary <= r.cfg.SensorRange:
			return i.Reading{Detected: true, Distance: boundary}, nil
		}
		cell = next
		boundary += r.cfg.CellSize
	}
	return i.Reading{}, nil
}

func (r *Robot) cellAt(pose i.Pose) maze.CellPosition {
	return maze.CellPosition{
		Row: int(math.Floor(pose.Y / r.cfg.CellSize)),
		Col: int(math.Floor(pose.X / r.cfg.CellSize)),
	}
}

// boundaryDistance is the distance from pose to the d side of cell.
func (r *Robot) boundaryDistance(pose i.Pose, cell maze.CellPosition, d maze.Direction) float64 {
	size := r.cfg.CellSize
	switch d {
	case maze.East:
		return float64(cell.Col+1)*size - pose.X
	case maze.West:
		return pose.X - float64(cell.Col)*size
	case maze.South:
		return float64(cell.Row+1)*size - pose.Y
	default:
		return pose.Y - float64(cell.Row)*size
	}
}

// direction snaps a yaw to the closest grid axis. +Y points South.
func direction(yaw float64) maze.Direction {
	cos, sin := math.Cos(yaw), math.Sin(yaw)
	if math.Abs(cos) >= math.Abs(sin) {
		if cos > 0 {
			return maze.East
		}
		return maze.West
	}
	if sin > 0 {
		return maze.South
	}
	return maze.North
}
