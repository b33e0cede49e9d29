// Package explorer solves a maze it cannot see: it builds a DiscoveredMap from
// directional sensor readings and drives a robot through it with depth first
// frontier expansion.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/sirupsen/logrus"
)

const (
	defaultCellSize        = 2.0
	defaultWallThreshold   = 1.1
	defaultSensorRetries   = 2
	defaultActuatorRetries = 2
)

// Outcome is the result of a planned movement.
type Outcome uint8

const (
	Moved       Outcome = iota // The robot reached the requested cell.
	Blocked                    // A live reading found a wall the map did not know about.
	Unreachable                // No known passage leads to the requested cell.
	Interrupted                // Cancellation or a robot failure stopped the move before the robot left its cell.
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Blocked:
		return "blocked"
	case Unreachable:
		return "unreachable"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Config holds the geometry and retry settings of a Navigator.
type Config struct {
	CellSize        float64 // Side of a cell in metres
	WallThreshold   float64 // A reading at or below this distance is a wall
	SensorRetries   int     // Extra attempts for a failed distance reading
	ActuatorRetries int     // Extra attempts for a failed pose change
}

// DefaultConfig returns the settings for 2 m cells.
func DefaultConfig() Config {
	return Config{
		CellSize:        defaultCellSize,
		WallThreshold:   defaultWallThreshold,
		SensorRetries:   defaultSensorRetries,
		ActuatorRetries: defaultActuatorRetries,
	}
}

// Validate checks that the settings describe a usable geometry.
func (c Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("%w: cell size must be positive, got %v", ErrInvalidConfig, c.CellSize)
	}
	if c.WallThreshold <= 0 || c.WallThreshold >= c.CellSize {
		return fmt.Errorf("%w: wall threshold %v must lie in (0, %v)", ErrInvalidConfig, c.WallThreshold, c.CellSize)
	}
	if c.SensorRetries < 0 || c.ActuatorRetries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Stats counts what a Navigator did.
type Stats struct {
	Moves            int // Confirmed one-cell moves
	BlockedMoves     int // Moves refused by a live reading
	Probes           int // Recorded sensor readings
	SensorFailures   int // Failed distance reading calls
	ActuatorFailures int // Failed pose or step calls
	Teleports        int // Wall-ignoring placements
}

// Navigator moves a robot between cells, confirming every step with a live
// sensor reading before it commits the new position.
type Navigator struct {
	robot      i.Robot
	discovered *DiscoveredMap
	cfg        Config
	logger     *logrus.Entry
	position   maze.CellPosition // believed cell of the robot
	stats      Stats
	sync.RWMutex
}

// NewNavigator creates a Navigator that records readings into discovered.
// The believed position starts at the maze entrance; use TeleportTo to place
// the robot physically. A nil logger discards output.
func NewNavigator(robot i.Robot, discovered *DiscoveredMap, cfg Config, logger *logrus.Entry) (*Navigator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = logrus.NewEntry(silent)
	}

	return &Navigator{
		robot:      robot,
		discovered: discovered,
		cfg:        cfg,
		logger:     logger,
		position:   maze.Entrance(),
	}, nil
}

// Position returns the believed cell of the robot.
func (n *Navigator) Position() maze.CellPosition {
	n.RLock()
	defer n.RUnlock()
	return n.position
}

// Map returns the map the navigator records into.
func (n *Navigator) Map() *DiscoveredMap {
	return n.discovered
}

// Stats returns a snapshot of the counters.
func (n *Navigator) Stats() Stats {
	n.RLock()
	defer n.RUnlock()
	return n.stats
}

// Move steps one cell in direction d. The robot first turns to face d and
// takes a reading: a wall refuses the move and is recorded, open space is
// recorded and the robot moves. A target outside the grid is a BoundsError.
func (n *Navigator) Move(ctx context.Context, d maze.Direction) (Outcome, error) {
	n.Lock()
	defer n.Unlock()
	return n.move(ctx, d)
}

// NavigateTo plans a shortest path over the discovered map and follows it
// with Move. It stops at the first refused step and leaves the robot wherever
// it got to, reporting Blocked. Position always names the cell the robot
// physically stands in, also when an error cuts the path short.
func (n *Navigator) NavigateTo(ctx context.Context, target maze.CellPosition) (Outcome, error) {
	n.Lock()
	defer n.Unlock()

	if !n.discovered.InBound(target) {
		return Unreachable, &BoundsError{From: n.position, Target: target}
	}
	if n.position == target {
		return Moved, nil
	}

	path := maze.ShortestPath(n.discovered, n.position, target)
	if len(path) == 0 {
		return Unreachable, nil
	}
	moves, err := maze.Moves(path)
	if err != nil {
		return Unreachable, err
	}

	for _, d := range moves {
		if err := ctx.Err(); err != nil {
			return Interrupted, err
		}
		outcome, err := n.move(ctx, d)
		if err != nil {
			if outcome == Moved && n.position != target {
				outcome = Interrupted
			}
			return outcome, err
		}
		if outcome == Blocked {
			n.logger.WithFields(logrus.Fields{
				"at":     n.position,
				"target": target,
				"dir":    d,
			}).Info("Planned path blocked, map was stale")
			return Blocked, nil
		}
	}
	return Moved, nil
}

// TeleportTo places the robot in target without checking walls and without
// touching the discovered map. It is meant for setting up a run, never for
// exploring.
func (n *Navigator) TeleportTo(ctx context.Context, target maze.CellPosition) error {
	n.Lock()
	defer n.Unlock()

	if !n.discovered.InBound(target) {
		return &BoundsError{From: n.position, Target: target}
	}
	committed, err := n.place(ctx, n.pose(target, maze.East))
	if committed {
		n.position = target
		n.stats.Teleports++
	}
	return err
}

// Sense turns the robot towards d, reads the sensor and records the result.
// It reports whether a wall was detected.
func (n *Navigator) Sense(ctx context.Context, d maze.Direction) (bool, error) {
	n.Lock()
	defer n.Unlock()
	return n.probe(ctx, d)
}

// move returns Moved together with an error when the robot reached the
// target but the commit was cut short.
func (n *Navigator) move(ctx context.Context, d maze.Direction) (Outcome, error) {
	if !d.Valid() {
		return Interrupted, fmt.Errorf("invalid direction %d", d)
	}

	target := n.position.Step(d)
	if !n.discovered.InBound(target) {
		return Interrupted, &BoundsError{From: n.position, Target: target}
	}

	wall, err := n.probe(ctx, d)
	if err != nil {
		return Interrupted, err
	}
	if wall {
		n.stats.BlockedMoves++
		n.logger.WithFields(logrus.Fields{"at": n.position, "dir": d}).Debug("Move refused by sensor")
		return Blocked, nil
	}

	committed, err := n.place(ctx, n.pose(target, d))
	if !committed {
		return Interrupted, err
	}
	n.position = target
	n.stats.Moves++
	return Moved, err
}

// probe faces d from the current cell and records the reading.
func (n *Navigator) probe(ctx context.Context, d maze.Direction) (bool, error) {
	if _, err := n.place(ctx, n.pose(n.position, d)); err != nil {
		return false, err
	}

	reading, err := n.read(ctx)
	if err != nil {
		return false, err
	}

	wall := reading.Detected && reading.Distance <= n.cfg.WallThreshold
	n.discovered.Record(n.position, d, wall)
	n.stats.Probes++
	return wall, nil
}

// place sets the pose and commits it, retrying failed calls. It reports
// whether the robot took the pose. That can be true alongside an error: Step
// commits before it settles, so a Step cut short by ctx has already moved the
// robot.
func (n *Navigator) place(ctx context.Context, pose i.Pose) (bool, error) {
	var err error
	for attempt := 0; attempt <= n.cfg.ActuatorRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if err = n.robot.SetPose(ctx, pose); err == nil {
			if err = n.robot.Step(ctx); err == nil {
				return true, nil
			}
			if isCancellation(err) {
				return true, err
			}
		} else if isCancellation(err) {
			return false, err
		}
		n.stats.ActuatorFailures++
		n.logger.WithFields(logrus.Fields{"attempt": attempt + 1, "error": err}).Warn("Robot pose change failed")
	}
	return false, fmt.Errorf("%w: setting pose: %w", ErrRobotUnavailable, err)
}

// read takes one distance reading, retrying failed calls.
func (n *Navigator) read(ctx context.Context) (i.Reading, error) {
	var err error
	for attempt := 0; attempt <= n.cfg.SensorRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return i.Reading{}, ctxErr
		}
		var reading i.Reading
		if reading, err = n.robot.ReadDistance(ctx); err == nil {
			return reading, nil
		}
		n.stats.SensorFailures++
		n.logger.WithFields(logrus.Fields{"attempt": attempt + 1, "error": err}).Warn("Sensor reading failed")
	}
	return i.Reading{}, fmt.Errorf("%w: reading sensor: %w", ErrRobotUnavailable, err)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// pose returns the robot pose at the centre of cell facing d.
func (n *Navigator) pose(cell maze.CellPosition, d maze.Direction) i.Pose {
	return i.Pose{
		X:   (float64(cell.Col) + 0.5) * n.cfg.CellSize,
		Y:   (float64(cell.Row) + 0.5) * n.cfg.CellSize,
		Yaw: Heading(d),
	}
}

// Heading returns the world yaw of direction d. Rows grow along +Y, so South
// faces +Y and North faces -Y.
func Heading(d maze.Direction) float64 {
	switch d {
	case maze.East:
		return 0
	case maze.South:
		return math.Pi / 2
	case maze.West:
		return math.Pi
	default:
		return -math.Pi / 2
	}
}
