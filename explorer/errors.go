package explorer

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-maze/maze"
)

var (
	// ErrRobotUnavailable is returned when a robot call keeps failing after the
	// configured number of retries.
	ErrRobotUnavailable = errors.New("robot unavailable")

	// ErrInvalidConfig is returned for unusable navigator settings.
	ErrInvalidConfig = errors.New("invalid navigator config")
)

// BoundsError reports an attempt to move or teleport outside of the grid.
// Wall based reasoning never produces it, so callers should treat it as a bug.
type BoundsError struct {
	From   maze.CellPosition
	Target maze.CellPosition
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("move from %s to %s leaves the grid", e.From, e.Target)
}
