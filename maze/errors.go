package maze

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable is returned when no path connects two cells that were
	// expected to be connected.
	ErrUnreachable = errors.New("no path between cells")

	// ErrNotPerfect is returned when a grid is not a spanning tree of its cells.
	ErrNotPerfect = errors.New("maze is not perfect")

	// ErrInconsistentWalls is returned when two neighbouring cells disagree about
	// the wall between them.
	ErrInconsistentWalls = errors.New("inconsistent walls between neighbours")
)

// ConfigError reports an invalid generation or placement parameter.
// It is returned before any work is done.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
