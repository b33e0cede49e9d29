package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-maze/domain"
	"github.com/google/uuid"
)

// RunRepo defines the interface for exploration run persistence.
type RunRepo interface {
	// Save inserts or replaces a run report.
	Save(ctx context.Context, run *dmn.Run) error

	// ByID retrieves a run by its unique ID.
	// Returns dmn.ErrRunNotFound if no run has that ID.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Run, error)
}
