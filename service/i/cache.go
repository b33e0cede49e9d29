package i

import (
	"context"
	"time"
)

// MazeCache stores encoded mazes by key.
type MazeCache interface {
	// Get returns the cached payload and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores payload under key for ttl.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
