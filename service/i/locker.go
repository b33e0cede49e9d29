package i

import "context"

// RunLocker grants exclusive access to a maze instance for one exploration run.
type RunLocker interface {
	// Lock blocks until the lock for key is held or ctx is done. The returned
	// function releases it.
	Lock(ctx context.Context, key string) (unlock func() error, err error)
}
