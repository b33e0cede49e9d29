package runlock

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultExpiry = 8 * time.Second

var _ i.RunLocker = &RedsyncLocker{}

// RedsyncLocker hands out distributed mutexes so only one exploration run
// drives a given maze at a time, across every API instance.
type RedsyncLocker struct {
	locker *redsync.Redsync
	expiry time.Duration
	logger *logrus.Entry
}

// NewRedsyncLocker creates a locker backed by client. A held lock is extended
// every third of expirySeconds, so it only lapses when its holder stops
// running. A nil logger discards output.
func NewRedsyncLocker(client *redis.Client, expirySeconds int, logger *logrus.Entry) *RedsyncLocker {
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = logrus.NewEntry(silent)
	}

	expiry := time.Duration(expirySeconds) * time.Second
	if expiry <= 0 {
		expiry = defaultExpiry
	}

	pool := goredis.NewPool(client)
	return &RedsyncLocker{
		locker: redsync.New(pool),
		expiry: expiry,
		logger: logger,
	}
}

// Lock acquires the mutex for key and keeps it alive until the returned
// function is called.
func (l *RedsyncLocker) Lock(ctx context.Context, key string) (func() error, error) {
	mutex := l.locker.NewMutex(key+":run_lock", redsync.WithExpiry(l.expiry))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("locking %s: %w", key, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(mutex, stop, done)

	var once sync.Once
	return func() error {
		var err error
		once.Do(func() {
			close(stop)
			<-done
			if _, unlockErr := mutex.UnlockContext(context.Background()); unlockErr != nil {
				err = fmt.Errorf("unlocking %s: %w", key, unlockErr)
			}
		})
		return err
	}, nil
}

func (l *RedsyncLocker) keepAlive(mutex *redsync.Mutex, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.expiry / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := mutex.ExtendContext(context.Background()); err != nil {
				l.logger.WithFields(logrus.Fields{"lock": mutex.Name(), "error": err}).Warn("Extending run lock failed")
			}
		}
	}
}
