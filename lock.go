package amem

import (
	"fmt"

	"github.com/agenticmemory/amem/pkg/errs"
	"github.com/gofrs/flock"
)

// storeLock is the single-writer guard for a store file: an
// OS-advisory lock on "<path>.lock" (spec.md §5). Using flock rather than
// a hand-rolled PID file means a crashed writer's lock is released by the
// kernel the moment its process exits, so there is nothing stale to
// reclaim.
type storeLock struct {
	fl *flock.Flock
}

// acquireLock takes an exclusive, non-blocking lock on "<path>.lock".
// Returns a KindLocked error if another live process already holds it.
func acquireLock(path string) (*storeLock, error) {
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, err, "acquire lock on %s", path)
	}
	if !ok {
		return nil, errs.New(errs.KindLocked, "store %s is already open by another process", path)
	}
	return &storeLock{fl: fl}, nil
}

// release drops the lock and removes its underlying file handle.
func (l *storeLock) release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("amem: release lock: %w", err)
	}
	return nil
}
