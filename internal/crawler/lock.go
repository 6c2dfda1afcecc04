package crawler

import (
	"github.com/gofrs/flock"

	"bindery/internal/services"
)

// Lock serializes crawl passes. The ledger file is single-writer, so
// overlapping crawls (cron firing while a long pass is still running) must be
// excluded rather than interleaved.
type Lock struct {
	fl *flock.Flock
}

// NewLock creates a lock around the given lock file path.
func NewLock(path string) *Lock {
	return &Lock{fl: flock.New(path)}
}

// Acquire takes the lock without blocking. A held lock means another crawl is
// in flight; callers should treat that as a clean no-op, not an error state.
func (l *Lock) Acquire() (bool, error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, services.Wrap(services.ErrConfiguration, "crawler", "acquire lock", l.fl.Path(), err)
	}
	return ok, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
