package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a blocked writer retries the lock.
const lockRetryDelay = 100 * time.Millisecond

// LockPath returns the path of the writer lock file for a database path.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// LockForWrite takes an exclusive, process-level lock for bulk writes
// (scan saves and bundle imports). The returned function releases it.
// In-memory databases are private to the process and are never locked.
func (d *DB) LockForWrite(ctx context.Context) (func() error, error) {
	if d.path == MemoryPath {
		return func() error { return nil }, nil
	}

	fl := flock.New(LockPath(d.path))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("locking %s: lock not acquired", fl.Path())
	}
	return fl.Unlock, nil
}
