//go:build windows

package store

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Acquire blocks until the advisory lock is held, or ctx is done. Windows
// has no portable flock equivalent wired into this build, so exclusivity
// relies entirely on the sentinel file's atomic O_EXCL creation; a lock
// whose sentinel is older than staleLockThreshold is broken rather than
// blocking on it forever.
func (l *Lock) Acquire(ctx context.Context) error {
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err == nil {
			if err := l.writeSentinel(f); err != nil {
				_ = f.Close()
				_ = os.Remove(l.path)
				return fmt.Errorf("writing lock sentinel: %w", err)
			}
			l.file = f
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("opening lock file: %w", err)
		}

		if l.isStale() {
			_ = os.Remove(l.path)
			continue
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("acquiring lock %s: %w", l.path, ctx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func releaseOSLock(*os.File) {}
