//go:build !windows

package store

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"
)

// Acquire blocks until the advisory lock is held, or ctx is done. Breaks
// locks whose sentinel is older than staleLockThreshold rather than
// blocking on them forever.
func (l *Lock) Acquire(ctx context.Context) error {
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return fmt.Errorf("opening lock file: %w", err)
		}

		if flockErr := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); flockErr == nil {
			if err := l.writeSentinel(f); err != nil {
				_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
				_ = f.Close()
				return fmt.Errorf("writing lock sentinel: %w", err)
			}
			l.file = f
			return nil
		}
		_ = f.Close()

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

func releaseOSLock(f *os.File) {
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
