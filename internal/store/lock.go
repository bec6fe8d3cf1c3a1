package store

import (
	"encoding/json"
	"os"
	"time"
)

// staleLockThreshold is how old a lock sentinel can get before it's
// considered abandoned (e.g. the process that held it crashed) and broken.
const staleLockThreshold = 60 * time.Second

// Lock is the store's advisory, cross-process exclusive lock on a single
// file path (<root>/.lock). Acquire/Release are implemented per-platform:
// lock_unix.go layers syscall.Flock on top of the sentinel file; on
// platforms without advisory locks (lock_windows.go) the sentinel file's
// atomic creation is the only mechanism.
type Lock struct {
	path string
	file *os.File
}

func newLock(path string) *Lock {
	return &Lock{path: path}
}

// lockSentinel is the JSON content written into the lock file, used to
// detect and break stale locks left behind by a crashed process.
type lockSentinel struct {
	PID      int       `json:"pid"`
	Acquired time.Time `json:"acquired"`
}

func (l *Lock) writeSentinel(f *os.File) error {
	data, err := json.Marshal(lockSentinel{PID: os.Getpid(), Acquired: time.Now()})
	if err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return err
	}
	return nil
}

// isStale reports whether the lock file's sentinel is older than
// staleLockThreshold. An unparsable sentinel falls back to the file's
// mtime so a lock file from an older daf version still gets broken.
func (l *Lock) isStale() bool {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	var s lockSentinel
	if err := json.Unmarshal(data, &s); err != nil {
		info, statErr := os.Stat(l.path)
		return statErr == nil && time.Since(info.ModTime()) > staleLockThreshold
	}
	return time.Since(s.Acquired) > staleLockThreshold
}

// Release releases the lock and removes its sentinel file. Safe to call on
// a Lock that was never acquired.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	releaseOSLock(l.file)
	err := l.file.Close()
	l.file = nil
	_ = os.Remove(l.path)
	return err
}
