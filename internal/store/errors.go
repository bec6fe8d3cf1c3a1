package store

import (
	"errors"
	"fmt"
)

// ErrConflict is returned when the advisory store lock cannot be acquired.
var ErrConflict = errors.New("store: lock contention")

// ErrInvalidSession is returned when a Session fails its invariant checks
// before being persisted.
var ErrInvalidSession = errors.New("store: invalid session")

// ErrNotFound is returned when a named session has no metadata on disk.
var ErrNotFound = errors.New("store: session not found")

// CorruptSessionError reports that a session's metadata.json could not be
// parsed and has been quarantined (renamed alongside the original) rather
// than silently dropped or overwritten.
type CorruptSessionError struct {
	Name           string
	QuarantinePath string
	Cause          error
}

func (e *CorruptSessionError) Error() string {
	return fmt.Sprintf("session %q metadata corrupt, quarantined to %s: %v", e.Name, e.QuarantinePath, e.Cause)
}

func (e *CorruptSessionError) Unwrap() error { return e.Cause }
