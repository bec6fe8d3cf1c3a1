// Package timetracker maintains a Session's WorkSession intervals: start,
// pause, resume, stop, and the running total. All mutations are applied to
// an in-memory *store.Session; the caller is responsible for persisting
// through Store so the change lands atomically with everything else
// SessionManager touches in the same operation.
package timetracker

import (
	"errors"
	"time"

	"github.com/devaiflow/daf/internal/store"
)

// ErrAlreadyRunning is returned by Start when the session already has an
// open interval.
var ErrAlreadyRunning = errors.New("timetracker: session already has a running interval")

// ErrNotRunning is returned by Pause/Stop when there is no open interval to
// close.
var ErrNotRunning = errors.New("timetracker: session has no running interval")

// Start opens a new WorkSession interval for user, failing if one is
// already open.
func Start(sess *store.Session, user string) error {
	if sess.TimeTrackingState == store.TimeTrackingRunning {
		return ErrAlreadyRunning
	}
	sess.WorkSessions = append(sess.WorkSessions, store.WorkSession{
		Start: time.Now(),
		User:  user,
	})
	sess.TimeTrackingState = store.TimeTrackingRunning
	return nil
}

// Pause closes the currently-open interval, if any, leaving the state
// paused. Stop and Pause differ only in the caller's intent; both close
// the open interval the same way.
func Pause(sess *store.Session) error {
	return closeOpenInterval(sess, store.TimeTrackingPaused)
}

// Stop closes the currently-open interval and leaves the state paused,
// for the caller to separately mark the session complete if desired.
func Stop(sess *store.Session) error {
	return closeOpenInterval(sess, store.TimeTrackingPaused)
}

// Resume reopens tracking after a Pause, equivalent to Start but phrased
// for the command layer's resume_time operation.
func Resume(sess *store.Session, user string) error {
	return Start(sess, user)
}

func closeOpenInterval(sess *store.Session, next store.TimeTrackingState) error {
	idx := openIntervalIndex(sess)
	if idx < 0 {
		return ErrNotRunning
	}
	now := time.Now()
	sess.WorkSessions[idx].End = &now
	sess.TimeTrackingState = next
	return nil
}

func openIntervalIndex(sess *store.Session) int {
	for i := range sess.WorkSessions {
		if sess.WorkSessions[i].End == nil {
			return i
		}
	}
	return -1
}

// Elapsed sums every closed interval's Duration, plus the in-progress
// duration of the open interval if the session is currently running.
func Elapsed(sess *store.Session) time.Duration {
	var total time.Duration
	for _, ws := range sess.WorkSessions {
		total += ws.Duration()
	}
	return total
}
