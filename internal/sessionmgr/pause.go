package sessionmgr

import (
	"context"

	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/timetracker"
)

// Pause closes the Session's open work interval and flips its status to
// paused.
func (m *Manager) Pause(ctx context.Context, nameOrKey string) (*store.Session, error) {
	if err := m.checkSafety(safety.OpPauseTime); err != nil {
		return nil, err
	}
	var sess *store.Session
	err := m.Store.WithLock(ctx, func() error {
		resolved, err := m.resolveSession(ctx, nameOrKey)
		if err != nil {
			return err
		}
		sess = resolved
		if err := timetracker.Pause(sess); err != nil {
			return err
		}
		sess.Status = store.StatusPaused
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
	return sess, err
}

// ResumeTime reopens a work interval on a paused Session without touching
// its agent process or conversation state (unlike Open, which also resumes
// or launches the agent).
func (m *Manager) ResumeTime(ctx context.Context, nameOrKey, user string) (*store.Session, error) {
	if err := m.checkSafety(safety.OpResumeTime); err != nil {
		return nil, err
	}
	var sess *store.Session
	err := m.Store.WithLock(ctx, func() error {
		resolved, err := m.resolveSession(ctx, nameOrKey)
		if err != nil {
			return err
		}
		sess = resolved
		if err := timetracker.Resume(sess, user); err != nil {
			return err
		}
		sess.Status = store.StatusInProgress
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
	return sess, err
}
