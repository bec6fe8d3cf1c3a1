package sessionmgr

import (
	"context"
	"sort"
	"time"

	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/timetracker"
)

// List returns every Session, sorted by last-active time, most recent
// first. Read-only; always proceeds regardless of INSIDE_AGENT.
func (m *Manager) List(ctx context.Context) ([]*store.Session, error) {
	all, err := m.Store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastActiveAt.After(all[j].LastActiveAt)
	})
	return all, nil
}

// Info resolves name_or_key and returns the full Session document.
func (m *Manager) Info(ctx context.Context, nameOrKey string) (*store.Session, error) {
	return m.resolveSession(ctx, nameOrKey)
}

// Status returns the Session's status and accumulated work duration.
func (m *Manager) Status(ctx context.Context, nameOrKey string) (store.SessionStatus, time.Duration, error) {
	sess, err := m.resolveSession(ctx, nameOrKey)
	if err != nil {
		return "", 0, err
	}
	return sess.Status, timetracker.Elapsed(sess), nil
}

// Active returns every Session currently in progress (an open work
// interval), most recently active first.
func (m *Manager) Active(ctx context.Context) ([]*store.Session, error) {
	all, err := m.Store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var active []*store.Session
	for _, s := range all {
		if s.TimeTrackingState == store.TimeTrackingRunning {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].LastActiveAt.After(active[j].LastActiveAt)
	})
	return active, nil
}
