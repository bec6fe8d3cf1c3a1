package sessionmgr

import (
	"context"

	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
)

// AddNote appends a local note to a Session and, on request, best-effort
// pushes it to the bound tracker issue as a comment. The local note is
// authoritative and is written regardless of whether the tracker push
// succeeds.
func (m *Manager) AddNote(ctx context.Context, name, text string, pushToTracker bool, author string) (*store.Session, error) {
	if err := m.checkSafety(safety.OpNoteAdd); err != nil {
		return nil, err
	}

	var sess *store.Session
	var pushErr error
	err := m.Store.WithLock(ctx, func() error {
		resolved, err := m.Store.Get(name)
		if err != nil {
			return err
		}
		sess = resolved

		note := store.Note{
			Timestamp: m.now(),
			Author:    author,
			Text:      text,
		}

		if pushToTracker && sess.IssueKey != "" && m.Tracker != nil {
			if err := m.Tracker.AddComment(ctx, sess.IssueKey, text, nil); err != nil {
				pushErr = err
			} else {
				note.PushedToTracker = true
			}
		}

		sess.Notes = append(sess.Notes, note)
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
	if err != nil {
		return nil, err
	}
	if pushErr != nil {
		return sess, Warning{Step: "push note to tracker", Err: pushErr}
	}
	return sess, nil
}
