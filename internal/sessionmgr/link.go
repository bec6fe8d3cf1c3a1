package sessionmgr

import (
	"context"

	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
)

// Link binds a Session to a tracker issue key, validating the issue exists
// first. If the Session already has a different issue key bound, it
// prompts to confirm the replace unless force is set.
func (m *Manager) Link(ctx context.Context, name, issueKey string, force bool) (*store.Session, error) {
	if err := m.checkSafety(safety.OpLink); err != nil {
		return nil, err
	}
	if _, err := m.Tracker.GetTicket(ctx, issueKey); err != nil {
		return nil, err
	}

	var sess *store.Session
	err := m.Store.WithLock(ctx, func() error {
		resolved, err := m.Store.Get(name)
		if err != nil {
			return err
		}
		sess = resolved

		if sess.IssueKey != "" && sess.IssueKey != issueKey && !force {
			ok, err := m.Prompt.Confirm("replace existing link to " + sess.IssueKey + " with " + issueKey + "?")
			if err != nil {
				return err
			}
			if !ok {
				return &ErrDeclined{Reason: "link replace"}
			}
		}

		sess.IssueKey = issueKey
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
	return sess, err
}

// Unlink releases a Session's tracker association, prompting to confirm
// unless force is set.
func (m *Manager) Unlink(ctx context.Context, name string, force bool) (*store.Session, error) {
	if err := m.checkSafety(safety.OpUnlink); err != nil {
		return nil, err
	}

	var sess *store.Session
	err := m.Store.WithLock(ctx, func() error {
		resolved, err := m.Store.Get(name)
		if err != nil {
			return err
		}
		sess = resolved

		if sess.IssueKey == "" {
			return nil
		}
		if !force {
			ok, err := m.Prompt.Confirm("unlink from " + sess.IssueKey + "?")
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}

		sess.IssueKey = ""
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
	return sess, err
}
