package sessionmgr

import (
	"context"

	"github.com/devaiflow/daf/internal/safety"
)

// Delete removes a Session's on-disk directory and index entry permanently.
func (m *Manager) Delete(ctx context.Context, nameOrKey string) error {
	if err := m.checkSafety(safety.OpDelete); err != nil {
		return err
	}
	return m.Store.WithLock(ctx, func() error {
		sess, err := m.resolveSession(ctx, nameOrKey)
		if err != nil {
			return err
		}
		return m.Store.Delete(sess.Name)
	})
}
