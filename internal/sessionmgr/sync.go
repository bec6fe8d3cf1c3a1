package sessionmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/devaiflow/daf/internal/store"
)

// SyncFilters narrows the tracker query sync() runs. Each non-empty field
// becomes one JQL-ish clause; CustomFields are rendered as
// "<field> = '<value>'" clauses.
type SyncFilters struct {
	Sprint       string
	IssueType    string
	ParentKey    string
	CustomFields map[string]string
}

// jql renders filters into the tracker's query-string syntax. Empty filters
// produce an empty query, matching every issue the tracker returns.
func (f SyncFilters) jql() string {
	var clauses []string
	if f.Sprint != "" {
		clauses = append(clauses, fmt.Sprintf("sprint = '%s'", f.Sprint))
	}
	if f.IssueType != "" {
		clauses = append(clauses, fmt.Sprintf("issuetype = '%s'", f.IssueType))
	}
	if f.ParentKey != "" {
		clauses = append(clauses, fmt.Sprintf("parent = '%s'", f.ParentKey))
	}
	keys := make([]string, 0, len(f.CustomFields))
	for k := range f.CustomFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		clauses = append(clauses, fmt.Sprintf("%s = '%s'", k, f.CustomFields[k]))
	}
	return strings.Join(clauses, " AND ")
}

// Sync queries the tracker for issues matching filters and creates or
// updates one Session per issue, keyed by issue key. Idempotent: a second
// call with unchanged tracker data writes nothing, so sessions.json stays
// byte-identical. Tracker-originated fields (goal, issue key) are pulled
// forward on every call; local-only fields (notes, work intervals, branch,
// conversations) are never touched.
// Sync is read-mostly from the agent's point of view and isn't in
// SafetyGuard's INSIDE_AGENT refusal set, so it runs unconditionally.
func (m *Manager) Sync(ctx context.Context, filters SyncFilters) ([]*store.Session, error) {
	tickets, err := m.Tracker.ListTickets(ctx, filters.jql())
	if err != nil {
		return nil, err
	}

	var touched []*store.Session
	err = m.Store.WithLock(ctx, func() error {
		for _, t := range tickets {
			sess, err := m.Store.Get(t.Key)
			if err != nil {
				sess = &store.Session{
					Name:         t.Key,
					IssueKey:     t.Key,
					Goal:         t.Summary,
					Status:       store.StatusCreated,
					Type:         store.TypeInvestigation,
					CreatedAt:    m.now(),
					LastActiveAt: m.now(),
				}
				if err := m.Store.Save(sess); err != nil {
					return err
				}
				touched = append(touched, sess)
				continue
			}

			if sess.Goal == t.Summary && sess.IssueKey == t.Key {
				continue // nothing tracker-originated has changed; skip the write
			}
			sess.Goal = t.Summary
			sess.IssueKey = t.Key
			if err := m.Store.Save(sess); err != nil {
				return err
			}
			touched = append(touched, sess)
		}
		return nil
	})
	return touched, err
}
