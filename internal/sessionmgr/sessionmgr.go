// Package sessionmgr is the composition root for every daf operation:
// new, open, complete, link, unlink, note, sync, jira_new, investigate, plus
// the read-only queries (list, info, status, active) and time-tracking
// writes (pause, resume). It sequences SafetyGuard, Store, IssueTracker,
// Agent, Capture and TimeTracker in a consistent order: consult SafetyGuard,
// acquire the store lock, mutate in memory, persist, then perform
// best-effort remote calls outside the lock.
package sessionmgr

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/config"
	"github.com/devaiflow/daf/internal/gitutil"
	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/tracker"
)

// GitOps is the subset of internal/gitutil Manager depends on, narrowed to
// an interface so tests can substitute a fake rather than requiring a real
// git repository and subprocess.
type GitOps interface {
	CurrentBranch() (string, error)
	BranchExistsLocally(name string) (bool, error)
	CreateBranch(name string) error
	CheckoutBranch(name string) error
	HasUncommittedChanges() (bool, error)
	IsBehind(branch, base string) (bool, error)
	ResolveConflict(name string, choice gitutil.BranchConflictChoice, renamed string) (string, error)
	Commit(message string, author *gitutil.GitAuthor) error
	Author() (*gitutil.GitAuthor, error)
	MergeInto(base string) error
	RebaseOnto(base string) error
	Push(ctx context.Context, branch string) error
	CreatePullRequest(ctx context.Context, base, head, title, body string) (string, error)
}

type realGitOps struct{}

func (realGitOps) CurrentBranch() (string, error)               { return gitutil.GetCurrentBranch() }
func (realGitOps) BranchExistsLocally(name string) (bool, error) { return gitutil.BranchExistsLocally(name) }
func (realGitOps) CreateBranch(name string) error                { return gitutil.CreateBranch(name) }
func (realGitOps) CheckoutBranch(name string) error              { return gitutil.CheckoutBranch(name) }
func (realGitOps) HasUncommittedChanges() (bool, error)          { return gitutil.HasUncommittedChanges() }
func (realGitOps) IsBehind(branch, base string) (bool, error)    { return gitutil.IsBehind(branch, base) }
func (realGitOps) ResolveConflict(name string, choice gitutil.BranchConflictChoice, renamed string) (string, error) {
	return gitutil.ResolveBranchConflict(name, choice, renamed)
}
func (realGitOps) Commit(message string, author *gitutil.GitAuthor) error {
	return gitutil.Commit(message, author)
}
func (realGitOps) Author() (*gitutil.GitAuthor, error) { return gitutil.GetGitAuthor() }
func (realGitOps) MergeInto(base string) error         { return gitutil.MergeInto(base) }
func (realGitOps) RebaseOnto(base string) error        { return gitutil.RebaseOnto(base) }
func (realGitOps) Push(ctx context.Context, branch string) error { return gitutil.Push(ctx, branch) }
func (realGitOps) CreatePullRequest(ctx context.Context, base, head, title, body string) (string, error) {
	return gitutil.CreatePullRequest(ctx, base, head, title, body)
}

// RealGitOps is the GitOps implementation backed by internal/gitutil.
func RealGitOps() GitOps { return realGitOps{} }

// Prompter resolves every interactive decision a mutating operation might
// need: a branch-name conflict, a closed-issue reopen, a behind-base
// merge/rebase, a yes/no confirmation. The cli layer supplies either a
// huh-backed interactive implementation or one that always returns
// ErrNeedsInteractive when --json is active — Manager itself never decides
// whether prompting is allowed.
type Prompter interface {
	Confirm(message string) (bool, error)
	ResolveBranchConflict(branch string) (choice gitutil.BranchConflictChoice, renamed string, err error)
	ChooseTransition(issueKey, currentState string, transitions []tracker.Transition) (target *tracker.Transition, skip bool, err error)
	// ChooseMergeStrategy asks whether a behind-base branch should be
	// merged, rebased, or left alone. merge/rebase/"" (skip) are the only
	// valid returned strategies.
	ChooseMergeStrategy(branch, base string) (strategy string, err error)
}

// AgentFactory constructs an Agent for the configured agent choice.
type AgentFactory func(name string) (agent.Agent, error)

// Warning is a non-fatal failure from a best-effort remote step (tracker
// comment, PR creation, issue transition...), surfaced to the caller for an
// stderr warning rather than aborting the operation that produced it.
type Warning struct {
	Step string
	Err  error
}

func (w Warning) Error() string {
	return w.Step + ": " + w.Err.Error()
}

// Manager wires together every component a daf operation needs.
type Manager struct {
	Store    *store.Store
	Tracker  tracker.IssueTracker
	Agents   AgentFactory
	Git      GitOps
	Prompt   Prompter
	Cfg      *config.Config
	Getenv   func(string) string
	Now      func() time.Time
	JSONMode bool
}

// New constructs a Manager with sensible defaults (os.Getenv, time.Now,
// RealGitOps) that tests override piecemeal.
func New(st *store.Store, trk tracker.IssueTracker, agents AgentFactory, prompter Prompter, cfg *config.Config) *Manager {
	return &Manager{
		Store:  st,
		Tracker: trk,
		Agents: agents,
		Git:    RealGitOps(),
		Prompt: prompter,
		Cfg:    cfg,
		Getenv: os.Getenv,
		Now:    time.Now,
	}
}

func (m *Manager) checkSafety(op safety.Operation) error {
	getenv := m.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return safety.Check(op, getenv)
}

// resolveSession resolves name_or_key to a Session: by name, then by issue
// key, then (when nameOrKey is empty) the most recently active session.
// Must be called with the store lock held by the caller when the result
// will be mutated.
func (m *Manager) resolveSession(ctx context.Context, nameOrKey string) (*store.Session, error) {
	if nameOrKey == "" {
		return m.latestActive(ctx)
	}

	sess, err := m.Store.Get(nameOrKey)
	if err == nil {
		return sess, nil
	}

	all, loadErr := m.Store.LoadAll(ctx)
	if loadErr != nil {
		return nil, loadErr
	}
	for _, s := range all {
		if s.IssueKey == nameOrKey {
			return s, nil
		}
	}
	return nil, &ErrNotFound{NameOrKey: nameOrKey}
}

func (m *Manager) latestActive(ctx context.Context) (*store.Session, error) {
	all, err := m.Store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]*store.Session, 0, len(all))
	for _, s := range all {
		if s.Status != store.StatusComplete {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil, &ErrNotFound{NameOrKey: ""}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastActiveAt.After(candidates[j].LastActiveAt)
	})
	return candidates[0], nil
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
