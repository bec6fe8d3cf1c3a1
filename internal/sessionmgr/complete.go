package sessionmgr

import (
	"context"
	"fmt"

	"github.com/devaiflow/daf/internal/config"
	"github.com/devaiflow/daf/internal/gitutil"
	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/timetracker"
)

// CompleteParams is the input to Complete.
type CompleteParams struct {
	NameOrKey    string
	Commit       bool
	CommitMsg    string
	PR           bool
	PRTitle      string
	PRBody       string
	IssueUpdate  bool
	IssueComment string
	User         string
}

// completeStepError marks a remote-step failure under on_fail=block: it
// aborts the whole Complete call, so nothing (including the status flip to
// complete) is persisted.
type completeStepError struct {
	Step string
	Err  error
}

func (e *completeStepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}
func (e *completeStepError) Unwrap() error { return e.Err }

// Complete closes out a Session: verifies the working branch, runs the
// configured best-effort git/PR/tracker steps, closes the open work
// interval, and marks the Session complete. Returns accumulated warnings
// from any on_fail=warn step, even on overall success. A failing
// on_fail=block step aborts the whole call with a *completeStepError and
// persists nothing.
func (m *Manager) Complete(ctx context.Context, p CompleteParams) (*store.Session, []Warning, error) {
	if err := m.checkSafety(safety.OpComplete); err != nil {
		return nil, nil, err
	}

	var sess *store.Session
	var warnings []Warning
	err := m.Store.WithLock(ctx, func() error {
		resolved, err := m.resolveSession(ctx, p.NameOrKey)
		if err != nil {
			return err
		}
		sess = resolved

		skipGit := sess.Type == store.TypeTicketCreation || sess.Type == store.TypeInvestigation
		if !skipGit {
			conv := sess.Conversations[sess.ActiveWorkingDirectory]
			if conv != nil && conv.Active != nil && conv.Active.Branch != "" {
				if err := m.verifyBranch(conv.Active.Branch); err != nil {
					return err
				}
				w, err := m.runCompleteSteps(ctx, sess, conv, p)
				warnings = w
				if err != nil {
					return err
				}
			}
		}

		if err := timetracker.Stop(sess); err != nil && err != timetracker.ErrNotRunning {
			return err
		}
		sess.Status = store.StatusComplete
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
	if err != nil {
		return nil, warnings, err
	}
	return sess, warnings, nil
}

// verifyBranch confirms the current git branch equals the session's branch,
// attempting an auto-switch only when the worktree is clean.
func (m *Manager) verifyBranch(want string) error {
	current, err := m.Git.CurrentBranch()
	if err != nil {
		return err
	}
	if current == want {
		return nil
	}
	clean, err := m.Git.HasUncommittedChanges()
	if err != nil {
		return err
	}
	if clean {
		return &ErrWrongBranch{Current: current, Want: want}
	}
	return m.Git.CheckoutBranch(want)
}

// runCompleteSteps performs commit, PR, tracker-comment, and transition
// steps. A step failure is either appended as a Warning
// (on_fail=warn, the default) or returned as a *completeStepError that
// aborts the remaining steps and the whole Complete call (on_fail=block).
func (m *Manager) runCompleteSteps(ctx context.Context, sess *store.Session, conv *store.Conversation, p CompleteParams) ([]Warning, error) {
	var warnings []Warning
	policy := config.TransitionPolicy{Prompt: true, OnFail: "warn"}
	if m.Cfg != nil {
		policy = m.Cfg.Tracker.OnComplete
	}

	if p.Commit {
		author, _ := m.Git.Author()
		if err := m.Git.Commit(p.CommitMsg, author); err != nil {
			w, blockErr := m.reportStep(warnings, "commit", err, policy.OnFail)
			warnings = w
			if blockErr != nil {
				return warnings, blockErr
			}
		}
	}

	if p.PR && gitutil.GHAvailable() {
		if err := m.Git.Push(ctx, conv.Active.Branch); err != nil {
			warnings = append(warnings, Warning{Step: "push", Err: err})
		} else {
			base := conv.Active.BaseBranch
			if base == "" {
				base = "main"
			}
			url, err := m.Git.CreatePullRequest(ctx, base, conv.Active.Branch, p.PRTitle, p.PRBody)
			if err != nil {
				warnings = append(warnings, Warning{Step: "create pull request", Err: err})
			} else {
				conv.Active.PRURLs = append(conv.Active.PRURLs, url)
			}
		}
	}

	if sess.IssueKey != "" && m.Tracker != nil {
		if p.IssueComment != "" {
			if err := m.Tracker.AddComment(ctx, sess.IssueKey, p.IssueComment, nil); err != nil {
				warnings = append(warnings, Warning{Step: "add tracker comment", Err: err})
			}
		}
		if p.IssueUpdate {
			if err := m.transitionOnComplete(ctx, sess.IssueKey, policy); err != nil {
				if _, ok := err.(*ErrNeedsInteractive); ok {
					return warnings, err
				}
				w, blockErr := m.reportStep(warnings, "transition issue", err, policy.OnFail)
				warnings = w
				if blockErr != nil {
					return warnings, blockErr
				}
			}
		}
	}

	return warnings, nil
}

// reportStep records err as a warning, or returns it wrapped as an
// abort-worthy error, depending on onFail ("warn" default, "block").
func (m *Manager) reportStep(warnings []Warning, step string, err error, onFail string) ([]Warning, error) {
	if onFail == "block" {
		return warnings, &completeStepError{Step: step, Err: err}
	}
	return append(warnings, Warning{Step: step, Err: err}), nil
}

func (m *Manager) transitionOnComplete(ctx context.Context, issueKey string, policy config.TransitionPolicy) error {
	ticket, err := m.Tracker.GetTicket(ctx, issueKey)
	if err != nil {
		return err
	}
	if !policy.Prompt {
		if policy.Target == "" {
			return nil
		}
		return m.Tracker.Transition(ctx, issueKey, policy.Target)
	}
	transitions, err := m.Tracker.AvailableTransitions(ctx, issueKey)
	if err != nil || len(transitions) == 0 {
		return err
	}
	target, skip, err := m.Prompt.ChooseTransition(issueKey, ticket.Status, transitions)
	if err != nil {
		return err
	}
	if skip || target == nil {
		return nil
	}
	return m.Tracker.Transition(ctx, issueKey, target.Name)
}
