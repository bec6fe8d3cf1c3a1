package sessionmgr

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/summarize"
	"github.com/devaiflow/daf/internal/timetracker"
)

// OpenParams is the input to Open.
type OpenParams struct {
	NameOrKey       string
	WorkDir         string // defaults to the conversation's existing ProjectPath when empty
	NewConversation bool
	AgentName       agent.Name
	InitialPrompt   string
	User            string
}

// Open resolves a session, optionally archives its active conversation and
// mints a fresh one, checks for a closed tracker state prompting a reopen,
// checks whether the branch is behind its base, then resumes or launches
// the agent and starts a work interval.
func (m *Manager) Open(ctx context.Context, p OpenParams) (*store.Session, *agent.ProcessHandle, error) {
	if err := m.checkSafety(safety.OpOpen); err != nil {
		return nil, nil, err
	}

	var sess *store.Session
	var workDir string
	err := m.Store.WithLock(ctx, func() error {
		resolved, err := m.resolveSession(ctx, p.NameOrKey)
		if err != nil {
			return err
		}
		sess = resolved

		workDir = p.WorkDir
		if workDir == "" {
			workDir = sess.ActiveWorkingDirectory
		}
		if _, err := os.Stat(workDir); err != nil {
			return &ErrInvalidPath{Path: workDir}
		}

		conv, ok := sess.Conversations[workDir]
		if !ok {
			conv = &store.Conversation{RelPath: workDir}
			sess.Conversations[workDir] = conv
		}

		if p.NewConversation && conv.Active != nil {
			prior := conv.Active
			m.archiveConversation(ctx, conv)
			conv.Active = &store.ConversationContext{
				ProjectPath:  workDir,
				Branch:       prior.Branch,
				BaseBranch:   prior.BaseBranch,
				CreatedAt:    m.now(),
				LastActiveAt: m.now(),
				History:      append(append([]string{}, prior.History...), conversationChainID(prior)),
			}
		}

		if err := m.maybeReopenIssue(ctx, sess); err != nil {
			return err
		}
		if err := m.maybeSyncBranch(conv); err != nil {
			return err
		}

		if err := timetracker.Start(sess, p.User); err != nil && err != timetracker.ErrAlreadyRunning {
			return err
		}
		sess.Status = store.StatusInProgress
		sess.ActiveWorkingDirectory = workDir
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
	if err != nil {
		return nil, nil, err
	}

	ag, err := m.Agents(string(p.AgentName))
	if err != nil {
		return sess, nil, err
	}

	conv := sess.Conversations[workDir]
	if conv.Active.AgentSessionID != "" {
		handle, err := ag.Resume(ctx, workDir, conv.Active.AgentSessionID, nil)
		return sess, handle, err
	}
	handle, err := ag.Launch(ctx, workDir, p.InitialPrompt, nil)
	return sess, handle, err
}

// archiveConversation closes out conv.Active: marks it archived, computes a
// summary per the configured SummaryMode if possible, and chains it into
// the conversation's history. Summary failures are swallowed — archiving
// must not block the operation on a best-effort enrichment.
func (m *Manager) archiveConversation(ctx context.Context, conv *store.Conversation) {
	prior := conv.Active
	prior.Archived = true

	if summary := m.summarizeConversation(ctx, prior); summary != "" {
		prior.Summary = summary
	}

	conv.Archived = append(conv.Archived, prior)
}

// conversationChainID identifies an archived conversation context for the
// successor's History list. AgentSessionID is the natural choice since
// it's already required to be unique across the whole store; conversations
// an agent never bound one for (no-capture agents) fall back to their
// creation time.
func conversationChainID(cc *store.ConversationContext) string {
	if cc.AgentSessionID != "" {
		return cc.AgentSessionID
	}
	return cc.CreatedAt.Format(time.RFC3339Nano)
}

func (m *Manager) summarizeConversation(ctx context.Context, cc *store.ConversationContext) string {
	mode := ""
	if m.Cfg != nil {
		mode = string(m.Cfg.SummaryMode)
	}
	if mode == "" || mode == "none" {
		return ""
	}
	ag, err := m.Agents("")
	if err != nil || !ag.SupportsCapture() {
		return ""
	}
	path, err := ag.ConversationFilePath(cc.ProjectPath, cc.AgentSessionID)
	if err != nil || path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var generator summarize.Generator
	switch mode {
	case "ai", "both":
		generator = &summarize.ClaudeGenerator{}
	default:
		generator = summarize.LocalGenerator{}
	}

	summary, err := summarize.GenerateFromTranscript(ctx, data, nil, generator)
	if err != nil && mode == "both" {
		summary, err = summarize.GenerateFromTranscript(ctx, data, nil, summarize.LocalGenerator{})
	}
	if err != nil || summary == nil {
		return ""
	}
	return summary.String()
}

// maybeReopenIssue prompts to transition a bound issue back to in-progress
// when its tracker state is in the configured closed-state set.
func (m *Manager) maybeReopenIssue(ctx context.Context, sess *store.Session) error {
	if sess.IssueKey == "" || m.Tracker == nil {
		return nil
	}
	ticket, err := m.Tracker.GetTicket(ctx, sess.IssueKey)
	if err != nil {
		return nil // tracker errors are warnings, not fatal, at open time
	}
	if !m.isClosedState(ticket.Status) {
		return nil
	}

	transitions, err := m.Tracker.AvailableTransitions(ctx, sess.IssueKey)
	if err != nil || len(transitions) == 0 {
		return nil
	}
	target, skip, err := m.Prompt.ChooseTransition(sess.IssueKey, ticket.Status, transitions)
	if err != nil {
		return err
	}
	if skip || target == nil {
		return nil
	}
	return m.Tracker.Transition(ctx, sess.IssueKey, target.Name)
}

func (m *Manager) isClosedState(status string) bool {
	states := defaultClosedStates()
	if m.Cfg != nil && len(m.Cfg.Tracker.ClosedStates) > 0 {
		states = m.Cfg.Tracker.ClosedStates
	}
	for _, s := range states {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

// defaultClosedStates mirrors internal/config's default so isClosedState
// still works when Cfg is nil (e.g. in narrowly-scoped tests).
func defaultClosedStates() []string {
	return []string{"done", "closed", "resolved", "review", "release_pending"}
}

// maybeSyncBranch offers to merge/rebase when the conversation's branch is
// behind its base branch.
func (m *Manager) maybeSyncBranch(conv *store.Conversation) error {
	if conv.Active == nil || conv.Active.Branch == "" || conv.Active.BaseBranch == "" {
		return nil
	}
	behind, err := m.Git.IsBehind(conv.Active.Branch, conv.Active.BaseBranch)
	if err != nil || !behind {
		return nil
	}
	strategy, err := m.Prompt.ChooseMergeStrategy(conv.Active.Branch, conv.Active.BaseBranch)
	if err != nil {
		return err
	}
	switch strategy {
	case "merge":
		return m.Git.MergeInto(conv.Active.BaseBranch)
	case "rebase":
		return m.Git.RebaseOnto(conv.Active.BaseBranch)
	default:
		return nil
	}
}
