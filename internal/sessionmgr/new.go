package sessionmgr

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/gitutil"
	"github.com/devaiflow/daf/internal/paths"
	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/timetracker"
	"github.com/devaiflow/daf/internal/validation"
)

// NewParams is the input to New.
type NewParams struct {
	Name         string // inferred from WorkDir's base name + a numeric suffix if empty
	Goal         string // required
	WorkDir      string // required, must exist on disk
	Branch       string // optional; no branch work if empty
	Template     string
	Workspace    string
	AgentName    agent.Name
	InitialPrompt string // the already-assembled prompt.Assemble() text
	User         string // for the opening WorkSession's user field
}

// New creates a Session with one Conversation for WorkDir, launches the
// configured agent, and starts a work interval. The returned
// *agent.ProcessHandle is still running; the caller awaits it (typically
// racing it against capture.Wait) and finalizes the bound agent session id
// via BindAgentSession once Capture resolves it.
func (m *Manager) New(ctx context.Context, p NewParams) (*store.Session, *agent.ProcessHandle, error) {
	if err := m.checkSafety(safety.OpNew); err != nil {
		return nil, nil, err
	}
	if p.Goal == "" {
		return nil, nil, fmt.Errorf("goal is required")
	}
	if p.WorkDir == "" {
		return nil, nil, fmt.Errorf("work_dir is required")
	}
	if _, err := os.Stat(p.WorkDir); err != nil {
		return nil, nil, &ErrInvalidPath{Path: p.WorkDir}
	}

	var sess *store.Session
	err := m.Store.WithLock(ctx, func() error {
		name := p.Name
		if name == "" {
			var genErr error
			name, genErr = m.inferSessionName(p.WorkDir)
			if genErr != nil {
				return genErr
			}
		}
		if err := validation.ValidateSessionName(name); err != nil {
			return err
		}
		if _, err := m.Store.Get(name); err == nil {
			return &ErrNameConflict{Name: name}
		}

		branch, err := m.resolveBranch(p.Branch)
		if err != nil {
			return err
		}

		now := m.now()
		conv := &store.Conversation{
			Repo:    paths.RepoRootOr(p.WorkDir),
			RelPath: p.WorkDir,
			Active: &store.ConversationContext{
				ProjectPath:  p.WorkDir,
				Branch:       branch,
				CreatedAt:    now,
				LastActiveAt: now,
			},
		}

		sess = &store.Session{
			Name:                   name,
			Goal:                   p.Goal,
			Status:                 store.StatusCreated,
			Type:                   store.TypeDevelopment,
			CreatedAt:              now,
			LastActiveAt:           now,
			Conversations:          map[string]*store.Conversation{p.WorkDir: conv},
			ActiveWorkingDirectory: p.WorkDir,
			Workspace:              p.Workspace,
			Template:               p.Template,
			TimeTrackingState:      store.TimeTrackingPaused,
		}

		if err := timetracker.Start(sess, p.User); err != nil {
			return err
		}
		sess.Status = store.StatusInProgress

		return m.Store.Save(sess)
	})
	if err != nil {
		return nil, nil, err
	}

	ag, err := m.Agents(string(p.AgentName))
	if err != nil {
		return sess, nil, err
	}
	handle, err := ag.Launch(ctx, p.WorkDir, p.InitialPrompt, nil)
	if err != nil {
		return sess, nil, fmt.Errorf("launching agent: %w", err)
	}
	return sess, handle, nil
}

// resolveBranch handles the four-option conflict menu when branch already
// exists locally; returns the branch name actually in effect (possibly
// renamed/suffixed), or "" when branch is "".
func (m *Manager) resolveBranch(branch string) (string, error) {
	if branch == "" {
		return "", nil
	}
	exists, err := m.Git.BranchExistsLocally(branch)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := m.Git.CreateBranch(branch); err != nil {
			return "", err
		}
		return branch, nil
	}

	choice, renamed, err := m.Prompt.ResolveBranchConflict(branch)
	if err != nil {
		return "", err
	}
	if choice == gitutil.ChoiceSkip {
		return "", &ErrBranchConflict{Branch: branch}
	}
	return m.Git.ResolveConflict(branch, choice, renamed)
}

// inferSessionName derives a session name from the work directory's base
// name, appending a numeric suffix until the name is free (collision check
// happens again, with the lock held, by the caller).
func (m *Manager) inferSessionName(workDir string) (string, error) {
	base := sanitizeForName(lastPathComponent(workDir))
	if base == "" {
		base = "session"
	}
	index, err := m.Store.LoadIndex()
	if err != nil {
		return "", err
	}
	if _, taken := index[base]; !taken {
		return base, nil
	}
	for n := 2; n < 1000; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := index[candidate]; !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free name derived from %q", workDir)
}

func lastPathComponent(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}

func sanitizeForName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

// BindAgentSession records the agent-assigned conversation id Capture
// resolved, under a fresh locked step, per the "remote/async-derived
// fields are written in a second locked step" concurrency rule.
func (m *Manager) BindAgentSession(ctx context.Context, sessionName, workDir, agentSessionID string) error {
	return m.Store.WithLock(ctx, func() error {
		sess, err := m.Store.Get(sessionName)
		if err != nil {
			return err
		}
		conv, ok := sess.Conversations[workDir]
		if !ok || conv.Active == nil {
			return fmt.Errorf("no active conversation for %q in session %q", workDir, sessionName)
		}
		existingIDs, err := m.Store.AgentSessionIDs(ctx)
		if err != nil {
			return err
		}
		if existingIDs[agentSessionID] {
			return fmt.Errorf("agent session id %q is already bound to another conversation", agentSessionID)
		}
		conv.Active.AgentSessionID = agentSessionID
		sess.LastActiveAt = m.now()
		return m.Store.Save(sess)
	})
}
