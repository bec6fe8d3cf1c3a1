package sessionmgr

import (
	"context"
	"fmt"
	"os"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/prompt"
	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/timetracker"
	"github.com/devaiflow/daf/internal/tracker"
	"github.com/devaiflow/daf/internal/validation"
)

// JiraNewParams is the input to JiraNew.
type JiraNewParams struct {
	Kind      string // issue type to create, e.g. "Story", "Bug"
	ParentKey string
	Goal      string
	AgentName agent.Name
	User      string
}

// JiraNew creates a TypeTicketCreation Session rooted at a fresh temp
// directory, launches the agent with a strict read-only analysis prompt
// (no branch, no commits), and returns the Session and handle so the
// caller can later rename it via RenameSession once the user has created
// the tracker issue through `jira create`.
func (m *Manager) JiraNew(ctx context.Context, p JiraNewParams) (*store.Session, *agent.ProcessHandle, error) {
	if err := m.checkSafety(safety.OpJiraNew); err != nil {
		return nil, nil, err
	}
	if p.Goal == "" {
		return nil, nil, fmt.Errorf("goal is required")
	}

	tempDir, err := os.MkdirTemp("", "daf-jira-new-*")
	if err != nil {
		return nil, nil, err
	}

	name, err := m.inferSessionName(tempDir)
	if err != nil {
		return nil, nil, err
	}

	promptText := prompt.Assemble(prompt.Inputs{
		Goal:            p.Goal,
		SessionType:     store.TypeTicketCreation,
		AgentReadsFiles: true,
	})

	var sess *store.Session
	err = m.Store.WithLock(ctx, func() error {
		now := m.now()
		conv := &store.Conversation{
			RelPath: tempDir,
			TempDir: tempDir,
			Active: &store.ConversationContext{
				ProjectPath:  tempDir,
				CreatedAt:    now,
				LastActiveAt: now,
			},
		}
		sess = &store.Session{
			Name:                   name,
			Goal:                   p.Goal,
			Status:                 store.StatusCreated,
			Type:                   store.TypeTicketCreation,
			CreatedAt:              now,
			LastActiveAt:           now,
			Conversations:          map[string]*store.Conversation{tempDir: conv},
			ActiveWorkingDirectory: tempDir,
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
	handle, err := ag.Launch(ctx, tempDir, promptText, nil)
	return sess, handle, err
}

// RenameSession moves a Session to a new name, typically from a
// placeholder issue-drafting name to the issue key once it's been created.
// Implemented as a Save under the new name followed by a Delete of the old
// one, since the store keys a Session's on-disk location by its Name.
func (m *Manager) RenameSession(ctx context.Context, oldName, newName string) (*store.Session, error) {
	if err := validation.ValidateSessionName(newName); err != nil {
		return nil, err
	}
	var sess *store.Session
	err := m.Store.WithLock(ctx, func() error {
		if _, err := m.Store.Get(newName); err == nil {
			return &ErrNameConflict{Name: newName}
		}
		resolved, err := m.Store.Get(oldName)
		if err != nil {
			return err
		}
		resolved.Name = newName
		resolved.LastActiveAt = m.now()
		if err := m.Store.Save(resolved); err != nil {
			return err
		}
		if err := m.Store.Delete(oldName); err != nil {
			return err
		}
		sess = resolved
		return nil
	})
	return sess, err
}

// JiraCreateParams is the input to JiraCreate.
type JiraCreateParams struct {
	Project string
	Kind    string
	Fields  map[string]any
}

// JiraCreate fetches the project/kind's creatable-field catalog, rejects a
// Fields map that mixes system and custom-field categories, then creates
// the issue through Tracker.
func (m *Manager) JiraCreate(ctx context.Context, p JiraCreateParams) (*tracker.CreatedIssue, error) {
	if err := m.checkSafety(safety.OpJiraCreate); err != nil {
		return nil, err
	}
	catalog, err := m.Tracker.GetCreatableFields(ctx, p.Project, p.Kind)
	if err != nil {
		return nil, err
	}
	if err := tracker.ValidateFieldCategories(catalog, p.Fields); err != nil {
		return nil, err
	}
	return m.Tracker.CreateIssue(ctx, p.Kind, p.Fields)
}

// JiraUpdateParams is the input to JiraUpdate.
type JiraUpdateParams struct {
	Key    string
	Fields map[string]any
}

// JiraUpdate fetches key's editable-field catalog, validates Fields against
// it the same way JiraCreate does, then updates the issue through Tracker.
func (m *Manager) JiraUpdate(ctx context.Context, p JiraUpdateParams) error {
	if err := m.checkSafety(safety.OpJiraUpdate); err != nil {
		return err
	}
	catalog, err := m.Tracker.GetEditableFields(ctx, p.Key)
	if err != nil {
		return err
	}
	if err := tracker.ValidateFieldCategories(catalog, p.Fields); err != nil {
		return err
	}
	return m.Tracker.UpdateIssue(ctx, p.Key, p.Fields)
}

// JiraView returns the detailed view (description, comments, links,
// available transitions) of a tracker issue. Read-only.
func (m *Manager) JiraView(ctx context.Context, key string) (*tracker.TicketDetail, error) {
	if err := m.checkSafety(safety.OpJiraView); err != nil {
		return nil, err
	}
	return m.Tracker.GetTicketDetailed(ctx, key)
}

// InvestigateParams is the input to Investigate.
type InvestigateParams struct {
	Name      string
	Goal      string
	WorkDir   string
	AgentName agent.Name
	User      string
}

// Investigate creates a TypeInvestigation Session: no branch, no commits,
// behaves like development for notes and time tracking, and completes
// without git/PR steps (handled by Complete's skipGit check).
func (m *Manager) Investigate(ctx context.Context, p InvestigateParams) (*store.Session, *agent.ProcessHandle, error) {
	if err := m.checkSafety(safety.OpNew); err != nil {
		return nil, nil, err
	}
	if p.Goal == "" || p.WorkDir == "" {
		return nil, nil, fmt.Errorf("goal and work_dir are required")
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

		now := m.now()
		conv := &store.Conversation{
			RelPath: p.WorkDir,
			Active: &store.ConversationContext{
				ProjectPath:  p.WorkDir,
				CreatedAt:    now,
				LastActiveAt: now,
			},
		}
		sess = &store.Session{
			Name:                   name,
			Goal:                   p.Goal,
			Status:                 store.StatusCreated,
			Type:                   store.TypeInvestigation,
			CreatedAt:              now,
			LastActiveAt:           now,
			Conversations:          map[string]*store.Conversation{p.WorkDir: conv},
			ActiveWorkingDirectory: p.WorkDir,
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
	promptText := prompt.Assemble(prompt.Inputs{Goal: p.Goal, SessionType: store.TypeInvestigation})
	handle, err := ag.Launch(ctx, p.WorkDir, promptText, nil)
	return sess, handle, err
}
