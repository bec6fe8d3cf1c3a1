// Package store persists Sessions and their Conversations as JSON documents
// under the daf root directory, with advisory locking and schema migration.
package store

import (
	"fmt"
	"time"

	"github.com/devaiflow/daf/internal/validation"
)

// SessionStatus is a Session's position in its lifecycle state machine.
type SessionStatus string

const (
	StatusCreated    SessionStatus = "created"
	StatusInProgress SessionStatus = "in_progress"
	StatusPaused     SessionStatus = "paused"
	StatusComplete   SessionStatus = "complete"
)

// SessionType distinguishes a development session (tied to a repo checkout)
// from the two conversation-less session kinds.
type SessionType string

const (
	TypeDevelopment    SessionType = "development"
	TypeTicketCreation SessionType = "ticket_creation"
	TypeInvestigation  SessionType = "investigation"
)

// TimeTrackingState tracks whether a Session currently has an open work
// interval.
type TimeTrackingState string

const (
	TimeTrackingRunning TimeTrackingState = "running"
	TimeTrackingPaused  TimeTrackingState = "paused"
)

// Session is the top-level work record: identity, goal, status, its
// conversations keyed by working-directory identifier, work intervals, and
// notes. The Store is the only thing that persists it; SessionManager is
// the only thing that mutates it.
type Session struct {
	SchemaVersion          int                      `json:"schema_version"`
	Name                   string                   `json:"name"`
	IssueKey               string                   `json:"issue_key,omitempty"`
	Goal                   string                   `json:"goal"`
	Status                 SessionStatus            `json:"status"`
	Type                   SessionType              `json:"type"`
	CreatedAt              time.Time                `json:"created_at"`
	LastActiveAt           time.Time                `json:"last_active_at"`
	WorkSessions           []WorkSession            `json:"work_sessions"`
	TimeTrackingState      TimeTrackingState        `json:"time_tracking_state"`
	Conversations          map[string]*Conversation `json:"conversations"`
	ActiveWorkingDirectory string                   `json:"active_working_directory,omitempty"`
	Workspace              string                   `json:"workspace,omitempty"`
	Tags                   []string                 `json:"tags,omitempty"`
	Template               string                   `json:"template,omitempty"`
	Notes                  []Note                   `json:"notes,omitempty"`
}

// Conversation is one repository's subordinate conversation within a
// Session: its currently active context plus an archive of prior ones.
type Conversation struct {
	Active   *ConversationContext   `json:"active"`
	Archived []*ConversationContext `json:"archived,omitempty"`
	Repo     string                 `json:"repo"`
	RelPath  string                 `json:"rel_path"`
	TempDir  string                 `json:"temp_dir,omitempty"`
}

// ConversationContext is the agent-bound state of one conversation, active
// or archived. AgentSessionID is bound once by Capture and never changes
// afterward.
type ConversationContext struct {
	AgentSessionID string    `json:"agent_session_id"`
	ProjectPath    string    `json:"project_path"`
	Branch         string    `json:"branch"`
	BaseBranch     string    `json:"base_branch"`
	RemoteURL      string    `json:"remote_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActiveAt   time.Time `json:"last_active_at"`
	MessageCount   int       `json:"message_count"`
	PRURLs         []string  `json:"pr_urls,omitempty"`
	Archived       bool      `json:"archived"`
	Summary        string    `json:"summary,omitempty"`
	History        []string  `json:"history,omitempty"`
}

// WorkSession is one contiguous interval during which a Session was
// actively worked on. End is nil while the interval is open.
type WorkSession struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
	User  string     `json:"user"`
}

// Duration returns the interval's elapsed time: End-Start when closed, or
// time since Start when still open.
func (w WorkSession) Duration() time.Duration {
	if w.End == nil {
		return time.Since(w.Start)
	}
	return w.End.Sub(w.Start)
}

// Note is an append-only log entry attached to a Session.
type Note struct {
	Timestamp       time.Time `json:"timestamp"`
	Author          string    `json:"author"`
	Text            string    `json:"text"`
	PushedToTracker bool      `json:"pushed_to_tracker"`
}

// Validate checks the per-Session invariants from the data model (all but
// #4 and #7, which are store-wide and checked by Store against every
// persisted Session, not a single document in isolation).
func (s *Session) Validate() error {
	if err := validation.ValidateSessionName(s.Name); err != nil {
		return err
	}

	if len(s.Conversations) == 0 && s.Type == TypeDevelopment {
		return fmt.Errorf("session %q: type %q requires at least one conversation", s.Name, s.Type)
	}

	if s.ActiveWorkingDirectory != "" {
		if _, ok := s.Conversations[s.ActiveWorkingDirectory]; !ok {
			return fmt.Errorf("session %q: active_working_directory %q has no matching conversation", s.Name, s.ActiveWorkingDirectory)
		}
	}

	openIntervals := 0
	for i, ws := range s.WorkSessions {
		if ws.End != nil {
			continue
		}
		openIntervals++
		if s.TimeTrackingState != TimeTrackingRunning {
			return fmt.Errorf("session %q: work session %d is open but time_tracking_state is %q", s.Name, i, s.TimeTrackingState)
		}
	}
	if openIntervals > 1 {
		return fmt.Errorf("session %q: %d open work sessions, want at most 1", s.Name, openIntervals)
	}
	if s.Status == StatusComplete && openIntervals > 0 {
		return fmt.Errorf("session %q: status complete but has an open work session", s.Name)
	}

	for dir, conv := range s.Conversations {
		for _, archived := range conv.Archived {
			if !archived.Archived {
				return fmt.Errorf("session %q: conversation %q has a non-archived context in its archived list", s.Name, dir)
			}
		}
		if conv.Active == nil || conv.Active.Archived {
			return fmt.Errorf("session %q: conversation %q must have exactly one non-archived (active) context", s.Name, dir)
		}
	}

	if s.IssueKey != "" {
		if err := validation.ValidateIssueKey(s.IssueKey); err != nil {
			return fmt.Errorf("session %q: %w", s.Name, err)
		}
	}

	return nil
}
