package store

import (
	"strings"
	"testing"
	"time"
)

func validConversation() *Conversation {
	return &Conversation{
		Repo:    "repo",
		RelPath: "repo",
		Active: &ConversationContext{
			AgentSessionID: "abc-123",
			ProjectPath:    "/work/repo",
			Branch:         "feat-x",
			BaseBranch:     "main",
			CreatedAt:      time.Now(),
			LastActiveAt:   time.Now(),
		},
	}
}

func baseSession() *Session {
	return &Session{
		Name:              "feat-x",
		Goal:              "ship the thing",
		Status:            StatusInProgress,
		Type:              TypeDevelopment,
		TimeTrackingState: TimeTrackingPaused,
		Conversations: map[string]*Conversation{
			"/work/repo": validConversation(),
		},
		ActiveWorkingDirectory: "/work/repo",
	}
}

func TestSession_Validate_Valid(t *testing.T) {
	t.Parallel()

	if err := baseSession().Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestSession_Validate_EmptyName(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.Name = ""
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for empty name")
	}
}

func TestSession_Validate_DevelopmentRequiresConversation(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.Conversations = nil
	s.ActiveWorkingDirectory = ""
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for development session with no conversations")
	}
}

func TestSession_Validate_TicketCreationAllowsNoConversations(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.Type = TypeTicketCreation
	s.Conversations = nil
	s.ActiveWorkingDirectory = ""
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil for ticket_creation with no conversations", err)
	}
}

func TestSession_Validate_ActiveWorkingDirectoryMustExist(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.ActiveWorkingDirectory = "/not/a/conversation"
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for dangling active_working_directory")
	}
}

func TestSession_Validate_TooManyOpenWorkSessions(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.TimeTrackingState = TimeTrackingRunning
	s.WorkSessions = []WorkSession{
		{Start: time.Now()},
		{Start: time.Now()},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for two open work sessions")
	}
}

func TestSession_Validate_OpenWorkSessionRequiresRunningState(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.TimeTrackingState = TimeTrackingPaused
	s.WorkSessions = []WorkSession{{Start: time.Now()}}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for open interval while paused")
	}
}

func TestSession_Validate_CompleteCannotHaveOpenInterval(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.Status = StatusComplete
	s.TimeTrackingState = TimeTrackingRunning
	s.WorkSessions = []WorkSession{{Start: time.Now()}}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for complete session with open interval")
	}
}

func TestSession_Validate_ConversationNeedsExactlyOneActiveContext(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.Conversations["/work/repo"].Active = nil
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for conversation with no active context")
	}
}

func TestSession_Validate_ArchivedListRejectsUnarchivedContext(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.Conversations["/work/repo"].Archived = []*ConversationContext{
		{AgentSessionID: "old-1", Archived: false},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want error for non-archived context in archived list")
	}
}

func TestSession_Validate_IssueKeyFormat(t *testing.T) {
	t.Parallel()

	s := baseSession()
	s.IssueKey = "not-a-valid-key"
	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error for malformed issue key")
	}
	if !strings.Contains(err.Error(), "feat-x") {
		t.Errorf("Validate() error = %q, want it to name the session", err.Error())
	}
}

func TestWorkSession_Duration_Closed(t *testing.T) {
	t.Parallel()

	start := time.Now().Add(-2 * time.Hour)
	end := start.Add(90 * time.Minute)
	ws := WorkSession{Start: start, End: &end}

	if got := ws.Duration(); got != 90*time.Minute {
		t.Errorf("Duration() = %v, want %v", got, 90*time.Minute)
	}
}

func TestWorkSession_Duration_Open(t *testing.T) {
	t.Parallel()

	ws := WorkSession{Start: time.Now().Add(-time.Minute)}
	if got := ws.Duration(); got <= 0 {
		t.Errorf("Duration() = %v, want positive for an open interval", got)
	}
}
