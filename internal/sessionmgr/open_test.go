package sessionmgr

import (
	"context"
	"testing"
	"time"

	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/tracker"
)

func TestOpen_ResumesWhenAgentSessionBound(t *testing.T) {
	mgr, _, _, ag := newTestManager(t)
	workDir := t.TempDir()

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := mgr.BindAgentSession(context.Background(), sess.Name, workDir, "abc-123"); err != nil {
		t.Fatalf("BindAgentSession: %v", err)
	}

	if _, _, err := mgr.Open(context.Background(), OpenParams{NameOrKey: sess.Name}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ag.launchErr != nil {
		t.Fatal("unexpected launch error configured")
	}
}

func TestOpen_RejectsMissingWorkDir(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	workDir := t.TempDir()
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, _, err = mgr.Open(context.Background(), OpenParams{NameOrKey: sess.Name, WorkDir: "/no/such/dir"})
	if err == nil {
		t.Fatal("expected an invalid-path error")
	}
	if _, ok := err.(*ErrInvalidPath); !ok {
		t.Fatalf("err = %T, want *ErrInvalidPath", err)
	}
}

func TestOpen_ArchivesPriorConversationAndChainsHistory(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	workDir := t.TempDir()

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := mgr.BindAgentSession(context.Background(), sess.Name, workDir, "first-agent-session"); err != nil {
		t.Fatalf("BindAgentSession: %v", err)
	}

	_, _, err = mgr.Open(context.Background(), OpenParams{NameOrKey: sess.Name, NewConversation: true})
	if err != nil {
		t.Fatalf("Open with NewConversation: %v", err)
	}

	reloaded, err := mgr.Store.Get(sess.Name)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}
	conv := reloaded.Conversations[workDir]
	if len(conv.Archived) != 1 {
		t.Fatalf("archived count = %d, want 1", len(conv.Archived))
	}
	if !conv.Archived[0].Archived {
		t.Fatal("expected the archived context's Archived flag set")
	}
	if conv.Archived[0].AgentSessionID != "first-agent-session" {
		t.Fatalf("archived agent session id = %q, want first-agent-session", conv.Archived[0].AgentSessionID)
	}
	if len(conv.Active.History) != 1 || conv.Active.History[0] != "first-agent-session" {
		t.Fatalf("active.History = %v, want [first-agent-session]", conv.Active.History)
	}
}

func TestOpen_ReopensClosedTrackerIssueViaPrompt(t *testing.T) {
	mgr, _, prompt, _ := newTestManager(t)
	workDir := t.TempDir()

	trk := mgr.Tracker.(*tracker.MockClient)
	trk.Seed(&tracker.TicketDetail{
		Ticket: tracker.Ticket{Key: "TEST-1", Summary: "do thing", Status: "done"},
		Transitions: []tracker.Transition{
			{ID: "11", Name: "reopened"},
		},
	})

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess.IssueKey = "TEST-1"
	if err := mgr.Store.Save(sess); err != nil {
		t.Fatalf("saving issue key: %v", err)
	}

	prompt.transitionTarget = &tracker.Transition{ID: "11", Name: "reopened"}

	if _, _, err := mgr.Open(context.Background(), OpenParams{NameOrKey: sess.Name}); err != nil {
		t.Fatalf("Open: %v", err)
	}
}

func TestOpen_PromptsMergeStrategyWhenBehindBase(t *testing.T) {
	mgr, git, prompt, _ := newTestManager(t)
	workDir := t.TempDir()

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir, Branch: "feature"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	conv := sess.Conversations[workDir]
	conv.Active.BaseBranch = "main"
	if err := mgr.Store.Save(sess); err != nil {
		t.Fatalf("saving base branch: %v", err)
	}

	git.behind = true
	prompt.mergeStrategy = "merge"

	if _, _, err := mgr.Open(context.Background(), OpenParams{NameOrKey: sess.Name}); err != nil {
		t.Fatalf("Open: %v", err)
	}
}

func TestConversationChainID_FallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cc := &store.ConversationContext{CreatedAt: now}
	if got := conversationChainID(cc); got != now.Format(time.RFC3339Nano) {
		t.Fatalf("conversationChainID = %q, want %q", got, now.Format(time.RFC3339Nano))
	}
}
