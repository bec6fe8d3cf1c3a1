package sessionmgr

import (
	"context"
	"testing"

	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/tracker"
)

func newTestManager(t *testing.T) (*Manager, *fakeGitOps, *fakePrompter, *fakeAgent) {
	t.Helper()
	st := store.New(t.TempDir())
	trk := tracker.NewMockClient("TEST")
	git := newFakeGitOps()
	prompt := &fakePrompter{}
	ag := &fakeAgent{supportsCapture: true}

	mgr := New(st, trk, fakeAgentFactory(ag), prompt, nil)
	mgr.Git = git
	return mgr, git, prompt, ag
}

func TestNew_CreatesSessionAndLaunchesAgent(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	workDir := t.TempDir()

	sess, handle, err := mgr.New(context.Background(), NewParams{
		Goal:    "implement widget",
		WorkDir: workDir,
		User:    "alice",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if handle == nil {
		t.Fatal("expected a process handle")
	}
	if sess.Status != store.StatusInProgress {
		t.Fatalf("status = %q, want in_progress", sess.Status)
	}
	if sess.TimeTrackingState != store.TimeTrackingRunning {
		t.Fatalf("time_tracking_state = %q, want running", sess.TimeTrackingState)
	}
	conv, ok := sess.Conversations[workDir]
	if !ok || conv.Active == nil {
		t.Fatal("expected an active conversation for the work directory")
	}

	again, err := mgr.Store.Get(sess.Name)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}
	if again.Name != sess.Name {
		t.Fatalf("persisted session name = %q, want %q", again.Name, sess.Name)
	}
}

func TestNew_InfersNameFromWorkDirAndDedupes(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	workDir := t.TempDir()

	first, _, err := mgr.New(context.Background(), NewParams{Goal: "g1", WorkDir: workDir})
	if err != nil {
		t.Fatalf("first New: %v", err)
	}

	second, _, err := mgr.New(context.Background(), NewParams{Goal: "g2", WorkDir: workDir})
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if first.Name == second.Name {
		t.Fatalf("expected distinct inferred names, got %q twice", first.Name)
	}
}

func TestNew_RejectsDuplicateName(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	workDir1 := t.TempDir()
	workDir2 := t.TempDir()

	if _, _, err := mgr.New(context.Background(), NewParams{Name: "dup", Goal: "g", WorkDir: workDir1}); err != nil {
		t.Fatalf("first New: %v", err)
	}
	_, _, err := mgr.New(context.Background(), NewParams{Name: "dup", Goal: "g", WorkDir: workDir2})
	if err == nil {
		t.Fatal("expected a name-conflict error")
	}
	if _, ok := err.(*ErrNameConflict); !ok {
		t.Fatalf("err = %T, want *ErrNameConflict", err)
	}
}

func TestNew_RejectsMissingWorkDir(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	_, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: "/no/such/path"})
	if err == nil {
		t.Fatal("expected an invalid-path error")
	}
	if _, ok := err.(*ErrInvalidPath); !ok {
		t.Fatalf("err = %T, want *ErrInvalidPath", err)
	}
}

func TestNew_RefusesInsideAgent(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	mgr.Getenv = func(k string) string {
		if k == "INSIDE_AGENT" {
			return "1"
		}
		return ""
	}
	_, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected safety refusal")
	}
}

func TestNew_BranchConflictSkipAborts(t *testing.T) {
	mgr, git, prompt, _ := newTestManager(t)
	git.existingBranches["feature"] = true
	prompt.branchChoice = 3 // gitutil.ChoiceSkip

	_, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir(), Branch: "feature"})
	if err == nil {
		t.Fatal("expected a branch-conflict error")
	}
	if _, ok := err.(*ErrBranchConflict); !ok {
		t.Fatalf("err = %T, want *ErrBranchConflict", err)
	}
}

func TestBindAgentSession_RejectsDuplicateAgentID(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	workDir1 := t.TempDir()
	workDir2 := t.TempDir()

	s1, _, err := mgr.New(context.Background(), NewParams{Goal: "g1", WorkDir: workDir1})
	if err != nil {
		t.Fatalf("New s1: %v", err)
	}
	s2, _, err := mgr.New(context.Background(), NewParams{Goal: "g2", WorkDir: workDir2})
	if err != nil {
		t.Fatalf("New s2: %v", err)
	}

	ctx := context.Background()
	if err := mgr.BindAgentSession(ctx, s1.Name, workDir1, "agent-session-1"); err != nil {
		t.Fatalf("bind s1: %v", err)
	}
	err = mgr.BindAgentSession(ctx, s2.Name, workDir2, "agent-session-1")
	if err == nil {
		t.Fatal("expected a duplicate agent session id error")
	}

	bound, err := mgr.Store.Get(s1.Name)
	if err != nil {
		t.Fatalf("reloading s1: %v", err)
	}
	if bound.Conversations[workDir1].Active.AgentSessionID != "agent-session-1" {
		t.Fatal("expected s1's agent session id to remain bound")
	}
}
