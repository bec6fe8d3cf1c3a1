package sessionmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/devaiflow/daf/internal/config"
	"github.com/devaiflow/daf/internal/store"
)

func TestComplete_ClosesWorkIntervalAndMarksComplete(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	workDir := t.TempDir()

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done, warnings, err := mgr.Complete(context.Background(), CompleteParams{NameOrKey: sess.Name})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if done.Status != store.StatusComplete {
		t.Fatalf("status = %q, want complete", done.Status)
	}
	if done.TimeTrackingState == store.TimeTrackingRunning {
		t.Fatal("expected the work interval to be closed")
	}
}

func TestComplete_WrongBranchWithCleanWorktreeFails(t *testing.T) {
	mgr, git, _, _ := newTestManager(t)
	workDir := t.TempDir()

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir, Branch: "feature"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	git.current = "main"
	git.uncommittedChanges = false

	_, _, err = mgr.Complete(context.Background(), CompleteParams{NameOrKey: sess.Name})
	if err == nil {
		t.Fatal("expected a wrong-branch error")
	}
	if _, ok := err.(*ErrWrongBranch); !ok {
		t.Fatalf("err = %T, want *ErrWrongBranch", err)
	}

	reloaded, getErr := mgr.Store.Get(sess.Name)
	if getErr != nil {
		t.Fatalf("reloading: %v", getErr)
	}
	if reloaded.Status == store.StatusComplete {
		t.Fatal("expected the session to remain not-complete after the aborted call")
	}
}

func TestComplete_TransitionFailureWarnsByDefault(t *testing.T) {
	mgr, git, _, _ := newTestManager(t)
	workDir := t.TempDir()

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir, Branch: "feature"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess.IssueKey = "TEST-1"
	if err := mgr.Store.Save(sess); err != nil {
		t.Fatalf("saving issue key: %v", err)
	}
	git.current = "feature"
	// no ticket seeded for TEST-1: GetTicket fails inside transitionOnComplete,
	// exercising the warn-level path without needing a prompt response.

	done, warnings, err := mgr.Complete(context.Background(), CompleteParams{
		NameOrKey:   sess.Name,
		IssueUpdate: true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if warnings[0].Step != "transition issue" {
		t.Fatalf("warning step = %q, want transition issue", warnings[0].Step)
	}
	if done.Status != store.StatusComplete {
		t.Fatal("expected completion to proceed despite the warn-level failure")
	}
}

func TestComplete_TransitionFailureBlocksWhenConfigured(t *testing.T) {
	mgr, git, _, _ := newTestManager(t)
	workDir := t.TempDir()

	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: workDir, Branch: "feature"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sess.IssueKey = "TEST-1"
	if err := mgr.Store.Save(sess); err != nil {
		t.Fatalf("saving issue key: %v", err)
	}
	git.current = "feature"
	mgr.Cfg = &config.Config{}
	mgr.Cfg.Tracker.OnComplete = config.TransitionPolicy{Prompt: true, OnFail: "block"}

	_, _, err = mgr.Complete(context.Background(), CompleteParams{
		NameOrKey:   sess.Name,
		IssueUpdate: true,
	})
	if err == nil {
		t.Fatal("expected the block policy to abort Complete")
	}
	var stepErr *completeStepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("err = %T, want *completeStepError", err)
	}

	reloaded, getErr := mgr.Store.Get(sess.Name)
	if getErr != nil {
		t.Fatalf("reloading: %v", getErr)
	}
	if reloaded.Status == store.StatusComplete {
		t.Fatal("expected no persisted status change on a blocked step")
	}
}

func TestComplete_SkipsGitStepsForTicketCreationSessions(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	sess, _, err := mgr.JiraNew(context.Background(), JiraNewParams{Kind: "bug", Goal: "report a thing"})
	if err != nil {
		t.Fatalf("JiraNew: %v", err)
	}

	done, warnings, err := mgr.Complete(context.Background(), CompleteParams{NameOrKey: sess.Name})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if done.Status != store.StatusComplete {
		t.Fatalf("status = %q, want complete", done.Status)
	}
}
