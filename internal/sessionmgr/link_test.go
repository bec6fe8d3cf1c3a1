package sessionmgr

import (
	"context"
	"testing"

	"github.com/devaiflow/daf/internal/tracker"
)

func seedTicket(t *testing.T, mgr *Manager, key string) {
	t.Helper()
	trk := mgr.Tracker.(*tracker.MockClient)
	trk.Seed(&tracker.TicketDetail{Ticket: tracker.Ticket{Key: key, Summary: "s", Status: "Open"}})
}

func TestLink_BindsIssueKey(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedTicket(t, mgr, "TEST-1")

	linked, err := mgr.Link(context.Background(), sess.Name, "TEST-1", false)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if linked.IssueKey != "TEST-1" {
		t.Fatalf("IssueKey = %q, want TEST-1", linked.IssueKey)
	}
}

func TestLink_DeclinedReplaceReturnsErrDeclined(t *testing.T) {
	mgr, _, prompt, _ := newTestManager(t)
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedTicket(t, mgr, "TEST-1")
	seedTicket(t, mgr, "TEST-2")

	if _, err := mgr.Link(context.Background(), sess.Name, "TEST-1", false); err != nil {
		t.Fatalf("first Link: %v", err)
	}

	prompt.confirmResult = false
	_, err = mgr.Link(context.Background(), sess.Name, "TEST-2", false)
	if err == nil {
		t.Fatal("expected a declined error")
	}
	if _, ok := err.(*ErrDeclined); !ok {
		t.Fatalf("err = %T, want *ErrDeclined", err)
	}

	reloaded, getErr := mgr.Store.Get(sess.Name)
	if getErr != nil {
		t.Fatalf("reloading: %v", getErr)
	}
	if reloaded.IssueKey != "TEST-1" {
		t.Fatalf("IssueKey = %q, want unchanged TEST-1", reloaded.IssueKey)
	}
}

func TestLink_ForceSkipsConfirm(t *testing.T) {
	mgr, _, prompt, _ := newTestManager(t)
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedTicket(t, mgr, "TEST-1")
	seedTicket(t, mgr, "TEST-2")

	if _, err := mgr.Link(context.Background(), sess.Name, "TEST-1", false); err != nil {
		t.Fatalf("first Link: %v", err)
	}
	prompt.confirmResult = false // would decline if asked

	linked, err := mgr.Link(context.Background(), sess.Name, "TEST-2", true)
	if err != nil {
		t.Fatalf("forced Link: %v", err)
	}
	if linked.IssueKey != "TEST-2" {
		t.Fatalf("IssueKey = %q, want TEST-2", linked.IssueKey)
	}
}

func TestUnlink_ClearsIssueKey(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedTicket(t, mgr, "TEST-1")
	if _, err := mgr.Link(context.Background(), sess.Name, "TEST-1", false); err != nil {
		t.Fatalf("Link: %v", err)
	}

	unlinked, err := mgr.Unlink(context.Background(), sess.Name, true)
	if err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if unlinked.IssueKey != "" {
		t.Fatalf("IssueKey = %q, want empty", unlinked.IssueKey)
	}
}

func TestUnlink_DeclinedIsANoOpNotAnError(t *testing.T) {
	mgr, _, prompt, _ := newTestManager(t)
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedTicket(t, mgr, "TEST-1")
	if _, err := mgr.Link(context.Background(), sess.Name, "TEST-1", false); err != nil {
		t.Fatalf("Link: %v", err)
	}

	prompt.confirmResult = false
	result, err := mgr.Unlink(context.Background(), sess.Name, false)
	if err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if result.IssueKey != "TEST-1" {
		t.Fatalf("IssueKey = %q, want unchanged TEST-1", result.IssueKey)
	}
}
