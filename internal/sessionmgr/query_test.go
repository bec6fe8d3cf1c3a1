package sessionmgr

import (
	"context"
	"testing"
	"time"

	"github.com/devaiflow/daf/internal/store"
)

func TestList_ReturnsMostRecentlyActiveFirst(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	first, _, err := mgr.New(context.Background(), NewParams{Goal: "g1", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New first: %v", err)
	}
	second, _, err := mgr.New(context.Background(), NewParams{Goal: "g2", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	second.LastActiveAt = first.LastActiveAt.Add(time.Hour)
	if err := mgr.Store.Save(second); err != nil {
		t.Fatalf("saving second: %v", err)
	}

	all, err := mgr.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].Name != second.Name {
		t.Fatalf("all[0] = %q, want most-recent %q", all[0].Name, second.Name)
	}
}

func TestStatus_ReturnsAccumulatedDuration(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	status, elapsed, err := mgr.Status(context.Background(), sess.Name)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != store.StatusInProgress {
		t.Fatalf("status = %q, want in_progress", status)
	}
	if elapsed < 0 {
		t.Fatalf("elapsed = %v, want >= 0", elapsed)
	}
}

func TestActive_FiltersToRunningSessions(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	running, _, err := mgr.New(context.Background(), NewParams{Goal: "g1", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New running: %v", err)
	}
	paused, _, err := mgr.New(context.Background(), NewParams{Goal: "g2", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New paused: %v", err)
	}
	if _, err := mgr.Pause(context.Background(), paused.Name); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	active, err := mgr.Active(context.Background())
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 1 || active[0].Name != running.Name {
		t.Fatalf("active = %v, want only %q", active, running.Name)
	}
}

func TestInfo_ResolvesByIssueKey(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	sess, _, err := mgr.New(context.Background(), NewParams{Goal: "g", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seedTicket(t, mgr, "TEST-7")
	if _, err := mgr.Link(context.Background(), sess.Name, "TEST-7", false); err != nil {
		t.Fatalf("Link: %v", err)
	}

	found, err := mgr.Info(context.Background(), "TEST-7")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if found.Name != sess.Name {
		t.Fatalf("found.Name = %q, want %q", found.Name, sess.Name)
	}
}
