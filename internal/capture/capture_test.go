package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devaiflow/daf/internal/agent"
)

// fakeAgent is a minimal agent.Agent whose conversation directory is a
// fixed temp directory, for exercising Wait without a real CLI.
type fakeAgent struct {
	dir      string
	supports bool
}

func (f *fakeAgent) Launch(context.Context, string, string, []string) (*agent.ProcessHandle, error) {
	return nil, nil
}
func (f *fakeAgent) Resume(context.Context, string, string, []string) (*agent.ProcessHandle, error) {
	return nil, nil
}
func (f *fakeAgent) SupportsCapture() bool { return f.supports }
func (f *fakeAgent) ConversationFilePath(_, agentSessionID string) (string, error) {
	return filepath.Join(f.dir, agentSessionID+".jsonl"), nil
}
func (f *fakeAgent) ConversationFilePathEncoding(_ string) string { return "encoded" }
func (f *fakeAgent) Describe() agent.AgentInfo                   { return agent.AgentInfo{} }

func TestWait_ReturnsErrUnsupported(t *testing.T) {
	t.Parallel()

	ag := &fakeAgent{dir: t.TempDir(), supports: false}
	_, err := Wait(context.Background(), ag, "/work/repo", Options{})
	if err != ErrUnsupported {
		t.Fatalf("Wait() error = %v, want ErrUnsupported", err)
	}
}

func TestWait_DetectsNewFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ag := &fakeAgent{dir: dir, supports: true}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "sess-abc.jsonl"), []byte("{}"), 0o600)
	}()

	id, err := Wait(context.Background(), ag, "/work/repo", Options{PollInterval: 20 * time.Millisecond, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if id != "sess-abc" {
		t.Errorf("Wait() = %q, want sess-abc", id)
	}
}

func TestWait_DirectoryCreatedLate(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	dir := filepath.Join(parent, "not-yet-created")
	ag := &fakeAgent{dir: dir, supports: true}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.MkdirAll(dir, 0o755)
		_ = os.WriteFile(filepath.Join(dir, "sess-xyz.jsonl"), []byte("{}"), 0o600)
	}()

	id, err := Wait(context.Background(), ag, "/work/repo", Options{PollInterval: 20 * time.Millisecond, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if id != "sess-xyz" {
		t.Errorf("Wait() = %q, want sess-xyz", id)
	}
}

func TestWait_TimesOutWithNoNewFile(t *testing.T) {
	t.Parallel()

	ag := &fakeAgent{dir: t.TempDir(), supports: true}
	_, err := Wait(context.Background(), ag, "/work/repo", Options{PollInterval: 10 * time.Millisecond, Timeout: 100 * time.Millisecond})
	if err != ErrTimeout {
		t.Fatalf("Wait() error = %v, want ErrTimeout", err)
	}
}

func TestWait_PicksLatestMtimeOnMultipleNewFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ag := &fakeAgent{dir: dir, supports: true}

	go func() {
		time.Sleep(100 * time.Millisecond)
		older := filepath.Join(dir, "older.jsonl")
		newer := filepath.Join(dir, "newer.jsonl")
		_ = os.WriteFile(older, []byte("{}"), 0o600)
		oldTime := time.Now().Add(-time.Minute)
		_ = os.Chtimes(older, oldTime, oldTime)
		_ = os.WriteFile(newer, []byte("{}"), 0o600)
	}()

	id, err := Wait(context.Background(), ag, "/work/repo", Options{PollInterval: 200 * time.Millisecond, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if id != "newer" {
		t.Errorf("Wait() = %q, want newer", id)
	}
}
