package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClaudeCodeAgent_ConversationFilePathEncoding(t *testing.T) {
	t.Parallel()

	a := newClaudeCodeAgent(Config{})
	got := a.ConversationFilePathEncoding("/home/user/my-project")
	if strings.ContainsAny(got, "/") {
		t.Errorf("ConversationFilePathEncoding() = %q, contains a path separator", got)
	}
}

func TestClaudeCodeAgent_ConversationFilePath(t *testing.T) {
	t.Parallel()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}

	a := newClaudeCodeAgent(Config{})
	got, err := a.ConversationFilePath("/home/user/my-project", "sess-123")
	if err != nil {
		t.Fatalf("ConversationFilePath() error = %v", err)
	}

	want := filepath.Join(homeDir, ".claude", "projects", a.ConversationFilePathEncoding("/home/user/my-project"), "sess-123.jsonl")
	if got != want {
		t.Errorf("ConversationFilePath() = %q, want %q", got, want)
	}
}

func TestClaudeCodeAgent_Describe(t *testing.T) {
	t.Parallel()

	a := newClaudeCodeAgent(Config{})
	info := a.Describe()
	if info.Name != NameClaudeCode {
		t.Errorf("Describe().Name = %q, want %q", info.Name, NameClaudeCode)
	}
	if !info.SupportsCapture {
		t.Error("Describe().SupportsCapture = false, want true")
	}
}

func TestNonCaptureAgents_ConversationFilePathIsEmpty(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		agent Agent
	}{
		{"vscode", newVSCodeAgent(Config{})},
		{"cursor", newCursorAgent(Config{})},
		{"windsurf", newWindsurfAgent(Config{})},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if tc.agent.SupportsCapture() {
				t.Errorf("%s SupportsCapture() = true, want false", tc.name)
			}
			path, err := tc.agent.ConversationFilePath("/work/dir", "sess-1")
			if err != nil {
				t.Fatalf("%s ConversationFilePath() error = %v", tc.name, err)
			}
			if path != "" {
				t.Errorf("%s ConversationFilePath() = %q, want empty", tc.name, path)
			}
		})
	}
}
