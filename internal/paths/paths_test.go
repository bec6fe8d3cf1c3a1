package paths

import (
	"path/filepath"
	"testing"
)

func TestRoot_EnvOverride(t *testing.T) {
	t.Setenv(RootEnvVar, "/tmp/custom-daf-root")
	ClearRootCache()
	defer ClearRootCache()

	root, err := Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if root != "/tmp/custom-daf-root" {
		t.Errorf("Root() = %q, want /tmp/custom-daf-root", root)
	}
}

func TestRoot_Default(t *testing.T) {
	t.Setenv(RootEnvVar, "")
	ClearRootCache()
	defer ClearRootCache()

	root, err := Root()
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	if filepath.Base(root) != defaultRootDirName {
		t.Errorf("Root() = %q, want suffix %q", root, defaultRootDirName)
	}
}

func TestSessionPaths(t *testing.T) {
	root := "/tmp/daf-root"
	if got := SessionMetadataPath(root, "feat-x"); got != filepath.Join(root, "sessions", "feat-x", "metadata.json") {
		t.Errorf("SessionMetadataPath() = %q", got)
	}
	if got := SessionNotesPath(root, "feat-x"); got != filepath.Join(root, "sessions", "feat-x", "notes.md") {
		t.Errorf("SessionNotesPath() = %q", got)
	}
	if got := BackendConfigPath(root, "jira"); got != filepath.Join(root, "backends", "jira.json") {
		t.Errorf("BackendConfigPath() = %q", got)
	}
}

func TestSanitizePathForAgentStorage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/Users/dev/repo", "-Users-dev-repo"},
		{"/Users/dev/repo-2", "-Users-dev-repo-2"},
		{"C:\\work\\repo", "C--work-repo"},
	}
	for _, tt := range tests {
		if got := SanitizePathForAgentStorage(tt.in); got != tt.want {
			t.Errorf("SanitizePathForAgentStorage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
