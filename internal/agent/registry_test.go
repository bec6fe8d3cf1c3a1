package agent

import (
	"testing"
)

func TestRegistry_BuiltinAgentsRegistered(t *testing.T) {
	t.Parallel()

	names := List()
	want := []Name{NameClaudeCode, NameCursor, NameVSCode, NameWindsurf}
	for _, n := range want {
		found := false
		for _, got := range names {
			if got == n {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("List() = %v, missing %q", names, n)
		}
	}
}

func TestRegistry_GetUnknownAgent(t *testing.T) {
	t.Parallel()

	_, err := Get(Name("not-a-real-agent"), Config{})
	if err == nil {
		t.Fatal("Get() error = nil, want error for unknown agent")
	}
}

func TestRegistry_GetKnownAgent(t *testing.T) {
	t.Parallel()

	a, err := Get(NameClaudeCode, Config{})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !a.SupportsCapture() {
		t.Error("claude-code agent SupportsCapture() = false, want true")
	}
}

func TestRegistry_RegisterOverridesFactory(t *testing.T) {
	// Does not run t.Parallel(): mutates shared registry state.
	const testName = Name("registry-test-agent")
	calls := 0
	Register(testName, func(Config) Agent {
		calls++
		return nil
	})

	if _, err := Get(testName, Config{}); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}
