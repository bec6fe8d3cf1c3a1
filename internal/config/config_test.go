package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLayerFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestLoad_AppliesDefaultsWithNoLayers(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tracker.AuthType != "auto" {
		t.Errorf("Tracker.AuthType = %q, want auto", cfg.Tracker.AuthType)
	}
	if len(cfg.Tracker.ClosedStates) != 5 {
		t.Errorf("ClosedStates = %v, want the 5-element default set", cfg.Tracker.ClosedStates)
	}
	if cfg.SummaryMode != SummaryLocal {
		t.Errorf("SummaryMode = %q, want local", cfg.SummaryMode)
	}
}

func TestLoad_UserLayerOverridesDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeLayerFile(t, filepath.Join(root, "config.json"), `{"agentChoice":"codex","summaryMode":"ai"}`)

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AgentChoice != "codex" {
		t.Errorf("AgentChoice = %q, want codex", cfg.AgentChoice)
	}
	if cfg.SummaryMode != SummaryAI {
		t.Errorf("SummaryMode = %q, want ai", cfg.SummaryMode)
	}
}

func TestLoad_EnterpriseOutranksEveryNarrowerLayer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeLayerFile(t, filepath.Join(root, "config.json"), `{"agentChoice":"codex"}`)
	writeLayerFile(t, filepath.Join(root, "team.json"), `{"agentChoice":"aider"}`)
	writeLayerFile(t, filepath.Join(root, "organization.json"), `{"agentChoice":"claude-code"}`)
	writeLayerFile(t, filepath.Join(root, "enterprise.json"), `{"agentChoice":"locked-agent"}`)

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AgentChoice != "locked-agent" {
		t.Errorf("AgentChoice = %q, want locked-agent (enterprise wins)", cfg.AgentChoice)
	}
}

func TestLoad_SessionLocalLosesToUserLayer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeLayerFile(t, filepath.Join(root, "config.json"), `{"workstream":"from-user"}`)
	sessionLocal := filepath.Join(root, "session.json")
	writeLayerFile(t, sessionLocal, `{"workstream":"from-session"}`)

	cfg, err := Load(root, sessionLocal)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workstream != "from-user" {
		t.Errorf("Workstream = %q, want from-user (user outranks session-local)", cfg.Workstream)
	}
}

func TestLoad_MissingLayerFilesAreNotErrors(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nested")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if _, err := Load(root, filepath.Join(root, "does-not-exist.json")); err != nil {
		t.Fatalf("Load() error = %v, want nil with no layer files present", err)
	}
}

func TestLoad_ClosedStatesOverridableByOrganizationLayer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeLayerFile(t, filepath.Join(root, "organization.json"), `{"tracker":{"closedStates":["shipped"]}}`)

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Tracker.ClosedStates) != 1 || cfg.Tracker.ClosedStates[0] != "shipped" {
		t.Errorf("ClosedStates = %v, want [shipped]", cfg.Tracker.ClosedStates)
	}
}
