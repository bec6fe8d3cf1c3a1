// Package cli is the thin cobra command layer that wires terminal input to
// internal/sessionmgr. It owns process bootstrapping (root resolution,
// config load, tracker/agent construction), interactive prompting, and
// --json output — nothing else; every operation's actual behavior lives in
// sessionmgr.
package cli

import (
	"fmt"
	"os"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/config"
	"github.com/devaiflow/daf/internal/paths"
	"github.com/devaiflow/daf/internal/sessionmgr"
	"github.com/devaiflow/daf/internal/store"
	"github.com/devaiflow/daf/internal/tracker"
)

// MockModeEnvVar, when set to "1", swaps the real HTTP tracker client for
// an in-memory mock seeded with nothing — useful for demos and for the
// integration tests that exercise the command layer without a live tracker.
const MockModeEnvVar = "DAF_MOCK_MODE"

// app bundles the process-wide state a command needs beyond its own flags:
// the resolved root directory, merged config, and constructed Manager.
type app struct {
	root string
	cfg  *config.Config
	mgr  *sessionmgr.Manager
}

// newApp resolves the root directory, loads config, and constructs a
// Manager wired to the real store, tracker, and agent registry.
// jsonMode selects the Prompter: interactive huh forms, or one that refuses
// with ErrNeedsInteractive so JSON output stays machine-parseable.
func newApp(jsonMode bool) (*app, error) {
	root, err := paths.EnsureRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving root directory: %w", err)
	}

	cfg, err := config.Load(root, "")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	trk, err := newTracker(cfg)
	if err != nil {
		return nil, fmt.Errorf("constructing tracker client: %w", err)
	}

	var prompter sessionmgr.Prompter
	if jsonMode {
		prompter = jsonPrompter{}
	} else {
		prompter = huhPrompter{}
	}

	st := store.New(root)
	mgr := sessionmgr.New(st, trk, agentFactory, prompter, cfg)
	mgr.JSONMode = jsonMode

	return &app{root: root, cfg: cfg, mgr: mgr}, nil
}

// agentFactory adapts the global agent registry to sessionmgr.AgentFactory,
// substituting noopAgent under DAF_MOCK_MODE=1 so a mock-mode run never
// spawns a real coding-agent process.
func agentFactory(name string) (agent.Agent, error) {
	if os.Getenv(MockModeEnvVar) == "1" {
		return noopAgent{}, nil
	}
	return agent.Get(agent.Name(name), agent.Config{})
}

// newTracker builds the real HTTP tracker client from JIRA_URL/
// JIRA_API_TOKEN/JIRA_AUTH_TYPE (env vars take precedence over the
// equivalent config layer fields, since a token never belongs on disk),
// unless DAF_MOCK_MODE=1 is set, in which case an in-memory mock is used
// instead.
func newTracker(cfg *config.Config) (tracker.IssueTracker, error) {
	if os.Getenv(MockModeEnvVar) == "1" {
		return tracker.NewMockClient(cfg.Tracker.ProjectCode), nil
	}

	endpoint := cfg.Tracker.Endpoint
	if v := os.Getenv("JIRA_URL"); v != "" {
		endpoint = v
	}
	authType := cfg.Tracker.AuthType
	if v := os.Getenv("JIRA_AUTH_TYPE"); v != "" {
		authType = v
	}
	token := os.Getenv("JIRA_API_TOKEN")
	return tracker.NewClient(endpoint, token, "", tracker.AuthMode(authType))
}
