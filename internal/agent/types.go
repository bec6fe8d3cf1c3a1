package agent

// AgentInfo describes a registered agent for display purposes (e.g. `config
// show`, the new-session agent picker).
type AgentInfo struct {
	Name        Name
	Description string
	// SupportsCapture mirrors Agent.SupportsCapture(); surfaced here so
	// callers that only have AgentInfo (not a live Agent) can still decide
	// whether to warn about degraded message counting.
	SupportsCapture bool
}

// Name is the registry key type for agents (e.g. "claude-code", "cursor").
type Name string

// Registered agent names.
const (
	NameClaudeCode Name = "claude-code"
	NameVSCode     Name = "vscode-copilot"
	NameCursor     Name = "cursor"
	NameWindsurf   Name = "windsurf"
)

// DefaultName is the registry key used when a session doesn't name an agent.
const DefaultName = NameClaudeCode
