// Package agent abstracts launching, resuming, and locating the conversation
// file of an interactive AI coding CLI spawned as a child process.
package agent

import "context"

// Agent defines the interface SessionManager uses to spawn and resume an
// interactive coding CLI, and to locate the conversation file Capture binds
// to a session.
type Agent interface {
	// Launch spawns the agent in workDir with an optional initial prompt,
	// inheriting stdio, and returns a handle to the running process.
	Launch(ctx context.Context, workDir, promptText string, env []string) (*ProcessHandle, error)

	// Resume re-attaches to an existing agent conversation identified by
	// agentSessionID, spawned fresh in workDir.
	Resume(ctx context.Context, workDir, agentSessionID string, env []string) (*ProcessHandle, error)

	// SupportsCapture reports whether this agent writes a parseable,
	// discoverable conversation file that Capture can bind to.
	SupportsCapture() bool

	// ConversationFilePath returns the path of the conversation file for a
	// given agent-assigned session id, given the work directory the agent
	// was launched in. Returns an empty path when SupportsCapture is false.
	ConversationFilePath(workDir, agentSessionID string) (string, error)

	// ConversationFilePathEncoding encodes an absolute work directory path
	// into the flat path component this agent uses to name its per-project
	// storage directory. Capture consults this rather than hard-coding an
	// encoding rule.
	ConversationFilePathEncoding(workDir string) string

	// Describe returns display information about this agent.
	Describe() AgentInfo
}
