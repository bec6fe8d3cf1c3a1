package agent

import "context"

//nolint:gochecknoinits // agent self-registration is the intended pattern
func init() {
	Register(NameCursor, newCursorAgent)
}

// cursorAgent launches the Cursor editor. Its conversation store is an
// internal SQLite database rather than a plain per-session file, so this
// variant never supports capture.
type cursorAgent struct {
	binary string
	args   []string
}

func newCursorAgent(cfg Config) Agent {
	binary := cfg.BinaryPath
	if binary == "" {
		binary = "cursor"
	}
	return &cursorAgent{binary: binary, args: cfg.ExtraArgs}
}

func (a *cursorAgent) Launch(ctx context.Context, workDir, promptText string, env []string) (*ProcessHandle, error) {
	args := append(append([]string{}, a.args...), workDir)
	return spawn(ctx, "pending", spawnOptions{
		binary:  a.binary,
		args:    args,
		workDir: workDir,
		env:     env,
	})
}

func (a *cursorAgent) Resume(ctx context.Context, workDir, agentSessionID string, env []string) (*ProcessHandle, error) {
	return a.Launch(ctx, workDir, "", env)
}

func (a *cursorAgent) SupportsCapture() bool { return false }

func (a *cursorAgent) ConversationFilePath(workDir, agentSessionID string) (string, error) {
	return "", nil
}

func (a *cursorAgent) ConversationFilePathEncoding(workDir string) string { return "" }

func (a *cursorAgent) Describe() AgentInfo {
	return AgentInfo{
		Name:            NameCursor,
		Description:     "Cursor editor",
		SupportsCapture: false,
	}
}
