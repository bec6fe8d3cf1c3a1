package agent

import "context"

//nolint:gochecknoinits // agent self-registration is the intended pattern
func init() {
	Register(NameWindsurf, newWindsurfAgent)
}

// windsurfAgent launches the Windsurf editor (Codeium). Like Cursor, its
// conversation history isn't exposed as a plain per-session file, so this
// variant never supports capture.
type windsurfAgent struct {
	binary string
	args   []string
}

func newWindsurfAgent(cfg Config) Agent {
	binary := cfg.BinaryPath
	if binary == "" {
		binary = "windsurf"
	}
	return &windsurfAgent{binary: binary, args: cfg.ExtraArgs}
}

func (a *windsurfAgent) Launch(ctx context.Context, workDir, promptText string, env []string) (*ProcessHandle, error) {
	args := append(append([]string{}, a.args...), workDir)
	return spawn(ctx, "pending", spawnOptions{
		binary:  a.binary,
		args:    args,
		workDir: workDir,
		env:     env,
	})
}

func (a *windsurfAgent) Resume(ctx context.Context, workDir, agentSessionID string, env []string) (*ProcessHandle, error) {
	return a.Launch(ctx, workDir, "", env)
}

func (a *windsurfAgent) SupportsCapture() bool { return false }

func (a *windsurfAgent) ConversationFilePath(workDir, agentSessionID string) (string, error) {
	return "", nil
}

func (a *windsurfAgent) ConversationFilePathEncoding(workDir string) string { return "" }

func (a *windsurfAgent) Describe() AgentInfo {
	return AgentInfo{
		Name:            NameWindsurf,
		Description:     "Windsurf editor",
		SupportsCapture: false,
	}
}
