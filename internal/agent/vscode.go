package agent

import "context"

//nolint:gochecknoinits // agent self-registration is the intended pattern
func init() {
	Register(NameVSCode, newVSCodeAgent)
}

// vsCodeAgent launches VS Code with GitHub Copilot. Copilot does not write a
// parseable per-session transcript, so this variant never supports capture.
type vsCodeAgent struct {
	binary string
	args   []string
}

func newVSCodeAgent(cfg Config) Agent {
	binary := cfg.BinaryPath
	if binary == "" {
		binary = "code"
	}
	return &vsCodeAgent{binary: binary, args: cfg.ExtraArgs}
}

func (a *vsCodeAgent) Launch(ctx context.Context, workDir, promptText string, env []string) (*ProcessHandle, error) {
	args := append(append([]string{}, a.args...), workDir)
	return spawn(ctx, "pending", spawnOptions{
		binary:  a.binary,
		args:    args,
		workDir: workDir,
		env:     env,
	})
}

func (a *vsCodeAgent) Resume(ctx context.Context, workDir, agentSessionID string, env []string) (*ProcessHandle, error) {
	return a.Launch(ctx, workDir, "", env)
}

func (a *vsCodeAgent) SupportsCapture() bool { return false }

func (a *vsCodeAgent) ConversationFilePath(workDir, agentSessionID string) (string, error) {
	return "", nil
}

func (a *vsCodeAgent) ConversationFilePathEncoding(workDir string) string { return "" }

func (a *vsCodeAgent) Describe() AgentInfo {
	return AgentInfo{
		Name:            NameVSCode,
		Description:     "VS Code with GitHub Copilot",
		SupportsCapture: false,
	}
}
