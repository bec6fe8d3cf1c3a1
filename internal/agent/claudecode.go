package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devaiflow/daf/internal/paths"
)

//nolint:gochecknoinits // agent self-registration is the intended pattern
func init() {
	Register(NameClaudeCode, newClaudeCodeAgent)
}

// claudeCodeAgent launches Anthropic's Claude Code CLI. It is the only
// variant with SupportsCapture()==true: it writes a line-delimited JSON
// conversation file under a stable, path-encoded per-project directory.
type claudeCodeAgent struct {
	binary string
	args   []string
}

func newClaudeCodeAgent(cfg Config) Agent {
	binary := cfg.BinaryPath
	if binary == "" {
		binary = "claude"
	}
	return &claudeCodeAgent{binary: binary, args: cfg.ExtraArgs}
}

func (a *claudeCodeAgent) Launch(ctx context.Context, workDir, promptText string, env []string) (*ProcessHandle, error) {
	args := append([]string{}, a.args...)
	if promptText != "" {
		args = append(args, promptText)
	}
	return spawn(ctx, "pending", spawnOptions{
		binary:  a.binary,
		args:    args,
		workDir: workDir,
		env:     env,
	})
}

func (a *claudeCodeAgent) Resume(ctx context.Context, workDir, agentSessionID string, env []string) (*ProcessHandle, error) {
	args := append([]string{"-r", agentSessionID}, a.args...)
	return spawn(ctx, agentSessionID, spawnOptions{
		binary:  a.binary,
		args:    args,
		workDir: workDir,
		env:     env,
	})
}

func (a *claudeCodeAgent) SupportsCapture() bool { return true }

func (a *claudeCodeAgent) ConversationFilePath(workDir, agentSessionID string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	encoded := a.ConversationFilePathEncoding(workDir)
	return filepath.Join(homeDir, ".claude", "projects", encoded, agentSessionID+".jsonl"), nil
}

// ConversationFilePathEncoding mirrors Claude Code's project-directory
// naming convention: every non-alphanumeric character in the absolute work
// directory is replaced with a dash.
func (a *claudeCodeAgent) ConversationFilePathEncoding(workDir string) string {
	return paths.SanitizePathForAgentStorage(workDir)
}

func (a *claudeCodeAgent) Describe() AgentInfo {
	return AgentInfo{
		Name:            NameClaudeCode,
		Description:     "Claude Code - Anthropic's CLI coding assistant",
		SupportsCapture: true,
	}
}
