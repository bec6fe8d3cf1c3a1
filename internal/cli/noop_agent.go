package cli

import (
	"context"

	"github.com/devaiflow/daf/internal/agent"
)

// noopAgent stands in for a real coding agent under DAF_MOCK_MODE=1: it
// never spawns a process, so sessionmgr's launch/resume/capture sequencing
// runs end to end (store writes, work intervals, tracker calls) without an
// interactive agent attached.
type noopAgent struct{}

func (noopAgent) Launch(_ context.Context, _, _ string, _ []string) (*agent.ProcessHandle, error) {
	return nil, nil
}

func (noopAgent) Resume(_ context.Context, _, _ string, _ []string) (*agent.ProcessHandle, error) {
	return nil, nil
}

func (noopAgent) SupportsCapture() bool { return false }

func (noopAgent) ConversationFilePath(_, _ string) (string, error) {
	return "", nil
}

func (noopAgent) ConversationFilePathEncoding(workDir string) string { return workDir }

func (noopAgent) Describe() agent.AgentInfo {
	return agent.AgentInfo{Name: "mock", Description: "no-op agent used under DAF_MOCK_MODE"}
}
