package sessionmgr

import (
	"context"
	"fmt"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/gitutil"
	"github.com/devaiflow/daf/internal/tracker"
)

// fakeGitOps is an in-memory GitOps for tests that never shell out to git.
type fakeGitOps struct {
	current            string
	existingBranches   map[string]bool
	uncommittedChanges bool
	behind             bool

	createErr  error
	mergeErr   error
	rebaseErr  error
	pushErr    error
	prErr      error
	prURL      string
	createdPRs []string
}

func newFakeGitOps() *fakeGitOps {
	return &fakeGitOps{current: "main", existingBranches: map[string]bool{}}
}

func (f *fakeGitOps) CurrentBranch() (string, error) { return f.current, nil }

func (f *fakeGitOps) BranchExistsLocally(name string) (bool, error) {
	return f.existingBranches[name], nil
}

func (f *fakeGitOps) CreateBranch(name string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.existingBranches[name] = true
	f.current = name
	return nil
}

func (f *fakeGitOps) CheckoutBranch(name string) error {
	f.current = name
	return nil
}

func (f *fakeGitOps) HasUncommittedChanges() (bool, error) { return f.uncommittedChanges, nil }

func (f *fakeGitOps) IsBehind(branch, base string) (bool, error) { return f.behind, nil }

func (f *fakeGitOps) ResolveConflict(name string, choice gitutil.BranchConflictChoice, renamed string) (string, error) {
	switch choice {
	case gitutil.ChoiceRename:
		f.existingBranches[renamed] = true
		return renamed, nil
	default:
		f.existingBranches[name] = true
		return name, nil
	}
}

func (f *fakeGitOps) Commit(message string, author *gitutil.GitAuthor) error { return nil }

func (f *fakeGitOps) Author() (*gitutil.GitAuthor, error) {
	return &gitutil.GitAuthor{Name: "Test User", Email: "test@example.com"}, nil
}

func (f *fakeGitOps) MergeInto(base string) error  { return f.mergeErr }
func (f *fakeGitOps) RebaseOnto(base string) error { return f.rebaseErr }

func (f *fakeGitOps) Push(ctx context.Context, branch string) error { return f.pushErr }

func (f *fakeGitOps) CreatePullRequest(ctx context.Context, base, head, title, body string) (string, error) {
	if f.prErr != nil {
		return "", f.prErr
	}
	url := f.prURL
	if url == "" {
		url = fmt.Sprintf("https://example.test/pr/%s", head)
	}
	f.createdPRs = append(f.createdPRs, url)
	return url, nil
}

// fakePrompter answers every interactive decision deterministically rather
// than reading a terminal.
type fakePrompter struct {
	confirmResult bool
	confirmErr    error

	branchChoice  gitutil.BranchConflictChoice
	branchRenamed string
	branchErr     error

	transitionTarget *tracker.Transition
	transitionSkip   bool
	transitionErr    error

	mergeStrategy string
	mergeErr      error
}

func (p *fakePrompter) Confirm(message string) (bool, error) { return p.confirmResult, p.confirmErr }

func (p *fakePrompter) ResolveBranchConflict(branch string) (gitutil.BranchConflictChoice, string, error) {
	return p.branchChoice, p.branchRenamed, p.branchErr
}

func (p *fakePrompter) ChooseTransition(issueKey, currentState string, transitions []tracker.Transition) (*tracker.Transition, bool, error) {
	return p.transitionTarget, p.transitionSkip, p.transitionErr
}

func (p *fakePrompter) ChooseMergeStrategy(branch, base string) (string, error) {
	return p.mergeStrategy, p.mergeErr
}

// fakeAgent is a no-op Agent that never spawns a real process.
type fakeAgent struct {
	supportsCapture bool
	launchErr       error
	resumeErr       error
	convPath        string
}

func (a *fakeAgent) Launch(ctx context.Context, workDir, promptText string, env []string) (*agent.ProcessHandle, error) {
	if a.launchErr != nil {
		return nil, a.launchErr
	}
	return &agent.ProcessHandle{}, nil
}

func (a *fakeAgent) Resume(ctx context.Context, workDir, agentSessionID string, env []string) (*agent.ProcessHandle, error) {
	if a.resumeErr != nil {
		return nil, a.resumeErr
	}
	return &agent.ProcessHandle{}, nil
}

func (a *fakeAgent) SupportsCapture() bool { return a.supportsCapture }

func (a *fakeAgent) ConversationFilePath(workDir, agentSessionID string) (string, error) {
	return a.convPath, nil
}

func (a *fakeAgent) ConversationFilePathEncoding(workDir string) string { return workDir }

func (a *fakeAgent) Describe() agent.AgentInfo { return agent.AgentInfo{Name: "fake"} }

func fakeAgentFactory(ag *fakeAgent) AgentFactory {
	return func(name string) (agent.Agent, error) { return ag, nil }
}
