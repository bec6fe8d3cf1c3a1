// Package gitutil wraps the go-git and git-CLI operations daf needs to bind
// a Session to a branch: resolving HEAD, checking out branches, detecting
// uncommitted work, and finding a merge-base for the behind-base-branch check.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// openRepository opens the git repository rooted at the current working
// directory, walking up to find .git the way go-git's PlainOpenWithOptions does.
func openRepository() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(".", &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// GitAuthor represents the git user configuration.
type GitAuthor struct {
	Name  string
	Email string
}

// GetGitAuthor retrieves the git user.name and user.email from the repository config.
// It checks local config first, then falls back to global config.
// If go-git can't find the config, it falls back to using the git command.
// Returns fallback defaults if no user is configured anywhere.
func GetGitAuthor() (*GitAuthor, error) {
	repo, err := openRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	name, email := "Unknown", "unknown@local"
	if cfg, cfgErr := repo.ConfigScoped(0); cfgErr == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}

	if name == "Unknown" {
		if gitName := getGitConfigValue("user.name"); gitName != "" {
			name = gitName
		}
	}
	if email == "unknown@local" {
		if gitEmail := getGitConfigValue("user.email"); gitEmail != "" {
			email = gitEmail
		}
	}

	return &GitAuthor{Name: name, Email: email}, nil
}

// getGitConfigValue retrieves a git config value using the git command.
// Returns empty string if the value is not set or on error.
func getGitConfigValue(key string) string {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "config", "--get", key)
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// IsOnDefaultBranch checks if the repository is currently on the default branch.
// It determines the default branch by checking the remote origin's HEAD
// reference, falling back to common names (main, master) if unavailable.
func IsOnDefaultBranch() (bool, string, error) {
	repo, err := openRepository()
	if err != nil {
		return false, "", fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return false, "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return false, "", nil
	}

	currentBranch := head.Name().Short()
	defaultBranch := getDefaultBranchFromRemote(repo)

	if defaultBranch == "" {
		if currentBranch == "main" || currentBranch == "master" {
			return true, currentBranch, nil
		}
		return false, currentBranch, nil
	}

	return currentBranch == defaultBranch, currentBranch, nil
}

// getDefaultBranchFromRemote tries to determine the default branch from the
// origin remote. Returns empty string if unable to determine.
func getDefaultBranchFromRemote(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), true)
	if err == nil && ref != nil {
		target := ref.Target().String()
		if strings.HasPrefix(target, "refs/remotes/origin/") {
			return strings.TrimPrefix(target, "refs/remotes/origin/")
		}
	}

	if _, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "main"), true); err == nil {
		return "main"
	}
	if _, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "master"), true); err == nil {
		return "master"
	}

	return ""
}

// GetCurrentBranch returns the name of the current branch.
// Returns an error if in detached HEAD state or if not in a git repository.
func GetCurrentBranch() (string, error) {
	repo, err := openRepository()
	if err != nil {
		return "", fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", errors.New("not on a branch (detached HEAD)")
	}

	return head.Name().Short(), nil
}

// GetMergeBase finds the common ancestor (merge-base) between two branches.
func GetMergeBase(branch1, branch2 string) (*plumbing.Hash, error) {
	repo, err := openRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	ref1, err := repo.Reference(plumbing.NewBranchReferenceName(branch1), true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve branch %s: %w", branch1, err)
	}
	ref2, err := repo.Reference(plumbing.NewBranchReferenceName(branch2), true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve branch %s: %w", branch2, err)
	}

	commit1, err := repo.CommitObject(ref1.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit for %s: %w", branch1, err)
	}
	commit2, err := repo.CommitObject(ref2.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit for %s: %w", branch2, err)
	}

	mergeBase, err := commit1.MergeBase(commit2)
	if err != nil {
		return nil, fmt.Errorf("failed to find merge base: %w", err)
	}
	if len(mergeBase) == 0 {
		return nil, errors.New("no common ancestor found")
	}

	hash := mergeBase[0].Hash
	return &hash, nil
}

// IsBehind reports whether branch is behind base (base has commits branch
// lacks), by comparing branch's HEAD against the merge-base with base.
func IsBehind(branch, base string) (bool, error) {
	repo, err := openRepository()
	if err != nil {
		return false, fmt.Errorf("failed to open git repository: %w", err)
	}
	branchRef, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return false, fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}
	mergeBase, err := GetMergeBase(branch, base)
	if err != nil {
		return false, err
	}
	return branchRef.Hash() != *mergeBase, nil
}

// HasUncommittedChanges checks if there are any uncommitted changes in the
// repository. This includes staged changes, unstaged changes, and untracked
// files. Uses the git CLI instead of go-git because go-git doesn't respect
// global gitignore (core.excludesfile), which can cause false positives.
func HasUncommittedChanges() (bool, error) {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("failed to get git status: %w", err)
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// BranchExistsOnRemote checks if a branch exists on the origin remote.
func BranchExistsOnRemote(branchName string) (bool, error) {
	repo, err := openRepository()
	if err != nil {
		return false, fmt.Errorf("failed to open git repository: %w", err)
	}

	_, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", branchName), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check remote branch: %w", err)
	}
	return true, nil
}

// BranchExistsLocally checks if a local branch exists.
func BranchExistsLocally(branchName string) (bool, error) {
	repo, err := openRepository()
	if err != nil {
		return false, fmt.Errorf("failed to open git repository: %w", err)
	}

	_, err = repo.Reference(plumbing.NewBranchReferenceName(branchName), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check branch: %w", err)
	}
	return true, nil
}

// CheckoutBranch switches to the specified local branch or commit.
// Uses the git CLI instead of go-git to work around a go-git v5 bug where
// Checkout deletes untracked files (go-git/go-git issue #970).
func CheckoutBranch(ref string) error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "checkout", ref)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("checkout failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// CreateBranch creates a new local branch at HEAD and checks it out.
func CreateBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "checkout", "-b", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("branch creation failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// ValidateBranchName checks if a branch name is valid using git check-ref-format.
func ValidateBranchName(branchName string) error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "check-ref-format", "--branch", branchName)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("invalid branch name %q", branchName)
	}
	return nil
}

// FetchAndCheckoutRemoteBranch fetches a branch from origin and creates a
// local tracking branch. Uses the git CLI for fetch because go-git doesn't
// use credential helpers, which breaks HTTPS URLs that require authentication.
func FetchAndCheckoutRemoteBranch(branchName string) error {
	if err := ValidateBranchName(branchName); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	refSpec := fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", branchName, branchName)
	//nolint:gosec // G204: branchName validated above via git check-ref-format
	fetchCmd := exec.CommandContext(ctx, "git", "fetch", "origin", refSpec)
	if output, err := fetchCmd.CombinedOutput(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.New("fetch timed out after 2 minutes")
		}
		return fmt.Errorf("failed to fetch branch from origin: %s: %w", strings.TrimSpace(string(output)), err)
	}

	repo, err := openRepository()
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branchName), true)
	if err != nil {
		return fmt.Errorf("branch '%s' not found on origin: %w", branchName, err)
	}

	localRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branchName), remoteRef.Hash())
	if err := repo.Storer.SetReference(localRef); err != nil {
		return fmt.Errorf("failed to create local branch: %w", err)
	}

	return CheckoutBranch(branchName)
}

// BranchConflictChoice is the resolution a caller picked when the requested
// branch name already exists.
type BranchConflictChoice int

const (
	// ChoiceSuffix appends a numeric suffix to mint a fresh branch name.
	ChoiceSuffix BranchConflictChoice = iota
	// ChoiceReuse checks out the existing branch as-is.
	ChoiceReuse
	// ChoiceRename lets the caller supply an alternate name.
	ChoiceRename
	// ChoiceSkip aborts branch creation/checkout entirely.
	ChoiceSkip
)

// ResolveBranchConflict applies choice against a branch name that already
// exists locally, returning the branch name actually checked out (or the
// original name, unchanged, for ChoiceSkip). renamed is only consulted for
// ChoiceRename.
func ResolveBranchConflict(name string, choice BranchConflictChoice, renamed string) (string, error) {
	switch choice {
	case ChoiceSuffix:
		for n := 2; n < 1000; n++ {
			candidate := fmt.Sprintf("%s-%d", name, n)
			exists, err := BranchExistsLocally(candidate)
			if err != nil {
				return "", err
			}
			if !exists {
				if err := CreateBranch(candidate); err != nil {
					return "", err
				}
				return candidate, nil
			}
		}
		return "", fmt.Errorf("could not find a free suffix for branch %q", name)
	case ChoiceReuse:
		if err := CheckoutBranch(name); err != nil {
			return "", err
		}
		return name, nil
	case ChoiceRename:
		if renamed == "" {
			return "", errors.New("rename choice requires a replacement branch name")
		}
		if err := ValidateBranchName(renamed); err != nil {
			return "", err
		}
		if err := CreateBranch(renamed); err != nil {
			return "", err
		}
		return renamed, nil
	case ChoiceSkip:
		return name, nil
	default:
		return "", fmt.Errorf("unknown branch conflict choice %d", choice)
	}
}

// CommitMessage builds a commit message for a session completion commit,
// optionally trailing the bound tracker issue key.
func CommitMessage(summary, issueKey string) string {
	if issueKey == "" {
		return summary
	}
	return fmt.Sprintf("%s\n\nIssue: %s", summary, issueKey)
}

// Commit stages all changes and commits them with the given message and author.
func Commit(message string, author *GitAuthor) error {
	ctx := context.Background()
	addCmd := exec.CommandContext(ctx, "git", "add", "-A")
	if output, err := addCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git add failed: %s: %w", strings.TrimSpace(string(output)), err)
	}

	args := []string{"commit", "-m", message}
	if author != nil {
		args = append(args, "--author", fmt.Sprintf("%s <%s>", author.Name, author.Email))
	}
	commitCmd := exec.CommandContext(ctx, "git", args...)
	if output, err := commitCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git commit failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// MergeConflictError reports that MergeInto left the worktree with
// conflicted paths; the merge is aborted before this error is returned, so
// the worktree is clean again.
type MergeConflictError struct {
	Paths []string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflicts in: %s", strings.Join(e.Paths, ", "))
}

// MergeInto merges base into the current branch. On conflict, the merge is
// aborted (the worktree is left exactly as it was) and a MergeConflictError
// listing the conflicting paths is returned.
func MergeInto(base string) error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "merge", "--no-edit", base)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	paths, statusErr := conflictedPaths()
	abortCmd := exec.CommandContext(ctx, "git", "merge", "--abort")
	_ = abortCmd.Run()

	if statusErr == nil && len(paths) > 0 {
		return &MergeConflictError{Paths: paths}
	}
	return fmt.Errorf("merge failed: %s: %w", strings.TrimSpace(string(output)), err)
}

// RebaseOnto rebases the current branch onto base. On conflict, the rebase
// is aborted and a MergeConflictError listing the conflicting paths is
// returned.
func RebaseOnto(base string) error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "rebase", base)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	paths, statusErr := conflictedPaths()
	abortCmd := exec.CommandContext(ctx, "git", "rebase", "--abort")
	_ = abortCmd.Run()

	if statusErr == nil && len(paths) > 0 {
		return &MergeConflictError{Paths: paths}
	}
	return fmt.Errorf("rebase failed: %s: %w", strings.TrimSpace(string(output)), err)
}

// conflictedPaths parses `git status --porcelain` for unmerged paths (status
// codes "UU", "AA", "DD", "AU", "UA", "UD", "DU" — any entry with "U" in
// either column).
func conflictedPaths() ([]string, error) {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to get git status: %w", err)
	}
	var paths []string
	for _, line := range strings.Split(string(output), "\n") {
		if len(line) < 3 {
			continue
		}
		if line[0] == 'U' || line[1] == 'U' {
			paths = append(paths, strings.TrimSpace(line[2:]))
		}
	}
	return paths, nil
}

// Push pushes branch to origin, setting the upstream on first push.
func Push(ctx context.Context, branch string) error {
	cmd := exec.CommandContext(ctx, "git", "push", "--set-upstream", "origin", branch)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("push failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

// GHAvailable reports whether the gh CLI is installed and on PATH.
func GHAvailable() bool {
	_, err := exec.LookPath("gh")
	return err == nil
}

// CreatePullRequest opens a PR for head against base via the gh CLI,
// returning its URL.
func CreatePullRequest(ctx context.Context, base, head, title, body string) (string, error) {
	args := []string{"pr", "create", "--base", base, "--head", head, "--title", title, "--body", body}
	cmd := exec.CommandContext(ctx, "gh", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("gh pr create failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return strings.TrimSpace(string(output)), nil
}
