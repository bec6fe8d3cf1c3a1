package sessionmgr

import "fmt"

// ErrNameConflict is returned by New when the requested session name
// already exists. Distinct from store.ErrConflict, which signals lock
// contention rather than a name collision.
type ErrNameConflict struct {
	Name string
}

func (e *ErrNameConflict) Error() string {
	return fmt.Sprintf("a session named %q already exists", e.Name)
}

// ErrInvalidPath is returned when a work directory does not exist and the
// caller declined (or cannot, under --json) to resolve it interactively.
type ErrInvalidPath struct {
	Path string
}

func (e *ErrInvalidPath) Error() string {
	return fmt.Sprintf("invalid work directory: %s", e.Path)
}

// ErrBranchConflict is returned when the user aborts a branch-name
// conflict prompt (ChoiceSkip) rather than resolving it.
type ErrBranchConflict struct {
	Branch string
}

func (e *ErrBranchConflict) Error() string {
	return fmt.Sprintf("branch %q already exists and the conflict was not resolved", e.Branch)
}

// ErrNeedsInteractive is returned when an operation would normally prompt
// but is running under --json, where prompts are disallowed.
type ErrNeedsInteractive struct {
	Reason string
}

func (e *ErrNeedsInteractive) Error() string {
	return fmt.Sprintf("needs an interactive prompt: %s", e.Reason)
}

// ErrNotFound is returned when name_or_key resolves to no session.
type ErrNotFound struct {
	NameOrKey string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("no session matches %q", e.NameOrKey)
}

// ErrAmbiguous is returned when name_or_key matches more than one session
// and the caller must disambiguate.
type ErrAmbiguous struct {
	NameOrKey string
	Matches   []string
}

func (e *ErrAmbiguous) Error() string {
	return fmt.Sprintf("%q matches multiple sessions: %v", e.NameOrKey, e.Matches)
}

// ErrDeclined is returned when the user declines a confirmation prompt for
// an operation that requires explicit consent to proceed (e.g. replacing an
// existing link).
type ErrDeclined struct {
	Reason string
}

func (e *ErrDeclined) Error() string {
	return "declined: " + e.Reason
}

// ErrWrongBranch is returned by Complete when the current git branch
// doesn't match the session's branch and an auto-switch isn't safe
// (worktree not clean).
type ErrWrongBranch struct {
	Current string
	Want    string
}

func (e *ErrWrongBranch) Error() string {
	return fmt.Sprintf("on branch %q, session expects %q; commit or stash your changes, then switch manually", e.Current, e.Want)
}
