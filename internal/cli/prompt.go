package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/devaiflow/daf/internal/gitutil"
	"github.com/devaiflow/daf/internal/sessionmgr"
	"github.com/devaiflow/daf/internal/tracker"
)

// newForm wraps huh.NewForm, switching to accessible (plain text) mode when
// ACCESSIBLE is set, matching the screen-reader-friendly fallback the rest
// of the corpus's interactive commands offer.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...)
	if os.Getenv("ACCESSIBLE") != "" {
		form = form.WithAccessible(true)
	}
	return form
}

// huhPrompter answers sessionmgr.Prompter's decisions with interactive huh
// forms. Used whenever a command is not running under --json.
type huhPrompter struct{}

func (huhPrompter) Confirm(message string) (bool, error) {
	var confirmed bool
	form := newForm(huh.NewGroup(
		huh.NewConfirm().Title(message).Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return confirmed, nil
}

func (huhPrompter) ResolveBranchConflict(branch string) (gitutil.BranchConflictChoice, string, error) {
	var choice string
	options := []huh.Option[string]{
		huh.NewOption("Add a numeric suffix", "suffix"),
		huh.NewOption("Reuse the existing branch", "reuse"),
		huh.NewOption("Choose a different name", "rename"),
		huh.NewOption("Cancel", "skip"),
	}
	form := newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("Branch %q already exists", branch)).
			Options(options...).
			Value(&choice),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return gitutil.ChoiceSkip, "", nil
		}
		return gitutil.ChoiceSkip, "", fmt.Errorf("branch conflict prompt: %w", err)
	}

	if choice != "rename" {
		return branchChoiceFromString(choice), "", nil
	}

	var renamed string
	renameForm := newForm(huh.NewGroup(
		huh.NewInput().Title("New branch name").Value(&renamed),
	))
	if err := renameForm.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return gitutil.ChoiceSkip, "", nil
		}
		return gitutil.ChoiceSkip, "", fmt.Errorf("branch rename prompt: %w", err)
	}
	return gitutil.ChoiceRename, renamed, nil
}

func branchChoiceFromString(s string) gitutil.BranchConflictChoice {
	switch s {
	case "reuse":
		return gitutil.ChoiceReuse
	case "rename":
		return gitutil.ChoiceRename
	case "skip":
		return gitutil.ChoiceSkip
	default:
		return gitutil.ChoiceSuffix
	}
}

func (huhPrompter) ChooseTransition(issueKey, currentState string, transitions []tracker.Transition) (*tracker.Transition, bool, error) {
	if len(transitions) == 0 {
		return nil, true, nil
	}
	options := make([]huh.Option[int], 0, len(transitions)+1)
	for i, t := range transitions {
		options = append(options, huh.NewOption(t.Name, i))
	}
	options = append(options, huh.NewOption("Skip", -1))

	selected := -1
	form := newForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title(fmt.Sprintf("%s is %q — transition it?", issueKey, currentState)).
			Options(options...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("transition prompt: %w", err)
	}
	if selected < 0 {
		return nil, true, nil
	}
	return &transitions[selected], false, nil
}

func (huhPrompter) ChooseMergeStrategy(branch, base string) (string, error) {
	var strategy string
	options := []huh.Option[string]{
		huh.NewOption("Merge "+base+" in", "merge"),
		huh.NewOption("Rebase onto "+base, "rebase"),
		huh.NewOption("Leave it for now", ""),
	}
	form := newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("%q is behind %q", branch, base)).
			Options(options...).
			Value(&strategy),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("merge strategy prompt: %w", err)
	}
	return strategy, nil
}

// jsonPrompter refuses every interactive decision, so a --json invocation
// either completes non-interactively or fails with ErrNeedsInteractive
// instead of silently blocking on a terminal that isn't there.
type jsonPrompter struct{}

func (jsonPrompter) Confirm(message string) (bool, error) {
	return false, &sessionmgr.ErrNeedsInteractive{Reason: message}
}

func (jsonPrompter) ResolveBranchConflict(branch string) (gitutil.BranchConflictChoice, string, error) {
	return gitutil.ChoiceSkip, "", &sessionmgr.ErrNeedsInteractive{Reason: "branch conflict for " + branch}
}

func (jsonPrompter) ChooseTransition(issueKey, currentState string, transitions []tracker.Transition) (*tracker.Transition, bool, error) {
	return nil, false, &sessionmgr.ErrNeedsInteractive{Reason: "issue transition for " + issueKey}
}

func (jsonPrompter) ChooseMergeStrategy(branch, base string) (string, error) {
	return "", &sessionmgr.ErrNeedsInteractive{Reason: "merge strategy for " + branch}
}
