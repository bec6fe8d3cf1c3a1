package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/sessionmgr"
)

func newOpenCmd(jsonOutput *bool) *cobra.Command {
	var (
		workDir         string
		newConversation bool
		agentName       string
		goal            string
	)

	cmd := &cobra.Command{
		Use:   "open [name_or_key]",
		Short: "Resume an existing session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var nameOrKey string
			if len(args) == 1 {
				nameOrKey = args[0]
			}
			return runOpen(cmd, *jsonOutput, sessionmgr.OpenParams{
				NameOrKey:       nameOrKey,
				WorkDir:         workDir,
				NewConversation: newConversation,
				AgentName:       agent.Name(agentName),
				InitialPrompt:   goal,
			})
		},
	}

	cmd.Flags().StringVar(&workDir, "workdir", "", "work directory for a new conversation within this session")
	cmd.Flags().BoolVar(&newConversation, "new-conversation", false, "archive the active conversation and start a fresh one")
	cmd.Flags().StringVar(&agentName, "agent", string(agent.DefaultName), "which coding agent to launch")
	cmd.Flags().StringVar(&goal, "goal", "", "additional context to hand the agent on resume")

	return cmd
}

func runOpen(cmd *cobra.Command, jsonOutput bool, p sessionmgr.OpenParams) error {
	a, err := newApp(jsonOutput)
	if err != nil {
		return err
	}

	sess, handle, err := a.mgr.Open(cmd.Context(), p)
	for {
		var invalidPath *sessionmgr.ErrInvalidPath
		if err == nil || jsonOutput || !errors.As(err, &invalidPath) {
			break
		}
		newPath, recoverErr := recoverInvalidPath(invalidPath.Path)
		if recoverErr != nil {
			err = recoverErr
			break
		}
		if newPath == "" {
			break
		}
		p.WorkDir = newPath
		sess, handle, err = a.mgr.Open(cmd.Context(), p)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session: %v\n", err)
		return NewSilentError(err)
	}

	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), sess); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Resumed session %q\n", sess.Name)
	}

	if handle == nil {
		return nil
	}
	workDir := p.WorkDir
	if workDir == "" {
		workDir = sess.ActiveWorkingDirectory
	}
	return runAgentAndCapture(cmd.Context(), a, string(p.AgentName), sess.Name, workDir, handle, jsonOutput)
}

// recoverInvalidPath offers an interactive fallback when a session's work
// directory no longer exists: pick a different path, or abort and let the
// original ErrInvalidPath surface. Returns an empty path with a nil error
// when the user aborts.
func recoverInvalidPath(badPath string) (string, error) {
	var choice string
	form := newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("Work directory %q no longer exists", badPath)).
			Options(
				huh.NewOption("Enter a different path", "path"),
				huh.NewOption("Abort", "abort"),
			).
			Value(&choice),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("path recovery prompt: %w", err)
	}
	if choice != "path" {
		return "", nil
	}

	var newPath string
	inputForm := newForm(huh.NewGroup(
		huh.NewInput().Title("New work directory").Value(&newPath),
	))
	if err := inputForm.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("path input prompt: %w", err)
	}
	return newPath, nil
}
