package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/sessionmgr"
)

func newCompleteCmd(jsonOutput *bool) *cobra.Command {
	var p sessionmgr.CompleteParams

	cmd := &cobra.Command{
		Use:   "complete [name_or_key]",
		Short: "Close out a session: commit, push, open a PR, transition the issue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.NameOrKey = args[0]
			}
			return runComplete(cmd, *jsonOutput, p)
		},
	}

	cmd.Flags().BoolVar(&p.Commit, "commit", false, "commit the working tree before completing")
	cmd.Flags().StringVar(&p.CommitMsg, "message", "", "commit message (used with --commit)")
	cmd.Flags().BoolVar(&p.PR, "pr", false, "open a pull request")
	cmd.Flags().StringVar(&p.PRTitle, "pr-title", "", "pull request title")
	cmd.Flags().StringVar(&p.PRBody, "pr-body", "", "pull request body")
	cmd.Flags().BoolVar(&p.IssueUpdate, "issue-update", false, "transition the linked tracker issue")
	cmd.Flags().StringVar(&p.IssueComment, "issue-comment", "", "comment to post to the linked tracker issue")

	return cmd
}

func runComplete(cmd *cobra.Command, jsonOutput bool, p sessionmgr.CompleteParams) error {
	a, err := newApp(jsonOutput)
	if err != nil {
		return err
	}

	sess, warnings, err := a.mgr.Complete(cmd.Context(), p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to complete session: %v\n", err)
		return NewSilentError(err)
	}

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", w.Step, w.Err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), sess)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Completed session %q\n", sess.Name)
	return nil
}
