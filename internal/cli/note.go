package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/sessionmgr"
)

func newNoteCmd(jsonOutput *bool) *cobra.Command {
	var (
		pushToTracker bool
		author        string
	)

	cmd := &cobra.Command{
		Use:   "note <name_or_key> <text>",
		Short: "Append a note to a session, optionally pushing it as a tracker comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sess, err := a.mgr.AddNote(cmd.Context(), args[0], args[1], pushToTracker, author)
			if warning, ok := err.(sessionmgr.Warning); ok {
				fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", warning.Step, warning.Err)
			} else if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to add note: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added note to %q\n", sess.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pushToTracker, "push", false, "also post the note as a tracker comment")
	cmd.Flags().StringVar(&author, "author", "", "note author")
	return cmd
}
