package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDeleteCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name_or_key>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			if err := a.mgr.Delete(cmd.Context(), args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to delete session: %v\n", err)
				return NewSilentError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %q\n", args[0])
			return nil
		},
	}
}
