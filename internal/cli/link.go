package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLinkCmd(jsonOutput *bool) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "link <name> <issue_key>",
		Short: "Bind a session to a tracker issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sess, err := a.mgr.Link(cmd.Context(), args[0], args[1], force)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to link session: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %q to %s\n", sess.Name, sess.IssueKey)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing link without confirming")
	return cmd
}

func newUnlinkCmd(jsonOutput *bool) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "unlink <name_or_key>",
		Short: "Remove a session's tracker issue link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sess, err := a.mgr.Unlink(cmd.Context(), args[0], force)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to unlink session: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %q\n", sess.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "unlink without confirming")
	return cmd
}
