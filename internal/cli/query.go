package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sessions, err := a.mgr.List(cmd.Context())
			if err != nil {
				return err
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sessions)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}
			for _, sess := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-12s %-12s %s\n", sess.Name, sess.Type, sess.Status, sess.Goal)
			}
			return nil
		},
	}
}

func newInfoCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info <name_or_key>",
		Short: "Show a session's full detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sess, err := a.mgr.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sess)
		},
	}
}

func newStatusCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status [name_or_key]",
		Short: "Show a session's status and accumulated time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var nameOrKey string
			if len(args) == 1 {
				nameOrKey = args[0]
			}
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			status, elapsed, err := a.mgr.Status(cmd.Context(), nameOrKey)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"status":  status,
					"elapsed": elapsed.String(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s elapsed)\n", status, elapsed.Round(1e9))
			return nil
		},
	}
}

func newActiveCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List sessions currently tracking time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sessions, err := a.mgr.Active(cmd.Context())
			if err != nil {
				return err
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sessions)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions are currently tracking time.")
				return nil
			}
			for _, sess := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s\n", sess.Name, sess.Goal)
			}
			return nil
		},
	}
}
