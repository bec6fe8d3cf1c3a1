package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTimeCmd(jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Pause or resume a session's time tracking",
	}
	cmd.AddCommand(newPauseCmd(jsonOutput))
	cmd.AddCommand(newResumeTimeCmd(jsonOutput))
	return cmd
}

func newPauseCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "pause [name_or_key]",
		Short: "Pause a session's running time interval",
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
			sess, err := a.mgr.Pause(cmd.Context(), nameOrKey)
			if err != nil {
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Paused %q\n", sess.Name)
			return nil
		},
	}
}

func newResumeTimeCmd(jsonOutput *bool) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "resume [name_or_key]",
		Short: "Resume a session's time tracking",
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
			sess, err := a.mgr.ResumeTime(cmd.Context(), nameOrKey, user)
			if err != nil {
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resumed time tracking for %q\n", sess.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user resuming the interval")
	return cmd
}
