package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/sessionmgr"
)

func newConfigCmd(jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and refresh daf's configuration",
	}
	cmd.AddCommand(newConfigShowCmd(jsonOutput))
	cmd.AddCommand(newConfigRefreshFieldsCmd(jsonOutput))
	return cmd
}

func newConfigShowCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the fully-merged configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			cfg, err := a.mgr.ConfigShow()
			if err != nil {
				return NewSilentError(err)
			}
			return printJSON(cmd.OutOrStdout(), cfg)
		},
	}
}

func newConfigRefreshFieldsCmd(jsonOutput *bool) *cobra.Command {
	var (
		backend  string
		project  string
		kind     string
		issueKey string
	)

	cmd := &cobra.Command{
		Use:   "refresh-fields",
		Short: "Re-fetch the tracker's field catalog and rebuild the alias map",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			aliases, err := a.mgr.RefreshFieldAliases(cmd.Context(), sessionmgr.RefreshFieldAliasesParams{
				Root:     a.root,
				Backend:  backend,
				Project:  project,
				Kind:     kind,
				IssueKey: issueKey,
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to refresh field aliases: %v\n", err)
				return NewSilentError(err)
			}
			return printJSON(cmd.OutOrStdout(), aliases)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "jira", "backend catalog name to cache the fetched fields under")
	cmd.Flags().StringVar(&project, "project", "", "project key, for a creatable-fields refresh")
	cmd.Flags().StringVar(&kind, "kind", "", "issue type, for a creatable-fields refresh")
	cmd.Flags().StringVar(&issueKey, "issue", "", "issue key, for an editable-fields refresh instead of creatable")

	return cmd
}
