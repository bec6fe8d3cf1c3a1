package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/sessionmgr"
)

func newSyncCmd(jsonOutput *bool) *cobra.Command {
	var (
		sprint       string
		issueType    string
		parentKey    string
		customFields map[string]string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or update sessions from matching tracker issues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sessions, err := a.mgr.Sync(cmd.Context(), sessionmgr.SyncFilters{
				Sprint:       sprint,
				IssueType:    issueType,
				ParentKey:    parentKey,
				CustomFields: customFields,
			})
			if err != nil {
				return err
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sessions)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d session(s)\n", len(sessions))
			return nil
		},
	}

	cmd.Flags().StringVar(&sprint, "sprint", "", "filter by sprint")
	cmd.Flags().StringVar(&issueType, "issue-type", "", "filter by issue type")
	cmd.Flags().StringVar(&parentKey, "parent", "", "filter by parent issue key")
	cmd.Flags().StringToStringVar(&customFields, "field", nil, "custom field filter, alias=value (repeatable)")

	return cmd
}
