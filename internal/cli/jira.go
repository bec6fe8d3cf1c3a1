package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/sessionmgr"
)

func newJiraCmd(jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jira",
		Short: "Tracker-issue-drafting sessions",
	}
	cmd.AddCommand(newJiraNewCmd(jsonOutput))
	cmd.AddCommand(newJiraRenameCmd(jsonOutput))
	cmd.AddCommand(newJiraCreateCmd(jsonOutput))
	cmd.AddCommand(newJiraUpdateCmd(jsonOutput))
	cmd.AddCommand(newJiraViewCmd(jsonOutput))
	return cmd
}

func newJiraNewCmd(jsonOutput *bool) *cobra.Command {
	var (
		kind      string
		parent    string
		goal      string
		agentName string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a read-only session for drafting a new tracker issue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			p := sessionmgr.JiraNewParams{
				Kind:      kind,
				ParentKey: parent,
				Goal:      goal,
				AgentName: agent.Name(agentName),
			}
			sess, handle, err := a.mgr.JiraNew(cmd.Context(), p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to start issue-drafting session: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), sess); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Started session %q; rename it once the issue is created with `daf jira rename %s <issue-key>`\n", sess.Name, sess.Name)
			}
			if handle == nil {
				return nil
			}
			return runAgentAndCapture(cmd.Context(), a, agentName, sess.Name, sess.ActiveWorkingDirectory, handle, *jsonOutput)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "issue type to draft, e.g. Story, Bug")
	cmd.Flags().StringVar(&parent, "parent", "", "parent issue key")
	cmd.Flags().StringVar(&goal, "goal", "", "the goal to hand the agent (required)")
	cmd.Flags().StringVar(&agentName, "agent", string(agent.DefaultName), "which coding agent to launch")

	return cmd
}

func newJiraRenameCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old_name> <new_name>",
		Short: "Rename a session, typically to the issue key once it's been created",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			sess, err := a.mgr.RenameSession(cmd.Context(), args[0], args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to rename session: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed session to %q\n", sess.Name)
			return nil
		},
	}
}

func newInvestigateCmd(jsonOutput *bool) *cobra.Command {
	var (
		name      string
		goal      string
		workDir   string
		agentName string
	)

	cmd := &cobra.Command{
		Use:   "investigate",
		Short: "Start a read-only investigation session (no branch, no commits)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			if workDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolving current directory: %w", err)
				}
				workDir = wd
			}
			p := sessionmgr.InvestigateParams{
				Name:      name,
				Goal:      goal,
				WorkDir:   workDir,
				AgentName: agent.Name(agentName),
			}
			sess, handle, err := a.mgr.Investigate(cmd.Context(), p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to start investigation: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), sess); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Started investigation %q\n", sess.Name)
			}
			if handle == nil {
				return nil
			}
			return runAgentAndCapture(cmd.Context(), a, agentName, sess.Name, workDir, handle, *jsonOutput)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "session name (inferred from the work directory if omitted)")
	cmd.Flags().StringVar(&goal, "goal", "", "the question to investigate (required)")
	cmd.Flags().StringVar(&workDir, "workdir", "", "the working directory to launch the agent in")
	cmd.Flags().StringVar(&agentName, "agent", string(agent.DefaultName), "which coding agent to launch")

	return cmd
}

func newJiraCreateCmd(jsonOutput *bool) *cobra.Command {
	var (
		project string
		kind    string
		fields  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tracker issue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			created, err := a.mgr.JiraCreate(cmd.Context(), sessionmgr.JiraCreateParams{
				Project: project,
				Kind:    kind,
				Fields:  fieldsToAny(fields),
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create issue: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", created.Key, created.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project key (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "issue type, e.g. Story, Bug (required)")
	cmd.Flags().StringToStringVar(&fields, "field", nil, "field=value, by alias or raw field id (repeatable)")

	return cmd
}

func newJiraUpdateCmd(jsonOutput *bool) *cobra.Command {
	var fields map[string]string

	cmd := &cobra.Command{
		Use:   "update <issue_key>",
		Short: "Update a tracker issue's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			err = a.mgr.JiraUpdate(cmd.Context(), sessionmgr.JiraUpdateParams{
				Key:    args[0],
				Fields: fieldsToAny(fields),
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to update issue: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{"key": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&fields, "field", nil, "field=value, by alias or raw field id (repeatable)")

	return cmd
}

func newJiraViewCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "view <issue_key>",
		Short: "Show a tracker issue's description, comments, links, and transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*jsonOutput)
			if err != nil {
				return err
			}
			detail, err := a.mgr.JiraView(cmd.Context(), args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to view issue: %v\n", err)
				return NewSilentError(err)
			}
			if *jsonOutput {
				return printJSON(cmd.OutOrStdout(), detail)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s [%s]\n", detail.Key, detail.Summary, detail.Status)
			if detail.Description != "" {
				fmt.Fprintln(cmd.OutOrStdout(), detail.Description)
			}
			return nil
		},
	}
}

// fieldsToAny widens a --field=value string map to the map[string]any shape
// tracker.CreateIssue/UpdateIssue expect, which also accepts non-string
// JSON values for fields set some other way in the future.
func fieldsToAny(fields map[string]string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
