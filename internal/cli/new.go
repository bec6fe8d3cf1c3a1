package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/sessionmgr"
)

func newNewCmd(jsonOutput *bool) *cobra.Command {
	var (
		name      string
		goal      string
		workDir   string
		branch    string
		template  string
		workspace string
		agentName string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new development session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNew(cmd, *jsonOutput, sessionmgr.NewParams{
				Name:      name,
				Goal:      goal,
				WorkDir:   workDir,
				Branch:    branch,
				Template:  template,
				Workspace: workspace,
				AgentName: agent.Name(agentName),
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "session name (inferred from the work directory if omitted)")
	cmd.Flags().StringVar(&goal, "goal", "", "the goal to hand the agent (required)")
	cmd.Flags().StringVar(&workDir, "workdir", "", "the working directory to launch the agent in (required)")
	cmd.Flags().StringVar(&branch, "branch", "", "git branch to create or check out")
	cmd.Flags().StringVar(&template, "template", "", "prompt template name")
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace label for grouping sessions")
	cmd.Flags().StringVar(&agentName, "agent", string(agent.DefaultName), "which coding agent to launch")

	return cmd
}

func runNew(cmd *cobra.Command, jsonOutput bool, p sessionmgr.NewParams) error {
	a, err := newApp(jsonOutput)
	if err != nil {
		return err
	}

	if p.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving current directory: %w", err)
		}
		p.WorkDir = wd
	}

	sess, handle, err := a.mgr.New(cmd.Context(), p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		return NewSilentError(err)
	}

	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), sess); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Started session %q (%s)\n", sess.Name, sess.Status)
	}

	if handle == nil {
		return nil
	}
	return runAgentAndCapture(cmd.Context(), a, string(p.AgentName), sess.Name, p.WorkDir, handle, jsonOutput)
}
