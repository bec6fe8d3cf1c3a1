package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const longDescription = `daf binds an issue tracker, a git checkout, and a spawned AI coding agent
into one persistent session. Use "daf new" to start one and "daf open" to
resume it later; "daf complete" closes it out.

Environment Variables:
  DEVAIFLOW_HOME    Overrides the session-store root (default ~/.daf-sessions).
  INSIDE_AGENT      Set by daf itself before spawning an agent; refuses
                    mutating commands when already 1, to avoid nested sessions.
  ACCESSIBLE        Set to any value to use plain text prompts instead of
                    interactive TUI forms.
`

// NewRootCmd builds the daf command tree.
func NewRootCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "daf",
		Short: "Developer AI workflow orchestrator",
		Long:  longDescription,
		// main.go prints the error; avoid cobra printing it twice.
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of interactive output")

	cmd.AddCommand(newNewCmd(&jsonOutput))
	cmd.AddCommand(newOpenCmd(&jsonOutput))
	cmd.AddCommand(newCompleteCmd(&jsonOutput))
	cmd.AddCommand(newDeleteCmd(&jsonOutput))
	cmd.AddCommand(newLinkCmd(&jsonOutput))
	cmd.AddCommand(newUnlinkCmd(&jsonOutput))
	cmd.AddCommand(newNoteCmd(&jsonOutput))
	cmd.AddCommand(newSyncCmd(&jsonOutput))
	cmd.AddCommand(newJiraCmd(&jsonOutput))
	cmd.AddCommand(newInvestigateCmd(&jsonOutput))
	cmd.AddCommand(newListCmd(&jsonOutput))
	cmd.AddCommand(newInfoCmd(&jsonOutput))
	cmd.AddCommand(newStatusCmd(&jsonOutput))
	cmd.AddCommand(newActiveCmd(&jsonOutput))
	cmd.AddCommand(newTimeCmd(&jsonOutput))
	cmd.AddCommand(newConfigCmd(&jsonOutput))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("daf %s\n", Version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
