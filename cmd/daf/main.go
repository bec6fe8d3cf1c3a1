package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devaiflow/daf/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rootCmd := cli.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)

	if err != nil {
		jsonOutput := false
		if flag := rootCmd.PersistentFlags().Lookup("json"); flag != nil {
			jsonOutput = flag.Value.String() == "true"
		}

		var silent *cli.SilentError
		switch {
		case errors.As(err, &silent):
			// the command already printed its own error
		case strings.Contains(err.Error(), "unknown command") || strings.Contains(err.Error(), "unknown flag"):
			showSuggestion(rootCmd, err)
		default:
			fmt.Fprintln(rootCmd.OutOrStderr(), err)
		}

		exitCode, _, _ := cli.ClassifyError(err)
		if jsonOutput {
			if envErr := cli.WriteErrorEnvelope(rootCmd.OutOrStdout(), err); envErr != nil {
				fmt.Fprintln(rootCmd.OutOrStderr(), envErr)
			}
		}

		cancel()
		os.Exit(exitCode)
	}
	cancel()
}

func showSuggestion(cmd *cobra.Command, err error) {
	fmt.Fprint(cmd.OutOrStderr(), cmd.UsageString())
	fmt.Fprintf(cmd.OutOrStderr(), "\nError: invalid usage: %v\n", err)
}
