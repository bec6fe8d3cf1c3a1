package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/capture"
	"github.com/devaiflow/daf/internal/sessionmgr"
)

// runAgentAndCapture waits for the spawned agent process to exit while
// concurrently watching for the conversation file it writes, then binds
// whatever id capture found back onto the session. On a capture miss it
// falls back to a manual-entry prompt interactively, or surfaces
// sessionmgr.ErrNeedsInteractive under --json, rather than silently
// leaving the session unbound.
func runAgentAndCapture(ctx context.Context, a *app, agentName, sessionName, workDir string, handle *agent.ProcessHandle, jsonOutput bool) error {
	ag, err := agentFactory(agentName)
	if err != nil {
		return fmt.Errorf("resolving agent for capture: %w", err)
	}

	captureDone := make(chan string, 1)
	if ag.SupportsCapture() {
		go func() {
			id, err := capture.Wait(ctx, ag, workDir, capture.Options{})
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					fmt.Fprintf(os.Stderr, "Warning: could not bind agent conversation: %v\n", err)
				}
				captureDone <- ""
				return
			}
			captureDone <- id
		}()
	} else {
		captureDone <- ""
	}

	waitErr := handle.Wait()

	agentSessionID := <-captureDone
	if agentSessionID == "" {
		agentSessionID, err = resolveAgentSessionID(jsonOutput)
		if err != nil {
			return err
		}
	}
	if agentSessionID != "" {
		if err := a.mgr.BindAgentSession(ctx, sessionName, workDir, agentSessionID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record agent session id: %v\n", err)
		}
	}

	return waitErr
}

// resolveAgentSessionID falls back to manual entry when automatic capture
// didn't find an id: a free-text prompt interactively, or
// ErrNeedsInteractive under --json so a scripted run fails cleanly instead
// of blocking on a terminal that isn't there. An empty return with a nil
// error means the caller declined to supply one.
func resolveAgentSessionID(jsonOutput bool) (string, error) {
	if jsonOutput {
		return "", &sessionmgr.ErrNeedsInteractive{Reason: "agent conversation id capture failed"}
	}

	var id string
	form := newForm(huh.NewGroup(
		huh.NewInput().
			Title("Could not auto-detect the agent conversation id").
			Description("Enter it manually, or leave blank to skip binding").
			Value(&id),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("manual conversation id prompt: %w", err)
	}
	return id, nil
}
