package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"

	"github.com/creack/pty"
)

// ProcessHandle wraps a spawned agent child process. The parent forwards
// termination signals to the child for as long as the handle is waited on;
// the child is never orphaned.
type ProcessHandle struct {
	cmd *exec.Cmd
	pty *os.File

	waitOnce sync.Once
	waitErr  error
}

// Pid returns the child process id.
func (h *ProcessHandle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Wait blocks until the child exits, forwarding SIGINT/SIGTERM (SIGBREAK on
// Windows) from the parent to the child for the duration of the wait.
func (h *ProcessHandle) Wait() error {
	h.waitOnce.Do(func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, terminationSignals()...)

		forwardDone := make(chan struct{})
		go func() {
			defer close(forwardDone)
			sig, ok := <-sigCh
			if !ok || h.cmd.Process == nil {
				return
			}
			_ = h.cmd.Process.Signal(sig)
		}()

		h.waitErr = h.cmd.Wait()
		signal.Stop(sigCh)
		close(sigCh)
		<-forwardDone
		if h.pty != nil {
			_ = h.pty.Close()
		}
	})
	return h.waitErr
}

// spawnOptions configures a single agent invocation.
type spawnOptions struct {
	binary  string
	args    []string
	workDir string
	env     []string
	usePTY  bool
}

// spawn starts an agent CLI as a child process with inherited stdio (or a
// pseudo-terminal when usePTY is set, for agents that need one to render
// their interactive UI correctly), and sets the environment contract
// (INSIDE_AGENT=1, AI_AGENT_SESSION_ID) every variant relies on.
func spawn(ctx context.Context, sessionIdentifier string, opts spawnOptions) (*ProcessHandle, error) {
	cmd := exec.CommandContext(ctx, opts.binary, opts.args...)
	cmd.Dir = opts.workDir
	cmd.Env = append(append([]string{}, opts.env...),
		"INSIDE_AGENT=1",
		"AI_AGENT_SESSION_ID="+sessionIdentifier,
	)

	handle := &ProcessHandle{cmd: cmd}

	if opts.usePTY {
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to start %s under pty: %w", opts.binary, err)
		}
		handle.pty = ptmx
		go func() { _, _ = io.Copy(os.Stdout, ptmx) }()
		go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
		return handle, nil
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", opts.binary, err)
	}
	return handle, nil
}
