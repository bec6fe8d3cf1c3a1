package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/devaiflow/daf/internal/agent"
)

// Relocate copies an agent's conversation file from its location under
// oldWorkDir's encoded path to the location under newWorkDir's encoded
// path, for ticket_creation sessions that run in a fresh throwaway work
// directory on every reopen. The stored agent-session-id is unchanged;
// only the per-encoded-path storage location moves.
func Relocate(ag agent.Agent, oldWorkDir, newWorkDir, agentSessionID string) error {
	if !ag.SupportsCapture() {
		return nil
	}

	oldPath, err := ag.ConversationFilePath(oldWorkDir, agentSessionID)
	if err != nil {
		return fmt.Errorf("capture: relocate: resolve old path: %w", err)
	}
	newPath, err := ag.ConversationFilePath(newWorkDir, agentSessionID)
	if err != nil {
		return fmt.Errorf("capture: relocate: resolve new path: %w", err)
	}
	if oldPath == newPath {
		return nil
	}

	if _, err := os.Stat(oldPath); os.IsNotExist(err) {
		// Nothing captured yet (e.g. the session was never launched); this
		// is not an error, there is simply nothing to move.
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("capture: relocate: create destination dir: %w", err)
	}
	if err := copyFile(oldPath, newPath); err != nil {
		return fmt.Errorf("capture: relocate: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy contents: %w", err)
	}
	return out.Sync()
}
