// Package capture binds the identifier an AI coding agent assigns its own
// conversation file to a Conversation, by watching the agent's per-project
// storage directory for the new file that appears once the agent starts
// writing.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devaiflow/daf/internal/agent"
	"github.com/devaiflow/daf/internal/logging"
)

// DefaultPollInterval is the fallback rescan tick when no filesystem watch
// could be established, and the minimum cadence applied even when one was.
const DefaultPollInterval = 500 * time.Millisecond

// DefaultTimeout bounds how long Wait waits for a new conversation file to
// appear before giving up.
const DefaultTimeout = 10 * time.Second

// Options tunes Wait's polling cadence and deadline.
type Options struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Wait snapshots ag's conversation directory for workDir, then watches it
// (fsnotify where possible, falling back to polling when the directory
// doesn't exist yet or the watch can't be established) until a new file
// appears. It returns the new file's stem as the agent-session-id. If more
// than one new file appears in the same window, it picks the one with the
// latest mtime and logs a warning.
func Wait(ctx context.Context, ag agent.Agent, workDir string, opts Options) (string, error) {
	if !ag.SupportsCapture() {
		return "", ErrUnsupported
	}
	opts = opts.withDefaults()

	dir, err := conversationDir(ag, workDir)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}

	before, err := snapshot(dir)
	if err != nil {
		return "", fmt.Errorf("capture: snapshot conversation dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	watcher, watchErr := fsnotify.NewWatcher()
	if watchErr == nil {
		if err := watcher.Add(dir); err != nil {
			// Directory likely doesn't exist yet; poll until it does.
			_ = watcher.Close()
			watcher = nil
		}
	} else {
		watcher = nil
	}
	if watcher != nil {
		defer func() { _ = watcher.Close() }()
	}

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	if watcher != nil {
		events = watcher.Events
	}

	for {
		if id, found, err := rescan(ctx, dir, before); err != nil {
			return "", fmt.Errorf("capture: %w", err)
		} else if found {
			return id, nil
		}

		select {
		case <-ctx.Done():
			return "", ErrTimeout
		case <-ticker.C:
		case _, ok := <-events:
			if !ok {
				events = nil
			}
			// Try to start watching now, in case the directory just appeared.
			if watcher != nil {
				_ = watcher.Add(dir)
			}
		}
	}
}

// conversationDir returns the directory ag's conversation files for workDir
// live in, derived from ConversationFilePath with an empty session id.
func conversationDir(ag agent.Agent, workDir string) (string, error) {
	path, err := ag.ConversationFilePath(workDir, "")
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// snapshot lists the file names currently in dir. A missing directory
// yields an empty snapshot rather than an error, since the agent may not
// have created it yet.
func snapshot(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			seen[e.Name()] = true
		}
	}
	return seen, nil
}

// rescan compares the current directory contents against before, returning
// the stem of the newest newly-appeared file.
func rescan(ctx context.Context, dir string, before map[string]bool) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	type candidate struct {
		name    string
		modTime time.Time
	}
	var fresh []candidate
	for _, e := range entries {
		if e.IsDir() || before[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fresh = append(fresh, candidate{name: e.Name(), modTime: info.ModTime()})
	}
	if len(fresh) == 0 {
		return "", false, nil
	}

	sort.Slice(fresh, func(i, j int) bool { return fresh[i].modTime.After(fresh[j].modTime) })
	if len(fresh) > 1 {
		logging.Warn(ctx, "capture: multiple new conversation files appeared, picking the most recent",
			"dir", dir, "count", len(fresh), "picked", fresh[0].name)
	}

	stem := strings.TrimSuffix(fresh[0].name, filepath.Ext(fresh[0].name))
	return stem, true, nil
}
