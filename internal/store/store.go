package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/devaiflow/daf/internal/jsonutil"
	"github.com/devaiflow/daf/internal/logging"
	"github.com/devaiflow/daf/internal/paths"
)

// IndexEntry is the lightweight per-session record kept in sessions.json —
// enough to satisfy list() without loading every session's metadata.json.
type IndexEntry struct {
	Name         string        `json:"name"`
	IssueKey     string        `json:"issue_key,omitempty"`
	Status       SessionStatus `json:"status"`
	Type         SessionType   `json:"type"`
	LastActiveAt time.Time     `json:"last_active_at"`
}

// Store persists Sessions under a root directory, guarding multi-file
// mutations with an advisory lock.
type Store struct {
	root string
	lock *Lock
}

// New returns a Store rooted at root (typically paths.Root()).
func New(root string) *Store {
	return &Store{root: root, lock: newLock(paths.LockPath(root))}
}

// WithLock acquires the store-wide advisory lock for the duration of fn and
// releases it afterward, regardless of whether fn succeeds.
func (s *Store) WithLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return fmt.Errorf("creating store root: %w", err)
	}
	if err := s.lock.Acquire(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	defer func() {
		if err := s.lock.Release(); err != nil {
			logging.Warn(ctx, "releasing store lock", slog.String("error", err.Error()))
		}
	}()
	return fn()
}

// LoadIndex reads sessions.json, returning an empty index if it doesn't
// exist yet (a fresh store).
func (s *Store) LoadIndex() (map[string]IndexEntry, error) {
	path := paths.SessionsIndexPath(s.root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]IndexEntry{}, nil
		}
		return nil, fmt.Errorf("reading session index: %w", err)
	}
	index := map[string]IndexEntry{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing session index: %w", err)
	}
	return index, nil
}

func (s *Store) saveIndex(index map[string]IndexEntry) error {
	return atomicWriteJSON(paths.SessionsIndexPath(s.root), index)
}

// LoadAll reads the index, then every session's metadata.json, applying
// schema migration. A session whose metadata is corrupt is quarantined and
// skipped rather than aborting the whole load; an index entry with no
// metadata file on disk is dropped and logged.
func (s *Store) LoadAll(ctx context.Context) ([]*Session, error) {
	index, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, len(index))
	for name := range index {
		sess, err := s.loadSession(name)
		if err != nil {
			var corrupt *CorruptSessionError
			switch {
			case errors.As(err, &corrupt):
				logging.Warn(ctx, "quarantined corrupt session metadata",
					slog.String("session", name), slog.String("quarantine_path", corrupt.QuarantinePath))
				continue
			case errors.Is(err, os.ErrNotExist):
				logging.Warn(ctx, "index entry has no metadata file, dropping", slog.String("session", name))
				continue
			default:
				return nil, err
			}
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// Get loads a single session by name.
func (s *Store) Get(name string) (*Session, error) {
	sess, err := s.loadSession(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return sess, nil
}

func (s *Store) loadSession(name string) (*Session, error) {
	path := paths.SessionMetadataPath(s.root, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, s.quarantine(path, name, err)
	}

	version, _ := doc["schema_version"].(float64)
	migrated, err := applyMigrations(doc, int(version))
	if err != nil {
		return nil, s.quarantine(path, name, err)
	}

	redone, err := json.Marshal(migrated)
	if err != nil {
		return nil, s.quarantine(path, name, err)
	}

	var sess Session
	if err := json.Unmarshal(redone, &sess); err != nil {
		return nil, s.quarantine(path, name, err)
	}
	return &sess, nil
}

func (s *Store) quarantine(path, name string, cause error) error {
	quarantinePath := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
	if err := os.Rename(path, quarantinePath); err != nil {
		return fmt.Errorf("quarantining corrupt session %q: %w (original error: %v)", name, err, cause)
	}
	return &CorruptSessionError{Name: name, QuarantinePath: quarantinePath, Cause: cause}
}

// Save validates and persists a Session atomically, then updates the
// index. The metadata file is written before the index so that a crash
// between the two leaves the index pointing at the pre-write session
// (the index is the authoritative pointer into truth, written last).
func (s *Store) Save(sess *Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	sess.SchemaVersion = CurrentSchemaVersion

	if err := os.MkdirAll(paths.SessionDir(s.root, sess.Name), 0o750); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	if err := atomicWriteJSON(paths.SessionMetadataPath(s.root, sess.Name), sess); err != nil {
		return fmt.Errorf("saving session %q: %w", sess.Name, err)
	}

	index, err := s.LoadIndex()
	if err != nil {
		return err
	}
	index[sess.Name] = IndexEntry{
		Name:         sess.Name,
		IssueKey:     sess.IssueKey,
		Status:       sess.Status,
		Type:         sess.Type,
		LastActiveAt: sess.LastActiveAt,
	}
	return s.saveIndex(index)
}

// Delete removes a session's directory and its index entry. The index is
// updated first so a load immediately after a partial delete never sees a
// dangling entry.
func (s *Store) Delete(name string) error {
	index, err := s.LoadIndex()
	if err != nil {
		return err
	}
	delete(index, name)
	if err := s.saveIndex(index); err != nil {
		return err
	}
	if err := os.RemoveAll(paths.SessionDir(s.root, name)); err != nil {
		return fmt.Errorf("deleting session directory: %w", err)
	}
	return nil
}

// AgentSessionIDs returns every agent_session_id bound across all sessions'
// active and archived conversation contexts, for enforcing invariant 4
// (global uniqueness) before Capture binds a new one.
func (s *Store) AgentSessionIDs(ctx context.Context) (map[string]bool, error) {
	sessions, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, sess := range sessions {
		for _, conv := range sess.Conversations {
			if conv.Active != nil && conv.Active.AgentSessionID != "" {
				ids[conv.Active.AgentSessionID] = true
			}
			for _, archived := range conv.Archived {
				if archived.AgentSessionID != "" {
					ids[archived.AgentSessionID] = true
				}
			}
		}
	}
	return ids, nil
}

// atomicWriteJSON marshals v and writes it to path via a sibling temp file,
// fsync, then rename — so a crash mid-write never leaves a half-written
// file visible at path.
func atomicWriteJSON(path string, v any) error {
	data, err := jsonutil.MarshalIndentWithNewline(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("fsyncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
