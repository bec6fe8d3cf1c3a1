// Package safety refuses mutating commands run from inside a spawned agent
// process. A coding agent that shells out to this tool risks nesting
// sessions, racing the index writer that owns its own conversation file, or
// corrupting the transcript the agent is presently appending to — so every
// mutating entry point checks INSIDE_AGENT before touching the store.
package safety

import (
	"fmt"
)

// InsideAgentEnvVar is the environment variable Agent sets to 1 before
// exec'ing a coding agent process. SafetyGuard reads it from child
// processes; it is never set by this tool itself.
const InsideAgentEnvVar = "INSIDE_AGENT"

// Operation names the command-layer operations SafetyGuard classifies.
// These match the operation names in SessionManager's public contracts.
type Operation string

const (
	OpNew           Operation = "new"
	OpOpen          Operation = "open"
	OpComplete      Operation = "complete"
	OpDelete        Operation = "delete"
	OpLink          Operation = "link"
	OpUnlink        Operation = "unlink"
	OpNoteAdd       Operation = "note_add"
	OpJiraNew       Operation = "jira_new"
	OpExport        Operation = "export"
	OpImport        Operation = "import"
	OpBackup        Operation = "backup"
	OpRestore       Operation = "restore"
	OpMaintenance   Operation = "maintenance"
	OpPauseTime     Operation = "pause_time"
	OpResumeTime    Operation = "resume_time"
	OpList          Operation = "list"
	OpInfo          Operation = "info"
	OpStatus        Operation = "status"
	OpActive        Operation = "active"
	OpNotesView     Operation = "notes_view"
	OpJiraView      Operation = "jira_view"
	OpJiraCreate    Operation = "jira_create"
	OpJiraUpdate    Operation = "jira_update"
	OpTime          Operation = "time"
	OpConfigShow    Operation = "config_show"
	OpConfigRefresh Operation = "config_refresh"
)

// mutating lists every operation SafetyGuard refuses when run inside an
// agent. Anything not in this table is treated as read-only and always
// proceeds — new read-only operations don't need to be added here, only
// new mutating ones.
var mutating = map[Operation]bool{
	OpNew:           true,
	OpOpen:          true,
	OpComplete:      true,
	OpDelete:        true,
	OpLink:          true,
	OpUnlink:        true,
	OpNoteAdd:       true,
	OpJiraNew:       true,
	OpExport:        true,
	OpImport:        true,
	OpBackup:        true,
	OpRestore:       true,
	OpMaintenance:   true,
	OpPauseTime:     true,
	OpResumeTime:    true,
	OpConfigRefresh: true,
}

// IsMutating reports whether op is classified as a mutating operation.
func IsMutating(op Operation) bool {
	return mutating[op]
}

// RefusedError is returned by Check when a mutating operation is attempted
// from inside a spawned agent. It names the triggering environment
// variable so the message is precise rather than generic.
type RefusedError struct {
	Operation Operation
	EnvVar    string
}

func (e *RefusedError) Error() string {
	return fmt.Sprintf("refusing %q: %s=1, this looks like it's running inside a spawned agent; exit the agent and run this command from your shell", e.Operation, e.EnvVar)
}

// Check refuses op if it is mutating and getenv reports the agent
// environment variable is set. getenv is injected (rather than calling
// os.Getenv directly) so callers and tests can supply a fixed environment
// without mutating process-global state.
func Check(op Operation, getenv func(string) string) error {
	if !IsMutating(op) {
		return nil
	}
	if getenv(InsideAgentEnvVar) == "1" {
		return &RefusedError{Operation: op, EnvVar: InsideAgentEnvVar}
	}
	return nil
}
