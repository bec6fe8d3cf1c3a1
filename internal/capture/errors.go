package capture

import "errors"

// ErrUnsupported is returned when the given agent does not write a
// parseable, discoverable conversation file (SupportsCapture()==false).
var ErrUnsupported = errors.New("capture: agent does not support conversation capture")

// ErrTimeout is returned when no new conversation file appeared within the
// configured deadline. Callers fall back to prompting the user for the
// agent-session-id, or fail with a clear error under --json.
var ErrTimeout = errors.New("capture: timed out waiting for a new conversation file")
