package tracker

import "fmt"

// AuthError is returned for 401/403 responses or a missing credential.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "tracker: authentication failed"
	}
	return "tracker: authentication failed: " + e.Message
}

// NotFoundError is returned for a 404 response. It carries the resource
// kind (e.g. "issue", "project") and the id that was looked up.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tracker: %s %q not found", e.Kind, e.ID)
}

// ValidationError is returned for a 400 response carrying field-level
// messages, or for a caller error (e.g. mixing system and custom field
// categories in a single call).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tracker: validation failed: %v", e.Fields)
}

// APIError is returned for any other 4xx/5xx response.
type APIError struct {
	StatusCode  int
	Messages    []string
	BodyExcerpt string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("tracker: api error (status %d): %v", e.StatusCode, e.Messages)
	}
	return fmt.Sprintf("tracker: api error (status %d): %s", e.StatusCode, e.BodyExcerpt)
}

// ConnectionError wraps a network or TLS failure reaching the tracker.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("tracker: connection failed: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}
