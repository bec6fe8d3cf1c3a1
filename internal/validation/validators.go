// Package validation provides input validation functions for daf.
// This package has no dependencies to avoid import cycles.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// pathSafeRegex matches alphanumeric characters, underscores, and hyphens only.
// Used to validate IDs that will be used in file paths.
var pathSafeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// issueKeyRegex matches a JIRA-like issue key: PREFIX-INTEGER (spec invariant 6).
var issueKeyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]*-[0-9]+$`)

// ValidateSessionName validates a Session's unique name: path-safe, non-empty.
func ValidateSessionName(name string) error {
	if name == "" {
		return errors.New("session name cannot be empty")
	}
	if !pathSafeRegex.MatchString(name) {
		return fmt.Errorf("invalid session name %q: must be alphanumeric with underscores/hyphens only", name)
	}
	return nil
}

// ValidateIssueKey validates a tracker issue key against the PREFIX-INTEGER format.
func ValidateIssueKey(key string) error {
	if key == "" {
		return errors.New("issue key cannot be empty")
	}
	if !issueKeyRegex.MatchString(key) {
		return fmt.Errorf("invalid issue key %q: expected format PREFIX-NUMBER", key)
	}
	return nil
}

// ValidateSessionID validates that a session ID doesn't contain path separators.
// This prevents path traversal attacks when session IDs are used in file paths.
func ValidateSessionID(id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("invalid session ID %q: contains path separators", id)
	}
	return nil
}

// ValidateToolUseID validates that a tool use ID contains only safe characters for paths.
// Tool use IDs can be UUIDs or prefixed identifiers like "toolu_xxx".
func ValidateToolUseID(id string) error {
	if id == "" {
		return nil // Empty is allowed (optional field)
	}
	if !pathSafeRegex.MatchString(id) {
		return fmt.Errorf("invalid tool use ID %q: must be alphanumeric with underscores/hyphens only", id)
	}
	return nil
}

// ValidateAgentID validates that an agent ID contains only safe characters for paths.
func ValidateAgentID(id string) error {
	if id == "" {
		return nil // Empty is allowed (optional field)
	}
	if !pathSafeRegex.MatchString(id) {
		return fmt.Errorf("invalid agent ID %q: must be alphanumeric with underscores/hyphens only", id)
	}
	return nil
}

// ValidateAgentSessionID validates that an agent session ID contains only safe characters for paths.
// Agent session IDs can be UUIDs (Claude Code), test identifiers, or other formats depending on the agent.
// This prevents path traversal attacks when the ID is used in file path construction.
func ValidateAgentSessionID(id string) error {
	if id == "" {
		return errors.New("agent session ID cannot be empty")
	}
	if !pathSafeRegex.MatchString(id) {
		return fmt.Errorf("invalid agent session ID %q: must be alphanumeric with underscores/hyphens only", id)
	}
	return nil
}
