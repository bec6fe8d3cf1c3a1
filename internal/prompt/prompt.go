// Package prompt assembles the initial text handed to an agent when a
// session is launched or resumed. Assemble is purely functional — the same
// Inputs always produce the same string — composing ordered sections the
// way summarize.FormatCondensedTranscript composes a condensed transcript
// from bracketed-header entries.
package prompt

import (
	"fmt"
	"strings"

	"github.com/devaiflow/daf/internal/store"
)

// ContextFile is one of the enterprise/organization/team/user context
// documents, in that composition order. Content is empty when the file
// doesn't exist or couldn't be read; Assemble skips it in that case.
type ContextFile struct {
	Label   string // "Enterprise", "Organization", "Team", "User"
	Path    string
	Content string
}

// Inputs holds everything Assemble needs to build a launch prompt.
type Inputs struct {
	ContextFiles []ContextFile

	IssueKey  string
	IssueBody string // empty when no tracker issue is bound

	Goal string

	SessionType store.SessionType

	// AgentReadsFiles selects whether a readable context file is inlined
	// or referenced by a read instruction: some agents can read files from
	// disk themselves, making inlining wasteful context; others only see
	// what's in the initial prompt.
	AgentReadsFiles bool
}

// Assemble composes, in order: context files (enterprise, organization,
// team, user), the bound issue body, the user's goal, and any policy
// reminder for the session's type.
func Assemble(in Inputs) string {
	var sb strings.Builder
	wroteSection := false

	writeSection := func(header, body string) {
		if wroteSection {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "## %s\n%s", header, body)
		wroteSection = true
	}

	for _, cf := range in.ContextFiles {
		if cf.Content == "" {
			continue
		}
		if in.AgentReadsFiles {
			writeSection(cf.Label+" context", fmt.Sprintf("Read %s for %s context before starting.", cf.Path, cf.Label))
		} else {
			writeSection(cf.Label+" context", cf.Content)
		}
	}

	if in.IssueBody != "" {
		header := "Linked issue"
		if in.IssueKey != "" {
			header = fmt.Sprintf("Linked issue (%s)", in.IssueKey)
		}
		writeSection(header, in.IssueBody)
	}

	if in.Goal != "" {
		writeSection("Goal", in.Goal)
	}

	if reminder := policyReminder(in.SessionType); reminder != "" {
		writeSection("Policy", reminder)
	}

	return sb.String()
}

func policyReminder(sessionType store.SessionType) string {
	switch sessionType {
	case store.TypeTicketCreation:
		return "This is a ticket-creation session: read-only analysis only. Do not create a branch, make commits, or open a pull request. When you're done, summarize your findings so the user can file the tracker issue."
	case store.TypeInvestigation:
		return "This is an investigation session: no commits, no pull requests. Investigate and report findings."
	default:
		return ""
	}
}
