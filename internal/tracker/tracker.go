// Package tracker talks to a JIRA-like issue tracker over HTTP, or to an
// in-memory mock with the same interface. Every method either returns a
// typed value or fails with one of the errors in errors.go; there are no
// silent false/nil returns for remote failures.
package tracker

import "context"

// IssueTracker is the interface shared by the real HTTP client and the
// in-memory mock used in tests and DAF_MOCK_MODE.
type IssueTracker interface {
	GetTicket(ctx context.Context, key string) (*Ticket, error)
	GetTicketDetailed(ctx context.Context, key string) (*TicketDetail, error)
	ListTickets(ctx context.Context, jql string) ([]Ticket, error)
	CreateIssue(ctx context.Context, kind string, fields map[string]any) (*CreatedIssue, error)
	UpdateIssue(ctx context.Context, key string, fields map[string]any) error
	Transition(ctx context.Context, key, targetState string) error
	AvailableTransitions(ctx context.Context, key string) ([]Transition, error)
	AddComment(ctx context.Context, key, text string, visibility *Visibility) error
	AttachFile(ctx context.Context, key, path string) error
	LinkIssues(ctx context.Context, key, linkType, otherKey string) error
	GetEditableFields(ctx context.Context, key string) (*FieldCatalog, error)
	GetCreatableFields(ctx context.Context, project, kind string) (*FieldCatalog, error)
}

// AuthMode selects how the real client authenticates.
type AuthMode string

const (
	AuthAuto   AuthMode = "auto"
	AuthBearer AuthMode = "bearer"
	AuthBasic  AuthMode = "basic"
)

// ValidateFieldCategories rejects a fields map that mixes system fields
// (reporter, assignee, labels, ...) with opaque custom-field ids in a
// single create/update call. Callers typically run this against a catalog
// fetched from GetCreatableFields/GetEditableFields before issuing the
// call.
func ValidateFieldCategories(catalog *FieldCatalog, fields map[string]any) error {
	if catalog == nil {
		return nil
	}
	sawSystem, sawCustom := false, false
	mixed := map[string]string{}
	for id := range fields {
		kind := FieldKindCustom
		if spec := catalog.Lookup(id); spec != nil {
			kind = spec.Category()
		} else if systemFieldIDs[id] {
			kind = FieldKindSystem
		}
		if kind == FieldKindSystem {
			sawSystem = true
		} else {
			sawCustom = true
		}
		mixed[id] = string(kind)
	}
	if sawSystem && sawCustom {
		return &ValidationError{Fields: mixed}
	}
	return nil
}
