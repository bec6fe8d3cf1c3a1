package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient is an in-memory IssueTracker driven by a map of tickets. It
// backs both unit tests and the process-wide DAF_MOCK_MODE=1 toggle, so
// every session workflow can be exercised without a network call.
type MockClient struct {
	mu          sync.Mutex
	tickets     map[string]*TicketDetail
	comments    map[string][]Comment
	links       map[string][]IssueLink
	attachments map[string][]string
	transitions map[string][]Transition
	nextKey     int
	Project     string // key prefix used by CreateIssue, e.g. "PROJ"

	EditableFields  *FieldCatalog
	CreatableFields *FieldCatalog
}

// NewMockClient returns a MockClient seeded with an empty ticket set.
func NewMockClient(project string) *MockClient {
	return &MockClient{
		tickets:     make(map[string]*TicketDetail),
		comments:    make(map[string][]Comment),
		links:       make(map[string][]IssueLink),
		attachments: make(map[string][]string),
		transitions: make(map[string][]Transition),
		Project:     project,
	}
}

// Seed inserts or replaces a ticket, for test setup.
func (m *MockClient) Seed(detail *TicketDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[detail.Key] = detail
	if detail.Transitions != nil {
		m.transitions[detail.Key] = detail.Transitions
	}
}

func (m *MockClient) GetTicket(_ context.Context, key string) (*Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.tickets[key]
	if !ok {
		return nil, &NotFoundError{Kind: "issue", ID: key}
	}
	t := detail.Ticket
	return &t, nil
}

func (m *MockClient) GetTicketDetailed(_ context.Context, key string) (*TicketDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.tickets[key]
	if !ok {
		return nil, &NotFoundError{Kind: "issue", ID: key}
	}
	cp := *detail
	cp.Comments = append([]Comment(nil), m.comments[key]...)
	cp.Links = append([]IssueLink(nil), m.links[key]...)
	cp.Transitions = append([]Transition(nil), m.transitions[key]...)
	return &cp, nil
}

func (m *MockClient) ListTickets(_ context.Context, _ string) ([]Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Ticket, 0, len(m.tickets))
	for _, detail := range m.tickets {
		out = append(out, detail.Ticket)
	}
	return out, nil
}

func (m *MockClient) CreateIssue(_ context.Context, kind string, fields map[string]any) (*CreatedIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextKey++
	key := fmt.Sprintf("%s-%d", m.Project, m.nextKey)

	summary, _ := fields["summary"].(string)
	description, _ := fields["description"].(string)
	m.tickets[key] = &TicketDetail{
		Ticket: Ticket{
			Key:       key,
			Summary:   summary,
			Status:    "Open",
			IssueType: kind,
			UpdatedAt: time.Now(),
		},
		Description: description,
		Fields:      fields,
	}
	m.transitions[key] = []Transition{{ID: "11", Name: "In Progress"}, {ID: "21", Name: "Done"}}
	return &CreatedIssue{Key: key}, nil
}

func (m *MockClient) UpdateIssue(_ context.Context, key string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.tickets[key]
	if !ok {
		return &NotFoundError{Kind: "issue", ID: key}
	}
	if detail.Fields == nil {
		detail.Fields = map[string]any{}
	}
	for k, v := range fields {
		detail.Fields[k] = v
		switch k {
		case "summary":
			if s, ok := v.(string); ok {
				detail.Summary = s
			}
		case "description":
			if s, ok := v.(string); ok {
				detail.Description = s
			}
		}
	}
	detail.UpdatedAt = time.Now()
	return nil
}

func (m *MockClient) Transition(_ context.Context, key, targetState string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.tickets[key]
	if !ok {
		return &NotFoundError{Kind: "issue", ID: key}
	}
	for _, t := range m.transitions[key] {
		if t.Name == targetState || t.ID == targetState {
			detail.Status = t.Name
			detail.UpdatedAt = time.Now()
			return nil
		}
	}
	return &ValidationError{Fields: map[string]string{"target_state": "no such transition: " + targetState}}
}

func (m *MockClient) AvailableTransitions(_ context.Context, key string) ([]Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[key]; !ok {
		return nil, &NotFoundError{Kind: "issue", ID: key}
	}
	return append([]Transition(nil), m.transitions[key]...), nil
}

func (m *MockClient) AddComment(_ context.Context, key, text string, visibility *Visibility) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[key]; !ok {
		return &NotFoundError{Kind: "issue", ID: key}
	}
	_ = visibility // recorded verbatim by a real tracker; mock just stores the text
	m.comments[key] = append(m.comments[key], Comment{Author: "mock-user", Body: text, CreatedAt: time.Now()})
	return nil
}

func (m *MockClient) AttachFile(_ context.Context, key, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[key]; !ok {
		return &NotFoundError{Kind: "issue", ID: key}
	}
	m.attachments[key] = append(m.attachments[key], path)
	return nil
}

func (m *MockClient) LinkIssues(_ context.Context, key, linkType, otherKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[key]; !ok {
		return &NotFoundError{Kind: "issue", ID: key}
	}
	if _, ok := m.tickets[otherKey]; !ok {
		return &NotFoundError{Kind: "issue", ID: otherKey}
	}
	m.links[key] = append(m.links[key], IssueLink{Type: linkType, OtherKey: otherKey})
	return nil
}

func (m *MockClient) GetEditableFields(_ context.Context, key string) (*FieldCatalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[key]; !ok {
		return nil, &NotFoundError{Kind: "issue", ID: key}
	}
	if m.EditableFields != nil {
		cp := *m.EditableFields
		return &cp, nil
	}
	return defaultMockCatalog(), nil
}

func (m *MockClient) GetCreatableFields(_ context.Context, project, kind string) (*FieldCatalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreatableFields != nil {
		cp := *m.CreatableFields
		cp.Project, cp.Kind = project, kind
		return &cp, nil
	}
	catalog := defaultMockCatalog()
	catalog.Project, catalog.Kind = project, kind
	return catalog, nil
}

func defaultMockCatalog() *FieldCatalog {
	return &FieldCatalog{
		FetchedAt: time.Now(),
		Fields: []FieldSpec{
			{FieldID: "summary", DisplayName: "Summary", Type: "string", Required: true},
			{FieldID: "description", DisplayName: "Description", Type: "string"},
			{FieldID: "priority", DisplayName: "Priority", Type: "option", AllowedValues: []string{"Low", "Medium", "High"}},
			{FieldID: "labels", DisplayName: "Labels", Type: "array"},
		},
	}
}

var _ IssueTracker = (*MockClient)(nil)
var _ IssueTracker = (*Client)(nil)
