package tracker

import (
	"context"
	"errors"
	"testing"
)

func TestMockClient_CreateThenGet(t *testing.T) {
	t.Parallel()

	m := NewMockClient("PROJ")
	created, err := m.CreateIssue(context.Background(), "Bug", map[string]any{
		"summary":     "Widget breaks on click",
		"description": "steps to reproduce...",
	})
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}

	detail, err := m.GetTicketDetailed(context.Background(), created.Key)
	if err != nil {
		t.Fatalf("GetTicketDetailed() error = %v", err)
	}
	if detail.Summary != "Widget breaks on click" || detail.IssueType != "Bug" {
		t.Errorf("GetTicketDetailed() = %+v", detail)
	}
}

func TestMockClient_GetTicket_NotFound(t *testing.T) {
	t.Parallel()

	m := NewMockClient("PROJ")
	_, err := m.GetTicket(context.Background(), "PROJ-999")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("GetTicket() error = %v, want *NotFoundError", err)
	}
}

func TestMockClient_TransitionFollowsAvailableTransitions(t *testing.T) {
	t.Parallel()

	m := NewMockClient("PROJ")
	created, _ := m.CreateIssue(context.Background(), "Task", map[string]any{"summary": "x"})

	if err := m.Transition(context.Background(), created.Key, "In Progress"); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	ticket, _ := m.GetTicket(context.Background(), created.Key)
	if ticket.Status != "In Progress" {
		t.Errorf("Status = %q, want In Progress", ticket.Status)
	}

	err := m.Transition(context.Background(), created.Key, "Nonexistent")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Transition() to unknown state error = %v, want *ValidationError", err)
	}
}

func TestMockClient_AddCommentAndLink(t *testing.T) {
	t.Parallel()

	m := NewMockClient("PROJ")
	a, _ := m.CreateIssue(context.Background(), "Task", map[string]any{"summary": "a"})
	b, _ := m.CreateIssue(context.Background(), "Task", map[string]any{"summary": "b"})

	if err := m.AddComment(context.Background(), a.Key, "looks good", nil); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if err := m.LinkIssues(context.Background(), a.Key, "relates to", b.Key); err != nil {
		t.Fatalf("LinkIssues() error = %v", err)
	}

	detail, err := m.GetTicketDetailed(context.Background(), a.Key)
	if err != nil {
		t.Fatalf("GetTicketDetailed() error = %v", err)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].Body != "looks good" {
		t.Errorf("Comments = %+v", detail.Comments)
	}
	if len(detail.Links) != 1 || detail.Links[0].OtherKey != b.Key {
		t.Errorf("Links = %+v", detail.Links)
	}
}

func TestMockClient_GetCreatableFields_DefaultsToSummaryDescription(t *testing.T) {
	t.Parallel()

	m := NewMockClient("PROJ")
	catalog, err := m.GetCreatableFields(context.Background(), "PROJ", "Bug")
	if err != nil {
		t.Fatalf("GetCreatableFields() error = %v", err)
	}
	if catalog.Lookup("summary") == nil {
		t.Error("expected default catalog to include a summary field")
	}
}
