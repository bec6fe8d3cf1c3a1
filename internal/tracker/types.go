package tracker

import (
	"encoding/json"
	"fmt"
	"time"
)

// FieldKind distinguishes the tracker's standard fields from opaque
// custom-field ids. The command layer refuses to mix the two in a single
// call (surfaced as a ValidationError).
type FieldKind string

const (
	FieldKindSystem FieldKind = "system"
	FieldKindCustom FieldKind = "custom"
)

// systemFieldIDs are the standard field ids every backend is expected to
// expose under their native name.
var systemFieldIDs = map[string]bool{
	"reporter":       true,
	"assignee":       true,
	"components":     true,
	"labels":         true,
	"security_level": true,
	"priority":       true,
	"summary":        true,
	"description":    true,
}

// FieldSpec describes one field a tracker accepts on create or update.
type FieldSpec struct {
	FieldID       string    `json:"field_id"`
	DisplayName   string    `json:"display_name"`
	Type          string    `json:"type"`
	AllowedValues []string  `json:"allowed_values,omitempty"`
	Required      bool      `json:"required"`
	Kind          FieldKind `json:"-"`
}

// Category classifies the field so the command layer can reject callers
// that mix system and custom fields in the same request.
func (f FieldSpec) Category() FieldKind {
	if systemFieldIDs[f.FieldID] {
		return FieldKindSystem
	}
	return FieldKindCustom
}

// FieldCatalog is the set of fields creatable/editable for a given
// project+issue-kind combination. It round-trips unchanged through the
// per-backend cache file (backends/<backend>.json) via MarshalJSON /
// UnmarshalJSON, so stored caches and live API responses share one wire
// shape.
type FieldCatalog struct {
	Backend   string      `json:"backend"`
	Project   string      `json:"project,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	FetchedAt time.Time   `json:"fetched_at"`
	Fields    []FieldSpec `json:"fields"`
}

// fieldCatalogWire is the on-disk/wire shape; it exists only so
// (Un)MarshalJSON can normalize timestamps and field order without
// exposing those mechanics on FieldCatalog itself.
type fieldCatalogWire FieldCatalog

func (c FieldCatalog) MarshalJSON() ([]byte, error) {
	out, err := json.Marshal(fieldCatalogWire(c))
	if err != nil {
		return nil, fmt.Errorf("marshal field catalog: %w", err)
	}
	return out, nil
}

func (c *FieldCatalog) UnmarshalJSON(data []byte) error {
	var wire fieldCatalogWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshal field catalog: %w", err)
	}
	*c = FieldCatalog(wire)
	return nil
}

// Lookup finds a field by id, nil if absent.
func (c FieldCatalog) Lookup(fieldID string) *FieldSpec {
	for i := range c.Fields {
		if c.Fields[i].FieldID == fieldID {
			return &c.Fields[i]
		}
	}
	return nil
}

// Ticket is the tracker's native issue representation, as returned by
// get_ticket / list_tickets.
type Ticket struct {
	Key       string    `json:"key"`
	Summary   string    `json:"summary"`
	Status    string    `json:"status"`
	IssueType string    `json:"issue_type"`
	Assignee  string    `json:"assignee,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketDetail is the richer document returned by get_ticket_detailed,
// adding the fields a caller typically needs to build a prompt from an
// existing issue.
type TicketDetail struct {
	Ticket
	Description string            `json:"description"`
	Comments    []Comment         `json:"comments,omitempty"`
	Fields      map[string]any    `json:"fields,omitempty"`
	Links       []IssueLink       `json:"links,omitempty"`
	Transitions []Transition      `json:"transitions,omitempty"`
	CustomMeta  map[string]string `json:"custom_meta,omitempty"`
}

// Comment is one tracker comment, as returned on a ticket detail.
type Comment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueLink describes a relation between two issues (e.g. "relates to").
type IssueLink struct {
	Type     string `json:"type"`
	OtherKey string `json:"other_key"`
}

// Transition is one available workflow transition on an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Visibility restricts a comment to a group or role, emitted to the
// tracker verbatim.
type Visibility struct {
	Type  string `json:"type"` // "group" or "role"
	Value string `json:"value"`
}

// CreatedIssue is the result of create_issue.
type CreatedIssue struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}
