package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// wireTicket is the JIRA-like wire shape for an issue summary.
type wireTicket struct {
	Key    string `json:"key"`
	Fields struct {
		Summary   string `json:"summary"`
		Status    struct{ Name string `json:"name"` } `json:"status"`
		IssueType struct{ Name string `json:"name"` } `json:"issuetype"`
		Assignee  *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		Updated string `json:"updated"`
	} `json:"fields"`
}

func (w *wireTicket) toTicket() Ticket {
	t := Ticket{
		Key:       w.Key,
		Summary:   w.Fields.Summary,
		Status:    w.Fields.Status.Name,
		IssueType: w.Fields.IssueType.Name,
	}
	if w.Fields.Assignee != nil {
		t.Assignee = w.Fields.Assignee.DisplayName
	}
	t.UpdatedAt = parseTimeBestEffort(w.Fields.Updated)
	return t
}

func (c *Client) GetTicket(ctx context.Context, key string) (*Ticket, error) {
	var raw wireTicket
	if err := c.doNotFound(ctx, http.MethodGet, "/issue/"+url.PathEscape(key)+"?fields=summary,status,issuetype,assignee,updated",
		nil, &raw, "issue", key); err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", key, err)
	}
	t := raw.toTicket()
	return &t, nil
}

type wireTicketDetail struct {
	wireTicket
	Fields struct {
		Description string         `json:"description"`
		Comment     struct{ Comments []wireComment `json:"comments"` } `json:"comment"`
		IssueLinks  []wireIssueLink `json:"issuelinks"`
	} `json:"fields"`
}

type wireComment struct {
	Author  struct{ DisplayName string `json:"displayName"` } `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

type wireIssueLink struct {
	Type struct{ Name string `json:"name"` } `json:"type"`
	OutwardIssue *struct{ Key string `json:"key"` } `json:"outwardIssue"`
	InwardIssue  *struct{ Key string `json:"key"` } `json:"inwardIssue"`
}

func (c *Client) GetTicketDetailed(ctx context.Context, key string) (*TicketDetail, error) {
	var raw wireTicketDetail
	if err := c.doNotFound(ctx, http.MethodGet, "/issue/"+url.PathEscape(key), nil, &raw, "issue", key); err != nil {
		return nil, fmt.Errorf("get ticket detail %s: %w", key, err)
	}

	detail := &TicketDetail{
		Ticket:      raw.wireTicket.toTicket(),
		Description: raw.Fields.Description,
	}
	for _, wc := range raw.Fields.Comment.Comments {
		detail.Comments = append(detail.Comments, Comment{
			Author:    wc.Author.DisplayName,
			Body:      wc.Body,
			CreatedAt: parseTimeBestEffort(wc.Created),
		})
	}
	for _, wl := range raw.Fields.IssueLinks {
		other := ""
		if wl.OutwardIssue != nil {
			other = wl.OutwardIssue.Key
		} else if wl.InwardIssue != nil {
			other = wl.InwardIssue.Key
		}
		detail.Links = append(detail.Links, IssueLink{Type: wl.Type.Name, OtherKey: other})
	}

	transitions, err := c.AvailableTransitions(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get ticket detail %s: %w", key, err)
	}
	detail.Transitions = transitions

	return detail, nil
}

func (c *Client) ListTickets(ctx context.Context, jql string) ([]Ticket, error) {
	var raw struct {
		Issues []wireTicket `json:"issues"`
	}
	rel := "/search?jql=" + url.QueryEscape(jql) + "&fields=summary,status,issuetype,assignee,updated"
	if err := c.do(ctx, http.MethodGet, rel, nil, &raw); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	tickets := make([]Ticket, len(raw.Issues))
	for i := range raw.Issues {
		tickets[i] = raw.Issues[i].toTicket()
	}
	return tickets, nil
}

func (c *Client) CreateIssue(ctx context.Context, kind string, fields map[string]any) (*CreatedIssue, error) {
	payload := map[string]any{
		"fields": mergeIssueType(fields, kind),
	}
	var raw struct {
		Key  string `json:"key"`
		Self string `json:"self"`
	}
	if err := c.do(ctx, http.MethodPost, "/issue", payload, &raw); err != nil {
		return nil, fmt.Errorf("create issue (%s): %w", kind, err)
	}
	return &CreatedIssue{Key: raw.Key, URL: raw.Self}, nil
}

func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	payload := map[string]any{"fields": fields}
	if err := c.doNotFound(ctx, http.MethodPut, "/issue/"+url.PathEscape(key), payload, nil, "issue", key); err != nil {
		return fmt.Errorf("update issue %s: %w", key, err)
	}
	return nil
}

func (c *Client) Transition(ctx context.Context, key, targetState string) error {
	transitions, err := c.AvailableTransitions(ctx, key)
	if err != nil {
		return fmt.Errorf("transition %s: %w", key, err)
	}
	var id string
	for _, t := range transitions {
		if strings.EqualFold(t.Name, targetState) || t.ID == targetState {
			id = t.ID
			break
		}
	}
	if id == "" {
		return &ValidationError{Fields: map[string]string{"target_state": fmt.Sprintf("no transition named %q from current state", targetState)}}
	}
	payload := map[string]any{"transition": map[string]string{"id": id}}
	if err := c.doNotFound(ctx, http.MethodPost, "/issue/"+url.PathEscape(key)+"/transitions", payload, nil, "issue", key); err != nil {
		return fmt.Errorf("transition %s to %s: %w", key, targetState, err)
	}
	return nil
}

func (c *Client) AvailableTransitions(ctx context.Context, key string) ([]Transition, error) {
	var raw struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			To   struct{ Name string `json:"name"` } `json:"to"`
		} `json:"transitions"`
	}
	if err := c.doNotFound(ctx, http.MethodGet, "/issue/"+url.PathEscape(key)+"/transitions", nil, &raw, "issue", key); err != nil {
		return nil, fmt.Errorf("available transitions %s: %w", key, err)
	}
	out := make([]Transition, len(raw.Transitions))
	for i, t := range raw.Transitions {
		name := t.Name
		if name == "" {
			name = t.To.Name
		}
		out[i] = Transition{ID: t.ID, Name: name}
	}
	return out, nil
}

func (c *Client) AddComment(ctx context.Context, key, text string, visibility *Visibility) error {
	payload := map[string]any{"body": text}
	if visibility != nil {
		payload["visibility"] = visibility
	}
	if err := c.doNotFound(ctx, http.MethodPost, "/issue/"+url.PathEscape(key)+"/comment", payload, nil, "issue", key); err != nil {
		return fmt.Errorf("add comment on %s: %w", key, err)
	}
	return nil
}

func (c *Client) AttachFile(ctx context.Context, key, path string) error {
	if err := c.attachFile(ctx, key, path); err != nil {
		return fmt.Errorf("attach file on %s: %w", key, err)
	}
	return nil
}

func (c *Client) LinkIssues(ctx context.Context, key, linkType, otherKey string) error {
	payload := map[string]any{
		"type":         map[string]string{"name": linkType},
		"inwardIssue":  map[string]string{"key": key},
		"outwardIssue": map[string]string{"key": otherKey},
	}
	if err := c.do(ctx, http.MethodPost, "/issueLink", payload, nil); err != nil {
		return fmt.Errorf("link %s %s %s: %w", key, linkType, otherKey, err)
	}
	return nil
}

func (c *Client) GetEditableFields(ctx context.Context, key string) (*FieldCatalog, error) {
	var raw struct {
		Fields map[string]struct {
			Name     string   `json:"name"`
			Required bool     `json:"required"`
			Schema   struct{ Type string `json:"type"` } `json:"schema"`
			AllowedValues []struct {
				Value string `json:"value"`
				Name  string `json:"name"`
			} `json:"allowedValues"`
		} `json:"fields"`
	}
	if err := c.doNotFound(ctx, http.MethodGet, "/issue/"+url.PathEscape(key)+"/editmeta", nil, &raw, "issue", key); err != nil {
		return nil, fmt.Errorf("get editable fields %s: %w", key, err)
	}
	catalog := &FieldCatalog{}
	for id, f := range raw.Fields {
		catalog.Fields = append(catalog.Fields, toFieldSpec(id, f.Name, f.Schema.Type, f.Required, f.AllowedValues))
	}
	return catalog, nil
}

func (c *Client) GetCreatableFields(ctx context.Context, project, kind string) (*FieldCatalog, error) {
	rel := fmt.Sprintf("/issue/createmeta?projectKeys=%s&issuetypeNames=%s&expand=projects.issuetypes.fields",
		url.QueryEscape(project), url.QueryEscape(kind))
	var raw struct {
		Projects []struct {
			IssueTypes []struct {
				Name   string `json:"name"`
				Fields map[string]struct {
					Name     string `json:"name"`
					Required bool   `json:"required"`
					Schema   struct{ Type string `json:"type"` } `json:"schema"`
					AllowedValues []struct {
						Value string `json:"value"`
						Name  string `json:"name"`
					} `json:"allowedValues"`
				} `json:"fields"`
			} `json:"issuetypes"`
		} `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, rel, nil, &raw); err != nil {
		return nil, fmt.Errorf("get creatable fields %s/%s: %w", project, kind, err)
	}

	catalog := &FieldCatalog{Project: project, Kind: kind}
	for _, p := range raw.Projects {
		for _, it := range p.IssueTypes {
			if !strings.EqualFold(it.Name, kind) {
				continue
			}
			for id, f := range it.Fields {
				catalog.Fields = append(catalog.Fields, toFieldSpec(id, f.Name, f.Schema.Type, f.Required, f.AllowedValues))
			}
		}
	}
	return catalog, nil
}

func toFieldSpec(id, name, fieldType string, required bool, allowed []struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}) FieldSpec {
	spec := FieldSpec{FieldID: id, DisplayName: name, Type: fieldType, Required: required}
	for _, av := range allowed {
		v := av.Value
		if v == "" {
			v = av.Name
		}
		spec.AllowedValues = append(spec.AllowedValues, v)
	}
	spec.Kind = spec.Category()
	return spec
}

func mergeIssueType(fields map[string]any, kind string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["issuetype"] = map[string]string{"name": kind}
	return out
}

