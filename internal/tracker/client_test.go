package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestClient(t *testing.T, srv *httptest.Server, authHint AuthMode) *Client {
	t.Helper()
	c, err := NewClient(srv.URL, "test-token", "test-user", authHint)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestClient_GetTicket_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"key": "PROJ-1",
			"fields": map[string]any{
				"summary":   "Fix the thing",
				"status":    map[string]string{"name": "Open"},
				"issuetype": map[string]string{"name": "Bug"},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, AuthBearer)
	ticket, err := c.GetTicket(context.Background(), "PROJ-1")
	if err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if ticket.Summary != "Fix the thing" || ticket.Status != "Open" {
		t.Errorf("GetTicket() = %+v", ticket)
	}
}

func TestClient_GetTicket_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, AuthBearer)
	_, err := c.GetTicket(context.Background(), "PROJ-404")

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("GetTicket() error = %v, want *NotFoundError", err)
	}
	if nf.ID != "PROJ-404" {
		t.Errorf("NotFoundError.ID = %q, want PROJ-404", nf.ID)
	}
}

func TestClient_AuthAuto_FallsBackToBasicOn401(t *testing.T) {
	t.Parallel()

	var sawBasic bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if auth != "" {
			sawBasic = true
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"key":    "PROJ-1",
			"fields": map[string]any{"summary": "ok"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, AuthAuto)
	if _, err := c.GetTicket(context.Background(), "PROJ-1"); err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if !sawBasic {
		t.Error("expected a basic-auth retry after the bearer attempt was rejected")
	}
	if c.resolvedAuthMode() != AuthBasic {
		t.Errorf("resolvedAuthMode() = %v, want cached AuthBasic", c.resolvedAuthMode())
	}

	// A second call should go straight to basic auth, no bearer attempt.
	var attempts int
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"key": "PROJ-2", "fields": map[string]any{}})
	}))
	defer srv2.Close()
	c.base = mustParseURL(t, srv2.URL)
	if _, err := c.GetTicket(context.Background(), "PROJ-2"); err != nil {
		t.Fatalf("second GetTicket() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected exactly one request once auth mode is cached, got %d", attempts)
	}
}

func TestClient_APIVersion_RetriesOnGone(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/2/issue/PROJ-1" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"key": "PROJ-1", "fields": map[string]any{}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, AuthBearer)
	if _, err := c.GetTicket(context.Background(), "PROJ-1"); err != nil {
		t.Fatalf("GetTicket() error = %v", err)
	}
	if c.resolvedAPIVersion() != "3" {
		t.Errorf("resolvedAPIVersion() = %q, want 3 after a 410 on v2", c.resolvedAPIVersion())
	}
}

func TestClient_ValidationError_CarriesFieldMessages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": map[string]string{"summary": "is required"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, AuthBearer)
	_, err := c.CreateIssue(context.Background(), "Bug", map[string]any{})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("CreateIssue() error = %v, want *ValidationError", err)
	}
	if ve.Fields["summary"] != "is required" {
		t.Errorf("ValidationError.Fields = %v", ve.Fields)
	}
}

func TestClient_ConnectionError_OnUnreachableHost(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})), AuthBearer)
	c.base = mustParseURL(t, "http://127.0.0.1:1")

	_, err := c.GetTicket(context.Background(), "PROJ-1")
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("GetTicket() error = %v, want *ConnectionError", err)
	}
}

func TestClient_Transition_UnknownTargetStateIsValidationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transitions": []map[string]any{{"id": "11", "name": "In Progress"}},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, AuthBearer)
	err := c.Transition(context.Background(), "PROJ-1", "Done")

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Transition() error = %v, want *ValidationError", err)
	}
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u
}
