package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/devaiflow/daf/internal/logging"
	"github.com/devaiflow/daf/internal/redact"
)

// defaultTimeout bounds a single request; the tracker is assumed to be a
// network hop away, not a long-running job queue.
const defaultTimeout = 30 * time.Second

// Client is the real HTTP IssueTracker implementation. It resolves auth
// mode and API version on first use and caches the winner for its
// lifetime.
type Client struct {
	base       *url.URL
	token      string
	basicUser  string
	authHint   AuthMode
	httpClient *http.Client

	authCache    atomic.Value // AuthMode
	versionCache atomic.Value // string, "2" or "3"
}

// NewClient builds a tracker Client against baseURL (the tracker's root,
// e.g. "https://issues.example.com"). authHint selects AuthAuto,
// AuthBearer, or AuthBasic; basicUser is the username paired with token
// for basic auth (ignored under bearer).
func NewClient(baseURL, token, basicUser string, authHint AuthMode) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse tracker base url: %w", err)
	}
	if authHint == "" {
		authHint = AuthAuto
	}
	return &Client{
		base:      u,
		token:     token,
		basicUser: basicUser,
		authHint:  authHint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

func (c *Client) resolvedAuthMode() AuthMode {
	if c.authHint != AuthAuto {
		return c.authHint
	}
	if v, ok := c.authCache.Load().(AuthMode); ok {
		return v
	}
	return AuthBearer
}

func (c *Client) resolvedAPIVersion() string {
	if v, ok := c.versionCache.Load().(string); ok {
		return v
	}
	return "2"
}

// do sends a request against /rest/api/<version><rel>, transparently
// retrying once on a 410 (stale API version) and once on a 401 (wrong
// auth mode, only under AuthAuto), then caches whichever combination
// succeeded for the rest of the client's lifetime.
func (c *Client) do(ctx context.Context, method, rel string, body any, out any) error {
	return c.doNotFound(ctx, method, rel, body, out, "resource", "")
}

// doNotFound is like do but lets the caller name the resource kind/id so
// a 404 becomes a precise NotFoundError instead of a generic one.
func (c *Client) doNotFound(ctx context.Context, method, rel string, body any, out any, notFoundKind, notFoundID string) error {
	version := c.resolvedAPIVersion()
	auth := c.resolvedAuthMode()
	versionPinned := c.versionCache.Load() != nil
	authPinned := c.authHint != AuthAuto || c.authCache.Load() != nil

	var status int
	var respBody []byte
	for {
		var err error
		status, respBody, err = c.attempt(ctx, method, version, auth, rel, body)
		if err != nil {
			return &ConnectionError{Cause: err}
		}
		if status == http.StatusGone && !versionPinned {
			versionPinned = true
			version = "3"
			continue
		}
		if status == http.StatusUnauthorized && c.authHint == AuthAuto && !authPinned {
			authPinned = true
			auth = AuthBasic
			continue
		}
		break
	}

	c.versionCache.Store(version)
	if c.authHint == AuthAuto {
		c.authCache.Store(auth)
	}
	return interpretResponse(status, respBody, out, notFoundKind, notFoundID)
}

func (c *Client) attempt(ctx context.Context, method, version string, auth AuthMode, rel string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := strings.TrimRight(c.base.String(), "/") + "/rest/api/" + version + rel
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req, auth)

	debugLog(ctx, "tracker request", req.Method, reqURL, body)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	debugLog(ctx, "tracker response", req.Method, reqURL, resp.StatusCode)

	return resp.StatusCode, respBody, nil
}

func (c *Client) setAuthHeader(req *http.Request, auth AuthMode) {
	switch auth {
	case AuthBasic:
		user := c.basicUser
		if user == "" {
			user = c.token
		}
		creds := base64.StdEncoding.EncodeToString([]byte(user + ":" + c.token))
		req.Header.Set("Authorization", "Basic "+creds)
	default:
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// debugLog emits request/response tracing gated by DEVAIFLOW_DEBUG=1,
// redacting anything that looks like a credential before it reaches the
// log sink.
func debugLog(ctx context.Context, msg, method, reqURL string, detail any) {
	if os.Getenv("DEVAIFLOW_DEBUG") != "1" {
		return
	}
	line := fmt.Sprintf("%v", detail)
	logging.Debug(ctx, msg, "method", method, "url", redact.String(reqURL), "detail", redact.String(line))
}

// errorBody is the common JIRA-like error payload shape: a plain message
// list, or a field->message map for validation failures.
type errorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

func interpretResponse(status int, body []byte, out any, notFoundKind, notFoundID string) error {
	switch {
	case status >= 200 && status < 300:
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode tracker response: %w", err)
		}
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Message: excerpt(body)}
	case status == http.StatusNotFound:
		return &NotFoundError{Kind: notFoundKind, ID: notFoundID}
	case status == http.StatusBadRequest:
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		if len(eb.Errors) > 0 {
			return &ValidationError{Fields: eb.Errors}
		}
		return &ValidationError{Fields: map[string]string{"_": strings.Join(eb.ErrorMessages, "; ")}}
	default:
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return &APIError{StatusCode: status, Messages: eb.ErrorMessages, BodyExcerpt: excerpt(body)}
	}
}

func excerpt(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
