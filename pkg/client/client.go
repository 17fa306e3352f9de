// Package client provides a Go client library for the Folio API server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// Client communicates with the Folio API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new Folio API client pointing at the given base URL
// (e.g. "http://127.0.0.1:7117").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Problems   []string
}

func (e *APIError) Error() string {
	if len(e.Problems) > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// doRequest builds and executes an HTTP request.
// If body is non-nil it is JSON-encoded and sent as the request body.
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// doJSON executes a request, checks for a 2xx status, and JSON-decodes
// the response body into target (when target is non-nil).
func (c *Client) doJSON(method, path string, body interface{}, target interface{}) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var envelope struct {
			Error    string   `json:"error"`
			Problems []string `json:"problems"`
		}
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
			apiErr.Problems = envelope.Problems
		}
		return apiErr
	}

	if target != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

// Healthz checks whether the API server is healthy.
func (c *Client) Healthz() error {
	return c.doJSON(http.MethodGet, "/healthz", nil, nil)
}

// ---------------------------------------------------------------------------
// Posts
// ---------------------------------------------------------------------------

// ListFilter narrows list results. Zero values match everything.
type ListFilter struct {
	Featured *bool
	Tag      string // posts only
	Category string // projects only
}

func (f ListFilter) query() string {
	q := url.Values{}
	if f.Featured != nil {
		q.Set("featured", strconv.FormatBool(*f.Featured))
	}
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListPosts returns posts in display order.
func (c *Client) ListPosts(f ListFilter) ([]v1alpha1.Post, error) {
	var out []v1alpha1.Post
	if err := c.doJSON(http.MethodGet, "/api/v1alpha1/posts"+f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPost retrieves a post by slug.
func (c *Client) GetPost(slug string) (*v1alpha1.Post, error) {
	var out v1alpha1.Post
	if err := c.doJSON(http.MethodGet, "/api/v1alpha1/posts/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenderPost returns the post content rendered as HTML.
func (c *Client) RenderPost(slug string) (string, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1alpha1/posts/"+url.PathEscape(slug)+"/html", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return string(body), nil
}

// CreatePost adds a post. The server derives the slug and publish date.
func (c *Client) CreatePost(p *v1alpha1.Post) (*v1alpha1.Post, error) {
	var out v1alpha1.Post
	if err := c.doJSON(http.MethodPost, "/api/v1alpha1/posts", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost merges fields (JSON names) into the post with slug.
func (c *Client) UpdatePost(slug string, fields map[string]interface{}) (*v1alpha1.Post, error) {
	var out v1alpha1.Post
	if err := c.doJSON(http.MethodPatch, "/api/v1alpha1/posts/"+url.PathEscape(slug), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes a post. Deleting a missing post is not an error.
func (c *Client) DeletePost(slug string) error {
	return c.doJSON(http.MethodDelete, "/api/v1alpha1/posts/"+url.PathEscape(slug), nil, nil)
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// ListProjects returns projects in display order.
func (c *Client) ListProjects(f ListFilter) ([]v1alpha1.Project, error) {
	var out []v1alpha1.Project
	if err := c.doJSON(http.MethodGet, "/api/v1alpha1/projects"+f.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject retrieves a project by id.
func (c *Client) GetProject(id string) (*v1alpha1.Project, error) {
	var out v1alpha1.Project
	if err := c.doJSON(http.MethodGet, "/api/v1alpha1/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject adds a project. The server derives the id.
func (c *Client) CreateProject(p *v1alpha1.Project) (*v1alpha1.Project, error) {
	var out v1alpha1.Project
	if err := c.doJSON(http.MethodPost, "/api/v1alpha1/projects", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject merges fields (JSON names) into the project with id.
func (c *Client) UpdateProject(id string, fields map[string]interface{}) (*v1alpha1.Project, error) {
	var out v1alpha1.Project
	if err := c.doJSON(http.MethodPatch, "/api/v1alpha1/projects/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project. Deleting a missing project is not an error.
func (c *Client) DeleteProject(id string) error {
	return c.doJSON(http.MethodDelete, "/api/v1alpha1/projects/"+url.PathEscape(id), nil, nil)
}

// MigrateProjects resets the portfolio to the bundled defaults.
func (c *Client) MigrateProjects() ([]v1alpha1.Project, error) {
	var out []v1alpha1.Project
	if err := c.doJSON(http.MethodPost, "/api/v1alpha1/projects/migrate", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Refresh / Apply
// ---------------------------------------------------------------------------

// RefreshResult reports collection sizes after a server-side reload.
type RefreshResult struct {
	Posts    int `json:"posts"`
	Projects int `json:"projects"`
}

// Refresh asks the server to reload both stores from storage.
func (c *Client) Refresh() (*RefreshResult, error) {
	var out RefreshResult
	if err := c.doJSON(http.MethodPost, "/api/v1alpha1/refresh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply sends a manifest document (PostDocument, ProjectDocument or
// LegacyProjectDocument). The returned map is the stored record.
func (c *Client) Apply(doc interface{}) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.doJSON(http.MethodPost, "/api/v1alpha1/apply", doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Change feed
// ---------------------------------------------------------------------------

// Watch subscribes to the server's change feed. The channel closes when ctx
// is done or the connection drops.
func (c *Client) Watch(ctx context.Context) (<-chan v1alpha1.ChangeEvent, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/v1alpha1/watch"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial change feed: %w", err)
	}

	out := make(chan v1alpha1.ChangeEvent, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			var evt v1alpha1.ChangeEvent
			if err := conn.ReadJSON(&evt); err != nil {
				return
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
