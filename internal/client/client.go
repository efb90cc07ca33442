// Package client is a typed HTTP client for the algonotes API.
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
	"strings"
	"time"

	"github.com/starford/algonotes/internal/apperr"
	"github.com/starford/algonotes/internal/models"
)

// APIError is a non-2xx response. It unwraps to the apperr sentinel that
// matches its status, so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap maps the status back onto a sentinel.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return apperr.ErrInvalid
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrConflict
	}
	return nil
}

// Filter narrows ListPosts. Empty fields are not sent.
type Filter struct {
	Tag        string
	Difficulty string
	Query      string
}

// PostInput is the body of create and update requests.
type PostInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Difficulty  string   `json:"difficulty"`
	Date        string   `json:"date"`
}

// WriteResult is returned by create and update.
type WriteResult struct {
	Success  bool   `json:"success"`
	Slug     string `json:"slug"`
	Filename string `json:"filename"`
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client talks to one algonotes server.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New creates a client for the server rooted at base, e.g.
// "http://localhost:8080".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Health reports whether the server answers its probe.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return err
	}
	if !out.OK {
		return errors.New("api: health check reported not ok")
	}
	return nil
}

// ListPosts returns post summaries, newest first.
func (c *Client) ListPosts(ctx context.Context, f Filter) ([]models.PostSummary, error) {
	q := url.Values{}
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if f.Difficulty != "" {
		q.Set("difficulty", f.Difficulty)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	path := "/api/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Posts []models.PostSummary `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// GetPost fetches one post with its markdown and HTML.
func (c *Client) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost creates a post.
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*WriteResult, error) {
	var out WriteResult
	if err := c.do(ctx, http.MethodPost, "/api/posts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost replaces the post at slug. The returned slug differs when the
// title changed.
func (c *Client) UpdatePost(ctx context.Context, slug string, in PostInput) (*WriteResult, error) {
	var out WriteResult
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(slug), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(slug), nil, nil)
}

// Tags lists every tag in use.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var out struct {
		Tags []string `json:"tags"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// Difficulties lists every difficulty in use.
func (c *Client) Difficulties(ctx context.Context) ([]string, error) {
	var out struct {
		Difficulties []string `json:"difficulties"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/difficulties", nil, &out); err != nil {
		return nil, err
	}
	return out.Difficulties, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode: %w", err)
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}
