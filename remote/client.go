// Package remote talks to the Arz demo API. Every method may fail; callers are expected to fall
// back to local behaviour rather than surface the error.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/arz/models"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Arz/1.0 (compatible; ArzClient/1.0)"
	maxBodyBytes   = 32 << 20
)

var (
	// ErrDisabled is returned by Disabled for every call.
	ErrDisabled = errors.New("remote backend disabled")
	// ErrMalformedResponse means a 2xx body could not be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response body")
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote: http %d", e.StatusCode)
}

// API is the remote surface the client-side handlers depend on.
type API interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, draft models.Post) (models.Post, error)
	UpdatePost(ctx context.Context, id int64, patch models.PostPatch) error
	Login(ctx context.Context, creds models.Credentials) (models.User, error)
	Register(ctx context.Context, draft models.UserDraft) (models.User, error)
	Ping(ctx context.Context) error
}

// Client is an API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchPosts loads the full feed.
func (c *Client) FetchPosts(ctx context.Context) ([]models.Post, error) {
	var body struct {
		Posts *[]models.Post `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &body); err != nil {
		return nil, err
	}
	if body.Posts == nil {
		return nil, ErrMalformedResponse
	}
	posts := *body.Posts
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

// CreatePost stores draft and returns the server's copy.
func (c *Client) CreatePost(ctx context.Context, draft models.Post) (models.Post, error) {
	var body struct {
		Post *models.Post `json:"post"`
	}
	if err := c.do(ctx, http.MethodPost, "/posts", draft, &body); err != nil {
		return models.Post{}, err
	}
	if body.Post == nil {
		return models.Post{}, ErrMalformedResponse
	}
	body.Post.Normalize()
	return *body.Post, nil
}

// UpdatePost sends a partial update.
func (c *Client) UpdatePost(ctx context.Context, id int64, patch models.PostPatch) error {
	var body struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPut, "/posts/"+strconv.FormatInt(id, 10), patch, &body); err != nil {
		return err
	}
	if !body.Success {
		return ErrMalformedResponse
	}
	return nil
}

// Login verifies credentials and returns the account.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	return c.userCall(ctx, "/login", creds)
}

// Register creates an account and returns it.
func (c *Client) Register(ctx context.Context, draft models.UserDraft) (models.User, error) {
	return c.userCall(ctx, "/register", draft)
}

// Ping probes connectivity; any 2xx counts.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/test", nil, nil)
}

func (c *Client) userCall(ctx context.Context, path string, payload any) (models.User, error) {
	var body struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, path, payload, &body); err != nil {
		return models.User{}, err
	}
	if body.User == nil || body.User.Username == "" {
		return models.User{}, ErrMalformedResponse
	}
	body.User.Normalize()
	return *body.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("remote request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	c.log.Debug("remote request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		var env struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env) == nil {
			se.Code = env.Code
			se.Message = env.Message
		}
		return se
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Disabled is the API used when the backend is switched off. Every call fails with ErrDisabled.
type Disabled struct{}

func (Disabled) FetchPosts(context.Context) ([]models.Post, error) { return nil, ErrDisabled }

func (Disabled) CreatePost(context.Context, models.Post) (models.Post, error) {
	return models.Post{}, ErrDisabled
}

func (Disabled) UpdatePost(context.Context, int64, models.PostPatch) error { return ErrDisabled }

func (Disabled) Login(context.Context, models.Credentials) (models.User, error) {
	return models.User{}, ErrDisabled
}

func (Disabled) Register(context.Context, models.UserDraft) (models.User, error) {
	return models.User{}, ErrDisabled
}

func (Disabled) Ping(context.Context) error { return ErrDisabled }

var (
	_ API = (*Client)(nil)
	_ API = Disabled{}
)
