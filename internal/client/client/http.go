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

	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeaderName carries a per-call correlation id.
const RequestIDHeaderName = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
}

// Option customises an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTimeout bounds every round trip. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient builds a client for the service rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		timeout: 10 * time.Second,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "login response carries no token"}
	}
	return resp.Token, nil
}

func (c *HTTPClient) List(ctx context.Context, token string) ([]models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	users := make([]models.User, 0)
	if err := c.do(ctx, http.MethodGet, "/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) Get(ctx context.Context, id models.UserID, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var u *models.User
	if err := c.do(ctx, http.MethodGet, userPath(id), token, nil, &u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *HTTPClient) Create(ctx context.Context, draft models.UserDraft, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	draft.Type = draft.Type.Normalize()

	var u models.User
	if err := c.do(ctx, http.MethodPost, "/users", token, draft, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Update(ctx context.Context, id models.UserID, update models.UserUpdate, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var u models.User
	if err := c.do(ctx, http.MethodPut, userPath(id), token, update.Payload(), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id models.UserID, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	return c.do(ctx, http.MethodDelete, userPath(id), token, nil, nil)
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func userPath(id models.UserID) string {
	return "/users/" + url.PathEscape(id.String())
}

// do performs one round trip. A nil out discards the response body; an
// empty 2xx body leaves out untouched.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeaderName, requestID)

	log := c.log.With("request_id", requestID, "method", method, "path", path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return newTransportError(err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewStatusError(resp.StatusCode, readErrorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response from server", cause: err}
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// readErrorMessage extracts the server text from {"message":...},
// {"error":...} or a plain-text body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var eb errorBody
	if raw[0] == '{' && json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		return eb.Error
	}
	if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return string(raw)
}
