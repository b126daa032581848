package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nailstudio/agenda/internal/client/notify"
	"github.com/nailstudio/agenda/internal/logging"
)

const (
	contentTypeJSON = "application/json"
	headerRequestID = "X-Request-ID"

	NetworkErrorMessage = "network error, please try again"
)

// TokenStore is the part of the session store the client needs.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type Client struct {
	baseURL        string
	store          TokenStore
	http           *http.Client
	timeout        time.Duration
	log            logging.Logger
	notifier       notify.Notifier
	onUnauthorized func()
}

func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		store:    store,
		log:      logging.Nop(),
		notifier: notify.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout > 0 && c.http.Timeout == 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// SetUnauthorizedHook replaces the hook run on 401/403. The application
// sets it once the session manager and navigator exist.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) BaseURL() string { return c.baseURL }

// Send issues a request to baseURL+path. See the package doc for how 401,
// 403 and transport failures are handled; any other response is returned
// as is and the caller must close its body.
func (c *Client) Send(ctx context.Context, method, path string, body io.Reader, opts ...RequestOption) (*http.Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	if ro.contentType != "" {
		req.Header.Set("Content-Type", ro.contentType)
	} else if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set(headerRequestID, uuid.NewString())

	if !ro.noAuth {
		token, err := c.store.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		if !errors.Is(err, context.Canceled) {
			c.notifier.Error(NetworkErrorMessage)
		}
		return nil, fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	c.log.Debug(ctx, "request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start),
		"request_id", req.Header.Get(headerRequestID))

	if !ro.noAuth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		c.log.Warn(ctx, "session rejected by server", "method", method, "path", path, "status", resp.StatusCode)
		if err := c.store.Clear(ctx); err != nil {
			c.log.Error(ctx, "clearing rejected session failed", "error", err)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, ErrUnauthorized
	}
	return resp, nil
}

// SendJSON marshals payload (nil sends no body) and calls Send.
func (c *Client) SendJSON(ctx context.Context, method, path string, payload any, opts ...RequestOption) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	return c.Send(ctx, method, path, body, opts...)
}

// Do is SendJSON followed by Decode into out.
func (c *Client) Do(ctx context.Context, method, path string, payload, out any, opts ...RequestOption) error {
	resp, err := c.SendJSON(ctx, method, path, payload, opts...)
	if err != nil {
		return err
	}
	return Decode(resp, out)
}

// Decode closes resp.Body. A 2xx body is decoded into out (an empty body or
// a nil out is fine); any other status becomes an *APIError built from the
// body's "message" or "error" field.
func Decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, b)}
	}

	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return statusMessage(status)
}
