package client

import (
	"net/http"
	"time"

	"github.com/nailstudio/agenda/internal/client/notify"
	"github.com/nailstudio/agenda/internal/logging"
)

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithUnauthorizedHook sets fn to run after the store has been cleared on a
// 401 or 403.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	noAuth      bool
	contentType string
}

// WithoutAuth sends no bearer token and skips 401/403 handling. Used by
// login, where rejected credentials are an ordinary error.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

// WithContentType replaces the default JSON content type, e.g. for a
// multipart body.
func WithContentType(ct string) RequestOption {
	return func(o *requestOptions) { o.contentType = ct }
}
