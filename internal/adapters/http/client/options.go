package client

import (
	"net/http"
	"time"

	"github.com/okian/talentflow/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSessionKeyFunc sets the generator used when an upload response
// carries no session key.
func WithSessionKeyFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newSessionKey = fn
		}
	}
}
