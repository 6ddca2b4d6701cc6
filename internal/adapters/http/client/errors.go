package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures that never produced an HTTP response.
var ErrTransport = errors.New("scoring backend unreachable")

// ErrMalformedResponse marks a response body that could not be decoded.
var ErrMalformedResponse = errors.New("malformed scoring backend response")

// APIError is a non-2xx response. Message carries the backend's "error"
// field and is empty when the backend sent none.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, msg)
}

// UserMessage returns the backend-provided message, empty when there is none.
func (e *APIError) UserMessage() string { return e.Message }

// MessageOf returns the backend-provided message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
