package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrServe         = errors.New("status server failed")
	ErrUnknownStep   = errors.New("unknown step")
	ErrNotCompleted  = errors.New("interview not completed")
	ErrMethodInvalid = errors.New("method not allowed")
)
