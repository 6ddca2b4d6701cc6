package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("key not found")
	ErrEmptyPath = errors.New("store path is empty")
)
