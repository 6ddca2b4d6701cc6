// Package repository provides the durable key-value store that lets a journey
// survive process restarts.
package repository

import "context"

// Store is a string key-value store with write-through semantics.
type Store interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes every given key. Absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
