package speech

import "errors"

// Sentinel kinds for speech errors.
var (
	ErrNotRunning     = errors.New("recognizer is not running")
	ErrAlreadyRunning = errors.New("recognizer is already running")
	ErrQueueFull      = errors.New("audio queue is full")
	ErrEmptyClip      = errors.New("audio clip is empty")
	ErrNoAPIKey       = errors.New("speech api key is empty")
)
