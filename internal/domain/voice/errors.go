package voice

import "errors"

// Sentinel kinds for voice input errors.
var (
	ErrUnsupported      = errors.New("voice input unsupported")
	ErrAlreadyListening = errors.New("voice input already listening")
	ErrNotListening     = errors.New("voice input not listening")
	ErrClosed           = errors.New("voice input closed")
)
