package progress

import "errors"

// Sentinel kinds for progress errors.
var (
	ErrUnknownFlag    = errors.New("unknown progress flag")
	ErrFlagRegression = errors.New("progress flag cannot be cleared without a reset")
	ErrNoRecord       = errors.New("journey record not found")
)
