package pdfreport

import "errors"

var (
	// ErrEmptyDir is returned when WriteFile is called without a target directory.
	ErrEmptyDir = errors.New("pdfreport: report directory is empty")
	// ErrRender wraps gofpdf failures.
	ErrRender = errors.New("pdfreport: render failed")
)
