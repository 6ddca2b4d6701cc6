package resume

import "errors"

var (
	ErrNotPDF   = errors.New("resume: only PDF files are allowed")
	ErrTooLarge = errors.New("resume: file exceeds the size limit")
	ErrNoText   = errors.New("resume: could not extract text from PDF")
	ErrOpen     = errors.New("resume: failed to open PDF")
)
