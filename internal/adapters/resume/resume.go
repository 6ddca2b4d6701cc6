// Package resume runs the local pre-flight check on a resume before it is
// uploaded: the file must be a readable PDF with extractable text.
package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxBytes bounds uploads to 10 MiB.
const DefaultMaxBytes int64 = 10 << 20

// Document describes an inspected resume.
type Document struct {
	Path  string
	Name  string
	Size  int64
	Pages int
	Text  string
}

// Inspector checks resume files.
type Inspector struct {
	maxBytes int64
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithMaxBytes overrides the size limit.
func WithMaxBytes(n int64) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

// NewInspector creates an Inspector.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect validates the file at path and extracts its plain text.
func (i *Inspector) Inspect(path string) (Document, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return Document{}, ErrNotPDF
	}
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("stat resume: %w", err)
	}
	if info.Size() > i.maxBytes {
		return Document{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for n := 1; n <= total; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return Document{}, ErrNoText
	}
	return Document{
		Path:  path,
		Name:  filepath.Base(path),
		Size:  info.Size(),
		Pages: total,
		Text:  text,
	}, nil
}
