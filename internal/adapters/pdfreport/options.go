package pdfreport

import "github.com/okian/talentflow/pkg/logger"

// Option configures a Renderer.
type Option func(*Renderer)

// WithTitle sets the heading printed on the first page.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// WithAuthor sets the PDF author metadata.
func WithAuthor(author string) Option {
	return func(r *Renderer) {
		if author != "" {
			r.author = author
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}
