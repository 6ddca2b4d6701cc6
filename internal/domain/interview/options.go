package interview

import (
	"github.com/okian/talentflow/internal/domain/scoring"
	"github.com/okian/talentflow/internal/domain/voice"
	"github.com/okian/talentflow/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMinAnswerLength sets the minimum trimmed answer length in characters.
func WithMinAnswerLength(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.minLen = n
		}
	}
}

// WithDecider sets the rule used when the backend cannot provide results.
func WithDecider(d *scoring.Decider) Option {
	return func(s *Session) {
		if d != nil {
			s.decider = d
		}
	}
}

// WithAnswerBuffer shares an answer buffer, typically with a voice adapter.
func WithAnswerBuffer(b *voice.AnswerBuffer) Option {
	return func(s *Session) {
		if b != nil {
			s.buf = b
		}
	}
}
