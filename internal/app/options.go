package service

import (
	"github.com/okian/talentflow/internal/adapters/pdfreport"
	"github.com/okian/talentflow/internal/adapters/resume"
	"github.com/okian/talentflow/internal/domain/scoring"
	"github.com/okian/talentflow/internal/domain/voice"
	"github.com/okian/talentflow/pkg/logger"
)

// Option applies a configuration option to the Journey.
type Option func(*Journey)

// WithLogger sets a custom logger for the journey.
func WithLogger(l logger.Logger) Option {
	return func(j *Journey) {
		if l != nil {
			j.log = l
		}
	}
}

// WithMinAnswerLength sets the shortest accepted interview answer.
func WithMinAnswerLength(n int) Option {
	return func(j *Journey) {
		if n > 0 {
			j.minAnswerLen = n
		}
	}
}

// WithDecider sets the local decision rule.
func WithDecider(d *scoring.Decider) Option {
	return func(j *Journey) {
		if d != nil {
			j.decider = d
		}
	}
}

// WithInspector sets the resume pre-flight checker.
func WithInspector(in *resume.Inspector) Option {
	return func(j *Journey) {
		if in != nil {
			j.inspector = in
		}
	}
}

// WithRenderer sets the report renderer.
func WithRenderer(r *pdfreport.Renderer) Option {
	return func(j *Journey) {
		if r != nil {
			j.renderer = r
		}
	}
}

// WithReportDir sets where exported reports are written.
func WithReportDir(dir string) Option {
	return func(j *Journey) {
		if dir != "" {
			j.reportDir = dir
		}
	}
}

// WithRecognizer enables voice input. Without one the voice adapter
// reports itself unsupported.
func WithRecognizer(rec voice.Recognizer) Option {
	return func(j *Journey) {
		j.recognizer = rec
	}
}
