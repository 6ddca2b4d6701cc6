// Package speech provides the host speech-to-text capability used by voice
// input. Audio clips are queued while a session is running and each one is
// transcribed into a final recognition result.
package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/okian/talentflow/internal/domain/voice"
	"github.com/okian/talentflow/pkg/logger"
)

const (
	queueSize  = 16
	eventsSize = 16
)

// Transcriber converts one clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip Clip) (string, error)
}

// Option applies a configuration option to the Recognizer.
type Option func(*Recognizer)

// WithLogger sets the recognizer logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recognizer) {
		if l != nil {
			r.log = l
		}
	}
}

type session struct {
	id     uint64
	queue  chan Clip
	cancel context.CancelFunc
}

// Recognizer implements voice.Recognizer over a Transcriber.
type Recognizer struct {
	tr     Transcriber
	log    logger.Logger
	events chan voice.Event

	mu     sync.Mutex
	sess   *session
	closed bool
	wg     sync.WaitGroup
}

// NewRecognizer creates a recognizer transcribing with tr.
func NewRecognizer(tr Transcriber, opts ...Option) *Recognizer {
	r := &Recognizer{
		tr:     tr,
		log:    logger.Nop(),
		events: make(chan voice.Event, eventsSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Events implements voice.Recognizer.
func (r *Recognizer) Events() <-chan voice.Event { return r.events }

// Start implements voice.Recognizer.
func (r *Recognizer) Start(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrNotRunning
	}
	if r.sess != nil {
		return ErrAlreadyRunning
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &session{id: id, queue: make(chan Clip, queueSize), cancel: cancel}
	r.sess = s
	r.wg.Add(1)
	go r.run(sctx, s)
	return nil
}

// Enqueue hands a recorded clip to the running session.
func (r *Recognizer) Enqueue(clip Clip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return ErrNotRunning
	}
	select {
	case r.sess.queue <- clip:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop implements voice.Recognizer. Queued clips are still transcribed
// before the end event.
func (r *Recognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return ErrNotRunning
	}
	close(r.sess.queue)
	r.sess = nil
	return nil
}

// Abort implements voice.Aborter. The running session ends without
// transcribing queued clips.
func (r *Recognizer) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return ErrNotRunning
	}
	r.sess.cancel()
	close(r.sess.queue)
	r.sess = nil
	return nil
}

// Close implements voice.Recognizer. It aborts any running session.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.sess != nil {
		r.sess.cancel()
		close(r.sess.queue)
		r.sess = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
	close(r.events)
	return nil
}

func (r *Recognizer) run(ctx context.Context, s *session) {
	defer r.wg.Done()
	defer s.cancel()
	defer r.emit(ctx, voice.Event{Kind: voice.EventEnd, Session: s.id})

	for clip := range s.queue {
		if ctx.Err() != nil {
			return
		}
		text, err := r.tr.Transcribe(ctx, clip)
		switch {
		case err != nil:
			r.log.Warn(ctx, "transcription failed", logger.String("clip", clip.Name), logger.Error(err))
			r.emit(ctx, voice.Event{Kind: voice.EventError, Session: s.id, Code: errorCode(err)})
			r.detach(s)
			return
		case strings.TrimSpace(text) == "":
			r.emit(ctx, voice.Event{Kind: voice.EventError, Session: s.id, Code: voice.CodeNoSpeech})
			r.detach(s)
			return
		default:
			r.emit(ctx, voice.Event{Kind: voice.EventResult, Session: s.id, Text: text, Final: true})
		}
	}
}

// detach ends a session that stopped on its own.
func (r *Recognizer) detach(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == s {
		r.sess = nil
	}
}

func (r *Recognizer) emit(ctx context.Context, ev voice.Event) {
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

func errorCode(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "aborted"
	}
	return "network"
}
