// Package voice turns an optional speech-to-text capability into appended
// answer text through a small state machine driven by result, end and error
// events.
package voice

import (
	"context"
	"sync"

	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

// State of the adapter.
type State int

// Adapter states. StateError is an idle adapter whose last session failed;
// it clears on the next Start.
const (
	StateUnsupported State = iota
	StateIdle
	StateListening
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnsupported:
		return "unsupported"
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgUnsupported      = "Voice input is not available in this environment. You can type your answer instead."
	MsgPermissionDenied = "Microphone access was denied. Allow microphone access to use voice input."
	MsgNoSpeech         = "No speech was detected. Please try again."
	MsgGeneric          = "Voice input failed. Please try again or type your answer."
)

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// Adapter feeds recognised speech into an AnswerBuffer.
type Adapter struct {
	mu        sync.Mutex
	rec       Recognizer
	buf       *AnswerBuffer
	log       logger.Logger
	state     State
	message   string
	session   uint64
	closed    bool
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates an adapter writing into buf. A nil rec means the host has no
// speech capability and the adapter stays unsupported for its lifetime.
func New(rec Recognizer, buf *AnswerBuffer, opts ...Option) *Adapter {
	if buf == nil {
		buf = NewAnswerBuffer()
	}
	a := &Adapter{
		rec:   rec,
		buf:   buf,
		log:   logger.Nop(),
		state: StateIdle,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if rec == nil {
		a.state = StateUnsupported
		a.message = MsgUnsupported
		return a
	}
	a.wg.Add(1)
	go a.pump(rec.Events())
	return a
}

func (a *Adapter) pump(events <-chan Event) {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.Handle(ev)
		}
	}
}

// State returns the current state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateIdle && a.message != "" {
		return StateError
	}
	return a.state
}

// Message returns the user-facing notice, empty when there is none.
func (a *Adapter) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

// Supported reports whether a speech capability exists.
func (a *Adapter) Supported() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state != StateUnsupported
}

// Start begins a listening session.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	switch {
	case a.state == StateUnsupported:
		a.mu.Unlock()
		return ErrUnsupported
	case a.closed:
		a.mu.Unlock()
		return ErrClosed
	case a.state == StateListening:
		a.mu.Unlock()
		return ErrAlreadyListening
	}
	a.state = StateListening
	a.message = ""
	a.session++
	session := a.session
	a.mu.Unlock()

	// The capability may emit events synchronously, so it is called unlocked.
	if err := a.rec.Start(ctx, session); err != nil {
		a.mu.Lock()
		if a.session == session {
			a.state = StateIdle
			a.message = MsgGeneric
		}
		a.mu.Unlock()
		metrics.RecordVoiceEvent("start_failed")
		a.log.Warn(ctx, "speech capability failed to start", logger.Error(err))
		return err
	}
	metrics.RecordVoiceEvent("start")
	return nil
}

// Stop asks the capability to end. The adapter becomes idle on the End event.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	listening := a.state == StateListening
	a.mu.Unlock()

	if !listening {
		return ErrNotListening
	}
	return a.rec.Stop()
}

// Release ends the current listening session without waiting for the
// capability. Events still in flight for that session are discarded, and a
// pending error message is cleared.
func (a *Adapter) Release(ctx context.Context) {
	a.mu.Lock()
	if a.state == StateUnsupported {
		a.mu.Unlock()
		return
	}
	listening := a.state == StateListening
	a.message = ""
	if !listening {
		a.mu.Unlock()
		return
	}
	a.session++
	a.state = StateIdle
	a.mu.Unlock()

	var err error
	if ab, ok := a.rec.(Aborter); ok {
		err = ab.Abort()
	} else {
		err = a.rec.Stop()
	}
	if err != nil {
		a.log.Debug(ctx, "speech capability release", logger.Error(err))
	}
	metrics.RecordVoiceEvent("released")
}

// Handle applies one capability event. Events of an earlier session are
// dropped.
func (a *Adapter) Handle(ev Event) {
	switch ev.Kind {
	case EventResult:
		a.handleResult(ev.Session, ev.Text, ev.Final)
	case EventEnd:
		a.handleEnd(ev.Session)
	case EventError:
		a.handleError(ev.Session, ev.Code)
	}
}

func (a *Adapter) current() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// HandleResult appends a finalised result of the current session to the
// answer buffer.
func (a *Adapter) HandleResult(text string, final bool) {
	a.handleResult(a.current(), text, final)
}

func (a *Adapter) handleResult(session uint64, text string, final bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != session {
		metrics.RecordVoiceEvent("stale")
		return
	}
	if a.state != StateListening || !final {
		return
	}
	metrics.RecordVoiceEvent("result")
	if !a.buf.Append(text) {
		a.log.Debug(context.Background(), "recognised text dropped, answer input is locked or blank")
	}
}

// HandleEnd moves a listening adapter to idle.
func (a *Adapter) HandleEnd() {
	a.handleEnd(a.current())
}

func (a *Adapter) handleEnd(session uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != session {
		metrics.RecordVoiceEvent("stale")
		return
	}
	if a.state == StateListening {
		a.state = StateIdle
		metrics.RecordVoiceEvent("end")
	}
}

// HandleError records a user-facing message for code and moves to idle.
func (a *Adapter) HandleError(code string) {
	a.handleError(a.current(), code)
}

func (a *Adapter) handleError(session uint64, code string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateUnsupported {
		return
	}
	if a.session != session {
		metrics.RecordVoiceEvent("stale")
		return
	}
	a.state = StateIdle
	a.message = messageFor(code)
	metrics.RecordVoiceEvent("error")
	a.log.Warn(context.Background(), "speech recognition error", logger.String("code", code))
}

func messageFor(code string) string {
	switch code {
	case CodeNotAllowed, CodeServiceNotAllowed:
		return MsgPermissionDenied
	case CodeNoSpeech:
		return MsgNoSpeech
	default:
		return MsgGeneric
	}
}

// Close releases the capability. It is safe to call more than once.
func (a *Adapter) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		if a.state == StateListening {
			a.state = StateIdle
		}
		a.mu.Unlock()

		close(a.done)
		a.wg.Wait()
		if a.rec != nil {
			err = a.rec.Close()
		}
	})
	return err
}

// Buffer returns the answer buffer the adapter writes into.
func (a *Adapter) Buffer() *AnswerBuffer { return a.buf }
