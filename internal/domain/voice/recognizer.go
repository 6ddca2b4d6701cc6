package voice

import "context"

// EventKind distinguishes the events a Recognizer emits.
type EventKind int

// Recognizer event kinds.
const (
	EventResult EventKind = iota
	EventEnd
	EventError
)

// Host error codes understood by the adapter.
const (
	CodeNotAllowed        = "not-allowed"
	CodeServiceNotAllowed = "service-not-allowed"
	CodeNoSpeech          = "no-speech"
)

// Event is one notification from the speech capability.
type Event struct {
	Kind    EventKind
	Session uint64 // id passed to the Start that opened the session
	Text    string // recognised text, EventResult only
	Final   bool   // interim results are ignored
	Code    string // host error code, EventError only
}

// Recognizer is a host speech-to-text capability. After Start it emits
// results until it ends on its own or Stop is requested; either way it
// finishes with an EventEnd. Every event carries the session id given to
// Start.
type Recognizer interface {
	Start(ctx context.Context, session uint64) error
	Stop() error
	Events() <-chan Event
	Close() error
}

// Aborter is implemented by capabilities that can end a session at once,
// dropping audio that is still queued.
type Aborter interface {
	Abort() error
}
