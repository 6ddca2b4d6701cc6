package voice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/talentflow/internal/domain/voice"
	. "github.com/smartystreets/goconvey/convey"
)

// scriptedRecognizer stands in for a microphone-backed capability.
type scriptedRecognizer struct {
	mu       sync.Mutex
	events   chan voice.Event
	starts   int
	stops    int
	closed   int
	aborts   int
	session  uint64
	startErr error
}

func newScripted() *scriptedRecognizer {
	return &scriptedRecognizer{events: make(chan voice.Event, 8)}
}

func (r *scriptedRecognizer) Start(_ context.Context, session uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	r.session = session
	return r.startErr
}

func (r *scriptedRecognizer) Stop() error {
	r.mu.Lock()
	r.stops++
	session := r.session
	r.mu.Unlock()
	r.events <- voice.Event{Kind: voice.EventEnd, Session: session}
	return nil
}

func (r *scriptedRecognizer) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborts++
	return nil
}

func (r *scriptedRecognizer) current() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *scriptedRecognizer) abortCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborts
}

func (r *scriptedRecognizer) Events() <-chan voice.Event { return r.events }

func (r *scriptedRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestUnsupportedAdapter(t *testing.T) {
	Convey("Given a host without speech capability", t, func() {
		buf := voice.NewAnswerBuffer()
		a := voice.New(nil, buf)
		defer func() { _ = a.Close() }()

		Convey("Then the adapter should be permanently unsupported", func() {
			So(a.State(), ShouldEqual, voice.StateUnsupported)
			So(a.Supported(), ShouldBeFalse)
			So(a.Message(), ShouldEqual, voice.MsgUnsupported)

			err := a.Start(context.Background())
			So(errors.Is(err, voice.ErrUnsupported), ShouldBeTrue)
			So(a.State(), ShouldEqual, voice.StateUnsupported)

			a.HandleError(voice.CodeNoSpeech)
			a.HandleResult("hello there", true)
			So(a.State(), ShouldEqual, voice.StateUnsupported)
			So(a.Message(), ShouldEqual, voice.MsgUnsupported)
			So(buf.String(), ShouldBeEmpty)
		})
	})
}

func TestListeningLifecycle(t *testing.T) {
	Convey("Given a supported adapter", t, func() {
		ctx := context.Background()
		rec := newScripted()
		buf := voice.NewAnswerBuffer()
		buf.Set("I have")
		a := voice.New(rec, buf)
		defer func() { _ = a.Close() }()

		So(a.State(), ShouldEqual, voice.StateIdle)

		Convey("When listening and results arrive", func() {
			So(a.Start(ctx), ShouldBeNil)
			a.HandleResult("five years", true)
			a.HandleResult("of exp", false)
			a.HandleResult("of experience", true)

			Convey("Then final text should be appended with single spaces", func() {
				So(buf.String(), ShouldEqual, "I have five years of experience")
				So(a.State(), ShouldEqual, voice.StateListening)
			})

			Convey("Then a second start should be refused", func() {
				So(errors.Is(a.Start(ctx), voice.ErrAlreadyListening), ShouldBeTrue)
				So(rec.starts, ShouldEqual, 1)
			})
		})

		Convey("When stop is requested", func() {
			So(a.Start(ctx), ShouldBeNil)
			So(a.Stop(), ShouldBeNil)

			Convey("Then the adapter should become idle once the end event is delivered", func() {
				So(eventually(func() bool { return a.State() == voice.StateIdle }), ShouldBeTrue)
				So(errors.Is(a.Stop(), voice.ErrNotListening), ShouldBeTrue)
			})
		})

		Convey("When the buffer is locked for a submission", func() {
			So(a.Start(ctx), ShouldBeNil)
			buf.Lock()
			a.HandleResult("ignored words", true)
			buf.Unlock()

			Convey("Then recognised text should not change the answer", func() {
				So(buf.String(), ShouldEqual, "I have")
			})
		})

		Convey("When the capability fails to start", func() {
			rec.startErr = errors.New("device busy")
			err := a.Start(ctx)

			Convey("Then the adapter should stay idle with a generic message", func() {
				So(err, ShouldNotBeNil)
				So(a.State(), ShouldEqual, voice.StateError)
				So(a.Message(), ShouldEqual, voice.MsgGeneric)
			})
		})
	})
}

func TestErrorMapping(t *testing.T) {
	Convey("Given a listening adapter", t, func() {
		ctx := context.Background()
		cases := map[string]string{
			voice.CodeNotAllowed:        voice.MsgPermissionDenied,
			voice.CodeServiceNotAllowed: voice.MsgPermissionDenied,
			voice.CodeNoSpeech:          voice.MsgNoSpeech,
			"network":                   voice.MsgGeneric,
		}
		for code, want := range cases {
			a := voice.New(newScripted(), nil)
			So(a.Start(ctx), ShouldBeNil)
			a.HandleError(code)

			So(a.Message(), ShouldEqual, want)
			So(a.State(), ShouldEqual, voice.StateError)

			So(a.Start(ctx), ShouldBeNil)
			So(a.State(), ShouldEqual, voice.StateListening)
			So(a.Message(), ShouldBeEmpty)
			_ = a.Close()
		}
	})
}

func TestClose(t *testing.T) {
	Convey("Given an adapter that is listening", t, func() {
		rec := newScripted()
		a := voice.New(rec, nil)
		So(a.Start(context.Background()), ShouldBeNil)

		Convey("When closed twice", func() {
			So(a.Close(), ShouldBeNil)
			So(a.Close(), ShouldBeNil)

			Convey("Then the capability should be released once and restarts refused", func() {
				So(rec.closed, ShouldEqual, 1)
				So(errors.Is(a.Start(context.Background()), voice.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestRelease(t *testing.T) {
	Convey("Given a listening adapter whose session is released", t, func() {
		ctx := context.Background()
		rec := newScripted()
		buf := voice.NewAnswerBuffer()
		a := voice.New(rec, buf)
		defer func() { _ = a.Close() }()

		So(a.Start(ctx), ShouldBeNil)
		first := rec.current()
		a.Release(ctx)

		Convey("Then the adapter should be idle at once and the capability aborted", func() {
			So(a.State(), ShouldEqual, voice.StateIdle)
			So(rec.abortCount(), ShouldEqual, 1)
			a.Release(ctx)
			So(rec.abortCount(), ShouldEqual, 1)
		})

		Convey("When events of the released session arrive during the next one", func() {
			So(a.Start(ctx), ShouldBeNil)
			So(rec.current(), ShouldNotEqual, first)
			rec.events <- voice.Event{Kind: voice.EventResult, Session: first, Text: "late words", Final: true}
			rec.events <- voice.Event{Kind: voice.EventError, Session: first, Code: voice.CodeNoSpeech}
			rec.events <- voice.Event{Kind: voice.EventEnd, Session: first}
			rec.events <- voice.Event{Kind: voice.EventResult, Session: rec.current(), Text: "fresh words", Final: true}

			Convey("Then only the current session should reach the answer", func() {
				So(eventually(func() bool { return buf.String() == "fresh words" }), ShouldBeTrue)
				So(a.State(), ShouldEqual, voice.StateListening)
				So(a.Message(), ShouldBeEmpty)
			})
		})
	})
}

func TestAnswerBuffer(t *testing.T) {
	Convey("Given an answer buffer", t, func() {
		b := voice.NewAnswerBuffer()

		So(b.Append("  "), ShouldBeFalse)
		So(b.Append("first"), ShouldBeTrue)
		So(b.Append("second"), ShouldBeTrue)
		So(b.String(), ShouldEqual, "first second")

		So(b.Lock(), ShouldEqual, "first second")
		So(b.Set("other"), ShouldBeFalse)
		So(b.Locked(), ShouldBeTrue)

		b.Reset()
		So(b.Locked(), ShouldBeFalse)
		So(b.String(), ShouldBeEmpty)
	})
}
