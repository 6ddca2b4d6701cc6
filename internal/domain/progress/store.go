package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

// Observer receives the new state after every change.
type Observer func(model.ProgressState)

// Store is the process-wide record of journey progress. It mirrors the flags
// in memory and writes every change through to the durable store. When the
// durable store fails the Store keeps working from memory.
type Store struct {
	mu        sync.Mutex
	kv        repository.Store
	log       logger.Logger
	state     model.ProgressState
	observers map[int]Observer
	nextID    int
	degraded  atomic.Bool

	// records mirrors journey records so they survive a failing durable store.
	records map[string]string
}

// New creates a Store and loads the initial flags from kv.
func New(ctx context.Context, kv repository.Store, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		observers: make(map[int]Observer),
		records:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	s.state = model.ProgressState{
		ResumeUploaded:     s.readFlag(ctx, FlagResumeUploaded),
		ATSScoreViewed:     s.readFlag(ctx, FlagATSScoreViewed),
		InterviewCompleted: s.readFlag(ctx, FlagInterviewCompleted),
		ResultsAvailable:   s.readFlag(ctx, FlagResultsAvailable),
	}
	if !s.state.ResultsAvailable {
		if _, err := s.read(ctx, KeyInterviewResults); err == nil {
			s.state.ResultsAvailable = true
		}
	}
}

func (s *Store) readFlag(ctx context.Context, f Flag) bool {
	v, err := s.read(ctx, string(f))
	return err == nil && v == "true"
}

// read returns ErrNoRecord for a missing key and degrades on any other failure.
func (s *Store) read(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.storageFailed(ctx, "get", key, err)
	}
	return "", ErrNoRecord
}

func (s *Store) storageFailed(ctx context.Context, op, key string, err error) {
	s.degraded.Store(true)
	metrics.RecordStorageError(op)
	s.log.Warn(ctx, "durable storage unavailable, continuing in memory",
		logger.String("op", op), logger.String("key", key), logger.Error(err))
}

// Get returns the current flags.
func (s *Store) Get() model.ProgressState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Degraded reports whether a durable storage operation has failed.
func (s *Store) Degraded() bool {
	return s.degraded.Load()
}

// Update sets one flag, writes it through and notifies observers.
// Flags only move forward within a journey; clearing one requires Reset.
func (s *Store) Update(ctx context.Context, flag Flag, value bool) error {
	s.mu.Lock()
	next := s.state
	var cur *bool
	switch flag {
	case FlagResumeUploaded:
		cur = &next.ResumeUploaded
	case FlagATSScoreViewed:
		cur = &next.ATSScoreViewed
	case FlagInterviewCompleted:
		cur = &next.InterviewCompleted
	case FlagResultsAvailable:
		cur = &next.ResultsAvailable
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownFlag, flag)
	}
	if *cur && !value {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrFlagRegression, flag)
	}
	*cur = value
	s.state = next
	if err := s.kv.Set(ctx, string(flag), strconv.FormatBool(value)); err != nil {
		s.storageFailed(ctx, "set", string(flag), err)
	}
	metrics.RecordProgressUpdate(string(flag))
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, next)
	return nil
}

// Reset clears every flag and removes the journey records.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.state = model.ProgressState{}
	s.records = make(map[string]string)
	if err := s.kv.Delete(ctx, journeyKeys...); err != nil {
		s.storageFailed(ctx, "delete", "*", err)
	}
	observers := s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, model.ProgressState{})
}

// CanAccess evaluates the prerequisite chain for step. Unknown steps are denied.
func (s *Store) CanAccess(step Step) bool {
	return canAccess(s.Get(), step)
}

// Guard reports whether step may be entered and otherwise the first step
// whose prerequisites are still unmet.
func (s *Store) Guard(step Step) Decision {
	return guard(s.Get(), step)
}

func canAccess(st model.ProgressState, step Step) bool {
	switch step {
	case StepUpload:
		return true
	case StepATSScore:
		return st.ResumeUploaded
	case StepInterview:
		return st.ResumeUploaded && st.ATSScoreViewed
	case StepResults:
		return st.InterviewCompleted && st.ResultsAvailable
	default:
		return false
	}
}

func guard(st model.ProgressState, step Step) Decision {
	if canAccess(st, step) {
		return Decision{Allowed: true}
	}
	switch {
	case !st.ResumeUploaded:
		return Decision{RedirectTo: StepUpload}
	case !st.ATSScoreViewed:
		return Decision{RedirectTo: StepATSScore}
	default:
		return Decision{RedirectTo: StepInterview}
	}
}

// Subscribe registers fn for change notifications. The returned func removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotObservers() []Observer {
	out := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.observers[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(observers []Observer, st model.ProgressState) {
	for _, fn := range observers {
		fn(st)
	}
}

// SaveProfile persists the candidate profile of the current journey.
func (s *Store) SaveProfile(ctx context.Context, p model.CandidateProfile) {
	s.saveRecord(ctx, KeyCandidateInfo, p)
}

// Profile returns the stored candidate profile or ErrNoRecord.
func (s *Store) Profile(ctx context.Context) (model.CandidateProfile, error) {
	var p model.CandidateProfile
	err := s.loadRecord(ctx, KeyCandidateInfo, &p)
	return p, err
}

// SaveResult persists the final interview result.
func (s *Store) SaveResult(ctx context.Context, r model.InterviewResult) {
	s.saveRecord(ctx, KeyInterviewResults, r)
}

// Result returns the stored interview result or ErrNoRecord.
func (s *Store) Result(ctx context.Context) (model.InterviewResult, error) {
	var r model.InterviewResult
	err := s.loadRecord(ctx, KeyInterviewResults, &r)
	return r, err
}

func (s *Store) saveRecord(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error(ctx, "encode journey record", logger.String("key", key), logger.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = string(raw)
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		s.storageFailed(ctx, "set", key, err)
	}
}

func (s *Store) loadRecord(ctx context.Context, key string, dst any) error {
	s.mu.Lock()
	raw, ok := s.records[key]
	s.mu.Unlock()
	if !ok {
		// Once degraded, memory is authoritative.
		if s.degraded.Load() {
			return ErrNoRecord
		}
		v, err := s.read(ctx, key)
		if err != nil {
			return err
		}
		raw = v
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
