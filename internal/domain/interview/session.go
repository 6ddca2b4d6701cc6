// Package interview drives one candidate's question and answer loop:
// it fetches the question set, validates and submits each answer, keeps
// the per-question grades and, after the last answer, produces and
// persists the final result.
package interview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/progress"
	"github.com/okian/talentflow/internal/domain/scoring"
	"github.com/okian/talentflow/internal/domain/voice"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

const (
	defaultMinAnswerLength = 10
	maxQuestionScore       = 10
)

// Candidate-facing messages.
const (
	MsgEmptyAnswer     = "Please provide an answer to continue."
	MsgAnswerTooShort  = "Your answer is too short. Please write at least %d characters."
	MsgSubmitFailed    = "Failed to submit answer"
	MsgLoadFailed      = "Failed to load interview questions"
	MsgNoQuestions     = "No questions generated. Please try again."
	MsgNoProfile       = "No candidate information found. Please upload a resume first."
	MsgResultsFallback = "Failed to get final results from the server. The decision below was computed locally."
)

// Scorer is the scoring backend as seen by a session.
type Scorer interface {
	Questions(ctx context.Context, p model.CandidateProfile) ([]string, error)
	Grade(ctx context.Context, p model.CandidateProfile, q model.InterviewQuestion, answer string) (model.ScoreRecord, error)
	Results(ctx context.Context, p model.CandidateProfile) (model.InterviewResult, error)
}

// userMessenger is implemented by errors that carry a message for the candidate.
type userMessenger interface {
	UserMessage() string
}

// Session is one interview. It is safe for concurrent use; responses that
// arrive after the session was reset or restarted are dropped.
type Session struct {
	// opMu serialises persisting a result with Reset.
	opMu sync.Mutex

	mu       sync.Mutex
	scorer   Scorer
	progress *progress.Store
	decider  *scoring.Decider
	buf      *voice.AnswerBuffer
	log      logger.Logger
	minLen   int

	epoch        uint64
	state        State
	profile      model.CandidateProfile
	questions    []model.InterviewQuestion
	index        int
	answers      []model.AnswerRecord
	scores       []model.ScoreRecord
	validation   string
	errMsg       string
	notice       string
	lastFeedback *model.ScoreRecord
	result       *model.InterviewResult
}

// New creates a session in the loading state.
func New(scorer Scorer, store *progress.Store, opts ...Option) *Session {
	s := &Session{
		scorer:   scorer,
		progress: store,
		log:      logger.Nop(),
		minLen:   defaultMinAnswerLength,
		state:    StateLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.decider == nil {
		s.decider = scoring.NewDecider()
	}
	if s.buf == nil {
		s.buf = voice.NewAnswerBuffer()
	}
	return s
}

// Buffer returns the answer buffer read by SubmitDraft.
func (s *Session) Buffer() *voice.AnswerBuffer { return s.buf }

// Start checks the entry guard and loads the questions. An unmet
// prerequisite is not an error: the returned decision names the step to
// go to instead.
func (s *Session) Start(ctx context.Context) (progress.Decision, error) {
	d := s.progress.Guard(progress.StepInterview)
	if !d.Allowed {
		s.block("")
		s.log.Debug(ctx, "interview entry redirected", logger.String("to", string(d.RedirectTo)))
		return d, nil
	}
	profile, err := s.progress.Profile(ctx)
	if err != nil || profile.Name == "" {
		s.block(MsgNoProfile)
		return progress.Decision{RedirectTo: progress.StepUpload}, nil
	}
	if s.progress.CanAccess(progress.StepResults) {
		if res, err := s.progress.Result(ctx); err == nil {
			s.restore(profile, res)
			return progress.Decision{Allowed: true}, nil
		}
	}
	return progress.Decision{Allowed: true}, s.LoadQuestions(ctx, profile)
}

// restore mirrors a persisted result so a finished interview is not rerun.
func (s *Session) restore(profile model.CandidateProfile, res model.InterviewResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.clearLocked()
	s.profile = profile
	s.result = &res
	s.state = StateComplete
}

func (s *Session) block(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.clearLocked()
	s.state = StateBlocked
	s.errMsg = msg
}

// LoadQuestions requests the question set for profile. Any previous
// session state is discarded.
func (s *Session) LoadQuestions(ctx context.Context, profile model.CandidateProfile) error {
	s.mu.Lock()
	switch s.state {
	case StateAnswering, StateSubmitting:
		s.mu.Unlock()
		return fmt.Errorf("%w: interview in progress", ErrNotAnswering)
	case StateComplete:
		s.mu.Unlock()
		return fmt.Errorf("%w: interview already complete", ErrNotAnswering)
	}
	s.epoch++
	epoch := s.epoch
	s.clearLocked()
	s.state = StateLoading
	s.profile = profile
	s.mu.Unlock()

	if profile.Name == "" {
		s.fail(epoch, MsgNoProfile)
		return ErrNoProfile
	}

	texts, err := s.scorer.Questions(ctx, profile)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		metrics.RecordStaleResponse()
		return ErrStaleResponse
	}
	if err != nil {
		s.state = StateFatal
		s.errMsg = messageOf(err, MsgLoadFailed)
		s.log.Warn(ctx, "question load failed", logger.Error(err))
		return fmt.Errorf("load questions: %w", err)
	}
	questions := make([]model.InterviewQuestion, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			questions = append(questions, model.InterviewQuestion{Index: len(questions), Text: t})
		}
	}
	if len(questions) == 0 {
		s.state = StateFatal
		s.errMsg = MsgNoQuestions
		return ErrNoQuestions
	}
	s.questions = questions
	s.index = 0
	s.state = StateAnswering
	s.log.Debug(ctx, "interview questions loaded", logger.Int("count", len(questions)))
	return nil
}

func (s *Session) fail(epoch uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.state = StateFatal
		s.errMsg = msg
	}
}

// SubmitDraft submits the current content of the answer buffer.
func (s *Session) SubmitDraft(ctx context.Context) error {
	return s.SubmitAnswer(ctx, s.buf.String())
}

// SubmitAnswer validates raw and sends it for the current question.
// Validation failures make no request. A failed request keeps raw as the
// draft so the candidate can retry.
func (s *Session) SubmitAnswer(ctx context.Context, raw string) error {
	s.mu.Lock()
	if s.state != StateAnswering {
		s.mu.Unlock()
		return ErrNotAnswering
	}
	s.buf.Set(raw)

	text := strings.TrimSpace(raw)
	switch {
	case text == "":
		s.validation = MsgEmptyAnswer
		s.mu.Unlock()
		metrics.RecordAnswerRejected("empty")
		return ErrEmptyAnswer
	case utf8.RuneCountInString(text) < s.minLen:
		s.validation = fmt.Sprintf(MsgAnswerTooShort, s.minLen)
		s.mu.Unlock()
		metrics.RecordAnswerRejected("too_short")
		return ErrAnswerTooShort
	}

	epoch, idx := s.epoch, s.index
	question, profile := s.questions[idx], s.profile
	s.state = StateSubmitting
	s.validation = ""
	s.errMsg = ""
	s.lastFeedback = nil
	s.buf.Lock()
	s.mu.Unlock()

	grade, err := s.scorer.Grade(ctx, profile, question, text)

	s.mu.Lock()
	if s.epoch != epoch || s.index != idx || s.state != StateSubmitting {
		s.mu.Unlock()
		metrics.RecordStaleResponse()
		s.log.Debug(ctx, "dropping stale grade", logger.Int("index", idx))
		return ErrStaleResponse
	}
	s.buf.Unlock()

	if err != nil {
		s.state = StateAnswering
		s.errMsg = messageOf(err, MsgSubmitFailed)
		s.mu.Unlock()
		metrics.RecordAnswerRejected("submit_failed")
		s.log.Warn(ctx, "answer submission failed", logger.Int("index", idx), logger.Error(err))
		return fmt.Errorf("submit answer %d: %w", idx, err)
	}

	grade.QuestionIndex = idx
	grade.Score = math.Max(0, math.Min(maxQuestionScore, grade.Score))
	s.answers = append(s.answers, model.AnswerRecord{QuestionIndex: idx, Text: text})
	s.scores = append(s.scores, grade)
	s.lastFeedback = &grade
	s.buf.Reset()
	metrics.RecordAnswerAccepted()

	if idx < len(s.questions)-1 {
		s.index = idx + 1
		s.state = StateAnswering
		s.mu.Unlock()
		return nil
	}

	// Last answer: stay in submitting while the result is produced.
	scores := append([]model.ScoreRecord(nil), s.scores...)
	details := s.detailsLocked()
	s.mu.Unlock()
	return s.finish(ctx, epoch, profile, scores, details)
}

func (s *Session) detailsLocked() []model.QuestionDetail {
	out := make([]model.QuestionDetail, 0, len(s.answers))
	for i, a := range s.answers {
		d := model.QuestionDetail{Question: s.questions[a.QuestionIndex].Text, Answer: a.Text}
		if i < len(s.scores) {
			d.Score = s.scores[i].Score
		}
		out = append(out, d)
	}
	return out
}

// finish computes the aggregate, fetches the backend's result, persists it
// and flips the completion flags.
func (s *Session) finish(ctx context.Context, epoch uint64, p model.CandidateProfile, scores []model.ScoreRecord, details []model.QuestionDetail) error {
	aggregate := scoring.Aggregate(scores)
	local := s.localResult(p, aggregate, details)

	var notice string
	res, err := s.scorer.Results(ctx, p)
	if err != nil {
		notice = MsgResultsFallback
		res = local
		s.log.Warn(ctx, "final results fetch failed, using local decision", logger.Error(err))
	} else {
		res = merge(res, local)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	stale := s.epoch != epoch
	s.mu.Unlock()
	if stale {
		metrics.RecordStaleResponse()
		return ErrStaleResponse
	}

	s.progress.SaveResult(ctx, res)
	for _, f := range []progress.Flag{progress.FlagInterviewCompleted, progress.FlagResultsAvailable} {
		if err := s.progress.Update(ctx, f, true); err != nil {
			s.log.Error(ctx, "progress update failed", logger.String("flag", string(f)), logger.Error(err))
		}
	}

	s.mu.Lock()
	s.result = &res
	s.notice = notice
	s.state = StateComplete
	s.mu.Unlock()

	metrics.RecordInterviewCompleted()
	metrics.UpdateInterviewScore(res.InterviewScore)
	s.log.Info(ctx, "interview complete",
		logger.String("decision", res.FinalDecision),
		logger.Float64("interview_score", res.InterviewScore),
		logger.Bool("local_decision", notice != ""))
	return nil
}

func (s *Session) localResult(p model.CandidateProfile, aggregate float64, details []model.QuestionDetail) model.InterviewResult {
	decision, reasons := s.decider.Decide(p, aggregate)
	return model.InterviewResult{
		CandidateName:  p.Name,
		SelectedRole:   p.DesiredRole,
		PredictedRole:  p.PredictedRole,
		ATSScore:       p.ATSScore,
		InterviewScore: aggregate,
		FinalDecision:  decision,
		Reasons:        reasons,
		Skills:         append([]string(nil), p.Skills...),
		Details:        details,
	}
}

// merge completes the backend result with local data. The locally computed
// aggregate always wins so every screen shows the same interview score.
func merge(remote, local model.InterviewResult) model.InterviewResult {
	out := remote
	out.InterviewScore = local.InterviewScore
	if out.CandidateName == "" {
		out.CandidateName = local.CandidateName
	}
	if out.SelectedRole == "" {
		out.SelectedRole = local.SelectedRole
	}
	if out.PredictedRole == "" {
		out.PredictedRole = local.PredictedRole
	}
	if out.ATSScore == 0 {
		out.ATSScore = local.ATSScore
	}
	if len(out.Skills) == 0 {
		out.Skills = local.Skills
	}
	if len(out.Details) == 0 {
		out.Details = local.Details
	}
	out.FinalDecision = normalizeDecision(out.FinalDecision)
	if out.FinalDecision == "" {
		out.FinalDecision = local.FinalDecision
		out.Reasons = local.Reasons
	}
	if out.Reasons == "" {
		out.Reasons = local.Reasons
	}
	return out
}

// normalizeDecision strips decoration such as status emoji from a decision.
func normalizeDecision(d string) string {
	switch {
	case strings.Contains(d, model.DecisionSelected):
		return model.DecisionSelected
	case strings.Contains(d, model.DecisionOnHold):
		return model.DecisionOnHold
	case strings.Contains(d, model.DecisionRejected):
		return model.DecisionRejected
	default:
		return strings.TrimSpace(d)
	}
}

// Reset clears the session and starts a new journey.
func (s *Session) Reset(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.epoch++
	s.clearLocked()
	s.state = StateLoading
	s.mu.Unlock()

	s.progress.Reset(ctx)
	s.log.Info(ctx, "journey reset")
}

// Abandon drops in-memory state without touching progress, as when the
// candidate navigates away. In-flight requests are not cancelled; their
// responses are ignored.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.clearLocked()
	s.state = StateLoading
}

func (s *Session) clearLocked() {
	s.profile = model.CandidateProfile{}
	s.questions = nil
	s.index = 0
	s.answers = nil
	s.scores = nil
	s.validation = ""
	s.errMsg = ""
	s.notice = ""
	s.lastFeedback = nil
	s.result = nil
	s.buf.Reset()
}

// Snapshot returns a copy of the session for display.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:             s.state,
		QuestionIndex:     s.index,
		TotalQuestions:    len(s.questions),
		Draft:             s.buf.String(),
		ValidationMessage: s.validation,
		ErrorMessage:      s.errMsg,
		Notice:            s.notice,
		Answers:           append([]model.AnswerRecord(nil), s.answers...),
		Scores:            append([]model.ScoreRecord(nil), s.scores...),
	}
	if s.index < len(s.questions) {
		snap.Question = s.questions[s.index].Text
	}
	if s.lastFeedback != nil {
		fb := *s.lastFeedback
		snap.LastFeedback = &fb
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
	}
	return snap
}

func messageOf(err error, fallback string) string {
	var um userMessenger
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
