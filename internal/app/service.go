// Package service wires the journey steps together: resume upload, the ATS
// score view, the interview, the results and the report export.
package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/okian/talentflow/internal/adapters/http/client"
	"github.com/okian/talentflow/internal/adapters/pdfreport"
	"github.com/okian/talentflow/internal/adapters/resume"
	"github.com/okian/talentflow/internal/domain/interview"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/progress"
	"github.com/okian/talentflow/internal/domain/scoring"
	"github.com/okian/talentflow/internal/domain/voice"
	"github.com/okian/talentflow/pkg/logger"
)

const defaultReportDir = "reports"

// UploadInput is what the candidate fills in on the upload step.
type UploadInput struct {
	CandidateName string
	Role          string
	ResumePath    string
}

// ATSView is the content of the ATS score step.
type ATSView struct {
	Profile model.CandidateProfile
	Rating  string
	// RoleMatch reports whether the predicted role is the one applied for.
	RoleMatch bool
}

// Journey drives one candidate through the evaluation steps.
type Journey struct {
	mu sync.Mutex

	store   *progress.Store
	backend Backend

	inspector    *resume.Inspector
	renderer     *pdfreport.Renderer
	decider      *scoring.Decider
	recognizer   voice.Recognizer
	reportDir    string
	minAnswerLen int

	buf     *voice.AnswerBuffer
	session *interview.Session
	voice   *voice.Adapter

	log logger.Logger
}

// New constructs a Journey over store and backend.
func New(store *progress.Store, backend Backend, opts ...Option) *Journey {
	j := &Journey{
		store:     store,
		backend:   backend,
		reportDir: defaultReportDir,
		buf:       voice.NewAnswerBuffer(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.inspector == nil {
		j.inspector = resume.NewInspector()
	}
	if j.renderer == nil {
		j.renderer = pdfreport.New(pdfreport.WithLogger(j.log))
	}
	if j.decider == nil {
		j.decider = scoring.NewDecider()
	}

	sessionOpts := []interview.Option{
		interview.WithLogger(j.log.Named("interview")),
		interview.WithDecider(j.decider),
		interview.WithAnswerBuffer(j.buf),
	}
	if j.minAnswerLen > 0 {
		sessionOpts = append(sessionOpts, interview.WithMinAnswerLength(j.minAnswerLen))
	}
	j.session = interview.New(&scoringAdapter{backend: backend}, store, sessionOpts...)
	j.voice = voice.New(j.recognizer, j.buf, voice.WithLogger(j.log.Named("voice")))
	return j
}

// Progress returns the current gating flags.
func (j *Journey) Progress() model.ProgressState { return j.store.Get() }

// Guard checks whether step may be entered.
func (j *Journey) Guard(step progress.Step) progress.Decision { return j.store.Guard(step) }

// Session returns the interview session.
func (j *Journey) Session() *interview.Session { return j.session }

// Voice returns the voice input adapter bound to the interview draft.
func (j *Journey) Voice() *voice.Adapter { return j.voice }

// Upload checks the resume locally, sends it to the backend and starts a new
// journey for the returned profile. A failed upload leaves progress untouched.
func (j *Journey) Upload(ctx context.Context, in UploadInput) (model.CandidateProfile, error) {
	name := strings.TrimSpace(in.CandidateName)
	if name == "" || strings.TrimSpace(in.Role) == "" || strings.TrimSpace(in.ResumePath) == "" {
		return model.CandidateProfile{}, ErrMissingField
	}
	role, ok := model.ParseRole(in.Role)
	if !ok {
		return model.CandidateProfile{}, fmt.Errorf("%w: %q", ErrUnknownRole, in.Role)
	}

	doc, err := j.inspector.Inspect(in.ResumePath)
	if err != nil {
		return model.CandidateProfile{}, err
	}
	f, err := os.Open(doc.Path)
	if err != nil {
		return model.CandidateProfile{}, fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	profile, err := j.backend.UploadResume(ctx, client.UploadRequest{
		CandidateName: name,
		SelectedRole:  role,
		FileName:      doc.Name,
		Resume:        f,
	})
	if err != nil {
		j.log.Warn(ctx, "resume upload failed", logger.Error(err))
		return model.CandidateProfile{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.voice.Release(ctx)
	j.session.Reset(ctx)
	j.store.SaveProfile(ctx, profile)
	if err := j.store.Update(ctx, progress.FlagResumeUploaded, true); err != nil {
		return model.CandidateProfile{}, err
	}
	j.log.Info(ctx, "resume uploaded",
		logger.String("candidate", profile.Name),
		logger.String("role", profile.DesiredRole),
		logger.Float64("ats", profile.ATSScore),
		logger.Int("pages", doc.Pages),
	)
	return profile, nil
}

// ViewATS returns the ATS score view and marks it seen. When the step may not
// be entered the returned decision names where to go instead.
func (j *Journey) ViewATS(ctx context.Context) (ATSView, progress.Decision, error) {
	d := j.store.Guard(progress.StepATSScore)
	if !d.Allowed {
		return ATSView{}, d, nil
	}
	profile, err := j.store.Profile(ctx)
	if err != nil {
		return ATSView{}, progress.Decision{RedirectTo: progress.StepUpload}, nil
	}
	if err := j.store.Update(ctx, progress.FlagATSScoreViewed, true); err != nil {
		return ATSView{}, d, err
	}
	return ATSView{
		Profile:   profile,
		Rating:    scoring.Rating(profile.ATSScore),
		RoleMatch: strings.EqualFold(profile.PredictedRole, profile.DesiredRole),
	}, d, nil
}

// StartInterview enters the interview step.
func (j *Journey) StartInterview(ctx context.Context) (progress.Decision, error) {
	return j.session.Start(ctx)
}

// Results returns the stored interview result.
func (j *Journey) Results(ctx context.Context) (model.InterviewResult, progress.Decision, error) {
	d := j.store.Guard(progress.StepResults)
	if !d.Allowed {
		return model.InterviewResult{}, d, nil
	}
	res, err := j.store.Result(ctx)
	if err != nil {
		return model.InterviewResult{}, progress.Decision{RedirectTo: progress.StepInterview}, nil
	}
	return res, d, nil
}

// ExportReport renders the stored result to a PDF and returns its path.
func (j *Journey) ExportReport(ctx context.Context) (string, error) {
	res, d, err := j.Results(ctx)
	if err != nil {
		return "", err
	}
	if !d.Allowed {
		return "", ErrResultsUnavailable
	}
	return j.renderer.WriteFile(ctx, j.reportDir, res)
}

// LeaveInterview releases voice input when the interview view closes.
// Speech still being transcribed never reaches a later answer.
func (j *Journey) LeaveInterview(ctx context.Context) {
	j.voice.Release(ctx)
}

// Reset abandons the current journey and clears all stored progress.
func (j *Journey) Reset(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.voice.Release(ctx)
	j.session.Reset(ctx)
}

// GetStats returns a snapshot of the journey for monitoring.
func (j *Journey) GetStats() map[string]any {
	snap := j.session.Snapshot()
	st := j.store.Get()
	return map[string]any{
		"resumeUploaded":     st.ResumeUploaded,
		"atsScoreViewed":     st.ATSScoreViewed,
		"interviewCompleted": st.InterviewCompleted,
		"resultsAvailable":   st.ResultsAvailable,
		"interviewState":     snap.State.String(),
		"questionIndex":      snap.QuestionIndex,
		"totalQuestions":     snap.TotalQuestions,
		"voiceState":         j.voice.State().String(),
		"storageDegraded":    j.store.Degraded(),
	}
}

// Close releases the voice input resources.
func (j *Journey) Close() error {
	return j.voice.Close()
}
