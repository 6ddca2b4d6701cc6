package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jung-kurt/gofpdf"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentflow/internal/adapters/http/client"
	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/adapters/resume"
	service "github.com/okian/talentflow/internal/app"
	"github.com/okian/talentflow/internal/domain/interview"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/progress"
)

// backend fakes the scoring API.
type backend struct {
	mu        sync.Mutex
	uploadErr string
	uploads   int
	answers   []client.AnswerRequest
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload-resume", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.uploads++
		fail := b.uploadErr
		b.mu.Unlock()
		if fail != "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": fail})
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"predicted_role": r.FormValue("selected_role"),
			"ats_score":      80,
			"skills":         []string{"go", "sql"},
			"session_key":    "sess-42",
		})
	})
	mux.HandleFunc("/api/interview-questions", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"questions": []string{"Describe a service you built.", "How do you test concurrency?"},
		})
	})
	mux.HandleFunc("/api/submit-answer", func(w http.ResponseWriter, r *http.Request) {
		var req client.AnswerRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.answers = append(b.answers, req)
		b.mu.Unlock()
		score := 7
		if req.QuestionIndex == 1 {
			score = 9
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"score": score, "feedback": "ok"})
	})
	mux.HandleFunc("/api/interview-results", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"final_decision": "✅ Selected",
			"reasons":        "Resume matches selected role; Good ATS match",
		})
	})
	return mux
}

func writeResume(t *testing.T, dir string) string {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 10, "Backend engineer with Golang experience")
	path := filepath.Join(dir, "resume.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("write resume: %v", err)
	}
	return path
}

func newJourney(t *testing.T, b *backend, opts ...service.Option) (*service.Journey, *progress.Store, string) {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ctx := context.Background()
	store := progress.New(ctx, repository.NewMemoryStore())
	dir := t.TempDir()
	j := service.New(store, c, append([]service.Option{
		service.WithReportDir(filepath.Join(dir, "reports")),
		service.WithMinAnswerLength(10),
	}, opts...)...)
	t.Cleanup(func() { _ = j.Close() })
	return j, store, dir
}

func TestJourney_FullFlow(t *testing.T) {
	Convey("Given a journey against a working backend", t, func() {
		ctx := context.Background()
		b := &backend{}
		j, _, dir := newJourney(t, b)
		resumePath := writeResume(t, dir)

		Convey("When the candidate walks every step", func() {
			profile, err := j.Upload(ctx, service.UploadInput{
				CandidateName: "Ada",
				Role:          "backend developer",
				ResumePath:    resumePath,
			})
			So(err, ShouldBeNil)
			So(profile.DesiredRole, ShouldEqual, "Backend Developer")
			So(profile.SessionKey, ShouldEqual, "sess-42")
			So(j.Progress().ResumeUploaded, ShouldBeTrue)

			view, d, err := j.ViewATS(ctx)
			So(err, ShouldBeNil)
			So(d.Allowed, ShouldBeTrue)
			So(view.Rating, ShouldEqual, "Very Good")
			So(view.RoleMatch, ShouldBeTrue)
			So(j.Progress().ATSScoreViewed, ShouldBeTrue)

			d, err = j.StartInterview(ctx)
			So(err, ShouldBeNil)
			So(d.Allowed, ShouldBeTrue)
			So(j.Session().Snapshot().TotalQuestions, ShouldEqual, 2)

			So(j.Session().SubmitAnswer(ctx, "I built a payments gateway in Go."), ShouldBeNil)
			j.Session().Buffer().Set("Race detector plus table driven tests.")
			So(j.Session().SubmitDraft(ctx), ShouldBeNil)

			Convey("Then the interview should complete with a merged result", func() {
				snap := j.Session().Snapshot()
				So(snap.State, ShouldEqual, interview.StateComplete)

				res, d, err := j.Results(ctx)
				So(err, ShouldBeNil)
				So(d.Allowed, ShouldBeTrue)
				So(res.InterviewScore, ShouldEqual, 8.0)
				So(res.FinalDecision, ShouldEqual, model.DecisionSelected)
				So(res.CandidateName, ShouldEqual, "Ada")
				So(res.Details, ShouldHaveLength, 2)

				b.mu.Lock()
				So(b.answers, ShouldHaveLength, 2)
				So(b.answers[1].SessionKey, ShouldEqual, "sess-42")
				So(b.answers[1].Question, ShouldEqual, "How do you test concurrency?")
				b.mu.Unlock()
			})

			Convey("Then the report should be exported as a PDF", func() {
				path, err := j.ExportReport(ctx)
				So(err, ShouldBeNil)
				info, statErr := os.Stat(path)
				So(statErr, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})

			Convey("Then a reset should lock every step again", func() {
				j.Reset(ctx)
				So(j.Progress(), ShouldResemble, model.ProgressState{})
				So(j.Guard(progress.StepATSScore).RedirectTo, ShouldEqual, progress.StepUpload)
				_, err := j.ExportReport(ctx)
				So(errors.Is(err, service.ErrResultsUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestJourney_Guards(t *testing.T) {
	Convey("Given a fresh journey", t, func() {
		ctx := context.Background()
		j, _, _ := newJourney(t, &backend{})

		Convey("Then later steps should redirect to upload", func() {
			_, d, err := j.ViewATS(ctx)
			So(err, ShouldBeNil)
			So(d.Allowed, ShouldBeFalse)
			So(d.RedirectTo, ShouldEqual, progress.StepUpload)

			d, err = j.StartInterview(ctx)
			So(err, ShouldBeNil)
			So(d.RedirectTo, ShouldEqual, progress.StepUpload)

			_, d, err = j.Results(ctx)
			So(err, ShouldBeNil)
			So(d.RedirectTo, ShouldEqual, progress.StepUpload)
		})

		Convey("Then voice input should report itself unsupported", func() {
			So(j.Voice().Supported(), ShouldBeFalse)
		})
	})
}

func TestJourney_UploadFailures(t *testing.T) {
	Convey("Given a journey", t, func() {
		ctx := context.Background()
		b := &backend{}
		j, _, dir := newJourney(t, b)
		resumePath := writeResume(t, dir)

		Convey("When fields are missing", func() {
			_, err := j.Upload(ctx, service.UploadInput{CandidateName: "Ada", ResumePath: resumePath})

			Convey("Then the upload should be refused before reaching the backend", func() {
				So(errors.Is(err, service.ErrMissingField), ShouldBeTrue)
				So(b.uploads, ShouldEqual, 0)
			})
		})

		Convey("When the role is not in the catalogue", func() {
			_, err := j.Upload(ctx, service.UploadInput{CandidateName: "Ada", Role: "Astronaut", ResumePath: resumePath})

			Convey("Then it should be refused", func() {
				So(errors.Is(err, service.ErrUnknownRole), ShouldBeTrue)
			})
		})

		Convey("When the backend rejects the resume", func() {
			b.uploadErr = "Could not extract text from PDF"
			_, err := j.Upload(ctx, service.UploadInput{CandidateName: "Ada", Role: "QA Tester", ResumePath: resumePath})

			Convey("Then the server message should surface and progress stay untouched", func() {
				So(err, ShouldNotBeNil)
				So(client.MessageOf(err, "Upload failed"), ShouldEqual, "Could not extract text from PDF")
				So(j.Progress().ResumeUploaded, ShouldBeFalse)
			})
		})
	})
}

func TestJourney_ResumeLimits(t *testing.T) {
	Convey("Given a journey that only accepts tiny resumes", t, func() {
		ctx := context.Background()
		b := &backend{}
		j, _, dir := newJourney(t, b, service.WithInspector(resume.NewInspector(resume.WithMaxBytes(16))))
		resumePath := writeResume(t, dir)

		Convey("When a regular resume is uploaded", func() {
			_, err := j.Upload(ctx, service.UploadInput{CandidateName: "Ada", Role: "QA Tester", ResumePath: resumePath})

			Convey("Then it should be refused locally", func() {
				So(errors.Is(err, resume.ErrTooLarge), ShouldBeTrue)
				So(b.uploads, ShouldEqual, 0)
				So(j.Progress().ResumeUploaded, ShouldBeFalse)
			})
		})
	})
}
