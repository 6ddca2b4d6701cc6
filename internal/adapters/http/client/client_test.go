package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/talentflow/internal/adapters/http/client"
	. "github.com/smartystreets/goconvey/convey"
)

func newBackend(t *testing.T, h http.HandlerFunc) (*httptest.Server, *client.Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL+"/api/", client.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return srv, c
}

func TestClientJSONEndpoints(t *testing.T) {
	Convey("Given a scoring backend", t, func() {
		ctx := context.Background()
		var gotPath string
		var gotBody map[string]any
		_, c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/api/interview-questions":
				_, _ = io.WriteString(w, `{"questions":["Q1","Q2"]}`)
			case "/api/submit-answer":
				_, _ = io.WriteString(w, `{"score":7,"feedback":"Clear and structured"}`)
			case "/api/interview-results":
				_, _ = io.WriteString(w, `{"candidate_name":"Ada","final_decision":"Selected","interview_score":8}`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})
		session := client.SessionRequest{CandidateName: "Ada", SelectedRole: "QA Tester", SessionKey: "k1"}

		Convey("When fetching questions", func() {
			qs, err := c.InterviewQuestions(ctx, session)

			Convey("Then the request should carry the session identity", func() {
				So(err, ShouldBeNil)
				So(qs, ShouldResemble, []string{"Q1", "Q2"})
				So(gotPath, ShouldEqual, "/api/interview-questions")
				So(gotBody["candidate_name"], ShouldEqual, "Ada")
				So(gotBody["selected_role"], ShouldEqual, "QA Tester")
				So(gotBody["session_key"], ShouldEqual, "k1")
			})
		})

		Convey("When submitting an answer", func() {
			res, err := c.SubmitAnswer(ctx, client.AnswerRequest{
				CandidateName: "Ada", SelectedRole: "QA Tester", SessionKey: "k1",
				Question: "Q2", Answer: "A thorough answer", QuestionIndex: 1,
			})

			Convey("Then the grade should be returned", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 7.0)
				So(res.Feedback, ShouldEqual, "Clear and structured")
				So(gotBody["question_index"], ShouldEqual, 1.0)
				So(gotBody["answer"], ShouldEqual, "A thorough answer")
			})
		})

		Convey("When fetching results", func() {
			res, err := c.InterviewResults(ctx, session)
			So(err, ShouldBeNil)
			So(res.FinalDecision, ShouldEqual, "Selected")
			So(res.InterviewScore, ShouldEqual, 8.0)
		})
	})
}

func TestClientErrors(t *testing.T) {
	Convey("Given a backend that rejects requests", t, func() {
		ctx := context.Background()

		Convey("When the backend sends an error message", func() {
			_, c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":"Session expired"}`)
			})
			_, err := c.SubmitAnswer(ctx, client.AnswerRequest{})

			Convey("Then it should surface as an APIError with that message", func() {
				var apiErr *client.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusBadRequest)
				So(client.MessageOf(err, "fallback"), ShouldEqual, "Session expired")
			})
		})

		Convey("When the backend sends no message", func() {
			_, c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})
			_, err := c.InterviewQuestions(ctx, client.SessionRequest{})

			Convey("Then the fallback message should be used", func() {
				So(client.MessageOf(err, "Failed to submit answer"), ShouldEqual, "Failed to submit answer")
				So(err.Error(), ShouldContainSubstring, "Internal Server Error")
			})
		})

		Convey("When the backend is unreachable", func() {
			srv, c := newBackend(t, func(http.ResponseWriter, *http.Request) {})
			srv.Close()
			_, err := c.InterviewQuestions(ctx, client.SessionRequest{})

			Convey("Then it should be a transport error", func() {
				So(errors.Is(err, client.ErrTransport), ShouldBeTrue)
				So(client.MessageOf(err, "offline"), ShouldEqual, "offline")
			})
		})

		Convey("When the body is not JSON", func() {
			_, c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "<html>")
			})
			_, err := c.SubmitAnswer(ctx, client.AnswerRequest{})
			So(errors.Is(err, client.ErrMalformedResponse), ShouldBeTrue)
		})

		Convey("When a grade arrives without a score", func() {
			for _, body := range []string{"", "{}", `{"feedback":"Looks fine"}`} {
				_, c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
					_, _ = io.WriteString(w, body)
				})
				res, err := c.SubmitAnswer(ctx, client.AnswerRequest{Answer: "A real answer"})

				So(errors.Is(err, client.ErrMalformedResponse), ShouldBeTrue)
				So(res, ShouldResemble, client.AnswerResponse{})
			}
		})

		Convey("When a grade of zero is sent explicitly", func() {
			_, c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"score":0,"feedback":"Off topic"}`)
			})
			res, err := c.SubmitAnswer(ctx, client.AnswerRequest{Answer: "Unrelated words"})

			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 0.0)
			So(res.Feedback, ShouldEqual, "Off topic")
		})
	})

	Convey("Given an invalid base url", t, func() {
		_, err := client.New("localhost:5000")
		So(err, ShouldNotBeNil)
	})
}

func TestClientUpload(t *testing.T) {
	Convey("Given a backend accepting resumes", t, func() {
		ctx := context.Background()
		var fields map[string]string
		var fileBody string
		sessionKey := "srv-key"
		srv, c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fields = map[string]string{
				"candidate_name": r.FormValue("candidate_name"),
				"selected_role":  r.FormValue("selected_role"),
			}
			f, _, err := r.FormFile("resume")
			if err == nil {
				raw, _ := io.ReadAll(f)
				fileBody = string(raw)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"predicted_role": "Backend Developer",
				"ats_score":      82,
				"skills":         []string{"go", "sql"},
				"session_key":    sessionKey,
			})
		})

		Convey("When uploading", func() {
			p, err := c.UploadResume(ctx, client.UploadRequest{
				CandidateName: "Ada", SelectedRole: "Backend Developer",
				FileName: "cv.pdf", Resume: strings.NewReader("%PDF-1.4 fake"),
			})

			Convey("Then the profile should combine request and response", func() {
				So(err, ShouldBeNil)
				So(fields["candidate_name"], ShouldEqual, "Ada")
				So(fields["selected_role"], ShouldEqual, "Backend Developer")
				So(fileBody, ShouldEqual, "%PDF-1.4 fake")
				So(p.Name, ShouldEqual, "Ada")
				So(p.PredictedRole, ShouldEqual, "Backend Developer")
				So(p.ATSScore, ShouldEqual, 82.0)
				So(p.Skills, ShouldResemble, []string{"go", "sql"})
				So(p.SessionKey, ShouldEqual, "srv-key")
			})
		})

		Convey("When the response has no session key", func() {
			sessionKey = ""
			p, err := c.UploadResume(ctx, client.UploadRequest{
				CandidateName: "Ada", SelectedRole: "Backend Developer",
				FileName: "cv.pdf", Resume: strings.NewReader("x"),
			})

			Convey("Then one should be generated locally", func() {
				So(err, ShouldBeNil)
				So(p.SessionKey, ShouldNotBeEmpty)
			})
		})

		Convey("When the client generates keys with a custom function", func() {
			sessionKey = ""
			local, err := client.New(srv.URL+"/api",
				client.WithHTTPClient(srv.Client()),
				client.WithSessionKeyFunc(func() string { return "local-key" }),
			)
			So(err, ShouldBeNil)
			p, err := local.UploadResume(ctx, client.UploadRequest{
				CandidateName: "Ada", SelectedRole: "Backend Developer",
				FileName: "cv.pdf", Resume: strings.NewReader("x"),
			})

			Convey("Then that function should name the session", func() {
				So(err, ShouldBeNil)
				So(p.SessionKey, ShouldEqual, "local-key")
			})
		})
	})
}
