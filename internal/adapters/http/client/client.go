// Package client talks JSON over HTTP to the scoring backend that parses
// resumes, issues ATS scores, generates questions and grades answers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

// Backend endpoints relative to the base URL.
const (
	EndpointUpload    = "/upload-resume"
	EndpointQuestions = "/interview-questions"
	EndpointAnswer    = "/submit-answer"
	EndpointResults   = "/interview-results"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// Client is a scoring backend client. It is safe for concurrent use.
type Client struct {
	baseURL       string
	http          *http.Client
	timeout       time.Duration
	log           logger.Logger
	newSessionKey func() string
}

// New creates a Client for the backend rooted at baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{},
		timeout:       defaultTimeout,
		log:           logger.Nop(),
		newSessionKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SessionRequest identifies a candidate session.
type SessionRequest struct {
	CandidateName string `json:"candidate_name"`
	SelectedRole  string `json:"selected_role"`
	SessionKey    string `json:"session_key"`
}

// AnswerRequest submits one answer for grading.
type AnswerRequest struct {
	CandidateName string `json:"candidate_name"`
	SelectedRole  string `json:"selected_role"`
	SessionKey    string `json:"session_key"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	QuestionIndex int    `json:"question_index"`
}

// AnswerResponse is the grade of one answer.
type AnswerResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// UploadRequest carries a resume document and the candidate's choices.
type UploadRequest struct {
	CandidateName string
	SelectedRole  string
	FileName      string
	Resume        io.Reader
}

type uploadResponse struct {
	PredictedRole string   `json:"predicted_role"`
	ATSScore      float64  `json:"ats_score"`
	Skills        []string `json:"skills"`
	SessionKey    string   `json:"session_key"`
}

// answerResponse keeps Score nil when the backend sent none.
type answerResponse struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

type questionsResponse struct {
	Questions []string `json:"questions"`
}

// UploadResume posts the resume as multipart form data and returns the
// resulting candidate profile.
func (c *Client) UploadResume(ctx context.Context, req UploadRequest) (model.CandidateProfile, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("resume", req.FileName)
	if err != nil {
		return model.CandidateProfile{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, req.Resume); err != nil {
		return model.CandidateProfile{}, fmt.Errorf("read resume: %w", err)
	}
	if err := mw.WriteField("candidate_name", req.CandidateName); err != nil {
		return model.CandidateProfile{}, fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.WriteField("selected_role", req.SelectedRole); err != nil {
		return model.CandidateProfile{}, fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return model.CandidateProfile{}, fmt.Errorf("build upload form: %w", err)
	}

	var out uploadResponse
	if err := c.do(ctx, EndpointUpload, mw.FormDataContentType(), &body, &out); err != nil {
		return model.CandidateProfile{}, err
	}

	key := out.SessionKey
	if key == "" {
		key = c.newSessionKey()
		c.log.Debug(ctx, "upload response without session key, generated one locally")
	}
	return model.CandidateProfile{
		Name:          req.CandidateName,
		DesiredRole:   req.SelectedRole,
		PredictedRole: out.PredictedRole,
		ATSScore:      out.ATSScore,
		Skills:        out.Skills,
		SessionKey:    key,
	}, nil
}

// InterviewQuestions fetches the ordered question set for a session.
func (c *Client) InterviewQuestions(ctx context.Context, req SessionRequest) ([]string, error) {
	var out questionsResponse
	if err := c.postJSON(ctx, EndpointQuestions, req, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// SubmitAnswer sends one answer and returns its grade. A response without
// a score is malformed.
func (c *Client) SubmitAnswer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	var out answerResponse
	if err := c.postJSON(ctx, EndpointAnswer, req, &out); err != nil {
		return AnswerResponse{}, err
	}
	if out.Score == nil {
		c.log.Warn(ctx, "grade response without score", logger.Int("question_index", req.QuestionIndex))
		return AnswerResponse{}, fmt.Errorf("%w: %s: missing score", ErrMalformedResponse, EndpointAnswer)
	}
	return AnswerResponse{Score: *out.Score, Feedback: out.Feedback}, nil
}

// InterviewResults fetches the backend's final result for a session.
func (c *Client) InterviewResults(ctx context.Context, req SessionRequest) (model.InterviewResult, error) {
	var out model.InterviewResult
	if err := c.postJSON(ctx, EndpointResults, req, &out); err != nil {
		return model.InterviewResult{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, "application/json", bytes.NewReader(raw), out)
}

func (c *Client) do(ctx context.Context, endpoint, contentType string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordScorerLatency(endpoint, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordScorerRequest(endpoint, "transport_error")
		c.log.Warn(ctx, "scoring backend request failed",
			logger.String("endpoint", endpoint), logger.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrTransport, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordScorerRequest(endpoint, "api_error")
		apiErr := decodeAPIError(endpoint, resp)
		c.log.Warn(ctx, "scoring backend rejected request",
			logger.String("endpoint", endpoint),
			logger.Int("status", resp.StatusCode),
			logger.String("message", apiErr.Message))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		metrics.RecordScorerRequest(endpoint, "malformed")
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, endpoint, err)
	}
	metrics.RecordScorerRequest(endpoint, "ok")
	return nil
}

func decodeAPIError(endpoint string, resp *http.Response) *APIError {
	apiErr := &APIError{Endpoint: endpoint, Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = strings.TrimSpace(payload.Error)
	}
	return apiErr
}
