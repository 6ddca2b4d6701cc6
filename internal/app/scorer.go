package service

import (
	"context"

	"github.com/okian/talentflow/internal/adapters/http/client"
	"github.com/okian/talentflow/internal/domain/model"
)

// Backend is the scoring backend the journey talks to.
type Backend interface {
	UploadResume(ctx context.Context, req client.UploadRequest) (model.CandidateProfile, error)
	InterviewQuestions(ctx context.Context, req client.SessionRequest) ([]string, error)
	SubmitAnswer(ctx context.Context, req client.AnswerRequest) (client.AnswerResponse, error)
	InterviewResults(ctx context.Context, req client.SessionRequest) (model.InterviewResult, error)
}

// scoringAdapter adapts a Backend to interview.Scorer.
type scoringAdapter struct {
	backend Backend
}

func sessionRequest(p model.CandidateProfile) client.SessionRequest {
	return client.SessionRequest{
		CandidateName: p.Name,
		SelectedRole:  p.DesiredRole,
		SessionKey:    p.SessionKey,
	}
}

func (a *scoringAdapter) Questions(ctx context.Context, p model.CandidateProfile) ([]string, error) {
	return a.backend.InterviewQuestions(ctx, sessionRequest(p))
}

func (a *scoringAdapter) Grade(ctx context.Context, p model.CandidateProfile, q model.InterviewQuestion, answer string) (model.ScoreRecord, error) {
	resp, err := a.backend.SubmitAnswer(ctx, client.AnswerRequest{
		CandidateName: p.Name,
		SelectedRole:  p.DesiredRole,
		SessionKey:    p.SessionKey,
		Question:      q.Text,
		Answer:        answer,
		QuestionIndex: q.Index,
	})
	if err != nil {
		return model.ScoreRecord{}, err
	}
	return model.ScoreRecord{
		QuestionIndex: q.Index,
		Score:         resp.Score,
		Feedback:      resp.Feedback,
	}, nil
}

func (a *scoringAdapter) Results(ctx context.Context, p model.CandidateProfile) (model.InterviewResult, error) {
	return a.backend.InterviewResults(ctx, sessionRequest(p))
}
