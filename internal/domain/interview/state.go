package interview

import "github.com/okian/talentflow/internal/domain/model"

// State of an interview session.
type State int

// Session states.
const (
	StateLoading State = iota
	StateAnswering
	StateSubmitting
	StateComplete
	StateBlocked
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnswering:
		return "answering"
	case StateSubmitting:
		return "submitting"
	case StateComplete:
		return "complete"
	case StateBlocked:
		return "blocked"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the session for display.
type Snapshot struct {
	State          State
	QuestionIndex  int
	TotalQuestions int
	Question       string
	Draft          string

	// ValidationMessage is the inline message of the last rejected answer.
	ValidationMessage string
	// ErrorMessage describes the last failed request.
	ErrorMessage string
	// Notice is a recoverable remark, e.g. results computed locally.
	Notice string

	// LastFeedback is the grade of the previous answer, kept until the next submission.
	LastFeedback *model.ScoreRecord

	Answers []model.AnswerRecord
	Scores  []model.ScoreRecord
	Result  *model.InterviewResult
}
