package model

// InterviewQuestion is one interview prompt. Index is its position in the set.
type InterviewQuestion struct {
	Index int
	Text  string
}

// AnswerRecord is one accepted candidate response.
type AnswerRecord struct {
	QuestionIndex int    `json:"question_index"`
	Text          string `json:"answer"`
}

// ScoreRecord is the scorer's evaluation of one AnswerRecord.
type ScoreRecord struct {
	QuestionIndex int     `json:"question_index"`
	Score         float64 `json:"score"` // 0-10
	Feedback      string  `json:"feedback"`
}

// Final decisions.
const (
	DecisionSelected = "Selected"
	DecisionOnHold   = "On Hold"
	DecisionRejected = "Rejected"
)

// QuestionDetail is one row of the per-question breakdown.
type QuestionDetail struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// InterviewResult is the final aggregated outcome of a journey.
type InterviewResult struct {
	CandidateName  string           `json:"candidate_name"`
	SelectedRole   string           `json:"selected_role"`
	PredictedRole  string           `json:"predicted_role"`
	ATSScore       float64          `json:"ats_score"`
	InterviewScore float64          `json:"interview_score"` // aggregate, 0-10
	FinalDecision  string           `json:"final_decision"`
	Reasons        string           `json:"reasons"`
	Skills         []string         `json:"skills"`
	Details        []QuestionDetail `json:"interview_details"`
}
