package model

// ProgressState holds the gating flags of the four-step journey.
type ProgressState struct {
	ResumeUploaded     bool `json:"resumeUploaded"`
	ATSScoreViewed     bool `json:"atsScoreViewed"`
	InterviewCompleted bool `json:"interviewCompleted"`
	ResultsAvailable   bool `json:"resultsAvailable"`
}
