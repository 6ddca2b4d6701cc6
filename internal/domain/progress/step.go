// Package progress tracks how far a candidate has advanced through the journey
// and decides which steps they may enter.
package progress

// Step is one stage of the journey.
type Step string

// Journey steps in prerequisite order.
const (
	StepUpload    Step = "upload"
	StepATSScore  Step = "ats-score"
	StepInterview Step = "interview"
	StepResults   Step = "results"
)

// ParseStep resolves a step name. Unknown names report false.
func ParseStep(s string) (Step, bool) {
	switch st := Step(s); st {
	case StepUpload, StepATSScore, StepInterview, StepResults:
		return st, true
	}
	return "", false
}

// Flag names one gating flag. Values double as durable storage keys.
type Flag string

// Gating flags.
const (
	FlagResumeUploaded     Flag = "resumeUploaded"
	FlagATSScoreViewed     Flag = "atsScoreViewed"
	FlagInterviewCompleted Flag = "interviewCompleted"
	FlagResultsAvailable   Flag = "resultsAvailable"
)

// Storage keys for journey records.
const (
	KeyCandidateInfo    = "candidateInfo"
	KeyInterviewResults = "interviewResults"
)

// journeyKeys lists every durable key a full reset removes.
var journeyKeys = []string{ //nolint:gochecknoglobals // fixed key set
	string(FlagResumeUploaded),
	string(FlagATSScoreViewed),
	string(FlagInterviewCompleted),
	string(FlagResultsAvailable),
	KeyCandidateInfo,
	KeyInterviewResults,
}

// Decision is the outcome of a guard check. When Allowed is false the caller
// should move to RedirectTo instead.
type Decision struct {
	Allowed    bool
	RedirectTo Step
}
