// Package scoring holds the arithmetic shared by the interview and the report:
// aggregation of per-question scores, scale normalisation and the local
// decision rule used when the backend cannot provide one.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/talentflow/internal/domain/model"
)

// Scale constants.
const (
	maxInterviewScore = 10
	maxATSScore       = 100

	defaultATSThreshold       = 60
	defaultInterviewThreshold = 0.5

	// holdATSMargin and holdInterviewMargin relax the thresholds for On Hold.
	holdATSMargin       = 10
	holdInterviewMargin = 0.1
)

// Aggregate returns the rounded arithmetic mean of the scores, or 0 when empty.
func Aggregate(scores []model.ScoreRecord) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s.Score
	}
	return math.Round(sum / float64(len(scores)))
}

// NormalizeInterview rescales a 0-10 interview score onto 0-100.
func NormalizeInterview(score float64) float64 {
	return score * (maxATSScore / maxInterviewScore)
}

// Overall combines the ATS score (0-100) and the interview score (0-10).
func Overall(ats, interview float64) float64 {
	return math.Round((ats + NormalizeInterview(interview)) / 2)
}

// Rating labels an ATS score for display.
func Rating(ats float64) string {
	switch {
	case ats >= 90:
		return "Excellent"
	case ats >= 80:
		return "Very Good"
	case ats >= 70:
		return "Good"
	case ats >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// Option applies a configuration option to the Decider.
type Option func(*Decider)

// WithATSThreshold sets the minimum ATS score for selection.
func WithATSThreshold(v float64) Option {
	return func(d *Decider) {
		if v > 0 && v <= maxATSScore {
			d.atsThreshold = v
		}
	}
}

// WithInterviewThreshold sets the fraction of the interview scale (0-1)
// that must be exceeded for selection.
func WithInterviewThreshold(v float64) Option {
	return func(d *Decider) {
		if v > 0 && v < 1 {
			d.interviewThreshold = v
		}
	}
}

// Decider applies the fallback selection rule.
type Decider struct {
	atsThreshold       float64
	interviewThreshold float64
}

// NewDecider creates a Decider with the default thresholds.
func NewDecider(opts ...Option) *Decider {
	d := &Decider{
		atsThreshold:       defaultATSThreshold,
		interviewThreshold: defaultInterviewThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decide returns the final decision and its "; "-joined reasons for a
// profile and an aggregate interview score on the 0-10 scale.
func (d *Decider) Decide(p model.CandidateProfile, interview float64) (decision, reasons string) {
	matched := p.PredictedRole == p.DesiredRole
	ratio := interview / maxInterviewScore

	parts := make([]string, 0, 3)
	if matched {
		parts = append(parts, fmt.Sprintf("Strong %s skills", strings.ToLower(p.DesiredRole)))
	} else {
		parts = append(parts, fmt.Sprintf("Resume does not match the selected role (%s)", p.DesiredRole))
	}
	if p.ATSScore >= d.atsThreshold {
		parts = append(parts, "Good ATS match")
	} else {
		parts = append(parts, "Low ATS compatibility")
	}
	if ratio > d.interviewThreshold {
		parts = append(parts, "Good communication/confidence")
	} else {
		parts = append(parts, "Low confidence in communication")
	}

	switch {
	case matched && p.ATSScore >= d.atsThreshold && ratio > d.interviewThreshold:
		decision = model.DecisionSelected
	case p.ATSScore >= d.atsThreshold-holdATSMargin && ratio > d.interviewThreshold-holdInterviewMargin:
		decision = model.DecisionOnHold
	default:
		decision = model.DecisionRejected
	}
	return decision, strings.Join(parts, "; ")
}
