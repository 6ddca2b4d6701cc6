// Package model contains domain models passed between layers.
// JSON tags are the wire and storage contract shared with the scoring backend.
package model

import "strings"

// CandidateProfile is one candidate's submission context, issued by a resume upload.
type CandidateProfile struct {
	Name          string   `json:"candidate_name"`
	DesiredRole   string   `json:"selected_role"`
	PredictedRole string   `json:"predicted_role"`
	ATSScore      float64  `json:"ats_score"`   // 0-100
	Skills        []string `json:"skills"`      // ordered as extracted
	SessionKey    string   `json:"session_key"` // must accompany every interview request
}

// Roles lists the roles a candidate can apply for.
var Roles = []string{ //nolint:gochecknoglobals // fixed catalogue
	"Frontend Developer",
	"Backend Developer",
	"Full Stack Developer",
	"Data Scientist",
	"ML Engineer",
	"DevOps Engineer",
	"UI/UX Designer",
	"Android Developer",
	"QA Tester",
	"Project Manager",
}

// ParseRole resolves s to a catalogue role, ignoring case and surrounding space.
func ParseRole(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(r, s) {
			return r, true
		}
	}
	return "", false
}
