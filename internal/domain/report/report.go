// Package report turns a persisted interview result into the ordered,
// labelled sections of the downloadable report.
package report

import (
	"strconv"
	"strings"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/scoring"
)

// Kind identifies a section.
type Kind int

// Section kinds in report order.
const (
	KindIdentity Kind = iota
	KindScores
	KindRationale
	KindSkills
	KindBreakdown
)

// Field is one labelled value.
type Field struct {
	Label string
	Value string
}

// Entry is one row of the per-question breakdown.
type Entry struct {
	Question string
	Answer   string
	Score    string
}

// Section is one block of the report. Fields, Text and Entries are used
// depending on Kind.
type Section struct {
	Kind    Kind
	Title   string
	Fields  []Field
	Text    string
	Entries []Entry
}

const notAvailable = "N/A"

// Assemble builds the report sections for res. The breakdown is omitted
// when res carries no per-question detail.
func Assemble(res model.InterviewResult) []Section {
	sections := []Section{
		{
			Kind:  KindIdentity,
			Title: "Candidate",
			Fields: []Field{
				{Label: "Candidate", Value: orNA(res.CandidateName)},
				{Label: "Applied Role", Value: orNA(res.SelectedRole)},
				{Label: "Predicted Role", Value: orNA(res.PredictedRole)},
				{Label: "Decision", Value: orNA(res.FinalDecision)},
			},
		},
		{
			Kind:  KindScores,
			Title: "Scores",
			Fields: []Field{
				{Label: "ATS Score", Value: formatScore(res.ATSScore) + "/100"},
				{Label: "Interview Score", Value: formatScore(res.InterviewScore) + "/10"},
				{Label: "Overall Score", Value: formatScore(scoring.Overall(res.ATSScore, res.InterviewScore)) + "/100"},
			},
		},
		{
			Kind:  KindRationale,
			Title: "Decision Rationale",
			Text:  orDefault(res.Reasons, "No rationale provided."),
		},
		{
			Kind:  KindSkills,
			Title: "Skills",
			Text:  orDefault(strings.Join(nonBlank(res.Skills), ", "), "No skills listed."),
		},
	}

	if len(res.Details) > 0 {
		entries := make([]Entry, 0, len(res.Details))
		for _, d := range res.Details {
			entries = append(entries, Entry{
				Question: d.Question,
				Answer:   d.Answer,
				Score:    formatScore(d.Score) + "/10",
			})
		}
		sections = append(sections, Section{
			Kind:    KindBreakdown,
			Title:   "Interview Breakdown",
			Entries: entries,
		})
	}
	return sections
}

// formatScore prints whole numbers without decimals and others with one.
func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func orNA(s string) string { return orDefault(s, notAvailable) }

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
