package pdfreport

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentflow/internal/domain/model"
)

func sampleResult() model.InterviewResult {
	return model.InterviewResult{
		CandidateName:  "José Núñez",
		SelectedRole:   "Backend Developer",
		PredictedRole:  "Backend Developer",
		ATSScore:       82,
		InterviewScore: 8,
		FinalDecision:  model.DecisionSelected,
		Reasons:        "Resume matches selected role; Good ATS match; Strong interview performance",
		Skills:         []string{"go", "postgres"},
		Details: []model.QuestionDetail{
			{Question: "How do you design an idempotent endpoint?", Answer: "Use request keys and store outcomes.", Score: 8},
		},
	}
}

func TestRender(t *testing.T) {
	convey.Convey("Given a renderer", t, func() {
		r := New(WithTitle("Candidate Report"), WithAuthor("tests"))

		convey.Convey("When rendering into a buffer", func() {
			var buf bytes.Buffer
			err := r.Render(sampleResult(), &buf)

			convey.Convey("Then a PDF document should be produced", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(buf.Len(), convey.ShouldBeGreaterThan, 0)
				convey.So(strings.HasPrefix(buf.String(), "%PDF-"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When writing a file", func() {
			dir := filepath.Join(t.TempDir(), "reports")
			path, err := r.WriteFile(context.Background(), dir, sampleResult())

			convey.Convey("Then the file should exist under the directory", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(filepath.Dir(path), convey.ShouldEqual, dir)
				convey.So(filepath.Base(path), convey.ShouldStartWith, "Interview_Report_Jos_N_ez_")
				info, statErr := os.Stat(path)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(info.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the directory is empty", func() {
			_, err := r.WriteFile(context.Background(), " ", sampleResult())

			convey.Convey("Then it should be refused", func() {
				convey.So(err, convey.ShouldEqual, ErrEmptyDir)
			})
		})
	})
}

func TestFileName(t *testing.T) {
	convey.Convey("Given candidate names", t, func() {
		convey.So(FileName("Ada Lovelace", "0123456789abcdef"), convey.ShouldEqual, "Interview_Report_Ada_Lovelace_01234567.pdf")
		convey.So(FileName("  ", "abc"), convey.ShouldEqual, "Interview_Report_candidate_abc.pdf")
		convey.So(FileName("../etc/passwd", "id"), convey.ShouldEqual, "Interview_Report_etc_passwd_id.pdf")
	})
}
