// Package pdfreport renders report sections into a downloadable PDF.
package pdfreport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/report"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

const (
	defaultTitle  = "AI Interviewer - Candidate Report"
	defaultAuthor = "talentflow"

	lineHeight = 6
	dirMode    = 0o755
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9]+`) //nolint:gochecknoglobals // compiled once

// Renderer writes InterviewResults as A4 PDF documents.
type Renderer struct {
	title  string
	author string
	log    logger.Logger
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		title:  defaultTitle,
		author: defaultAuthor,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the PDF for res to w.
func (r *Renderer) Render(res model.InterviewResult, w io.Writer) error {
	pdf := r.build(report.Assemble(res))
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	metrics.RecordReportRendered()
	return nil
}

// WriteFile renders res into dir and returns the path of the new file.
// File names carry the candidate name and a fresh report id.
func (r *Renderer) WriteFile(ctx context.Context, dir string, res model.InterviewResult) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", ErrEmptyDir
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("ensure report directory: %w", err)
	}

	path := filepath.Join(dir, FileName(res.CandidateName, uuid.NewString()))
	pdf := r.build(report.Assemble(res))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	metrics.RecordReportRendered()
	r.log.Info(ctx, "report written", logger.String("path", path))
	return path, nil
}

// FileName builds the report file name for a candidate.
func FileName(candidate, id string) string {
	name := strings.Trim(unsafeName.ReplaceAllString(candidate, "_"), "_")
	if name == "" {
		name = "candidate"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("Interview_Report_%s_%s.pdf", name, id)
}

func (r *Renderer) build(sections []report.Section) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; user text arrives as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.title, true)
	pdf.SetAuthor(r.author, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(r.title), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, s := range sections {
		writeSection(pdf, tr, s)
		pdf.Ln(4)
	}
	return pdf
}

func writeSection(pdf *gofpdf.Fpdf, tr func(string) string, s report.Section) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, tr(s.Title))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)

	switch s.Kind {
	case report.KindIdentity, report.KindScores:
		for _, f := range s.Fields {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(50, lineHeight, tr(f.Label+":"), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 12)
			pdf.CellFormat(0, lineHeight, tr(f.Value), "", 1, "L", false, 0, "")
		}
	case report.KindRationale:
		for _, line := range strings.Split(s.Text, "; ") {
			if line = strings.TrimSpace(line); line != "" {
				pdf.MultiCell(0, lineHeight, tr("- "+line), "", "L", false)
			}
		}
	case report.KindBreakdown:
		for i, e := range s.Entries {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("Q%d. %s", i+1, e.Question)), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, lineHeight, tr(e.Answer), "", "L", false)
			pdf.SetFont("Helvetica", "I", 11)
			pdf.CellFormat(0, lineHeight, tr("Score: "+e.Score), "", 1, "L", false, 0, "")
			pdf.Ln(2)
		}
	default:
		pdf.MultiCell(0, lineHeight, tr(s.Text), "", "L", false)
	}
}
