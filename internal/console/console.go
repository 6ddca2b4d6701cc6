// Package console drives the journey over a line-oriented terminal: the
// candidate types answers, feeds recorded audio clips to voice input and
// exports the final report.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/talentflow/internal/adapters/http/client"
	"github.com/okian/talentflow/internal/adapters/speech"
	service "github.com/okian/talentflow/internal/app"
	"github.com/okian/talentflow/internal/domain/interview"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/progress"
	"github.com/okian/talentflow/internal/domain/report"
	"github.com/okian/talentflow/internal/domain/voice"
	"github.com/okian/talentflow/pkg/logger"
)

// Commands understood at the prompts.
const (
	cmdQuit   = ":quit"
	cmdReset  = ":reset"
	cmdVoice  = ":voice"
	cmdStop   = ":stop"
	cmdDraft  = ":draft"
	cmdClear  = ":clear"
	cmdRetry  = ":retry"
	cmdExport = ":export"
	cmdHelp   = ":help"
)

const (
	msgUploadFailed = "Upload failed. Please try again."
	helpText        = `Commands:
  :voice <file>  transcribe an audio clip into the current answer
  :stop          stop listening
  :draft         show the current answer
  :clear         clear the current answer
  :retry         reload the interview after a failure
  :export        write the PDF report (results step)
  :reset         start a new journey
  :quit          leave
An empty line submits the current answer.`
)

// errQuit ends Run without error.
var errQuit = errors.New("quit")

// ClipFeeder accepts recorded audio while voice input is listening.
type ClipFeeder interface {
	Enqueue(clip speech.Clip) error
}

// Option configures a Console.
type Option func(*Console)

// WithClipFeeder enables the :voice command.
func WithClipFeeder(f ClipFeeder) Option {
	return func(c *Console) {
		c.feeder = f
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

// Console is the terminal front end of a Journey.
type Console struct {
	j      *service.Journey
	in     *bufio.Scanner
	out    io.Writer
	feeder ClipFeeder
	log    logger.Logger
}

// New creates a Console reading commands from in and writing to out.
func New(j *service.Journey, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		j:   j,
		in:  bufio.NewScanner(in),
		out: out,
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run walks the candidate through the journey until input ends, :quit is
// entered or ctx is cancelled. Progress persisted by earlier runs decides
// the first step shown.
func (c *Console) Run(ctx context.Context) error {
	step := c.resumeStep()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var (
			next progress.Step
			err  error
		)
		switch step {
		case progress.StepATSScore:
			next, err = c.atsStep(ctx)
		case progress.StepInterview:
			next, err = c.interviewStep(ctx)
		case progress.StepResults:
			next, err = c.resultsStep(ctx)
		default:
			next, err = c.uploadStep(ctx)
		}
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		step = next
	}
}

// resumeStep picks the furthest step the stored progress allows.
func (c *Console) resumeStep() progress.Step {
	for _, st := range []progress.Step{progress.StepResults, progress.StepInterview, progress.StepATSScore} {
		if c.j.Guard(st).Allowed {
			return st
		}
	}
	return progress.StepUpload
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// readLine prompts and returns the trimmed next line. :quit and :reset are
// handled here for every prompt; reset reports the upload step.
func (c *Console) readLine(ctx context.Context, prompt string) (string, bool, error) {
	c.printf("%s", prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", false, err
		}
		return "", false, io.EOF
	}
	line := strings.TrimSpace(c.in.Text())
	switch line {
	case cmdQuit:
		return "", false, errQuit
	case cmdReset:
		c.j.Reset(ctx)
		c.printf("Journey reset.\n")
		return "", true, nil
	case cmdHelp:
		c.printf("%s\n", helpText)
		return c.readLine(ctx, prompt)
	}
	return line, false, nil
}

func (c *Console) uploadStep(ctx context.Context) (progress.Step, error) {
	c.printf("\n== Upload your resume ==\n")
	for {
		name, reset, err := c.readLine(ctx, "Full name: ")
		if err != nil || reset {
			return progress.StepUpload, err
		}

		for i, r := range model.Roles {
			c.printf("  %2d. %s\n", i+1, r)
		}
		roleIn, reset, err := c.readLine(ctx, "Role (number or name): ")
		if err != nil || reset {
			return progress.StepUpload, err
		}
		if n, convErr := strconv.Atoi(roleIn); convErr == nil && n >= 1 && n <= len(model.Roles) {
			roleIn = model.Roles[n-1]
		}

		path, reset, err := c.readLine(ctx, "Resume PDF path: ")
		if err != nil || reset {
			return progress.StepUpload, err
		}

		c.printf("Analysing resume...\n")
		profile, err := c.j.Upload(ctx, service.UploadInput{CandidateName: name, Role: roleIn, ResumePath: path})
		if err != nil {
			c.printf("%s\n", uploadMessage(err))
			continue
		}
		c.printf("Resume uploaded for %s.\n", profile.Name)
		return progress.StepATSScore, nil
	}
}

func uploadMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) || errors.Is(err, client.ErrTransport) || errors.Is(err, client.ErrMalformedResponse) {
		return client.MessageOf(err, msgUploadFailed)
	}
	return "Upload refused: " + err.Error()
}

func (c *Console) atsStep(ctx context.Context) (progress.Step, error) {
	view, d, err := c.j.ViewATS(ctx)
	if err != nil {
		return progress.StepUpload, err
	}
	if !d.Allowed {
		return d.RedirectTo, nil
	}
	p := view.Profile
	c.printf("\n== ATS score ==\n")
	c.printf("Candidate:      %s\n", p.Name)
	c.printf("Applied role:   %s\n", p.DesiredRole)
	c.printf("Predicted role: %s\n", p.PredictedRole)
	c.printf("ATS score:      %s/100 (%s)\n", strconv.FormatFloat(p.ATSScore, 'f', -1, 64), view.Rating)
	if !view.RoleMatch {
		c.printf("Your resume reads closer to %s than %s.\n", p.PredictedRole, p.DesiredRole)
	}
	if len(p.Skills) > 0 {
		c.printf("Skills:         %s\n", strings.Join(p.Skills, ", "))
	}
	_, reset, err := c.readLine(ctx, "Press Enter to start the interview. ")
	if err != nil || reset {
		return progress.StepUpload, err
	}
	return progress.StepInterview, nil
}

func (c *Console) interviewStep(ctx context.Context) (progress.Step, error) {
	d, err := c.j.StartInterview(ctx)
	if !d.Allowed {
		if msg := c.j.Session().Snapshot().ErrorMessage; msg != "" {
			c.printf("%s\n", msg)
		}
		return d.RedirectTo, nil
	}
	if err != nil {
		c.log.Debug(ctx, "interview start failed", logger.Error(err))
	}

	defer c.j.LeaveInterview(ctx)

	s := c.j.Session()
	c.printf("\n== Interview ==  (type :help for commands)\n")
	shown := -1
	for {
		snap := s.Snapshot()
		switch snap.State {
		case interview.StateComplete:
			if snap.Notice != "" {
				c.printf("%s\n", snap.Notice)
			}
			return progress.StepResults, nil
		case interview.StateFatal:
			c.printf("%s\n", snap.ErrorMessage)
			line, reset, err := c.readLine(ctx, "Type :retry to try again. ")
			if err != nil || reset {
				return progress.StepUpload, err
			}
			if line == cmdRetry {
				return progress.StepInterview, nil
			}
			continue
		case interview.StateAnswering:
			if snap.QuestionIndex != shown {
				shown = snap.QuestionIndex
				c.printf("\nQuestion %d of %d: %s\n", snap.QuestionIndex+1, snap.TotalQuestions, snap.Question)
			}
		}

		line, reset, err := c.readLine(ctx, "> ")
		if err != nil || reset {
			return progress.StepUpload, err
		}
		c.handleInterviewLine(ctx, s, line)
	}
}

func (c *Console) handleInterviewLine(ctx context.Context, s *interview.Session, line string) {
	v := c.j.Voice()
	switch {
	case strings.HasPrefix(line, cmdVoice):
		c.voiceClip(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmdVoice)))
		return
	case line == cmdStop:
		if err := v.Stop(); err != nil {
			c.printf("Not listening.\n")
		}
		return
	case line == cmdDraft:
		c.printf("Current answer: %q\n", s.Buffer().String())
		if msg := v.Message(); msg != "" {
			c.printf("%s\n", msg)
		}
		return
	case line == cmdClear:
		s.Buffer().Clear()
		return
	case line == cmdRetry, line == cmdExport:
		return
	case line != "":
		s.Buffer().Append(line)
	}

	err := s.SubmitDraft(ctx)
	snap := s.Snapshot()
	switch {
	case errors.Is(err, interview.ErrValidation):
		c.printf("%s\n", snap.ValidationMessage)
	case err != nil && snap.ErrorMessage != "":
		c.printf("%s\n", snap.ErrorMessage)
	case err == nil && snap.LastFeedback != nil:
		c.printf("Score: %s/10. %s\n", strconv.FormatFloat(snap.LastFeedback.Score, 'f', -1, 64), snap.LastFeedback.Feedback)
	}
}

func (c *Console) voiceClip(ctx context.Context, path string) {
	v := c.j.Voice()
	if !v.Supported() || c.feeder == nil {
		c.printf("%s\n", v.Message())
		return
	}
	if path == "" {
		c.printf("Usage: :voice <audio file>\n")
		return
	}
	clip, err := speech.LoadClip(path)
	if err != nil {
		c.printf("Could not read audio clip: %v\n", err)
		return
	}
	if err := v.Start(ctx); err != nil && !errors.Is(err, voice.ErrAlreadyListening) {
		c.printf("%s\n", orDefault(v.Message(), err.Error()))
		return
	}
	if err := c.feeder.Enqueue(clip); err != nil {
		c.printf("Could not queue audio clip: %v\n", err)
		return
	}
	c.printf("Listening... type :stop when done.\n")
}

func (c *Console) resultsStep(ctx context.Context) (progress.Step, error) {
	res, d, err := c.j.Results(ctx)
	if err != nil {
		return progress.StepUpload, err
	}
	if !d.Allowed {
		return d.RedirectTo, nil
	}
	c.printf("\n== Results ==\n")
	for _, sec := range report.Assemble(res) {
		c.printSection(sec)
	}
	for {
		line, reset, err := c.readLine(ctx, "Type :export for a PDF report, :reset to start over or :quit. ")
		if err != nil || reset {
			return progress.StepUpload, err
		}
		if line != cmdExport {
			continue
		}
		path, err := c.j.ExportReport(ctx)
		if err != nil {
			c.printf("Could not write report: %v\n", err)
			continue
		}
		c.printf("Report written to %s\n", path)
	}
}

func (c *Console) printSection(sec report.Section) {
	c.printf("\n%s\n", sec.Title)
	for _, f := range sec.Fields {
		c.printf("  %-16s %s\n", f.Label+":", f.Value)
	}
	if sec.Text != "" {
		c.printf("  %s\n", sec.Text)
	}
	for i, e := range sec.Entries {
		c.printf("  Q%d. %s\n      %s\n      Score: %s\n", i+1, e.Question, e.Answer, e.Score)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
