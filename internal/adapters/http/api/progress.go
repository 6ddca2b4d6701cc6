package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/progress"
)

type progressResponse struct {
	Flags model.ProgressState `json:"flags"`
	Steps map[string]bool     `json:"steps"`
}

type accessResponse struct {
	Step       string `json:"step"`
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// ProgressHandler serves gating flags and step access decisions.
type ProgressHandler struct {
	deps Dependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps Dependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleProgress handles GET /progress requests.
func (h *ProgressHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodInvalid)
		return
	}
	steps := map[string]bool{}
	for _, st := range []progress.Step{progress.StepUpload, progress.StepATSScore, progress.StepInterview, progress.StepResults} {
		steps[string(st)] = h.deps.Guard(st).Allowed
	}
	writeJSON(w, http.StatusOK, progressResponse{Flags: h.deps.Progress(), Steps: steps})
}

// HandleAccess handles GET /access/{step} requests.
func (h *ProgressHandler) HandleAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodInvalid)
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/access/"), "/")
	step, ok := progress.ParseStep(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_step", fmt.Errorf("%w: %q", ErrUnknownStep, name))
		return
	}
	d := h.deps.Guard(step)
	writeJSON(w, http.StatusOK, accessResponse{
		Step:       string(step),
		Allowed:    d.Allowed,
		RedirectTo: string(d.RedirectTo),
	})
}
