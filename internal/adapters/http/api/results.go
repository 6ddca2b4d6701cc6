package api

import (
	"net/http"
)

// ResultsHandler serves the final interview result.
type ResultsHandler struct {
	deps Dependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleResults handles GET /results requests. Until the interview is
// complete it answers 409 naming the step to finish first.
func (h *ResultsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodInvalid)
		return
	}
	res, d, err := h.deps.Results(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if !d.Allowed {
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:       "not_completed",
			Message:    ErrNotCompleted.Error(),
			RedirectTo: string(d.RedirectTo),
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
