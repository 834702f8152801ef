// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
)

// TopRiskDependencies defines the interface for exposure ranking queries.
type TopRiskDependencies interface {
	TopRisk(ctx context.Context, n int) ([]Entry, error)
}

// TopRiskHandler handles exposure ranking requests.
type TopRiskHandler struct {
	deps     TopRiskDependencies
	maxLimit int
}

// NewTopRiskHandler creates a new top-risk handler.
func NewTopRiskHandler(deps TopRiskDependencies, maxLimit int) *TopRiskHandler {
	return &TopRiskHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTopRisk handles GET /api/v1/top-risk?limit=N requests.
func (h *TopRiskHandler) HandleGetTopRisk(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_top_risk"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopRisk(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
