// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veilmetrics/veil/internal/adapters/repository"
)

// HistoryDependencies defines the interface for history lookups.
type HistoryDependencies interface {
	History(ctx context.Context, userID string, limit int) ([]repository.SnapshotRecord, error)
}

// HistoryHandler handles score history requests.
type HistoryHandler struct {
	deps     HistoryDependencies
	maxLimit int
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies, maxLimit int) *HistoryHandler {
	return &HistoryHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

type historySnapshotPayload struct {
	JobID    string  `json:"job_id"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

type historyResponse struct {
	UserID  string                   `json:"user_id"`
	Count   int                      `json:"count"`
	History []historySnapshotPayload `json:"history"`
}

// HandleGetHistory handles GET /api/v1/history/{user_id}?limit=N requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /api/v1/history/
	userID := strings.TrimPrefix(r.URL.Path, "/api/v1/history/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	records, err := h.deps.History(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	history := make([]historySnapshotPayload, len(records))
	for i, rec := range records {
		history[i] = historySnapshotPayload{
			JobID:    rec.JobID,
			Score:    rec.Score,
			Category: rec.Category,
			Date:     rec.Date.UTC().Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, historyResponse{
		UserID:  userID,
		Count:   len(history),
		History: history,
	})
}
