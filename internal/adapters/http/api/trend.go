// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/trend"
)

// TrendDependencies defines the interface for trend analysis.
type TrendDependencies interface {
	AnalyzeTrend(history []model.ScoreSnapshot) trend.Analysis
}

// TrendHandler handles trend analysis requests.
type TrendHandler struct {
	deps TrendDependencies
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(deps TrendDependencies) *TrendHandler {
	return &TrendHandler{deps: deps}
}

type trendAnalysisRequest struct {
	UserID       string                `json:"user_id"`
	ScoreHistory []scoreHistoryPayload `json:"score_history"`
}

type trendAnalysisResponse struct {
	UserID string `json:"user_id"`
	trend.Analysis
}

// HandleTrendAnalysis handles POST /api/v1/trend-analysis requests.
func (h *TrendHandler) HandleTrendAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.trend_analysis"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req trendAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	analysis := h.deps.AnalyzeTrend(snapshotModels(req.ScoreHistory))
	writeJSON(w, http.StatusOK, trendAnalysisResponse{
		UserID:   req.UserID,
		Analysis: analysis,
	})
}
