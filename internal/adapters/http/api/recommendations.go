// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veilmetrics/veil/internal/domain/model"
)

// RecommendationsDependencies defines the interface for recommendation
// generation.
type RecommendationsDependencies interface {
	Recommendations(ctx context.Context, riskScore float64, connections []model.ConnectionRecord, maxCount int) []model.Recommendation
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps RecommendationsDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationsDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

type recommendationsRequest struct {
	UserID             string              `json:"user_id"`
	RiskScore          float64             `json:"risk_score"`
	RiskBreakdown      map[string]float64  `json:"risk_breakdown"`
	Connections        []connectionPayload `json:"connections"`
	MaxRecommendations int                 `json:"max_recommendations"`
}

// HandleRecommendations handles POST /api/v1/recommendations requests.
func (h *RecommendationsHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req recommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.RiskScore < 0 || req.RiskScore > 100 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	recs := h.deps.Recommendations(
		r.Context(),
		req.RiskScore,
		connectionModels(req.Connections),
		req.MaxRecommendations,
	)
	writeJSON(w, http.StatusOK, recommendationPayloads(recs))
}
