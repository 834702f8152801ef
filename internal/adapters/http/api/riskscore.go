// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/risk"
)

// RiskScoreDependencies defines the interface for synchronous scoring.
type RiskScoreDependencies interface {
	AssessRisk(ctx context.Context, user model.UserProfile, connections []model.ConnectionRecord, activities []model.ActivityRecord) risk.Assessment
	SanitizeInput(data map[string]any) map[string]any
	ValidateConnection(conn map[string]any) (bool, []string)
}

// RiskScoreHandler handles synchronous risk score requests.
type RiskScoreHandler struct {
	deps RiskScoreDependencies
}

// NewRiskScoreHandler creates a new risk score handler.
func NewRiskScoreHandler(deps RiskScoreDependencies) *RiskScoreHandler {
	return &RiskScoreHandler{deps: deps}
}

type riskScoreRequest struct {
	UserID      string            `json:"user_id"`
	UserData    userPayload       `json:"user_data"`
	Connections []map[string]any  `json:"connections"`
	Activities  []activityPayload `json:"activities"`
}

type riskScoreResponse struct {
	UserID         string             `json:"user_id"`
	OverallScore   float64            `json:"overall_score"`
	Category       string             `json:"category"`
	Breakdown      map[string]float64 `json:"breakdown"`
	TopRiskFactors []string           `json:"top_risk_factors"`
}

// validatedConnections sanitizes and validates raw connection payloads,
// returning the typed records or every validation message found.
func validatedConnections(deps interface {
	SanitizeInput(data map[string]any) map[string]any
	ValidateConnection(conn map[string]any) (bool, []string)
}, raw []map[string]any) ([]model.ConnectionRecord, []string) {
	connections := make([]model.ConnectionRecord, 0, len(raw))
	var problems []string
	for i, conn := range raw {
		clean := deps.SanitizeInput(conn)
		if ok, errs := deps.ValidateConnection(clean); !ok {
			for _, msg := range errs {
				problems = append(problems, fmt.Sprintf("connections[%d]: %s", i, msg))
			}
			continue
		}
		connections = append(connections, connectionFromMap(clean).toModel())
	}
	return connections, problems
}

// HandleRiskScore handles POST /api/v1/risk-score requests.
func (h *RiskScoreHandler) HandleRiskScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.risk_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req riskScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.UserID == "" {
		req.UserID = req.UserData.UserID
	}

	connections, problems := validatedConnections(h.deps, req.Connections)
	if len(problems) > 0 {
		writeValidationError(w, problems)
		return
	}

	assessment := h.deps.AssessRisk(
		r.Context(),
		req.UserData.toModel(),
		connections,
		activityModels(req.Activities),
	)

	writeJSON(w, http.StatusOK, riskScoreResponse{
		UserID:         req.UserID,
		OverallScore:   assessment.OverallScore,
		Category:       string(assessment.Category),
		Breakdown:      assessment.Breakdown,
		TopRiskFactors: assessment.TopRiskFactors,
	})
}
