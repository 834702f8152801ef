// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veilmetrics/veil/internal/domain/anomaly"
	"github.com/veilmetrics/veil/internal/domain/model"
)

// AnomaliesDependencies defines the interface for anomaly detection.
type AnomaliesDependencies interface {
	DetectAnomalies(ctx context.Context, user model.UserProfile, connections []model.ConnectionRecord, historical []model.HistoricalSnapshot) anomaly.Report
}

// AnomaliesHandler handles anomaly detection requests.
type AnomaliesHandler struct {
	deps AnomaliesDependencies
}

// NewAnomaliesHandler creates a new anomalies handler.
func NewAnomaliesHandler(deps AnomaliesDependencies) *AnomaliesHandler {
	return &AnomaliesHandler{deps: deps}
}

type historicalSnapshotPayload struct {
	Date        string              `json:"date"`
	Connections []connectionPayload `json:"connections"`
}

type anomaliesRequest struct {
	UserID         string                      `json:"user_id"`
	UserData       userPayload                 `json:"user_data"`
	Connections    []connectionPayload         `json:"connections"`
	HistoricalData []historicalSnapshotPayload `json:"historical_data"`
}

type anomalyFindingPayload struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation,omitempty"`
}

type anomaliesResponse struct {
	UserID            string                  `json:"user_id"`
	AnomaliesDetected bool                    `json:"anomalies_detected"`
	AnomalyCount      int                     `json:"anomaly_count"`
	Anomalies         []anomalyFindingPayload `json:"anomalies"`
}

// HandleAnomalies handles POST /api/v1/anomalies requests.
func (h *AnomaliesHandler) HandleAnomalies(w http.ResponseWriter, r *http.Request) {
	const op = "api.anomalies"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req anomaliesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	historical := make([]model.HistoricalSnapshot, len(req.HistoricalData))
	for i, snap := range req.HistoricalData {
		historical[i] = model.HistoricalSnapshot{
			Date:        parseDate(snap.Date),
			Connections: connectionModels(snap.Connections),
		}
	}

	report := h.deps.DetectAnomalies(
		r.Context(),
		req.UserData.toModel(),
		connectionModels(req.Connections),
		historical,
	)

	findings := make([]anomalyFindingPayload, len(report.Anomalies))
	for i, finding := range report.Anomalies {
		findings[i] = anomalyFindingPayload{
			Type:           string(finding.Kind),
			Severity:       string(finding.Severity),
			Description:    finding.Description,
			Recommendation: finding.Recommendation,
		}
	}

	writeJSON(w, http.StatusOK, anomaliesResponse{
		UserID:            req.UserID,
		AnomaliesDetected: report.AnomaliesDetected,
		AnomalyCount:      report.AnomalyCount,
		Anomalies:         findings,
	})
}
