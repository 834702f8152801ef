// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/veilmetrics/veil/internal/domain/model"
)

// AssessmentsDependencies defines the interface for async assessment
// submission.
type AssessmentsDependencies interface {
	Enqueue(ctx context.Context, job model.AssessmentJob) (jobID string, duplicate, accepted bool)
	SanitizeInput(data map[string]any) map[string]any
	ValidateConnection(conn map[string]any) (bool, []string)
}

// AssessmentsHandler handles async assessment requests.
type AssessmentsHandler struct {
	deps AssessmentsDependencies
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentsDependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps}
}

type assessmentRequest struct {
	JobID       string            `json:"job_id"`
	UserID      string            `json:"user_id"`
	UserData    userPayload       `json:"user_data"`
	Connections []map[string]any  `json:"connections"`
	Activities  []activityPayload `json:"activities"`
	TS          string            `json:"ts"`
}

// HandlePostAssessment handles POST /api/v1/assessments requests. The
// operation is idempotent on job_id: resubmitting an already seen id is
// acknowledged without queuing a second assessment.
func (h *AssessmentsHandler) HandlePostAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assessment"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req assessmentRequest
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

	var ts time.Time
	if req.TS != "" {
		var err error
		if ts, err = time.Parse(time.RFC3339, req.TS); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	job := model.AssessmentJob{
		JobID:       req.JobID,
		UserID:      req.UserID,
		User:        req.UserData.toModel(),
		Connections: connections,
		Activities:  activityModels(req.Activities),
		TS:          ts,
	}

	jobID, duplicate, accepted := h.deps.Enqueue(r.Context(), job)
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{JobID: jobID, Status: "duplicate", Duplicate: true})
		return
	}
	if !accepted {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{JobID: jobID, Status: "accepted", Duplicate: false})
}
