// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/veilmetrics/veil/internal/adapters/repository"
	"github.com/veilmetrics/veil/internal/domain/anomaly"
	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/risk"
	"github.com/veilmetrics/veil/internal/domain/trend"
	"github.com/veilmetrics/veil/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue pushes an assessment job for async processing. Returns
	// accepted=false on backpressure.
	Enqueue(ctx context.Context, job model.AssessmentJob) (jobID string, duplicate, accepted bool)

	// Synchronous engine operations.
	AssessRisk(ctx context.Context, user model.UserProfile, connections []model.ConnectionRecord, activities []model.ActivityRecord) risk.Assessment
	Recommendations(ctx context.Context, riskScore float64, connections []model.ConnectionRecord, maxCount int) []model.Recommendation
	AnalyzeTrend(history []model.ScoreSnapshot) trend.Analysis
	DetectAnomalies(ctx context.Context, user model.UserProfile, connections []model.ConnectionRecord, historical []model.HistoricalSnapshot) anomaly.Report

	// Read operations over stored score history.
	History(ctx context.Context, userID string, limit int) ([]repository.SnapshotRecord, error)
	TopRisk(ctx context.Context, n int) ([]types.Entry, error)

	// Input hygiene for raw payloads.
	SanitizeInput(data map[string]any) map[string]any
	ValidateConnection(conn map[string]any) (bool, []string)
}

// Entry mirrors the read shape returned by exposure ranking queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	riskScoreHandler       *RiskScoreHandler
	recommendationsHandler *RecommendationsHandler
	trendHandler           *TrendHandler
	anomaliesHandler       *AnomaliesHandler
	assessmentsHandler     *AssessmentsHandler
	historyHandler         *HistoryHandler
	topRiskHandler         *TopRiskHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverSettings)

type serverSettings struct {
	maxListLimit int
}

// WithMaxListLimit bounds the limit query parameter of listing routes.
func WithMaxListLimit(n int) ServerOption {
	return func(s *serverSettings) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	settings := serverSettings{maxListLimit: 100}
	for _, opt := range opts {
		opt(&settings)
	}

	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		riskScoreHandler:       NewRiskScoreHandler(deps),
		recommendationsHandler: NewRecommendationsHandler(deps),
		trendHandler:           NewTrendHandler(deps),
		anomaliesHandler:       NewAnomaliesHandler(deps),
		assessmentsHandler:     NewAssessmentsHandler(deps),
		historyHandler:         NewHistoryHandler(deps, settings.maxListLimit),
		topRiskHandler:         NewTopRiskHandler(deps, settings.maxListLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/api/v1/risk-score", MetricsMiddleware(s.riskScoreHandler.HandleRiskScore, "risk_score"))
	mux.HandleFunc("/api/v1/recommendations", MetricsMiddleware(s.recommendationsHandler.HandleRecommendations, "recommendations"))
	mux.HandleFunc("/api/v1/trend-analysis", MetricsMiddleware(s.trendHandler.HandleTrendAnalysis, "trend_analysis"))
	mux.HandleFunc("/api/v1/anomalies", MetricsMiddleware(s.anomaliesHandler.HandleAnomalies, "anomalies"))
	mux.HandleFunc("/api/v1/assessments", MetricsMiddleware(s.assessmentsHandler.HandlePostAssessment, "assessments"))
	mux.HandleFunc("/api/v1/history/", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/api/v1/top-risk", MetricsMiddleware(s.topRiskHandler.HandleGetTopRisk, "top_risk"))
}

// Wire payload shapes. The domain model carries no JSON tags; the API
// layer owns the mapping between wire names and model fields.

type userPayload struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Age      int    `json:"age,omitempty"`
	JoinDate string `json:"join_date,omitempty"`
	IsActive bool   `json:"is_active"`
}

func (u userPayload) toModel() model.UserProfile {
	return model.UserProfile{
		UserID:   u.UserID,
		Age:      u.Age,
		JoinDate: parseDate(u.JoinDate),
		IsActive: u.IsActive,
	}
}

type connectionPayload struct {
	UserID            string `json:"user_id"`
	Platform          string `json:"platform"`
	PlatformUsername  string `json:"platform_username"`
	ConnectedAt       string `json:"connected_at"`
	IsActive          bool   `json:"is_active"`
	PostCount         int    `json:"post_count"`
	FollowerCount     int    `json:"follower_count"`
	PrivacySetting    string `json:"privacy_setting"`
	ProfileVisibility string `json:"profile_visibility"`
	SharesLocation    bool   `json:"shares_location"`
	SharesContacts    bool   `json:"shares_contacts"`
}

func (c connectionPayload) toModel() model.ConnectionRecord {
	return model.ConnectionRecord{
		Platform:          model.ParsePlatform(c.Platform),
		PrivacySetting:    model.ParsePrivacySetting(c.PrivacySetting),
		ProfileVisibility: model.ParsePrivacySetting(c.ProfileVisibility),
		PostCount:         c.PostCount,
		FollowerCount:     c.FollowerCount,
		IsActive:          c.IsActive,
		SharesLocation:    c.SharesLocation,
		SharesContacts:    c.SharesContacts,
	}
}

func connectionModels(payloads []connectionPayload) []model.ConnectionRecord {
	connections := make([]model.ConnectionRecord, len(payloads))
	for i, p := range payloads {
		connections[i] = p.toModel()
	}
	return connections
}

type activityPayload struct {
	Date            string  `json:"date"`
	ContentType     string  `json:"content_type"`
	HasPersonalInfo bool    `json:"has_personal_info"`
	HasLocation     bool    `json:"has_location"`
	EngagementScore float64 `json:"engagement_score"`
}

func (a activityPayload) toModel() model.ActivityRecord {
	return model.ActivityRecord{
		Date:            parseDate(a.Date),
		ContentType:     model.ContentType(a.ContentType),
		HasPersonalInfo: a.HasPersonalInfo,
		HasLocation:     a.HasLocation,
		EngagementScore: a.EngagementScore,
	}
}

func activityModels(payloads []activityPayload) []model.ActivityRecord {
	if len(payloads) == 0 {
		return nil
	}
	activities := make([]model.ActivityRecord, len(payloads))
	for i, p := range payloads {
		activities[i] = p.toModel()
	}
	return activities
}

type scoreHistoryPayload struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

func snapshotModels(payloads []scoreHistoryPayload) []model.ScoreSnapshot {
	history := make([]model.ScoreSnapshot, len(payloads))
	for i, p := range payloads {
		history[i] = model.ScoreSnapshot{Date: parseDate(p.Date), Score: p.Score}
	}
	return history
}

type recommendationPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort"`
	Priority    int    `json:"priority"`
	Platform    string `json:"platform"`
}

func recommendationPayloads(recs []model.Recommendation) []recommendationPayload {
	payloads := make([]recommendationPayload, len(recs))
	for i, rec := range recs {
		payloads[i] = recommendationPayload{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Impact:      string(rec.Impact),
			Effort:      string(rec.Effort),
			Priority:    rec.Priority,
			Platform:    rec.Platform,
		}
	}
	return payloads
}

// connectionFromMap converts a sanitized raw payload into the typed
// wire shape via a JSON round trip, so field coercion rules stay in one
// place.
func connectionFromMap(m map[string]any) connectionPayload {
	var p connectionPayload
	if b, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(b, &p)
	}
	return p
}

// parseDate accepts RFC3339 or plain dates; anything else yields the
// zero time, which downstream extraction treats as "not supplied".
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

type ackResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeValidationError(w http.ResponseWriter, problems []string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    "validation_failed",
		Message: "connection validation failed",
		Errors:  problems,
	})
}
