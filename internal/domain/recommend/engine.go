// Package recommend turns a risk assessment into a prioritized list of
// actionable privacy recommendations.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/risk"
)

// defaultMaxRecommendations caps the list when no limit is configured.
const defaultMaxRecommendations = 5

// PlatformGeneral marks recommendations that are not tied to one
// connected platform.
const PlatformGeneral = "general"

// Score reductions per impact level used by EstimateImpact.
const (
	reductionHigh    = 15
	reductionMedium  = 8
	reductionLow     = 3
	reductionDefault = 5
)

// ImpactEstimate projects the effect of applying one recommendation.
type ImpactEstimate struct {
	CurrentScore      float64     `json:"current_score"`
	EstimatedNewScore float64     `json:"estimated_new_score"`
	ScoreReduction    float64     `json:"score_reduction"`
	EffortRequired    model.Level `json:"effort_required"`
	TimeToImplement   string      `json:"time_to_implement"`
}

// Engine generates recommendations from risk scores and connection
// state. It is stateless and safe for concurrent use.
type Engine struct {
	maxRecommendations int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxRecommendations sets the default cap on list length.
func WithMaxRecommendations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRecommendations = n
		}
	}
}

// NewEngine creates a recommendation engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{maxRecommendations: defaultMaxRecommendations}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateRecommendations builds the recommendation list for a scored
// user. Connection-specific items are collected first, then generic
// items for the score's risk tier are appended only while the list is
// below the cap. The combined list is stably sorted by priority and
// truncated, so a connection item and a generic item with equal
// priority keep the connection item first.
func (e *Engine) GenerateRecommendations(
	riskScore float64,
	connections []model.ConnectionRecord,
	maxCount int,
) []model.Recommendation {
	if maxCount <= 0 {
		maxCount = e.maxRecommendations
	}

	recs := []model.Recommendation{}
	for _, conn := range connections {
		recs = append(recs, connectionRecommendations(conn)...)
	}

	for _, entry := range tierCatalog[risk.Category(riskScore)] {
		if len(recs) >= maxCount {
			break
		}
		recs = append(recs, model.Recommendation{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			Impact:      entry.Impact,
			Effort:      entry.Effort,
			Priority:    entry.Priority,
			Platform:    PlatformGeneral,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})
	if len(recs) > maxCount {
		recs = recs[:maxCount]
	}
	return recs
}

// connectionRecommendations derives items from one connection's risky
// attributes. A single connection can contribute up to three items.
func connectionRecommendations(conn model.ConnectionRecord) []model.Recommendation {
	platform := string(conn.Platform)
	label := titleCase(platform)

	var recs []model.Recommendation
	if conn.PrivacySetting == model.PrivacyPublic {
		recs = append(recs, model.Recommendation{
			ID:          platform + "_privacy",
			Title:       fmt.Sprintf("Change %s Privacy Settings", label),
			Description: fmt.Sprintf("Your %s account is set to public. Consider changing to friends-only.", label),
			Impact:      model.LevelHigh,
			Effort:      model.LevelLow,
			Priority:    1,
			Platform:    platform,
		})
	}
	if conn.SharesLocation {
		recs = append(recs, model.Recommendation{
			ID:          platform + "_location",
			Title:       fmt.Sprintf("Disable Location on %s", label),
			Description: fmt.Sprintf("You're sharing your location on %s. Turn this off for better privacy.", label),
			Impact:      model.LevelHigh,
			Effort:      model.LevelLow,
			Priority:    2,
			Platform:    platform,
		})
	}
	if conn.SharesContacts {
		recs = append(recs, model.Recommendation{
			ID:          platform + "_contacts",
			Title:       fmt.Sprintf("Stop Sharing Contacts on %s", label),
			Description: fmt.Sprintf("Disable contact sharing on %s to protect your contacts' privacy.", label),
			Impact:      model.LevelMedium,
			Effort:      model.LevelLow,
			Priority:    3,
			Platform:    platform,
		})
	}
	return recs
}

// EstimateImpact projects the score reduction from applying one generic
// catalog recommendation. Connection-specific ids are not part of the
// catalog and return ErrRecommendationNotFound.
func (e *Engine) EstimateImpact(recommendationID string, currentScore float64) (ImpactEstimate, error) {
	entry, ok := lookupCatalog(recommendationID)
	if !ok {
		return ImpactEstimate{}, fmt.Errorf("%w: %q", ErrRecommendationNotFound, recommendationID)
	}

	var reduction float64
	switch entry.Impact {
	case model.LevelHigh:
		reduction = reductionHigh
	case model.LevelMedium:
		reduction = reductionMedium
	case model.LevelLow:
		reduction = reductionLow
	default:
		reduction = reductionDefault
	}

	newScore := currentScore - reduction
	if newScore < 0 {
		newScore = 0
	}

	return ImpactEstimate{
		CurrentScore:      currentScore,
		EstimatedNewScore: newScore,
		ScoreReduction:    reduction,
		EffortRequired:    entry.Effort,
		TimeToImplement:   implementationTime(entry.Effort),
	}, nil
}

func implementationTime(effort model.Level) string {
	switch effort {
	case model.LevelLow:
		return "5-10 minutes"
	case model.LevelMedium:
		return "15-30 minutes"
	case model.LevelHigh:
		return "30-60 minutes"
	default:
		return "15 minutes"
	}
}

// titleCase uppercases the first letter of each underscore- or
// space-separated word.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
