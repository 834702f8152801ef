// Package risk computes the composite privacy risk score: four
// weighted sub-scores averaged across a user's connections, a category
// label, and the top contributing factors.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/stat"
)

// Breakdown factor names. These four keys are the fixed contract of
// the composite model.
const (
	FactorPrivacySettings      = "privacy_settings"
	FactorPostFrequency        = "post_frequency"
	FactorPersonalInfoExposure = "personal_info_exposure"
	FactorThirdPartyApps       = "third_party_apps"
)

// Fixed factor weights of the composite score.
const (
	weightPrivacySettings      = 0.30
	weightPostFrequency        = 0.25
	weightPersonalInfoExposure = 0.25
	weightThirdPartyApps       = 0.20
)

// Category breakpoints: score >= highThreshold is high, score >=
// mediumThreshold is medium, everything below is low.
const (
	highThreshold   = 71.0
	mediumThreshold = 41.0
)

// factorOrder fixes iteration order over the breakdown so that factor
// ranking is deterministic across runs.
var factorOrder = []string{
	FactorPrivacySettings,
	FactorPostFrequency,
	FactorPersonalInfoExposure,
	FactorThirdPartyApps,
}

// Assessment is the result of a composite risk calculation.
type Assessment struct {
	OverallScore   float64            `json:"overall_score"`
	Category       model.RiskCategory `json:"category"`
	Breakdown      map[string]float64 `json:"breakdown"`
	TopRiskFactors []string           `json:"top_risk_factors"`
}

// Scorer computes composite privacy risk scores. The rule-based path
// is pure and safe for concurrent use; the optional supervised path
// holds a trained model guarded by its own lock.
type Scorer struct {
	supervised *knnModel
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSupervisedModel enables the supervised regression path with the
// given neighbor count. The rule-based path is unaffected.
func WithSupervisedModel(neighbors int) Option {
	return func(s *Scorer) {
		if neighbors > 0 {
			s.supervised = newKNNModel(neighbors)
		}
	}
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalculateRiskScore derives the composite risk assessment for a user.
// An empty connection list is a defined edge case and yields a zero
// score with an empty breakdown, never an error. Activity records are
// optional and only sharpen the exposure sub-score.
func (s *Scorer) CalculateRiskScore(
	user model.UserProfile,
	connections []model.ConnectionRecord,
	activities []model.ActivityRecord,
) Assessment {
	_ = user // demographic fields feed the feature path, not the rule path

	if len(connections) == 0 {
		return Assessment{
			OverallScore:   0.0,
			Category:       model.RiskLow,
			Breakdown:      map[string]float64{},
			TopRiskFactors: []string{},
		}
	}

	privacyScore := privacySettingsScore(connections)
	frequencyScore := postFrequencyScore(connections)
	exposureScore := exposureScore(connections, activities)
	appsScore := thirdPartyAppsScore(connections)

	overall := privacyScore*weightPrivacySettings +
		frequencyScore*weightPostFrequency +
		exposureScore*weightPersonalInfoExposure +
		appsScore*weightThirdPartyApps

	breakdown := map[string]float64{
		FactorPrivacySettings:      stat.Round(privacyScore, 2),
		FactorPostFrequency:        stat.Round(frequencyScore, 2),
		FactorPersonalInfoExposure: stat.Round(exposureScore, 2),
		FactorThirdPartyApps:       stat.Round(appsScore, 2),
	}

	return Assessment{
		OverallScore:   stat.Round(overall, 2),
		Category:       Category(overall),
		Breakdown:      breakdown,
		TopRiskFactors: topRiskFactors(breakdown),
	}
}

// Category maps a composite score onto its risk category.
func Category(score float64) model.RiskCategory {
	switch {
	case score >= highThreshold:
		return model.RiskHigh
	case score >= mediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// privacySettingsScore averages a per-connection heuristic: a base
// from the privacy setting plus a bump for profile visibility.
func privacySettingsScore(connections []model.ConnectionRecord) float64 {
	scores := make([]float64, len(connections))
	for i, conn := range connections {
		var score float64
		switch model.ParsePrivacySetting(string(conn.PrivacySetting)) {
		case model.PrivacyPublic:
			score = 80
		case model.PrivacyPrivate:
			score = 20
		default:
			score = 50
		}
		switch model.ParsePrivacySetting(string(conn.ProfileVisibility)) {
		case model.PrivacyPublic:
			score += 15
		case model.PrivacyFriends:
			score += 5
		}
		scores[i] = stat.Clamp(score, 0, stat.MaxScore)
	}
	return stat.Mean(scores)
}

// postFrequencyScore bands the lifetime post count, read as an average
// daily posting rate over a year.
func postFrequencyScore(connections []model.ConnectionRecord) float64 {
	scores := make([]float64, len(connections))
	for i, conn := range connections {
		dailyPosts := float64(conn.PostCount) / 365.0
		switch {
		case dailyPosts > 5:
			scores[i] = 90
		case dailyPosts > 3:
			scores[i] = 70
		case dailyPosts > 1:
			scores[i] = 50
		default:
			scores[i] = 30
		}
	}
	return stat.Mean(scores)
}

// exposureScore accumulates sharing flags per connection, then applies
// an activity bonus proportional to the share of posts leaking
// personal info or location.
func exposureScore(connections []model.ConnectionRecord, activities []model.ActivityRecord) float64 {
	scores := make([]float64, len(connections))
	for i, conn := range connections {
		var score float64
		if conn.SharesLocation {
			score += 40
		}
		if conn.SharesContacts {
			score += 30
		}
		if model.ParsePrivacySetting(string(conn.ProfileVisibility)) == model.PrivacyPublic {
			score += 20
		}
		scores[i] = stat.Clamp(score, 0, stat.MaxScore)
	}
	base := stat.Mean(scores)

	if len(activities) > 0 {
		var personalInfo, location int
		for _, a := range activities {
			if a.HasPersonalInfo {
				personalInfo++
			}
			if a.HasLocation {
				location++
			}
		}
		bonus := float64(personalInfo+location) / float64(len(activities)) * 20
		base = stat.Clamp(base+bonus, 0, stat.MaxScore)
	}
	return base
}

// thirdPartyAppsScore is a fixed placeholder: app inventory data is
// not collected yet, so every connection contributes the same neutral
// constant. Do not replace with invented logic without product input.
func thirdPartyAppsScore(_ []model.ConnectionRecord) float64 {
	return 50.0
}

// topRiskFactors formats the highest sub-scores as human-readable
// labels, keeping at most three and only those at 70 or above.
func topRiskFactors(breakdown map[string]float64) []string {
	names := make([]string, len(factorOrder))
	copy(names, factorOrder)
	sort.SliceStable(names, func(i, j int) bool {
		return breakdown[names[i]] > breakdown[names[j]]
	})

	factors := []string{}
	for _, name := range names[:3] {
		score := breakdown[name]
		if score >= 70 {
			factors = append(factors, fmt.Sprintf("High %s: %.1f/100", factorLabel(name), score))
		}
	}
	return factors
}

func factorLabel(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
