// Package features normalizes raw connection and activity records into
// flat numeric feature sets consumed by the statistical models. It is a
// leaf component: extraction never fails on missing optional fields and
// never divides by zero.
package features

import (
	"fmt"
	"time"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/stat"
)

// Defaults applied when optional profile fields are absent.
const (
	defaultUserAge        = 30.0
	defaultAccountAgeDays = 365.0
	// activityTrendWindow bounds how many recent/old activities the
	// trend comparison looks at on each side.
	activityTrendWindow = 10
)

// BaselineFeatureNames is the fixed feature ordering used when training
// and scoring the anomaly baseline. Training and inference must share
// this list or vector positions stop lining up.
var BaselineFeatureNames = []string{
	"user_age",
	"account_age_days",
	"total_connections",
	"active_connections",
	"public_ratio",
	"friends_ratio",
	"private_ratio",
	"location_sharing_ratio",
	"contact_sharing_ratio",
	"avg_followers",
	"avg_posts",
	"avg_engagement",
}

// Extractor derives numeric feature maps from domain records.
// It is stateless and safe for concurrent use.
type Extractor struct{}

// New creates a feature extractor.
func New() *Extractor {
	return &Extractor{}
}

// UserFeatures extracts the user-level feature set from a profile, its
// connections, and optional activity history.
func (e *Extractor) UserFeatures(
	user model.UserProfile,
	connections []model.ConnectionRecord,
	activities []model.ActivityRecord,
) map[string]float64 {
	f := make(map[string]float64)

	f["user_age"] = defaultUserAge
	if user.Age > 0 {
		f["user_age"] = float64(user.Age)
	}
	f["account_age_days"] = accountAgeDays(user.JoinDate)
	f["is_active"] = boolFeature(user.IsActive)

	f["total_connections"] = float64(len(connections))
	active := 0
	for _, c := range connections {
		if c.IsActive {
			active++
		}
	}
	f["active_connections"] = float64(active)

	for platform, count := range countByPlatform(connections) {
		f[fmt.Sprintf("connections_%s", platform)] = float64(count)
	}

	for name, v := range privacyAggregates(connections) {
		f[name] = v
	}

	if len(activities) > 0 {
		for name, v := range activityFeatures(activities) {
			f[name] = v
		}
	}

	followers := make([]float64, len(connections))
	posts := make([]float64, len(connections))
	for i, c := range connections {
		followers[i] = float64(c.FollowerCount)
		posts[i] = float64(c.PostCount)
	}
	f["avg_followers"] = stat.Mean(followers)
	f["avg_posts"] = stat.Mean(posts)

	return f
}

// Vector projects a named feature map onto the fixed ordering given by
// names, filling absent features with 0.0.
func Vector(features map[string]float64, names []string) []float64 {
	v := make([]float64, len(names))
	for i, name := range names {
		v[i] = features[name]
	}
	return v
}

func accountAgeDays(joinDate time.Time) float64 {
	if joinDate.IsZero() {
		return defaultAccountAgeDays
	}
	age := time.Since(joinDate).Hours() / 24
	if age < 0 {
		return defaultAccountAgeDays
	}
	return float64(int(age))
}

func countByPlatform(connections []model.ConnectionRecord) map[model.Platform]int {
	counts := make(map[model.Platform]int, len(model.Platforms()))
	for _, p := range model.Platforms() {
		counts[p] = 0
	}
	for _, c := range connections {
		if _, ok := counts[c.Platform]; ok {
			counts[c.Platform]++
		}
	}
	return counts
}

// privacyAggregates computes the share of connections at each privacy
// level plus location/contact sharing ratios. All ratios are 0 when
// there are no connections.
func privacyAggregates(connections []model.ConnectionRecord) map[string]float64 {
	out := map[string]float64{
		"public_ratio":           0,
		"friends_ratio":          0,
		"private_ratio":          0,
		"location_sharing_ratio": 0,
		"contact_sharing_ratio":  0,
	}
	if len(connections) == 0 {
		return out
	}

	var public, friends, private, location, contacts int
	for _, c := range connections {
		switch model.ParsePrivacySetting(string(c.PrivacySetting)) {
		case model.PrivacyPublic:
			public++
		case model.PrivacyPrivate:
			private++
		default:
			friends++
		}
		if c.SharesLocation {
			location++
		}
		if c.SharesContacts {
			contacts++
		}
	}

	total := float64(len(connections))
	out["public_ratio"] = float64(public) / total
	out["friends_ratio"] = float64(friends) / total
	out["private_ratio"] = float64(private) / total
	out["location_sharing_ratio"] = float64(location) / total
	out["contact_sharing_ratio"] = float64(contacts) / total
	return out
}

func activityFeatures(activities []model.ActivityRecord) map[string]float64 {
	f := map[string]float64{
		"total_activities":      0,
		"avg_engagement":        0,
		"personal_info_ratio":   0,
		"location_post_ratio":   0,
		"recent_activity_trend": 0,
	}
	if len(activities) == 0 {
		return f
	}

	f["total_activities"] = float64(len(activities))

	engagements := make([]float64, len(activities))
	var personalInfo, location int
	for i, a := range activities {
		engagements[i] = a.EngagementScore
		if a.HasPersonalInfo {
			personalInfo++
		}
		if a.HasLocation {
			location++
		}
	}
	f["avg_engagement"] = stat.Mean(engagements)
	f["max_engagement"] = stat.Max(engagements)
	f["std_engagement"] = stat.Std(engagements)

	total := float64(len(activities))
	f["personal_info_ratio"] = float64(personalInfo) / total
	f["location_post_ratio"] = float64(location) / total
	f["recent_activity_trend"] = activityTrend(activities)
	return f
}

// activityTrend compares the size of the most recent activity window
// against the oldest one. With fewer than two records the trend is 0.
func activityTrend(activities []model.ActivityRecord) float64 {
	if len(activities) < 2 {
		return 0
	}
	recent := min(activityTrendWindow, len(activities))
	older := min(activityTrendWindow, len(activities))
	if older == 0 {
		return 1
	}
	return float64(recent-older) / float64(older)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
