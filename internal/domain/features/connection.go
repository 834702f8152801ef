package features

import (
	"fmt"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/stat"
)

// ConnectionFeatures extracts the per-connection feature set, including
// one-hot encodings of privacy setting and profile visibility plus
// activity-derived ratios. Activity records are optional; without them
// all activity features are 0.
func (e *Extractor) ConnectionFeatures(
	conn model.ConnectionRecord,
	activities []model.ActivityRecord,
) map[string]float64 {
	f := make(map[string]float64)

	f["post_count"] = float64(conn.PostCount)
	f["follower_count"] = float64(conn.FollowerCount)
	f["is_active"] = boolFeature(conn.IsActive)
	f["shares_location"] = boolFeature(conn.SharesLocation)
	f["shares_contacts"] = boolFeature(conn.SharesContacts)

	setting := model.ParsePrivacySetting(string(conn.PrivacySetting))
	f["privacy_public"] = boolFeature(setting == model.PrivacyPublic)
	f["privacy_friends"] = boolFeature(setting == model.PrivacyFriends)
	f["privacy_private"] = boolFeature(setting == model.PrivacyPrivate)

	visibility := model.ParsePrivacySetting(string(conn.ProfileVisibility))
	f["visibility_public"] = boolFeature(visibility == model.PrivacyPublic)
	f["visibility_friends"] = boolFeature(visibility == model.PrivacyFriends)
	f["visibility_private"] = boolFeature(visibility == model.PrivacyPrivate)

	f["activity_count"] = 0
	f["personal_info_posts"] = 0
	f["location_posts"] = 0
	f["avg_engagement"] = 0
	f["personal_photo_ratio"] = 0
	f["location_checkin_ratio"] = 0
	f["personal_info_ratio"] = 0
	f["location_ratio"] = 0

	if len(activities) == 0 {
		return f
	}

	total := float64(len(activities))
	engagements := make([]float64, len(activities))
	var personalInfo, location, photos, checkins int
	for i, a := range activities {
		engagements[i] = a.EngagementScore
		if a.HasPersonalInfo {
			personalInfo++
		}
		if a.HasLocation {
			location++
		}
		switch a.ContentType {
		case model.ContentPersonalPhoto:
			photos++
		case model.ContentLocationCheckIn:
			checkins++
		}
	}

	f["activity_count"] = total
	f["personal_info_posts"] = float64(personalInfo)
	f["location_posts"] = float64(location)
	f["avg_engagement"] = stat.Mean(engagements)
	f["personal_photo_ratio"] = float64(photos) / total
	f["location_checkin_ratio"] = float64(checkins) / total
	f["personal_info_ratio"] = float64(personalInfo) / total
	f["location_ratio"] = float64(location) / total
	return f
}

// EncodePlatform one-hot encodes a platform across the supported set.
// Unknown platforms produce all zeros rather than an error.
func EncodePlatform(platform model.Platform) map[string]float64 {
	encoding := make(map[string]float64, len(model.Platforms()))
	for _, p := range model.Platforms() {
		encoding[fmt.Sprintf("platform_%s", p)] = 0
	}
	if key := fmt.Sprintf("platform_%s", platform); platform != model.PlatformUnknown {
		if _, ok := encoding[key]; ok {
			encoding[key] = 1
		}
	}
	return encoding
}
