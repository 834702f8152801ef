package recommend

import "github.com/veilmetrics/veil/internal/domain/model"

// catalogEntry is a generic recommendation template keyed by id within
// a risk tier. Priority orders entries within one response, lower
// values first.
type catalogEntry struct {
	ID          string
	Title       string
	Description string
	Impact      model.Level
	Effort      model.Level
	Priority    int
}

// tierCatalog holds the generic recommendations for each risk tier.
// Entries are kept in slices rather than maps so the append order is
// deterministic.
var tierCatalog = map[model.RiskCategory][]catalogEntry{
	model.RiskHigh: {
		{
			ID:          "public_profile",
			Title:       "Set Profile to Private",
			Description: "Your profile is set to public. Change it to private to limit who can see your information.",
			Impact:      model.LevelHigh,
			Effort:      model.LevelLow,
			Priority:    1,
		},
		{
			ID:          "location_sharing",
			Title:       "Disable Location Sharing",
			Description: "You are sharing your location. Turn off location services to protect your privacy.",
			Impact:      model.LevelHigh,
			Effort:      model.LevelLow,
			Priority:    2,
		},
		{
			ID:          "contact_sharing",
			Title:       "Stop Sharing Contacts",
			Description: "You are allowing apps to access your contacts. Disable this to protect your network.",
			Impact:      model.LevelMedium,
			Effort:      model.LevelLow,
			Priority:    3,
		},
	},
	model.RiskMedium: {
		{
			ID:          "review_posts",
			Title:       "Review Recent Posts",
			Description: "Review your recent posts and delete any that contain sensitive personal information.",
			Impact:      model.LevelMedium,
			Effort:      model.LevelMedium,
			Priority:    1,
		},
		{
			ID:          "limit_visibility",
			Title:       "Limit Post Visibility",
			Description: "Set default post visibility to \"Friends Only\" instead of public.",
			Impact:      model.LevelMedium,
			Effort:      model.LevelLow,
			Priority:    2,
		},
		{
			ID:          "review_apps",
			Title:       "Review Connected Apps",
			Description: "Remove third-party apps you no longer use from your account.",
			Impact:      model.LevelMedium,
			Effort:      model.LevelMedium,
			Priority:    3,
		},
	},
	model.RiskLow: {
		{
			ID:          "two_factor",
			Title:       "Enable Two-Factor Authentication",
			Description: "Add an extra layer of security by enabling two-factor authentication.",
			Impact:      model.LevelMedium,
			Effort:      model.LevelLow,
			Priority:    1,
		},
		{
			ID:          "periodic_review",
			Title:       "Schedule Privacy Review",
			Description: "Set a reminder to review your privacy settings every 3 months.",
			Impact:      model.LevelLow,
			Effort:      model.LevelLow,
			Priority:    2,
		},
	},
}

// lookupCatalog finds a generic catalog entry by id across all tiers.
func lookupCatalog(id string) (catalogEntry, bool) {
	for _, entries := range tierCatalog {
		for _, e := range entries {
			if e.ID == id {
				return e, true
			}
		}
	}
	return catalogEntry{}, false
}
