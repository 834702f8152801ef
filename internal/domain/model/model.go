// Package model contains domain models passed between layers.
package model

import "time"

// Platform identifies a supported social platform.
type Platform string

// Supported platforms. Anything else is treated as PlatformUnknown.
const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformUnknown   Platform = "unknown"
)

// Platforms lists the supported platforms in canonical order.
func Platforms() []Platform {
	return []Platform{PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformLinkedIn}
}

// ParsePlatform maps a raw string onto a supported platform,
// falling back to PlatformUnknown rather than failing.
func ParsePlatform(s string) Platform {
	for _, p := range Platforms() {
		if string(p) == s {
			return p
		}
	}
	return PlatformUnknown
}

// PrivacySetting is the audience level of a connection or profile.
type PrivacySetting string

// Valid privacy settings.
const (
	PrivacyPublic  PrivacySetting = "public"
	PrivacyFriends PrivacySetting = "friends"
	PrivacyPrivate PrivacySetting = "private"
)

// ParsePrivacySetting maps a raw string onto a privacy setting.
// Unrecognized values degrade to PrivacyFriends, the platform default.
func ParsePrivacySetting(s string) PrivacySetting {
	switch PrivacySetting(s) {
	case PrivacyPublic, PrivacyFriends, PrivacyPrivate:
		return PrivacySetting(s)
	default:
		return PrivacyFriends
	}
}

// ContentType classifies a single posted activity.
type ContentType string

// Known content types.
const (
	ContentPersonalPhoto   ContentType = "personal_photo"
	ContentLocationCheckIn ContentType = "location_check_in"
	ContentStatusUpdate    ContentType = "status_update"
	ContentSharedArticle   ContentType = "shared_article"
	ContentLifeEvent       ContentType = "life_event"
	ContentContactInfo     ContentType = "contact_info"
)

// Level expresses a three-step low/medium/high scale used for
// recommendation impact and effort as well as anomaly severity.
type Level string

// Valid levels.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// RiskCategory buckets a composite score.
type RiskCategory string

// Risk categories with their score breakpoints:
// low <= 40, 41 <= medium <= 70, high >= 71.
const (
	RiskLow    RiskCategory = "low"
	RiskMedium RiskCategory = "medium"
	RiskHigh   RiskCategory = "high"
)

// UserProfile carries the demographic fields the engine consumes.
// Zero values mean "not supplied" and are defaulted during extraction.
type UserProfile struct {
	UserID   string
	Age      int       // 0 means unknown; extraction defaults to 30
	JoinDate time.Time // zero means unknown; extraction defaults to 365 days
	IsActive bool
}

// ConnectionRecord is an immutable snapshot of one linked external account.
// Created by the caller per request; the engine never mutates it.
type ConnectionRecord struct {
	Platform          Platform
	PrivacySetting    PrivacySetting
	ProfileVisibility PrivacySetting
	PostCount         int // lifetime posts, >= 0
	FollowerCount     int // >= 0
	IsActive          bool
	SharesLocation    bool
	SharesContacts    bool
}

// ActivityRecord is one content-posting event tied to a connection.
type ActivityRecord struct {
	Date            time.Time
	ContentType     ContentType
	HasPersonalInfo bool
	HasLocation     bool
	EngagementScore float64 // >= 0
}

// ScoreSnapshot is a single point of score history. Duplicate dates
// are permitted; ordering is the caller's concern.
type ScoreSnapshot struct {
	Date  time.Time
	Score float64 // in [0,100]
}

// HistoricalSnapshot captures the connections a user had at a point in
// time, used for baseline comparison in anomaly detection.
type HistoricalSnapshot struct {
	Date        time.Time
	Connections []ConnectionRecord
}

// Recommendation is one actionable privacy improvement.
type Recommendation struct {
	ID          string
	Title       string
	Description string
	Impact      Level
	Effort      Level
	Priority    int    // lower is more urgent
	Platform    string // platform name or "general"
}

// AnomalyKind enumerates the kinds of anomaly findings.
type AnomalyKind string

// Anomaly finding kinds.
const (
	AnomalyConnectionSpike    AnomalyKind = "connection_spike"
	AnomalyPrivacyDegradation AnomalyKind = "privacy_degradation"
	AnomalyActivityPattern    AnomalyKind = "activity_anomaly"
	AnomalyStatisticalOutlier AnomalyKind = "statistical_outlier"
)

// AnomalyFinding describes one detected deviation from baseline.
type AnomalyFinding struct {
	Kind           AnomalyKind
	Severity       Level
	Description    string
	Recommendation string // optional remediation hint
}

// AssessmentJob is the payload flowing through the assessment queue.
type AssessmentJob struct {
	JobID       string // unique id for idempotency
	UserID      string
	User        UserProfile
	Connections []ConnectionRecord
	Activities  []ActivityRecord
	TS          time.Time
}
