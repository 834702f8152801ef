// Package validate checks raw connection payloads before they reach
// the scoring engines. It operates on decoded JSON objects so that a
// malformed field is reported to the caller instead of silently
// degrading to a parser fallback.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/stat"
)

// requiredConnectionFields must all be present in a connection payload.
var requiredConnectionFields = []string{
	"user_id", "platform", "platform_username", "connected_at",
}

// Validator checks incoming payloads. It is stateless and safe for
// concurrent use.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConnection checks one decoded connection object. It returns
// true with no messages when the payload is acceptable, or false with
// one message per violation. Optional fields are only checked when
// present.
func (v *Validator) ValidateConnection(conn map[string]any) (bool, []string) {
	errs := []string{}

	for _, field := range requiredConnectionFields {
		if _, ok := conn[field]; !ok {
			errs = append(errs, fmt.Sprintf("Missing required field: %s", field))
		}
	}

	if raw, ok := conn["platform"]; ok {
		if !validPlatform(raw) {
			errs = append(errs, fmt.Sprintf("Invalid platform: %v", raw))
		}
	}

	if raw, ok := conn["privacy_setting"]; ok {
		if !validPrivacySetting(raw) {
			errs = append(errs, fmt.Sprintf("Invalid privacy setting: %v", raw))
		}
	}

	for _, field := range []string{"post_count", "follower_count"} {
		if raw, ok := conn[field]; ok {
			if n, numeric := asNumber(raw); !numeric || n < 0 {
				errs = append(errs, fmt.Sprintf("%s must be a non-negative number", field))
			}
		}
	}

	return len(errs) == 0, errs
}

// ValidateRiskScore reports whether a score is a real number inside
// the score range.
func (v *Validator) ValidateRiskScore(score float64) bool {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return false
	}
	return score >= stat.MinScore && score <= stat.MaxScore
}

// SanitizeInput returns a copy of the payload with string values
// trimmed and stripped of quote and semicolon characters. Non-string
// values pass through unchanged.
func (v *Validator) SanitizeInput(data map[string]any) map[string]any {
	sanitized := make(map[string]any, len(data))
	for key, value := range data {
		if s, ok := value.(string); ok {
			s = strings.NewReplacer("'", "", `"`, "", ";", "").Replace(s)
			value = strings.TrimSpace(s)
		}
		sanitized[key] = value
	}
	return sanitized
}

func validPlatform(raw any) bool {
	s, ok := raw.(string)
	if !ok {
		return false
	}
	return model.ParsePlatform(s) != model.PlatformUnknown
}

func validPrivacySetting(raw any) bool {
	s, ok := raw.(string)
	if !ok {
		return false
	}
	switch model.PrivacySetting(s) {
	case model.PrivacyPublic, model.PrivacyFriends, model.PrivacyPrivate:
		return true
	default:
		return false
	}
}

// asNumber accepts the numeric types a decoded JSON payload or a Go
// caller can plausibly hand over.
func asNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
