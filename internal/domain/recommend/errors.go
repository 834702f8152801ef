package recommend

import "errors"

// Package errors.
var (
	// ErrRecommendationNotFound is returned when an id does not match
	// any generic catalog entry.
	ErrRecommendationNotFound = errors.New("recommendation not found")
)
