// Package types contains common types used across the application
package types

// Entry represents one row of the exposure ranking: users ordered by
// their latest composite risk score, most exposed first.
type Entry struct {
	Rank     int     `json:"rank"`
	UserID   string  `json:"user_id"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
}
