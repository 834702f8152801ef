// Package repository defines the score history store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/veilmetrics/veil/internal/domain/types"
)

// SnapshotRecord is one scored assessment kept in a user's history.
type SnapshotRecord struct {
	UserID   string
	JobID    string
	Score    float64
	Category string
	Date     time.Time
}

// Store provides read/write access to per-user score history.
type Store interface {
	// Append adds a scored assessment to the user's history.
	Append(ctx context.Context, rec SnapshotRecord) error

	// History returns the user's snapshots ordered oldest first.
	// limit <= 0 returns the full history; a positive limit returns the
	// most recent snapshots. Returns ErrNotFound for an unknown user.
	History(ctx context.Context, userID string, limit int) ([]SnapshotRecord, error)

	// Latest returns the most recent snapshot for a user.
	// Returns ErrNotFound if the user is unknown.
	Latest(ctx context.Context, userID string) (SnapshotRecord, error)

	// TopRisk returns ranked entries for the n users with the highest
	// latest scores, ordered by score desc with user ID as the
	// tie-breaker.
	TopRisk(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of users with stored history.
	Count(ctx context.Context) int
}
