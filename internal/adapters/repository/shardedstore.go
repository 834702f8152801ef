// Package repository defines the score history store interface and errors.
package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/veilmetrics/veil/internal/domain/types"
	"github.com/veilmetrics/veil/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Histories are partitioned by user ID hash so concurrent appends for
// different users rarely contend on the same lock. Within one user the
// history is append-only and kept in insertion order; callers append
// snapshots as they are scored, so insertion order is date order.

// shard holds the histories for one partition of the user space.
type shard struct {
	mu        sync.RWMutex
	histories map[string][]SnapshotRecord
}

// ShardedStore implements Store over hash-partitioned in-memory shards.
type ShardedStore struct {
	shards     []*shard
	shardCount int

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewShardedStore constructs a sharded history store with configuration
// options. The background metrics updater runs until ctx is canceled or
// Close is called.
func NewShardedStore(ctx context.Context, opts ...Option) *ShardedStore {
	s := &ShardedStore{
		shardCount:            8,
		metricsUpdateInterval: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{histories: make(map[string][]SnapshotRecord)}
	}

	s.stopChan = make(chan struct{})
	metrics.UpdateRepositoryShardCount(s.shardCount)
	s.startMetricsUpdater(ctx)

	return s
}

// startMetricsUpdater publishes shard occupancy gauges periodically.
func (s *ShardedStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *ShardedStore) updateMetrics() {
	total := 0
	users := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		records := 0
		for _, h := range sh.histories {
			records += len(h)
		}
		users += len(sh.histories)
		sh.mu.RUnlock()

		total += records
		metrics.UpdateRepositoryRecordsPerShard(fmt.Sprintf("%d", i), records)
	}
	metrics.UpdateRepositoryRecordsTotal(total)
	metrics.UpdateTrackedUsers(users)
}

// Close stops the background metrics updater.
func (s *ShardedStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// shardFor picks the shard owning a user ID.
func (s *ShardedStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// Append implements Store.Append.
func (s *ShardedStore) Append(_ context.Context, rec SnapshotRecord) error {
	if rec.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrNotFound)
	}
	start := time.Now()

	sh := s.shardFor(rec.UserID)
	sh.mu.Lock()
	sh.histories[rec.UserID] = append(sh.histories[rec.UserID], rec)
	sh.mu.Unlock()

	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return nil
}

// History implements Store.History.
func (s *ShardedStore) History(_ context.Context, userID string, limit int) ([]SnapshotRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	sh := s.shardFor(userID)
	sh.mu.RLock()
	history, ok := sh.histories[userID]
	if !ok {
		sh.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}

	if limit > 0 && limit < len(history) {
		history = history[len(history)-limit:]
	}
	out := make([]SnapshotRecord, len(history))
	copy(out, history)
	sh.mu.RUnlock()

	return out, nil
}

// Latest implements Store.Latest.
func (s *ShardedStore) Latest(_ context.Context, userID string) (SnapshotRecord, error) {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	history, ok := sh.histories[userID]
	if !ok || len(history) == 0 {
		return SnapshotRecord{}, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return history[len(history)-1], nil
}

// TopRisk implements Store.TopRisk.
func (s *ShardedStore) TopRisk(_ context.Context, n int) ([]types.Entry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	latest := make([]SnapshotRecord, 0, 64)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, history := range sh.histories {
			if len(history) > 0 {
				latest = append(latest, history[len(history)-1])
			}
		}
		sh.mu.RUnlock()
	}

	sort.Slice(latest, func(i, j int) bool {
		if latest[i].Score != latest[j].Score {
			return latest[i].Score > latest[j].Score
		}
		return latest[i].UserID < latest[j].UserID
	})

	if n < len(latest) {
		latest = latest[:n]
	}
	entries := make([]types.Entry, len(latest))
	for i, rec := range latest {
		entries[i] = types.Entry{
			Rank:     i + 1,
			UserID:   rec.UserID,
			Score:    rec.Score,
			Category: rec.Category,
		}
	}
	return entries, nil
}

// Count implements Store.Count.
func (s *ShardedStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.histories)
		sh.mu.RUnlock()
	}
	return total
}
