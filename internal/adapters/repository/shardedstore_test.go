package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/veilmetrics/veil/internal/adapters/repository"
)

func rec(userID string, day int, score float64, category string) repository.SnapshotRecord {
	return repository.SnapshotRecord{
		UserID:   userID,
		JobID:    fmt.Sprintf("%s-%d", userID, day),
		Score:    score,
		Category: category,
		Date:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
	}
}

func TestShardedStore(t *testing.T) {
	Convey("Given a sharded history store", t, func() {
		ctx := context.Background()
		store := repository.NewShardedStore(ctx, repository.WithShardCount(4))
		defer func() { _ = store.Close() }()

		Convey("Appending builds an ordered history", func() {
			So(store.Append(ctx, rec("u1", 0, 40, "low")), ShouldBeNil)
			So(store.Append(ctx, rec("u1", 1, 55, "medium")), ShouldBeNil)
			So(store.Append(ctx, rec("u1", 2, 75, "high")), ShouldBeNil)

			history, err := store.History(ctx, "u1", 0)
			So(err, ShouldBeNil)
			So(history, ShouldHaveLength, 3)
			So(history[0].Score, ShouldEqual, 40.0)
			So(history[2].Score, ShouldEqual, 75.0)
		})

		Convey("A positive limit returns the most recent snapshots", func() {
			for day := 0; day < 5; day++ {
				So(store.Append(ctx, rec("u1", day, float64(day*10), "low")), ShouldBeNil)
			}

			history, err := store.History(ctx, "u1", 2)
			So(err, ShouldBeNil)
			So(history, ShouldHaveLength, 2)
			So(history[0].Score, ShouldEqual, 30.0)
			So(history[1].Score, ShouldEqual, 40.0)
		})

		Convey("History for an unknown user returns ErrNotFound", func() {
			_, err := store.History(ctx, "ghost", 0)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Latest returns the newest snapshot", func() {
			So(store.Append(ctx, rec("u1", 0, 40, "low")), ShouldBeNil)
			So(store.Append(ctx, rec("u1", 1, 80, "high")), ShouldBeNil)

			latest, err := store.Latest(ctx, "u1")
			So(err, ShouldBeNil)
			So(latest.Score, ShouldEqual, 80.0)
			So(latest.Category, ShouldEqual, "high")
		})

		Convey("Latest for an unknown user returns ErrNotFound", func() {
			_, err := store.Latest(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Appending with an empty user id fails", func() {
			So(store.Append(ctx, repository.SnapshotRecord{}), ShouldNotBeNil)
		})

		Convey("TopRisk ranks users by their latest score", func() {
			So(store.Append(ctx, rec("alice", 0, 90, "high")), ShouldBeNil)
			So(store.Append(ctx, rec("alice", 1, 30, "low")), ShouldBeNil) // latest wins
			So(store.Append(ctx, rec("bob", 0, 70, "medium")), ShouldBeNil)
			So(store.Append(ctx, rec("carol", 0, 85, "high")), ShouldBeNil)

			entries, err := store.TopRisk(ctx, 10)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
			So(entries[0].UserID, ShouldEqual, "carol")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].UserID, ShouldEqual, "bob")
			So(entries[2].UserID, ShouldEqual, "alice")
			So(entries[2].Score, ShouldEqual, 30.0)
		})

		Convey("TopRisk breaks score ties by user id", func() {
			So(store.Append(ctx, rec("beta", 0, 50, "medium")), ShouldBeNil)
			So(store.Append(ctx, rec("alpha", 0, 50, "medium")), ShouldBeNil)

			entries, err := store.TopRisk(ctx, 2)
			So(err, ShouldBeNil)
			So(entries[0].UserID, ShouldEqual, "alpha")
			So(entries[1].UserID, ShouldEqual, "beta")
		})

		Convey("TopRisk truncates to the requested size", func() {
			for i := 0; i < 10; i++ {
				So(store.Append(ctx, rec(fmt.Sprintf("u%d", i), 0, float64(i), "low")), ShouldBeNil)
			}

			entries, err := store.TopRisk(ctx, 3)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
			So(entries[0].Score, ShouldEqual, 9.0)
		})

		Convey("TopRisk rejects a non-positive limit", func() {
			_, err := store.TopRisk(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("Count tracks distinct users", func() {
			So(store.Count(ctx), ShouldEqual, 0)
			So(store.Append(ctx, rec("u1", 0, 10, "low")), ShouldBeNil)
			So(store.Append(ctx, rec("u1", 1, 20, "low")), ShouldBeNil)
			So(store.Append(ctx, rec("u2", 0, 30, "low")), ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 2)
		})

		Convey("Concurrent appends across users are safe", func() {
			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					userID := fmt.Sprintf("user-%d", g)
					for day := 0; day < 50; day++ {
						_ = store.Append(ctx, rec(userID, day, float64(day), "low"))
					}
				}(g)
			}
			wg.Wait()

			So(store.Count(ctx), ShouldEqual, 8)
			history, err := store.History(ctx, "user-3", 0)
			So(err, ShouldBeNil)
			So(history, ShouldHaveLength, 50)
		})
	})
}
