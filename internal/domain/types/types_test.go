package types_test

import (
	"testing"

	types "github.com/veilmetrics/veil/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		Convey("When creating a new entry", func() {
			entry := types.Entry{
				Rank:     1,
				UserID:   "user-123",
				Score:    95.5,
				Category: "high",
			}

			Convey("Then it should have the correct values", func() {
				So(entry.Rank, ShouldEqual, 1)
				So(entry.UserID, ShouldEqual, "user-123")
				So(entry.Score, ShouldEqual, 95.5)
				So(entry.Category, ShouldEqual, "high")
			})
		})

		Convey("When creating an entry with zero values", func() {
			entry := types.Entry{}

			Convey("Then it should have default values", func() {
				So(entry.Rank, ShouldEqual, 0)
				So(entry.UserID, ShouldEqual, "")
				So(entry.Score, ShouldEqual, 0.0)
				So(entry.Category, ShouldEqual, "")
			})
		})

		Convey("When building a ranking", func() {
			entries := []types.Entry{
				{Rank: 1, UserID: "user-1", Score: 95.0, Category: "high"},
				{Rank: 2, UserID: "user-2", Score: 62.5, Category: "medium"},
				{Rank: 3, UserID: "user-3", Score: 12.0, Category: "low"},
			}

			Convey("Then ranks should be sequential and scores descending", func() {
				for i, entry := range entries {
					So(entry.Rank, ShouldEqual, i+1)
				}
				for i := 0; i < len(entries)-1; i++ {
					So(entries[i].Score, ShouldBeGreaterThanOrEqualTo, entries[i+1].Score)
				}
			})
		})
	})
}
