package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/veilmetrics/veil/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given an in-memory deduper", t, func() {
		ctx := context.Background()

		Convey("A new job id is recorded exactly once", func() {
			d := dedupe.NewInMemoryDeduper()

			So(d.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "job-1"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Distinct job ids do not collide", func() {
			d := dedupe.NewInMemoryDeduper()

			for i := 0; i < 5; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("job-%d", i)), ShouldBeFalse)
			}
			So(d.Size(), ShouldEqual, 5)
		})

		Convey("Unrecord allows a job to be resubmitted", func() {
			d := dedupe.NewInMemoryDeduper()

			So(d.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
			d.Unrecord(ctx, "job-1")

			So(d.Size(), ShouldEqual, 0)
			So(d.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
		})

		Convey("Unrecord of an unknown id is a no-op", func() {
			d := dedupe.NewInMemoryDeduper()

			d.Unrecord(ctx, "never-seen")
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("Bounded mode evicts the oldest id when full", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

			So(d.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "job-2"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "job-3"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "job-4"), ShouldBeFalse)

			So(d.Size(), ShouldEqual, 3)
			// job-1 was evicted, so it is treated as new again.
			So(d.SeenAndRecord(ctx, "job-1"), ShouldBeFalse)
			// job-4 is still tracked.
			So(d.SeenAndRecord(ctx, "job-4"), ShouldBeTrue)
		})

		Convey("Unbounded mode never evicts", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

			for i := 0; i < 1000; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("job-%d", i)), ShouldBeFalse)
			}
			So(d.Size(), ShouldEqual, 1000)
			So(d.SeenAndRecord(ctx, "job-0"), ShouldBeTrue)
		})

		Convey("Concurrent recording admits each id exactly once", func() {
			d := dedupe.NewInMemoryDeduper()

			const goroutines = 16
			var wg sync.WaitGroup
			admitted := make([]int, goroutines)
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("job-%d", i)) {
							admitted[g]++
						}
					}
				}(g)
			}
			wg.Wait()

			total := 0
			for _, n := range admitted {
				total += n
			}
			So(total, ShouldEqual, 100)
			So(d.Size(), ShouldEqual, 100)
		})
	})
}
