package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/veilmetrics/veil/internal/adapters/mq/queue"
	"github.com/veilmetrics/veil/internal/adapters/mq/worker"
	"github.com/veilmetrics/veil/internal/adapters/repository"
	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/risk"
	"github.com/veilmetrics/veil/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

// recordingAppender captures appended snapshots. Setting failFirst
// makes that many leading appends fail before recording resumes.
type recordingAppender struct {
	mu        sync.Mutex
	records   []repository.SnapshotRecord
	failFirst int
	failures  int
}

func (a *recordingAppender) Append(_ context.Context, rec repository.SnapshotRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failFirst > 0 {
		a.failFirst--
		a.failures++
		return errors.New("append failed")
	}
	a.records = append(a.records, rec)
	return nil
}

func (a *recordingAppender) snapshot() []repository.SnapshotRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]repository.SnapshotRecord, len(a.records))
	copy(out, a.records)
	return out
}

func (a *recordingAppender) failureCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failures
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func publicJob(jobID, userID string) worker.Job {
	return worker.Job{
		JobID:  jobID,
		UserID: userID,
		User:   model.UserProfile{UserID: userID},
		Connections: []model.ConnectionRecord{{
			Platform:          model.PlatformFacebook,
			PrivacySetting:    model.PrivacyPublic,
			ProfileVisibility: model.PrivacyPublic,
			PostCount:         1825,
			SharesLocation:    true,
		}},
		TS: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestWorker(t *testing.T) {
	Convey("Given a worker wired to a queue and history store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithBufferSize(10))
		appender := &recordingAppender{}
		scorer := risk.NewScorer()

		Convey("A job is scored and its snapshot appended", func() {
			w := worker.NewInMemoryWorker(q, scorer, appender)
			go w.Run(ctx)

			So(q.Enqueue(ctx, publicJob("job-1", "u1")), ShouldBeTrue)

			So(waitFor(func() bool { return len(appender.snapshot()) == 1 }), ShouldBeTrue)
			rec := appender.snapshot()[0]
			So(rec.UserID, ShouldEqual, "u1")
			So(rec.JobID, ShouldEqual, "job-1")
			So(rec.Score, ShouldBeGreaterThan, 0)
			So(rec.Category, ShouldEqual, "high")
			So(rec.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)

			So(q.Close(), ShouldBeNil)
		})

		Convey("An append failure does not stop the worker", func() {
			failing := &recordingAppender{failFirst: 1}
			w := worker.NewInMemoryWorker(q, scorer, failing)
			go w.Run(ctx)

			So(q.Enqueue(ctx, publicJob("job-1", "u1")), ShouldBeTrue)
			So(q.Enqueue(ctx, publicJob("job-2", "u2")), ShouldBeTrue)

			// The first append fails; the worker keeps consuming and
			// lands the second one.
			So(waitFor(func() bool { return failing.failureCount() == 1 }), ShouldBeTrue)
			So(waitFor(func() bool { return len(failing.snapshot()) == 1 }), ShouldBeTrue)
			So(failing.snapshot()[0].JobID, ShouldEqual, "job-2")

			So(q.Close(), ShouldBeNil)
		})

		Convey("The worker stops when the queue closes", func() {
			w := worker.NewInMemoryWorker(q, scorer, appender)
			done := make(chan struct{})
			go func() {
				w.Run(ctx)
				close(done)
			}()

			So(q.Close(), ShouldBeNil)

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				So("worker did not stop", ShouldBeEmpty)
			}
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a worker pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithBufferSize(100))
		appender := &recordingAppender{}
		scorer := risk.NewScorer()

		Convey("The pool processes a batch of jobs across workers", func() {
			pool := worker.NewPool(4, q, scorer, appender)
			pool.Start(ctx)

			for i := 0; i < 20; i++ {
				So(q.Enqueue(ctx, publicJob(
					"job-"+string(rune('a'+i)),
					"user-"+string(rune('a'+i)),
				)), ShouldBeTrue)
			}

			So(waitFor(func() bool { return len(appender.snapshot()) == 20 }), ShouldBeTrue)

			So(pool.Shutdown(ctx), ShouldBeNil)
		})

		Convey("Shutdown closes the queue and drains workers", func() {
			pool := worker.NewPool(2, q, scorer, appender)
			pool.Start(ctx)

			So(q.Enqueue(ctx, publicJob("job-1", "u1")), ShouldBeTrue)
			So(pool.Shutdown(ctx), ShouldBeNil)

			So(q.IsClosed(), ShouldBeTrue)
			So(len(appender.snapshot()), ShouldBeGreaterThanOrEqualTo, 0)
		})
	})
}
