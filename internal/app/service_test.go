package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/veilmetrics/veil/internal/app"
	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithShardCount(2),
			service.WithKNNNeighbors(3),
			service.WithContamination(0.05),
			service.WithMaxRecommendations(3),
			service.WithVelocityWindow(14),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When checking a new job ID", func() {
			jobID := "job-123"
			seen := svc.SeenAndRecord(ctx, jobID)

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When checking the same job ID again", func() {
			jobID := "job-456"
			svc.SeenAndRecord(ctx, jobID)         // First time
			seen := svc.SeenAndRecord(ctx, jobID) // Second time

			Convey("Then it should have been seen before", func() {
				So(seen, ShouldBeTrue)
			})
		})
	})
}

func TestService_Enqueue(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When enqueueing a valid job", func() {
			job := model.AssessmentJob{
				JobID:  "job-123",
				UserID: "user-456",
				User:   model.UserProfile{UserID: "user-456"},
				Connections: []model.ConnectionRecord{{
					Platform:       model.PlatformFacebook,
					PrivacySetting: model.PrivacyPublic,
				}},
			}

			jobID, _, accepted := svc.Enqueue(ctx, job)

			Convey("Then it should be enqueued successfully", func() {
				So(accepted, ShouldBeTrue)
				So(jobID, ShouldEqual, "job-123")
			})
		})

		Convey("When enqueueing a job without an ID", func() {
			job := model.AssessmentJob{
				User: model.UserProfile{UserID: "user-789"},
			}

			jobID, _, accepted := svc.Enqueue(ctx, job)

			Convey("Then an ID should be generated", func() {
				So(accepted, ShouldBeTrue)
				So(jobID, ShouldNotBeEmpty)
			})
		})
	})
}

func TestService_AssessRisk(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When assessing a user with public connections", func() {
			user := model.UserProfile{UserID: "u1"}
			connections := []model.ConnectionRecord{{
				Platform:          model.PlatformFacebook,
				PrivacySetting:    model.PrivacyPublic,
				ProfileVisibility: model.PrivacyPublic,
				SharesLocation:    true,
			}}

			assessment := svc.AssessRisk(ctx, user, connections, nil)

			Convey("Then it should produce a bounded score with a breakdown", func() {
				So(assessment.OverallScore, ShouldBeGreaterThan, 0)
				So(assessment.OverallScore, ShouldBeLessThanOrEqualTo, 100)
				So(len(assessment.Breakdown), ShouldEqual, 4)
			})
		})

		Convey("When assessing a user with no connections", func() {
			assessment := svc.AssessRisk(ctx, model.UserProfile{UserID: "u2"}, nil, nil)

			Convey("Then the score is zero and the category low", func() {
				So(assessment.OverallScore, ShouldEqual, 0)
				So(assessment.Category, ShouldEqual, model.RiskLow)
			})
		})
	})
}

func TestService_Recommendations(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithMaxRecommendations(5))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When requesting recommendations for a high score", func() {
			recs := svc.Recommendations(ctx, 85.0, nil, 0)

			Convey("Then the high-risk catalog items come back in priority order", func() {
				So(len(recs), ShouldBeGreaterThan, 0)
				So(recs[0].ID, ShouldEqual, "public_profile")
			})
		})

		Convey("When estimating the impact of a known recommendation", func() {
			estimate, err := svc.EstimateImpact("public_profile", 85.0)

			Convey("Then the estimate lowers the score", func() {
				So(err, ShouldBeNil)
				So(estimate.EstimatedNewScore, ShouldBeLessThan, estimate.CurrentScore)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}
