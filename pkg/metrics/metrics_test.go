package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "veil")
				So(manager.subsystem, ShouldEqual, "riskengine")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test-namespace")
				So(manager.subsystem, ShouldEqual, "test-subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.refreshInterval, ShouldEqual, 10*time.Second)
			})
		})

		Convey("When options carry zero values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "veil")
				So(manager.subsystem, ShouldEqual, "riskengine")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording business metrics", func() {
			Convey("Then the helpers should not panic", func() {
				So(func() {
					RecordAssessmentProcessed()
					RecordAssessmentDuplicate()
					RecordAssessmentCategory("high")
					RecordScoringLatency(1.5)
					RecordAnomalyDetected("connection_spike")
					RecordRecommendationsServed(5)
					RecordModelTraining("risk")
					RecordScoringError()
					RecordErrorByComponent("worker", "timeout")
				}, ShouldNotPanic)
			})
		})

		Convey("When updating operational gauges", func() {
			Convey("Then the helpers should not panic", func() {
				So(func() {
					UpdateQueueSize(3)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.03)
					UpdateWorkerCount(4)
					UpdateWorkerActiveCount(2)
					UpdateWorkerIdleCount(2)
					UpdateTrackedUsers(10)
					UpdateRepositoryShardCount(16)
					UpdateRepositoryRecordsTotal(100)
					UpdateRepositoryRecordsPerShard("0", 7)
					RecordRepositoryUpdateLatency(0.2)
					RecordRepositoryQueryLatency(0.1)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordWorkerProcessingLatency(2.0)
					RecordWorkerError()
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then gathering should succeed", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then the helpers should not panic", func() {
				So(func() {
					RecordHTTPRequest("/api/v1/risk-score", "POST", "200")
					RecordHTTPRequestDuration("/api/v1/risk-score", "POST", "200", 12.5)
				}, ShouldNotPanic)
			})
		})
	})
}
