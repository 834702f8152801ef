// Package service wires the assessment engines, the history store, and
// the async pipeline together and implements the dependencies required
// by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/veilmetrics/veil/internal/adapters/mq/queue"
	workerpool "github.com/veilmetrics/veil/internal/adapters/mq/worker"
	repository "github.com/veilmetrics/veil/internal/adapters/repository"
	"github.com/veilmetrics/veil/internal/domain/anomaly"
	"github.com/veilmetrics/veil/internal/domain/dedupe"
	"github.com/veilmetrics/veil/internal/domain/evaluate"
	"github.com/veilmetrics/veil/internal/domain/features"
	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/recommend"
	"github.com/veilmetrics/veil/internal/domain/risk"
	"github.com/veilmetrics/veil/internal/domain/trend"
	"github.com/veilmetrics/veil/internal/domain/types"
	"github.com/veilmetrics/veil/internal/domain/validate"
	"github.com/veilmetrics/veil/pkg/logger"
	"github.com/veilmetrics/veil/pkg/metrics"
)

// Service implements the API dependencies for the risk assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	history     repository.Store
	deduper     dedupe.Deduper
	jobQueue    jobqueue.Queue
	scorer      *risk.Scorer
	analyzer    *trend.Analyzer
	detector    *anomaly.Detector
	recommender *recommend.Engine
	extractor   *features.Extractor
	validator   *validate.Validator
	workerPool  *workerpool.Pool

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	shardCount         int
	knnNeighbors       int
	contamination      float64
	maxRecommendations int
	velocityWindowDays int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the assessment job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of history store shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithKNNNeighbors sets the neighbor count for the supervised risk model.
func WithKNNNeighbors(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.knnNeighbors = n
		}
	}
}

// WithContamination sets the expected anomaly fraction for the
// statistical baseline.
func WithContamination(c float64) Option {
	return func(s *Service) {
		if c > 0 && c < 1 {
			s.contamination = c
		}
	}
}

// WithMaxRecommendations caps the recommendation list length.
func WithMaxRecommendations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecommendations = n
		}
	}
}

// WithVelocityWindow sets the default look-back window in days for
// score velocity queries.
func WithVelocityWindow(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.velocityWindowDays = days
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU() * 4,
		queueSize:          100000,
		dedupeSize:         500000,
		shardCount:         8,
		knnNeighbors:       5,
		contamination:      0.1,
		maxRecommendations: 5,
		velocityWindowDays: 30,
		stopCh:             make(chan struct{}),
		logger:             nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting risk assessment service...")

	// Initialize components
	s.history = repository.NewShardedStore(ctx,
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.scorer = risk.NewScorer(
		risk.WithSupervisedModel(s.knnNeighbors),
	)
	s.analyzer = trend.NewAnalyzer()
	s.detector = anomaly.NewDetector(
		anomaly.WithContamination(s.contamination),
	)
	s.recommender = recommend.NewEngine(
		recommend.WithMaxRecommendations(s.maxRecommendations),
	)
	s.extractor = features.New()
	s.validator = validate.NewValidator()

	// Create and start the worker pool that drains the job queue into
	// the history store.
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.scorer, s.history)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "risk assessment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping risk assessment service...")

	// Shut down the worker pool. Shutdown closes the queue first so
	// workers drain whatever is still buffered.
	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}

	// Close the history store
	if s.history != nil {
		if closer, ok := s.history.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "risk assessment service stopped")
}

// SeenAndRecord atomically checks if a job id was seen and records it if not.
// Returns true if the job was already seen, false if it was newly recorded.
// This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordAssessmentDuplicate()
	}
	return seen
}

// Unrecord removes a job ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an assessment job for asynchronous processing. The
// returned job id is either the caller-supplied one or a generated
// UUID. A duplicate submission reports duplicate=true and accepted=true
// without enqueueing a second copy.
func (s *Service) Enqueue(ctx context.Context, job model.AssessmentJob) (jobID string, duplicate, accepted bool) {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.UserID == "" {
		job.UserID = job.User.UserID
	}
	if job.TS.IsZero() {
		job.TS = time.Now().UTC()
	}

	s.logger.Debug(ctx, "received assessment job",
		logger.String("jobID", job.JobID),
		logger.String("userID", job.UserID),
		logger.Int("connections", len(job.Connections)),
	)

	// Check for duplicates before enqueueing
	if s.SeenAndRecord(ctx, job.JobID) {
		s.logger.Debug(ctx, "duplicate job detected, skipping",
			logger.String("jobID", job.JobID),
			logger.String("userID", job.UserID),
		)
		return job.JobID, true, true
	}

	success := s.jobQueue.Enqueue(ctx, job)
	if success {
		metrics.RecordAssessmentProcessed()
		metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	} else {
		// Allow the caller to retry with the same job id.
		s.Unrecord(ctx, job.JobID)
	}
	return job.JobID, false, success
}

// AssessRisk computes the composite risk assessment synchronously.
func (s *Service) AssessRisk(
	ctx context.Context,
	user model.UserProfile,
	connections []model.ConnectionRecord,
	activities []model.ActivityRecord,
) risk.Assessment {
	start := time.Now()
	assessment := s.scorer.CalculateRiskScore(user, connections, activities)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.RecordAssessmentCategory(string(assessment.Category))

	s.logger.Debug(ctx, "risk assessed",
		logger.String("userID", user.UserID),
		logger.Float64("score", assessment.OverallScore),
		logger.String("category", string(assessment.Category)),
	)
	return assessment
}

// Recommendations returns prioritized privacy recommendations for the
// given score and connection set.
func (s *Service) Recommendations(
	ctx context.Context,
	riskScore float64,
	connections []model.ConnectionRecord,
	maxCount int,
) []model.Recommendation {
	recs := s.recommender.GenerateRecommendations(riskScore, connections, maxCount)
	metrics.RecordRecommendationsServed(len(recs))

	s.logger.Debug(ctx, "recommendations generated",
		logger.Float64("riskScore", riskScore),
		logger.Int("count", len(recs)),
	)
	return recs
}

// EstimateImpact estimates the score change of applying one
// recommendation from the generic catalog.
func (s *Service) EstimateImpact(recommendationID string, currentScore float64) (recommend.ImpactEstimate, error) {
	return s.recommender.EstimateImpact(recommendationID, currentScore)
}

// AnalyzeTrend fits a trend over a chronological score history.
func (s *Service) AnalyzeTrend(history []model.ScoreSnapshot) trend.Analysis {
	return s.analyzer.AnalyzeTrend(history)
}

// ScoreVelocity reports the average daily score change over the given
// window. A non-positive window falls back to the configured default.
func (s *Service) ScoreVelocity(history []model.ScoreSnapshot, windowDays int) float64 {
	if windowDays <= 0 {
		windowDays = s.velocityWindowDays
	}
	return s.analyzer.Velocity(history, windowDays)
}

// InflectionPoints finds local extrema in a score history.
func (s *Service) InflectionPoints(history []model.ScoreSnapshot) []trend.InflectionPoint {
	return s.analyzer.InflectionPoints(history)
}

// DetectAnomalies runs the rule-based anomaly checks for one user.
func (s *Service) DetectAnomalies(
	ctx context.Context,
	user model.UserProfile,
	connections []model.ConnectionRecord,
	historical []model.HistoricalSnapshot,
) anomaly.Report {
	report := s.detector.DetectUserAnomalies(user, connections, historical)
	for _, finding := range report.Anomalies {
		metrics.RecordAnomalyDetected(string(finding.Kind))
	}

	if report.AnomaliesDetected {
		s.logger.Info(ctx, "anomalies detected",
			logger.String("userID", user.UserID),
			logger.Int("count", report.AnomalyCount),
		)
	}
	return report
}

// TrainBaseline fits the statistical anomaly baseline on a feature
// matrix of normal behavior.
func (s *Service) TrainBaseline(ctx context.Context, matrix [][]float64) error {
	if err := s.detector.Train(matrix); err != nil {
		return err
	}
	metrics.RecordModelTraining("anomaly_baseline")
	s.logger.Info(ctx, "anomaly baseline trained",
		logger.Int("samples", len(matrix)),
	)
	return nil
}

// TrainModel fits the supervised risk model on a labeled feature
// matrix.
func (s *Service) TrainModel(ctx context.Context, x [][]float64, y []float64) error {
	if err := s.scorer.Train(x, y); err != nil {
		return err
	}
	metrics.RecordModelTraining("risk_knn")
	s.logger.Info(ctx, "supervised risk model trained",
		logger.Int("samples", len(x)),
	)
	return nil
}

// EvaluateModel reports regression metrics for the trained supervised
// risk model against a labeled hold-out set.
func (s *Service) EvaluateModel(x [][]float64, y []float64) (evaluate.RegressionMetrics, error) {
	return s.scorer.EvaluateModel(x, y)
}

// BaselineOutlier scores a user's current feature set against the
// trained baseline. Untrained baselines report no outlier.
func (s *Service) BaselineOutlier(
	user model.UserProfile,
	connections []model.ConnectionRecord,
	activities []model.ActivityRecord,
) (bool, float64) {
	featureMap := s.extractor.UserFeatures(user, connections, activities)
	vec := features.Vector(featureMap, features.BaselineFeatureNames)
	return s.detector.Detect(vec)
}

// History returns the stored score snapshots for a user, oldest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]repository.SnapshotRecord, error) {
	return s.history.History(ctx, userID, limit)
}

// Latest returns the most recent stored snapshot for a user.
func (s *Service) Latest(ctx context.Context, userID string) (repository.SnapshotRecord, error) {
	return s.history.Latest(ctx, userID)
}

// TopRisk returns the n users with the highest latest risk scores.
func (s *Service) TopRisk(ctx context.Context, n int) ([]types.Entry, error) {
	return s.history.TopRisk(ctx, n)
}

// ValidateConnection checks a raw connection payload against the
// required field and enum rules.
func (s *Service) ValidateConnection(conn map[string]any) (bool, []string) {
	return s.validator.ValidateConnection(conn)
}

// SanitizeInput strips quoting characters from string fields of a raw
// payload.
func (s *Service) SanitizeInput(data map[string]any) map[string]any {
	return s.validator.SanitizeInput(data)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"shardCount":  s.shardCount,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		trackedUsers := s.history.Count(ctx)

		stats["queueLength"] = queueLen
		stats["trackedUsers"] = trackedUsers
		stats["baselineTrained"] = s.detector.Trained()

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTrackedUsers(trackedUsers)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
