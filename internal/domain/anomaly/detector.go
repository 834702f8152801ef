// Package anomaly flags abnormal shifts in a user's privacy posture.
// It carries two independent paths: deterministic rule checks against
// historical snapshots, and a trained statistical baseline over feature
// vectors where lower scores mean more anomalous.
package anomaly

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/veilmetrics/veil/internal/domain/model"
	"github.com/veilmetrics/veil/internal/domain/stat"
)

// Rule thresholds: a connection count above connectionSpikeFactor times
// the historical average, or a public-profile count above
// publicGrowthFactor times the historical average, is flagged.
const (
	connectionSpikeFactor = 2.0
	publicGrowthFactor    = 1.5
)

// defaultContamination is the expected fraction of anomalous samples
// assumed when fitting the baseline.
const defaultContamination = 0.1

// Report is the result of the rule-based anomaly scan.
type Report struct {
	AnomaliesDetected bool                   `json:"anomalies_detected"`
	AnomalyCount      int                    `json:"anomaly_count"`
	Anomalies         []model.AnomalyFinding `json:"anomalies"`
}

// baseline is an immutable fitted model: per-feature location/scale
// plus the score threshold derived from the contamination parameter.
// Train publishes a fresh instance wholesale so concurrent readers
// never observe a partially fitted model.
type baseline struct {
	means     []float64
	stds      []float64
	threshold float64
}

// Detector detects anomalous privacy patterns. Rule checks are pure;
// the statistical baseline is guarded by a read-write lock so reads
// may run concurrently while Train serializes against them.
type Detector struct {
	mu            sync.RWMutex
	contamination float64
	model         *baseline // nil until trained
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithContamination sets the expected anomaly fraction in (0,1).
func WithContamination(c float64) Option {
	return func(d *Detector) {
		if c > 0 && c < 1 {
			d.contamination = c
		}
	}
}

// NewDetector creates a detector with configuration options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{contamination: defaultContamination}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trained reports whether a statistical baseline has been fitted.
func (d *Detector) Trained() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.model != nil
}

// Train fits the statistical baseline on a feature matrix and replaces
// any previous model wholesale. Rows must share one width and follow
// the same feature ordering later passed to Detect.
func (d *Detector) Train(matrix [][]float64) error {
	if len(matrix) == 0 {
		return fmt.Errorf("%w: empty matrix", ErrBadTrainingData)
	}
	width := len(matrix[0])
	if width == 0 {
		return fmt.Errorf("%w: zero-width rows", ErrBadTrainingData)
	}
	for _, row := range matrix {
		if len(row) != width {
			return fmt.Errorf("%w: ragged matrix", ErrBadTrainingData)
		}
	}

	means := make([]float64, width)
	stds := make([]float64, width)
	column := make([]float64, len(matrix))
	for j := 0; j < width; j++ {
		for i, row := range matrix {
			column[i] = row[j]
		}
		means[j] = stat.Mean(column)
		stds[j] = stat.Std(column)
	}

	fitted := &baseline{means: means, stds: stds}

	// Threshold at the contamination quantile of the training scores:
	// raising contamination raises the threshold and therefore the
	// expected flagged fraction.
	trainScores := make([]float64, len(matrix))
	for i, row := range matrix {
		trainScores[i] = fitted.score(row)
	}
	fitted.threshold = stat.Quantile(trainScores, d.contamination)

	d.mu.Lock()
	d.model = fitted
	d.mu.Unlock()
	return nil
}

// Detect scores a feature vector against the trained baseline.
// Calling before Train is a defined fallback returning (false, 0), as
// is a vector whose width does not match the training data.
func (d *Detector) Detect(featureVec []float64) (bool, float64) {
	d.mu.RLock()
	m := d.model
	d.mu.RUnlock()

	if m == nil || len(featureVec) != len(m.means) {
		return false, 0.0
	}

	score := m.score(featureVec)
	return score < m.threshold, score
}

// score is the negated mean absolute z-distance from the baseline:
// 0 at the centroid, increasingly negative with deviation.
func (m *baseline) score(featureVec []float64) float64 {
	var total float64
	for i, v := range featureVec {
		scale := m.stds[i]
		if scale == 0 {
			scale = 1
		}
		total += abs(v-m.means[i]) / scale
	}
	return -total / float64(len(featureVec))
}

// DetectUserAnomalies runs the deterministic rule checks against the
// user's current connections and historical snapshots. Without
// historical data the history-dependent checks are skipped entirely.
func (d *Detector) DetectUserAnomalies(
	user model.UserProfile,
	connections []model.ConnectionRecord,
	historical []model.HistoricalSnapshot,
) Report {
	findings := []model.AnomalyFinding{}

	if len(historical) > 0 {
		if f, ok := connectionSpike(connections, historical); ok {
			findings = append(findings, f)
		}
		if f, ok := privacyDegradation(connections, historical); ok {
			findings = append(findings, f)
		}
	}

	findings = append(findings, activityAnomalies(user, historical)...)

	return Report{
		AnomaliesDetected: len(findings) > 0,
		AnomalyCount:      len(findings),
		Anomalies:         findings,
	}
}

// formatAvg renders an average as the shortest decimal that
// round-trips, keeping a trailing ".0" on whole numbers so finding
// descriptions stay byte-identical with the previous service.
func formatAvg(avg float64) string {
	s := strconv.FormatFloat(avg, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func connectionSpike(connections []model.ConnectionRecord, historical []model.HistoricalSnapshot) (model.AnomalyFinding, bool) {
	counts := make([]float64, len(historical))
	for i, h := range historical {
		counts[i] = float64(len(h.Connections))
	}
	avg := stat.Mean(counts)

	current := len(connections)
	if float64(current) <= avg*connectionSpikeFactor {
		return model.AnomalyFinding{}, false
	}
	return model.AnomalyFinding{
		Kind:           model.AnomalyConnectionSpike,
		Severity:       model.LevelHigh,
		Description:    fmt.Sprintf("Unusual increase in connections: %d vs avg %s", current, formatAvg(avg)),
		Recommendation: "Review recent connections for unauthorized accounts",
	}, true
}

func privacyDegradation(connections []model.ConnectionRecord, historical []model.HistoricalSnapshot) (model.AnomalyFinding, bool) {
	current := countPublic(connections)

	counts := make([]float64, len(historical))
	for i, h := range historical {
		counts[i] = float64(countPublic(h.Connections))
	}
	avg := stat.Mean(counts)

	if float64(current) <= avg*publicGrowthFactor {
		return model.AnomalyFinding{}, false
	}
	return model.AnomalyFinding{
		Kind:           model.AnomalyPrivacyDegradation,
		Severity:       model.LevelHigh,
		Description:    fmt.Sprintf("Unusual increase in public profiles: %d vs avg %s", current, formatAvg(avg)),
		Recommendation: "Review and update privacy settings on public accounts",
	}, true
}

// activityAnomalies is a reserved extension point for posting-pattern
// checks (cadence, engagement, content mix). Not implemented yet;
// always returns no findings.
func activityAnomalies(_ model.UserProfile, _ []model.HistoricalSnapshot) []model.AnomalyFinding {
	return nil
}

func countPublic(connections []model.ConnectionRecord) int {
	n := 0
	for _, c := range connections {
		if c.PrivacySetting == model.PrivacyPublic {
			n++
		}
	}
	return n
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
