package risk

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/veilmetrics/veil/internal/domain/evaluate"
	"github.com/veilmetrics/veil/internal/domain/stat"
)

// knnModel is a nearest-neighbor regressor over labeled feature
// vectors. Training replaces the sample set wholesale; prediction
// averages the labels of the k closest training points, weighted by
// inverse distance. Deterministic for identical inputs.
type knnModel struct {
	mu        sync.RWMutex
	neighbors int
	samples   [][]float64
	labels    []float64
	trained   bool
}

func newKNNModel(neighbors int) *knnModel {
	return &knnModel{neighbors: neighbors}
}

// Train fits the supervised model on a labeled feature matrix.
// Returns ErrRuleBasedModel when the scorer was built without the
// supervised path, and ErrBadTrainingData for empty or ragged input.
func (s *Scorer) Train(x [][]float64, y []float64) error {
	if s.supervised == nil {
		return ErrRuleBasedModel
	}
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("%w: %d samples, %d labels", ErrBadTrainingData, len(x), len(y))
	}
	width := len(x[0])
	for _, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: ragged feature matrix", ErrBadTrainingData)
		}
	}

	samples := make([][]float64, len(x))
	for i, row := range x {
		samples[i] = append([]float64(nil), row...)
	}
	labels := append([]float64(nil), y...)

	m := s.supervised
	m.mu.Lock()
	m.samples = samples
	m.labels = labels
	m.trained = true
	m.mu.Unlock()
	return nil
}

// PredictML predicts a risk score from a feature vector using the
// trained supervised model, clamped to [0,100]. Calling it before
// Train is a precondition violation and returns ErrModelNotTrained;
// a vector of the wrong width is a bad argument, reported separately.
func (s *Scorer) PredictML(featureVec []float64) (float64, error) {
	if s.supervised == nil {
		return 0, ErrRuleBasedModel
	}

	m := s.supervised
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.trained {
		return 0, ErrModelNotTrained
	}
	if len(featureVec) != len(m.samples[0]) {
		return 0, fmt.Errorf("%w: got %d features, want %d",
			ErrBadFeatureVector, len(featureVec), len(m.samples[0]))
	}

	type neighbor struct {
		dist  float64
		label float64
	}
	neighbors := make([]neighbor, len(m.samples))
	for i, sample := range m.samples {
		neighbors[i] = neighbor{dist: euclidean(featureVec, sample), label: m.labels[i]}
	}
	sort.SliceStable(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	k := m.neighbors
	if k > len(neighbors) {
		k = len(neighbors)
	}

	// Inverse-distance weighting; an exact match dominates.
	var weighted, weightSum float64
	for _, n := range neighbors[:k] {
		if n.dist == 0 {
			return stat.ClampScore(n.label), nil
		}
		w := 1 / n.dist
		weighted += w * n.label
		weightSum += w
	}
	return stat.ClampScore(weighted / weightSum), nil
}

// EvaluateModel runs the trained supervised model over a labeled
// hold-out set and reports standard regression metrics. The same
// input checks as Train apply.
func (s *Scorer) EvaluateModel(x [][]float64, y []float64) (evaluate.RegressionMetrics, error) {
	if len(x) == 0 || len(x) != len(y) {
		return evaluate.RegressionMetrics{}, fmt.Errorf("%w: %d samples, %d labels",
			ErrBadTrainingData, len(x), len(y))
	}

	preds := make([]float64, len(x))
	for i, row := range x {
		p, err := s.PredictML(row)
		if err != nil {
			return evaluate.RegressionMetrics{}, err
		}
		preds[i] = p
	}
	return evaluate.Regression(y, preds)
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
