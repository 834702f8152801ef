// Package evaluate provides regression quality metrics for the
// supervised risk model.
package evaluate

import (
	"fmt"
	"math"
)

// RegressionMetrics summarizes prediction quality over a labeled set.
type RegressionMetrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// Regression computes MSE, RMSE, MAE and R2 for paired true and
// predicted values. The slices must be the same non-zero length.
func Regression(yTrue, yPred []float64) (RegressionMetrics, error) {
	if err := checkPairs(yTrue, yPred); err != nil {
		return RegressionMetrics{}, err
	}

	n := float64(len(yTrue))
	var sqSum, absSum float64
	for i, truth := range yTrue {
		diff := truth - yPred[i]
		sqSum += diff * diff
		absSum += math.Abs(diff)
	}
	mse := sqSum / n

	return RegressionMetrics{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  absSum / n,
		R2:   rSquared(yTrue, sqSum),
	}, nil
}

// AccuracyWithinThreshold is the percentage of predictions whose
// absolute error does not exceed the threshold.
func AccuracyWithinThreshold(yTrue, yPred []float64, threshold float64) (float64, error) {
	if err := checkPairs(yTrue, yPred); err != nil {
		return 0, err
	}

	within := 0
	for i, truth := range yTrue {
		if math.Abs(truth-yPred[i]) <= threshold {
			within++
		}
	}
	return float64(within) / float64(len(yTrue)) * 100, nil
}

// rSquared computes 1 minus the residual over total sum of squares.
// A constant truth vector has zero total variance; a perfect fit then
// scores 1 and anything else 0.
func rSquared(yTrue []float64, residual float64) float64 {
	var mean float64
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	var total float64
	for _, v := range yTrue {
		d := v - mean
		total += d * d
	}
	if total == 0 {
		if residual == 0 {
			return 1
		}
		return 0
	}
	return 1 - residual/total
}

func checkPairs(yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return fmt.Errorf("%w: empty input", ErrBadEvalInput)
	}
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: length mismatch %d vs %d", ErrBadEvalInput, len(yTrue), len(yPred))
	}
	return nil
}
