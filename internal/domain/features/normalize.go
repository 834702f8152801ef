package features

import (
	"fmt"

	"github.com/veilmetrics/veil/internal/domain/stat"
)

// Normalization methods accepted by Normalize.
const (
	MethodStandard = "standard"
	MethodMinMax   = "minmax"
)

// Normalize rescales the values of a feature map in place of model
// input preparation. "standard" centers on the mean and divides by the
// standard deviation; "minmax" maps the values onto [0,1]. An unknown
// method name is a bad argument, not a degraded input, and returns
// ErrUnknownMethod.
func Normalize(featureSet map[string]float64, method string) (map[string]float64, error) {
	switch method {
	case MethodStandard, MethodMinMax:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	if len(featureSet) == 0 {
		return map[string]float64{}, nil
	}

	values := make([]float64, 0, len(featureSet))
	for _, v := range featureSet {
		values = append(values, v)
	}

	out := make(map[string]float64, len(featureSet))
	switch method {
	case MethodStandard:
		mean := stat.Mean(values)
		std := stat.Std(values)
		for name, v := range featureSet {
			if std == 0 {
				out[name] = 0
				continue
			}
			out[name] = (v - mean) / std
		}
	case MethodMinMax:
		lo, hi := values[0], values[0]
		for _, v := range values {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		for name, v := range featureSet {
			if hi == lo {
				out[name] = 0
				continue
			}
			out[name] = (v - lo) / (hi - lo)
		}
	}
	return out, nil
}
