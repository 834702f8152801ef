// Package stat provides the small set of numeric primitives shared by
// the scoring, trend, and anomaly packages: mean/std aggregation, an
// ordinary least-squares line fit, quantiles, and the clamp-then-round
// policy applied to every score leaving the engine.
package stat

import (
	"math"
	"sort"
)

// Score domain bounds.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std returns the population standard deviation of xs, or 0 for fewer
// than two values.
func Std(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// Max returns the largest value in xs, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// ClampScore restricts x to the score domain [0,100], mapping NaN to 0.
func ClampScore(x float64) float64 {
	if math.IsNaN(x) {
		return MinScore
	}
	return Clamp(x, MinScore, MaxScore)
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// Quantile returns the q-th quantile (0 <= q <= 1) of xs using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	q = Clamp(q, 0, 1)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Line is a fitted least-squares regression line y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// FitLine fits an ordinary least-squares line to the points (xs[i], ys[i]).
// The fit is undefined for fewer than two points or when all xs coincide;
// both cases yield a flat line through the mean of ys.
func FitLine(xs, ys []float64) Line {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return Line{Intercept: Mean(ys)}
	}

	mx := Mean(xs)
	my := Mean(ys)
	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - mx
		sxx += dx * dx
		sxy += dx * (ys[i] - my)
	}
	if sxx == 0 {
		return Line{Intercept: my}
	}

	slope := sxy / sxx
	return Line{Slope: slope, Intercept: my - slope*mx}
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}
