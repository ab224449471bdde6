// Package stats reduces repeated timing samples and estimates empirical
// growth exponents from (size, time) series.
package stats

import (
	"math"

	mstats "github.com/aclements/go-moremath/stats"
)

// Median returns the median of xs, or NaN when xs is empty.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := mstats.Sample{Xs: append([]float64(nil), xs...)}
	return s.Sort().Quantile(0.5)
}

// PopulationStdDev is the standard deviation dividing by n, not n-1. A
// single sample has zero deviation.
func PopulationStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := mstats.Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// MedianInt64 is Median for integer counters, rounded to the nearest value.
func MedianInt64(xs []int64) int64 {
	if len(xs) == 0 {
		return 0
	}
	fs := make([]float64, len(xs))
	for i, x := range xs {
		fs[i] = float64(x)
	}
	return int64(math.Round(Median(fs)))
}

// Pearson returns the correlation coefficient of xs and ys. ok is false when
// the series differ in length, hold fewer than two points, or either has
// zero variance.
func Pearson(xs, ys []float64) (r float64, ok bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, false
	}
	mx, my := mstats.Mean(xs), mstats.Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}
