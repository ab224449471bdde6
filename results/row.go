// Package results holds the flat results table produced by an experiment and
// its persisted forms.
package results

import (
	"math"
	"slices"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

// Row is the aggregated outcome of one algorithm on one input. A failed trial
// keeps its row with MedianSeconds set to +Inf.
type Row struct {
	Distribution  dataset.Distribution
	Algorithm     string
	N             int
	MedianSeconds float64
	StdevSeconds  float64
	// Comparisons is the median comparison count, nil when not measured.
	Comparisons *int64

	// Samples are the raw timed repetitions. They are not persisted.
	Samples []float64
}

// FailedRow returns the sentinel row for a trial that could not complete.
func FailedRow(dist dataset.Distribution, algorithm string, n int) Row {
	zero := int64(0)
	return Row{
		Distribution:  dist,
		Algorithm:     algorithm,
		N:             n,
		MedianSeconds: math.Inf(1),
		Comparisons:   &zero,
	}
}

// Failed reports whether the row records a sentinel failed measurement.
func (r Row) Failed() bool { return math.IsInf(r.MedianSeconds, 1) }

// Table is an append-only, ordered collection of rows.
type Table struct {
	rows []Row
}

func NewTable(rows ...Row) *Table {
	return &Table{rows: slices.Clone(rows)}
}

func (t *Table) Append(rows ...Row) { t.rows = append(t.rows, rows...) }

// Merge appends every row of other.
func (t *Table) Merge(other *Table) {
	if other != nil {
		t.rows = append(t.rows, other.rows...)
	}
}

// Rows returns the rows in insertion order. The slice must not be modified.
func (t *Table) Rows() []Row { return t.rows }

func (t *Table) Len() int { return len(t.rows) }

// Distributions lists distributions in order of first appearance.
func (t *Table) Distributions() []dataset.Distribution {
	var out []dataset.Distribution
	seen := make(map[dataset.Distribution]bool)
	for _, r := range t.rows {
		if !seen[r.Distribution] {
			seen[r.Distribution] = true
			out = append(out, r.Distribution)
		}
	}
	return out
}

// Algorithms lists algorithm names in order of first appearance.
func (t *Table) Algorithms() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.rows {
		if !seen[r.Algorithm] {
			seen[r.Algorithm] = true
			out = append(out, r.Algorithm)
		}
	}
	return out
}

// Filter returns a new table with the rows matching keep.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{}
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// ForDistribution is the subset of rows for one distribution.
func (t *Table) ForDistribution(dist dataset.Distribution) *Table {
	return t.Filter(func(r Row) bool { return r.Distribution == dist })
}

// ForAlgorithm is the subset of rows for one algorithm, ordered by size.
func (t *Table) ForAlgorithm(name string) *Table {
	out := t.Filter(func(r Row) bool { return r.Algorithm == name })
	slices.SortStableFunc(out.rows, func(a, b Row) int { return a.N - b.N })
	return out
}

// Points converts the rows of one algorithm to estimator input. Failed rows
// are included; the estimator drops them.
func (t *Table) Points(algorithm string) []stats.Point {
	var pts []stats.Point
	for _, r := range t.ForAlgorithm(algorithm).rows {
		pts = append(pts, stats.Point{N: r.N, Seconds: r.MedianSeconds})
	}
	return pts
}

// Series groups points by algorithm.
func (t *Table) Series() map[string][]stats.Point {
	series := make(map[string][]stats.Point)
	for _, name := range t.Algorithms() {
		series[name] = t.Points(name)
	}
	return series
}

// Estimates fits every algorithm in the table, in order of first appearance.
func (t *Table) Estimates(e stats.Estimator) []stats.Estimate {
	names := t.Algorithms()
	out := make([]stats.Estimate, 0, len(names))
	for _, name := range names {
		out = append(out, e.Estimate(name, t.Points(name)))
	}
	return out
}

// Correlation is the Pearson coefficient between median time and comparison
// count for one algorithm, over rows that completed and carry a count.
func (t *Table) Correlation(algorithm string) (float64, bool) {
	var xs, ys []float64
	for _, r := range t.ForAlgorithm(algorithm).rows {
		if r.Failed() || r.Comparisons == nil {
			continue
		}
		xs = append(xs, r.MedianSeconds)
		ys = append(ys, float64(*r.Comparisons))
	}
	return stats.Pearson(xs, ys)
}

// HasComparisons reports whether any completed row carries a comparison count.
func (t *Table) HasComparisons() bool {
	for _, r := range t.rows {
		if r.Comparisons != nil && !r.Failed() {
			return true
		}
	}
	return false
}
