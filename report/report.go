// Package report writes the plain-text conclusions and the Markdown lab
// report derived from a results table.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

// LabReportFileName is the Markdown report written into the output directory.
const LabReportFileName = "LAB_REPORT.md"

// ConclusionsFileName is the conclusions file of one distribution.
func ConclusionsFileName(dist dataset.Distribution) string {
	return fmt.Sprintf("conclusions_%s.txt", dist)
}

// Setup describes how the measurements were taken. Zero fields are left out
// of the reports.
type Setup struct {
	Repeats    int
	WarmupRuns int
	Sizes      []int
}

// Reporter writes reports into Dir.
type Reporter struct {
	Dir       string
	Setup     Setup
	Estimator stats.Estimator
}

var funcs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"slope": func(e stats.Estimate) string {
		if !e.Valid {
			return "N/A"
		}
		return fmt.Sprintf("%.2f", e.Slope)
	},
	"title": func(d dataset.Distribution) string { return d.Title() },
	"join":  strings.Join,
	"last":  func(s []int) int { return len(s) - 1 },
}

var conclusionsTmpl = template.Must(template.New("conclusions").Funcs(funcs).Parse(
	`Experimental Conclusions (from log-log curves)
================================================

Distribution: {{.Distribution}}
{{- if .Setup.Repeats}}
Repeats per n: {{.Setup.Repeats}} (median reported), warmup runs: {{.Setup.WarmupRuns}}
{{- end}}
{{- with .Sizes}}
Input sizes: {{comma (index . 0)}} to {{comma (index . (last .))}}, {{len .}} points
{{- end}}

Estimated log-log slopes (approximate exponent in T(n) ~ n^k):
{{- range .Estimates}}
{{- if .Valid}}
- {{.Algorithm}}: k ≈ {{slope .}} ({{.Class.Describe}})
{{- else}}
- {{.Algorithm}}: insufficient points
{{- end}}
{{- end}}
{{- with .Failures}}

Failed measurements (excluded from the fit):
{{- range .}}
- {{.Algorithm}} at n={{comma .N}}
{{- end}}
{{- end}}

Interpretation Guide:
- k ≈ 2 suggests quadratic behavior (O(n^2))
- k ≈ 1 suggests near-linear behavior (often O(n) or O(n log n) over limited ranges)
- k between 1 and 2 often indicates O(n log n) or mixed effects

Key observations (typical expected trends):
1) Quadratic sorts (bubble/selection/insertion) rise steeply and become infeasible early.
2) Comparison-based O(n log n) sorts (merge/quick/heap/shell) show shallower slopes.
3) Non-comparison integer sorts (counting/radix) can appear close to linear if range/digits remain bounded.
`))

var labReportTmpl = template.Must(template.New("lab").Funcs(funcs).Parse(
	`# Experimental Evaluation of Sorting Algorithms

## Lab Report Summary

### Experimental Setup

- **Total measurements**: {{comma .Total}}
{{- if .Failed}}
- **Failed measurements**: {{comma .Failed}}
{{- end}}
- **Algorithms compared**: {{len .Algorithms}}
- **Input size range**: {{comma .MinN}} to {{comma .MaxN}}
- **Measurement points**: {{len .Sizes}}
- **Distributions**: {{join .DistributionTitles ", "}}
{{- if .Setup.Repeats}}
- **Repeats per point**: {{.Setup.Repeats}} (median reported), {{.Setup.WarmupRuns}} warmup run(s)
{{- end}}

### Algorithms Evaluated
{{range .Algorithms}}
- {{.}}
{{- end}}

### Complexity Analysis (from Log-Log Slopes{{if ne .FitDistribution "random"}}, {{title .FitDistribution}} inputs{{end}})

| Algorithm | Slope (k) | Inferred Complexity |
|-----------|-----------|---------------------|
{{- range .Estimates}}
{{- if .Valid}}
| {{.Algorithm}} | {{slope .}} | {{.Class.Describe}} |
{{- else}}
| {{.Algorithm}} | N/A | Insufficient data |
{{- end}}
{{- end}}
{{- with .Correlations}}

### Time vs Comparisons

| Algorithm | Pearson r |
|-----------|-----------|
{{- range .}}
| {{.Algorithm}} | {{printf "%.3f" .R}} |
{{- end}}
{{- end}}

### Key Observations

1. **Quadratic algorithms** (Bubble, Selection, Insertion) show slopes ≈2 and become impractical beyond ~20k elements
2. **Linearithmic algorithms** (Merge, Quick, Heap, Shell) maintain slopes between 1.0-1.3, consistent with O(n log n) behavior
3. **Integer-based algorithms** (Counting, Radix) exhibit near-linear performance when the input range is bounded

### Distribution Effects

- **Random**: Represents average case for most algorithms
- **Sorted**: Best case for insertion-based algorithms, worst case for naive Quick Sort pivots
- **Reverse**: Typically worst case for insertion-based algorithms
- **Nearly Sorted**: Tests adaptivity of the algorithms

### Conclusion

- The slope of a log-log plot approximates the growth exponent of the running time
- Measured slopes match the theoretical complexity classes within the heuristic bands
- Practical performance shows why algorithm choice matters at scale

### References

- Cormen, T. H., et al. *Introduction to Algorithms* (3rd ed.)
- Knuth, D. E. *The Art of Computer Programming, Vol. 3: Sorting and Searching*

---
*Report generated automatically from experimental data*
`))

type correlation struct {
	Algorithm string
	R         float64
}

// WriteConclusions renders the conclusions of one distribution.
func (r Reporter) WriteConclusions(t *results.Table, dist dataset.Distribution) ([]byte, error) {
	sub := t.ForDistribution(dist)
	if sub.Len() == 0 {
		return nil, fmt.Errorf("no rows for distribution %s", dist)
	}

	sizes := r.Setup.Sizes
	if len(sizes) == 0 {
		sizes = distinctSizes(sub)
	}
	data := struct {
		Distribution dataset.Distribution
		Setup        Setup
		Sizes        []int
		Estimates    []stats.Estimate
		Failures     []results.Row
	}{
		Distribution: dist,
		Setup:        r.Setup,
		Sizes:        sizes,
		Estimates:    sortedEstimates(sub, r.Estimator),
		Failures:     sub.Filter(results.Row.Failed).Rows(),
	}

	var buf bytes.Buffer
	if err := conclusionsTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render conclusions for %s: %w", dist, err)
	}
	return buf.Bytes(), nil
}

// WriteLabReport renders the Markdown lab report. The complexity table is
// fitted on the random rows, or on the first distribution present when there
// are none.
func (r Reporter) WriteLabReport(t *results.Table) ([]byte, error) {
	if t.Len() == 0 {
		return nil, errors.New("no results to report")
	}

	dists := t.Distributions()
	fitDist := dists[0]
	if slices.Contains(dists, dataset.Random) {
		fitDist = dataset.Random
	}
	fitRows := t.ForDistribution(fitDist)

	titles := make([]string, len(dists))
	for i, d := range dists {
		titles[i] = d.Title()
	}
	algorithms := t.Algorithms()
	slices.Sort(algorithms)

	var correlations []correlation
	for _, alg := range algorithms {
		if rho, ok := fitRows.Correlation(alg); ok {
			correlations = append(correlations, correlation{Algorithm: alg, R: rho})
		}
	}

	sizes := distinctSizes(t)
	data := struct {
		Total              int
		Failed             int
		Algorithms         []string
		Sizes              []int
		MinN, MaxN         int
		DistributionTitles []string
		Setup              Setup
		FitDistribution    dataset.Distribution
		Estimates          []stats.Estimate
		Correlations       []correlation
	}{
		Total:              t.Len(),
		Failed:             t.Filter(results.Row.Failed).Len(),
		Algorithms:         algorithms,
		Sizes:              sizes,
		MinN:               sizes[0],
		MaxN:               sizes[len(sizes)-1],
		DistributionTitles: titles,
		Setup:              r.Setup,
		FitDistribution:    fitDist,
		Estimates:          sortedEstimates(fitRows, r.Estimator),
		Correlations:       correlations,
	}

	var buf bytes.Buffer
	if err := labReportTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render lab report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteAll writes one conclusions file per distribution and the lab report.
// Each file is independent: a failure is logged and the rest are still
// written. The joined failures are returned alongside the written paths.
func (r Reporter) WriteAll(t *results.Table) ([]string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", r.Dir, err)
	}

	var written []string
	var errs []error
	emit := func(name string, content []byte, err error) {
		if err == nil {
			err = os.WriteFile(filepath.Join(r.Dir, name), content, 0o644)
		}
		if err != nil {
			slog.Warn("skipping report", "file", name, "error", err)
			errs = append(errs, err)
			return
		}
		written = append(written, filepath.Join(r.Dir, name))
	}

	for _, dist := range t.Distributions() {
		content, err := r.WriteConclusions(t, dist)
		emit(ConclusionsFileName(dist), content, err)
	}
	content, err := r.WriteLabReport(t)
	emit(LabReportFileName, content, err)
	return written, errors.Join(errs...)
}

// LabReportFromDir rebuilds the lab report from the combined results file in
// dir.
func (r Reporter) LabReportFromDir(dir string) (string, error) {
	t, err := results.LoadAll(dir)
	if err != nil {
		return "", err
	}
	content, err := r.WriteLabReport(t)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", r.Dir, err)
	}
	path := filepath.Join(r.Dir, LabReportFileName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func sortedEstimates(t *results.Table, e stats.Estimator) []stats.Estimate {
	return e.EstimateAll(t.Series())
}

func distinctSizes(t *results.Table) []int {
	var sizes []int
	for _, r := range t.Rows() {
		sizes = append(sizes, r.N)
	}
	slices.Sort(sizes)
	return slices.Compact(sizes)
}
