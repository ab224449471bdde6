package output

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

// Plot file names.
const (
	AllDistributionsFileName  = "sorting_performance_all_distributions.html"
	TimeVsComparisonsFileName = "time_vs_comparisons.html"
	logLogFilePattern         = "sorting_performance_loglog_%s.html"
	comparisonsFilePattern    = "comparisons_%s.html"
	algorithmFilePattern      = "algorithm_%s.html"
)

const (
	chartWidth  = "1200px"
	chartHeight = "700px"
	stdevSuffix = " ±σ"
)

// LogLogFileName is the per-distribution log-log plot name.
func LogLogFileName(dist dataset.Distribution) string {
	return fmt.Sprintf(logLogFilePattern, dist)
}

// ComparisonsFileName is the per-distribution comparison count plot name.
func ComparisonsFileName(dist dataset.Distribution) string {
	return fmt.Sprintf(comparisonsFilePattern, dist)
}

// AlgorithmFileName is the plot name for one algorithm across distributions,
// e.g. "algorithm_merge_sort.html".
func AlgorithmFileName(algorithm string) string {
	return fmt.Sprintf(algorithmFilePattern, slug(algorithm))
}

func slug(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Plotter renders the HTML charts for a results table into Dir.
type Plotter struct {
	Dir       string
	Estimator stats.Estimator
}

// PlotAll renders every chart the table supports. Each chart is independent:
// a failure is logged and the remaining charts are still written. The joined
// failures are returned alongside the written paths.
func (p Plotter) PlotAll(t *results.Table) ([]string, error) {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory %s: %w", p.Dir, err)
	}

	var written []string
	var errs []error
	emit := func(name string, render func(io.Writer) error) {
		path := filepath.Join(p.Dir, name)
		if err := renderFile(path, render); err != nil {
			slog.Warn("skipping plot", "file", name, "error", err)
			errs = append(errs, err)
			return
		}
		written = append(written, path)
	}

	dists := t.Distributions()
	for _, dist := range dists {
		sub := t.ForDistribution(dist)
		emit(LogLogFileName(dist), func(w io.Writer) error {
			return p.logLogChart(sub, dist).Render(w)
		})
		if sub.HasComparisons() {
			emit(ComparisonsFileName(dist), func(w io.Writer) error {
				return comparisonsChart(sub, dist).Render(w)
			})
		}
	}
	if len(dists) > 0 {
		emit(AllDistributionsFileName, func(w io.Writer) error {
			return p.allDistributionsPage(t).Render(w)
		})
	}
	for _, alg := range t.Algorithms() {
		emit(AlgorithmFileName(alg), func(w io.Writer) error {
			return algorithmChart(t, alg).Render(w)
		})
	}
	if t.HasComparisons() {
		emit(TimeVsComparisonsFileName, func(w io.Writer) error {
			return timeVsComparisonsChart(t).Render(w)
		})
	}
	return written, errors.Join(errs...)
}

func renderFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create plot file %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle:       title,
		Width:           chartWidth,
		Height:          chartHeight,
		Theme:           types.ThemeVintage,
		BackgroundColor: "transparent",
	})
}

func logAxes(xName, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{Name: xName, Type: "log"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Type: "log"}),
	}
}

// completed returns the rows of one algorithm, by size, that finished.
func completed(t *results.Table, algorithm string) []results.Row {
	var out []results.Row
	for _, r := range t.ForAlgorithm(algorithm).Rows() {
		if !r.Failed() && r.MedianSeconds > 0 {
			out = append(out, r)
		}
	}
	return out
}

// logLogChart plots median time against n for every algorithm of one
// distribution, with dashed median±stdev bands. Failed measurements are left
// out; the fitted slope is shown in the series name.
func (p Plotter) logLogChart(t *results.Table, dist dataset.Distribution) *charts.Line {
	line := charts.NewLine()
	global := append([]charts.GlobalOpts{
		initOpts("Sorting performance: " + dist.Title()),
		charts.WithTitleOpts(opts.Title{
			Title:    "Sorting Algorithm Performance (log-log): " + dist.Title(),
			Subtitle: "slope of log(time) vs log(n) approximates the growth exponent",
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	}, logAxes("n", "median time (s)")...)
	line.SetGlobalOptions(global...)

	for _, est := range t.Estimates(p.Estimator) {
		rows := completed(t, est.Algorithm)
		if len(rows) == 0 {
			continue
		}
		mid := make([]opts.LineData, 0, len(rows))
		var upper, lower []opts.LineData
		for _, r := range rows {
			mid = append(mid, opts.LineData{Value: []any{r.N, r.MedianSeconds}})
			upper = append(upper, opts.LineData{Value: []any{r.N, r.MedianSeconds + r.StdevSeconds}})
			if lo := r.MedianSeconds - r.StdevSeconds; lo > 0 {
				lower = append(lower, opts.LineData{Value: []any{r.N, lo}})
			}
		}

		name := est.Algorithm
		if est.Valid {
			name = fmt.Sprintf("%s (slope=%.2f)", est.Algorithm, est.Slope)
		}
		line.AddSeries(name, mid,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
		)
		band := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Width: 1}),
		}
		line.AddSeries(est.Algorithm+stdevSuffix, upper, band...)
		if len(lower) > 0 {
			line.AddSeries(est.Algorithm+stdevSuffix, lower, band...)
		}
	}
	return line
}

func (p Plotter) allDistributionsPage(t *results.Table) *components.Page {
	page := components.NewPage()
	page.SetPageTitle("Sorting performance: all distributions")
	page.SetLayout(components.PageFlexLayout)
	for _, dist := range t.Distributions() {
		page.AddCharts(p.logLogChart(t.ForDistribution(dist), dist))
	}
	return page
}

// algorithmChart plots one algorithm across every distribution.
func algorithmChart(t *results.Table, algorithm string) *charts.Line {
	line := charts.NewLine()
	global := append([]charts.GlobalOpts{
		initOpts(algorithm),
		charts.WithTitleOpts(opts.Title{Title: algorithm + " across input distributions", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	}, logAxes("n", "median time (s)")...)
	line.SetGlobalOptions(global...)

	for _, dist := range t.Distributions() {
		rows := completed(t.ForDistribution(dist), algorithm)
		if len(rows) == 0 {
			continue
		}
		data := make([]opts.LineData, 0, len(rows))
		for _, r := range rows {
			data = append(data, opts.LineData{Value: []any{r.N, r.MedianSeconds}})
		}
		line.AddSeries(dist.Title(), data)
	}
	return line
}

// comparisonsChart plots comparison counts against n for one distribution.
func comparisonsChart(t *results.Table, dist dataset.Distribution) *charts.Line {
	line := charts.NewLine()
	global := append([]charts.GlobalOpts{
		initOpts("Comparisons: " + dist.Title()),
		charts.WithTitleOpts(opts.Title{Title: "Comparison Counts (log-log): " + dist.Title(), Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	}, logAxes("n", "comparisons")...)
	line.SetGlobalOptions(global...)

	for _, alg := range t.Algorithms() {
		var data []opts.LineData
		for _, r := range completed(t, alg) {
			if r.Comparisons != nil && *r.Comparisons > 0 {
				data = append(data, opts.LineData{Value: []any{r.N, *r.Comparisons}})
			}
		}
		if len(data) > 0 {
			line.AddSeries(alg, data)
		}
	}
	return line
}

// timeVsComparisonsChart scatters median time against comparison count, one
// series per algorithm, with the Pearson coefficient in the series name.
func timeVsComparisonsChart(t *results.Table) *charts.Scatter {
	scatter := charts.NewScatter()
	global := append([]charts.GlobalOpts{
		initOpts("Time vs comparisons"),
		charts.WithTitleOpts(opts.Title{Title: "Median Time vs Comparison Count", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	}, logAxes("comparisons", "median time (s)")...)
	scatter.SetGlobalOptions(global...)

	for _, alg := range t.Algorithms() {
		var data []opts.ScatterData
		for _, r := range completed(t, alg) {
			if r.Comparisons != nil && *r.Comparisons > 0 {
				data = append(data, opts.ScatterData{
					Name:  fmt.Sprintf("%s n=%d", r.Distribution, r.N),
					Value: []any{*r.Comparisons, r.MedianSeconds},
				})
			}
		}
		if len(data) == 0 {
			continue
		}
		name := alg
		if r, ok := t.Correlation(alg); ok {
			name = fmt.Sprintf("%s (r=%.3f)", alg, r)
		}
		scatter.AddSeries(name, data)
	}
	return scatter
}
