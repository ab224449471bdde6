package tui

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

// distributionView is everything the results page shows for one
// distribution, rendered ahead of time.
type distributionView struct {
	Estimates   []stats.Estimate
	Summary     string
	Estimate    string
	Measurement string
	Diagnostics string
	Chart       string
}

// ViewCache holds the pre-rendered views of every distribution so switching
// between them never refits or re-renders. It is filled by a background
// goroutine while the UI goroutine reads from it.
type ViewCache struct {
	views *haxmap.Map[string, *distributionView]

	totalDistributions atomic.Int64
	complete           atomic.Bool
	lastUpdated        atomic.Int64

	hits   atomic.Int64
	misses atomic.Int64
}

func NewViewCache() *ViewCache {
	return &ViewCache{views: haxmap.New[string, *distributionView](8)}
}

// PreCacheAll renders every distribution of t.
func (c *ViewCache) PreCacheAll(t *results.Table, e stats.Estimator, chartWidth, chartHeight int) {
	dists := t.Distributions()
	c.totalDistributions.Store(int64(len(dists)))
	c.complete.Store(false)

	for _, dist := range dists {
		c.PreCache(t, dist, e, chartWidth, chartHeight)
	}

	c.complete.Store(true)
	c.lastUpdated.Store(time.Now().UnixNano())
}

// PreCache renders and stores one distribution.
func (c *ViewCache) PreCache(t *results.Table, dist dataset.Distribution, e stats.Estimator, chartWidth, chartHeight int) {
	sub := t.ForDistribution(dist)
	estimates := e.EstimateAll(sub.Series())
	c.views.Set(dist.String(), &distributionView{
		Estimates:   estimates,
		Summary:     buildSummaryText(sub, dist),
		Estimate:    buildEstimateText(estimates),
		Measurement: buildMeasurementText(sub),
		Diagnostics: buildDiagnosticsText(sub),
		Chart:       RenderLogLog(sub, chartWidth, chartHeight),
	})
}

func (c *ViewCache) get(dist dataset.Distribution) (*distributionView, bool) {
	v, ok := c.views.Get(dist.String())
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// IsCacheComplete reports whether PreCacheAll has finished.
func (c *ViewCache) IsCacheComplete() bool {
	return c.complete.Load()
}

// GetCacheStats returns cache statistics.
func (c *ViewCache) GetCacheStats() (cached int, cacheComplete bool, hits, misses int64, hitRatio float64) {
	hits, misses = c.hits.Load(), c.misses.Load()
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}
	return int(c.views.Len()), c.complete.Load(), hits, misses, hitRatio
}

// Clear drops every cached view.
func (c *ViewCache) Clear() {
	for _, dist := range dataset.All {
		c.views.Del(dist.String())
	}
	c.totalDistributions.Store(0)
	c.complete.Store(false)
	c.hits.Store(0)
	c.misses.Store(0)
}

func buildSummaryText(t *results.Table, dist dataset.Distribution) string {
	var sizes []int
	for _, r := range t.Rows() {
		sizes = append(sizes, r.N)
	}
	minN, maxN := 0, 0
	for i, n := range sizes {
		if i == 0 || n < minN {
			minN = n
		}
		if n > maxN {
			maxN = n
		}
	}
	failed := t.Filter(results.Row.Failed).Len()

	var b strings.Builder
	fmt.Fprintf(&b, "[white::b]Distribution:[white::-] [yellow]%s[white]\n", dist.Title())
	fmt.Fprintf(&b, "[dim]Measurements:[white] %d", t.Len())
	if failed > 0 {
		fmt.Fprintf(&b, " ([red]%d failed[white])", failed)
	}
	fmt.Fprintf(&b, "\n[dim]Algorithms:[white] %d\n", len(t.Algorithms()))
	fmt.Fprintf(&b, "[dim]Sizes:[white] %d to %d\n", minN, maxN)
	return b.String()
}

func buildEstimateText(estimates []stats.Estimate) string {
	if len(estimates) == 0 {
		return "[dim]No results[white]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]%-26s %8s %6s  %s[::-]\n", "Algorithm", "Slope", "Points", "Class")
	for _, e := range estimates {
		if !e.Valid {
			fmt.Fprintf(&b, "%-26s %8s %6d  [dim]insufficient data[white]\n", e.Algorithm, "-", e.Points)
			continue
		}
		fmt.Fprintf(&b, "%-26s %8.3f %6d  [%s]%s[white]\n", e.Algorithm, e.Slope, e.Points, classColor(e.Class), e.Class.Describe())
	}
	return b.String()
}

func classColor(c stats.ComplexityClass) string {
	switch c {
	case stats.ClassQuadratic:
		return "red"
	case stats.ClassLinearithmicLinear:
		return "yellow"
	case stats.ClassLinear:
		return "green"
	}
	return "gray"
}

func buildMeasurementText(t *results.Table) string {
	var b strings.Builder
	for _, alg := range t.Algorithms() {
		fmt.Fprintf(&b, "[::b]%s[::-]\n", alg)
		for _, r := range t.ForAlgorithm(alg).Rows() {
			if r.Failed() {
				fmt.Fprintf(&b, "  n=%-8d [red]failed[white]\n", r.N)
				continue
			}
			fmt.Fprintf(&b, "  n=%-8d %.6fs ± %.6fs", r.N, r.MedianSeconds, r.StdevSeconds)
			if r.Comparisons != nil {
				fmt.Fprintf(&b, "  %d cmp", *r.Comparisons)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func buildDiagnosticsText(t *results.Table) string {
	var b strings.Builder
	for _, r := range t.Filter(results.Row.Failed).Rows() {
		fmt.Fprintf(&b, "[red]✗[white] %s failed at n=%d\n", r.Algorithm, r.N)
	}
	for _, alg := range t.Algorithms() {
		if rho, ok := t.Correlation(alg); ok && !math.IsNaN(rho) {
			fmt.Fprintf(&b, "[cyan]r[white] %s time vs comparisons: %.3f\n", alg, rho)
		}
	}
	if b.Len() == 0 {
		return "[green]✓[white] All trials completed"
	}
	return b.String()
}
