package tui

import (
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

func powerRows(dist dataset.Distribution, algorithm string, exponent float64, sizes ...int) []results.Row {
	rows := make([]results.Row, len(sizes))
	for i, n := range sizes {
		rows[i] = results.Row{
			Distribution:  dist,
			Algorithm:     algorithm,
			N:             n,
			MedianSeconds: math.Pow(float64(n), exponent) * 1e-9,
		}
	}
	return rows
}

func sampleTable() *results.Table {
	sizes := []int{100, 1000, 10000, 100000}
	t := results.NewTable(powerRows(dataset.Random, "Insertion Sort", 2, sizes...)...)
	t.Append(powerRows(dataset.Random, "Merge Sort", 1.1, sizes...)...)
	t.Append(results.FailedRow(dataset.Random, "Insertion Sort", 1_000_000))
	t.Append(powerRows(dataset.Sorted, "Insertion Sort", 1, sizes...)...)
	return t
}

func TestViewCachePreCacheAll(t *testing.T) {
	c := NewViewCache()
	if c.IsCacheComplete() {
		t.Error("new cache should not be complete")
	}

	c.PreCacheAll(sampleTable(), stats.Estimator{}, 40, 10)
	if !c.IsCacheComplete() {
		t.Error("cache should be complete after PreCacheAll")
	}

	view, ok := c.get(dataset.Random)
	if !ok {
		t.Fatal("random distribution should be cached")
	}
	if len(view.Estimates) != 2 || view.Estimates[0].Algorithm != "Insertion Sort" {
		t.Errorf("unexpected estimates: %+v", view.Estimates)
	}
	if math.Abs(view.Estimates[0].Slope-2) > 1e-6 {
		t.Errorf("insertion slope = %v, want 2", view.Estimates[0].Slope)
	}
	if !strings.Contains(view.Summary, "1 failed") {
		t.Errorf("summary should count failures: %q", view.Summary)
	}
	if !strings.Contains(view.Diagnostics, "Insertion Sort failed at n=1000000") {
		t.Errorf("diagnostics should list the failure: %q", view.Diagnostics)
	}
	if !strings.Contains(view.Measurement, "n=1000000  [red]failed") {
		t.Errorf("measurements should mark the failure: %q", view.Measurement)
	}

	if _, ok := c.get(dataset.Reverse); ok {
		t.Error("reverse distribution has no rows and should not be cached")
	}

	cached, complete, hits, misses, ratio := c.GetCacheStats()
	if cached != 2 || !complete || hits != 1 || misses != 1 || ratio != 0.5 {
		t.Errorf("GetCacheStats() = %d, %v, %d, %d, %v", cached, complete, hits, misses, ratio)
	}
}

func TestViewCacheClear(t *testing.T) {
	c := NewViewCache()
	c.PreCacheAll(sampleTable(), stats.Estimator{}, 40, 10)
	c.Clear()

	if c.IsCacheComplete() {
		t.Error("cleared cache should not be complete")
	}
	if cached, _, hits, misses, _ := c.GetCacheStats(); cached != 0 || hits != 0 || misses != 0 {
		t.Errorf("cache not cleared: %d cached, %d hits, %d misses", cached, hits, misses)
	}
}

func TestViewCacheConcurrentAccess(t *testing.T) {
	c := NewViewCache()
	table := sampleTable()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.PreCacheAll(table, stats.Estimator{}, 40, 10)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.get(dataset.Random)
			c.get(dataset.Sorted)
		}
	}()
	wg.Wait()

	if _, ok := c.get(dataset.Sorted); !ok {
		t.Error("sorted distribution should be cached")
	}
}

func TestBuildEstimateText(t *testing.T) {
	text := buildEstimateText([]stats.Estimate{
		{Algorithm: "Bubble Sort", Slope: 2.01, Valid: true, Points: 10, Class: stats.ClassQuadratic},
		{Algorithm: "Radix Sort", Valid: false, Points: 2, Class: stats.ClassUnknown},
	})
	if !strings.Contains(text, "2.010") || !strings.Contains(text, "[red]~O(n^2)") {
		t.Errorf("missing quadratic estimate: %q", text)
	}
	if !strings.Contains(text, "insufficient data") {
		t.Errorf("missing insufficient data marker: %q", text)
	}
	if got := buildEstimateText(nil); !strings.Contains(got, "No results") {
		t.Errorf("empty estimates = %q", got)
	}
}

func TestBuildDiagnosticsText(t *testing.T) {
	table := results.NewTable(powerRows(dataset.Random, "Heap Sort", 1.1, 100, 1000)...)
	if got := buildDiagnosticsText(table); !strings.Contains(got, "All trials completed") {
		t.Errorf("diagnostics = %q", got)
	}

	c1, c2 := int64(700), int64(10000)
	table = results.NewTable(
		results.Row{Distribution: dataset.Random, Algorithm: "Heap Sort", N: 100, MedianSeconds: 1e-6, Comparisons: &c1},
		results.Row{Distribution: dataset.Random, Algorithm: "Heap Sort", N: 1000, MedianSeconds: 1e-5, Comparisons: &c2},
	)
	if got := buildDiagnosticsText(table); !strings.Contains(got, "Heap Sort time vs comparisons: 1.000") {
		t.Errorf("diagnostics should show the correlation: %q", got)
	}
}

func TestPlotGrid(t *testing.T) {
	table := results.NewTable(powerRows(dataset.Random, "Insertion Sort", 2, 100, 1000, 10000)...)
	table.Append(results.FailedRow(dataset.Random, "Insertion Sort", 100000))

	g, ok := plotGrid(table, 21, 11)
	if !ok {
		t.Fatal("expected a grid")
	}
	if len(g.cells) != 11 || len(g.cells[0]) != 21 {
		t.Fatalf("grid is %dx%d, want 11x21", len(g.cells), len(g.cells[0]))
	}

	// n=100 is bottom-left, n=1000 the center and n=10000 top-right.
	for _, p := range []struct{ row, col int }{{10, 0}, {5, 10}, {0, 20}} {
		if g.cells[p.row][p.col] != 0 {
			t.Errorf("expected a point at row %d col %d", p.row, p.col)
		}
	}
	marked := 0
	for _, row := range g.cells {
		for _, c := range row {
			if c >= 0 {
				marked++
			}
		}
	}
	if marked != 3 {
		t.Errorf("marked %d cells, want 3 (the failed row must be skipped)", marked)
	}
	if math.Abs(g.maxX-4) > 1e-9 {
		t.Errorf("maxX = %v, want 4", g.maxX)
	}
}

func TestPlotGridEmpty(t *testing.T) {
	table := results.NewTable(results.FailedRow(dataset.Random, "Bubble Sort", 100))
	if _, ok := plotGrid(table, 20, 10); ok {
		t.Error("a table with only failures has nothing to plot")
	}
	if got := RenderLogLog(table, 20, 10); !strings.Contains(got, "No completed measurements") {
		t.Errorf("RenderLogLog() = %q", got)
	}
}

func TestRenderLogLog(t *testing.T) {
	table := sampleTable().ForDistribution(dataset.Random)
	out := RenderLogLog(table, 40, 10)

	if !strings.Contains(out, "[red]●[white] Insertion Sort") {
		t.Errorf("legend missing first series: %q", out)
	}
	if !strings.Contains(out, "[green]■[white] Merge Sort") {
		t.Errorf("legend missing second series: %q", out)
	}
	if !strings.Contains(out, "n=100") || !strings.Contains(out, "n=100000") {
		t.Errorf("x axis labels missing: %q", out)
	}
	if !strings.Contains(out, "1e+01s") {
		t.Errorf("top y label should be the slowest median (10s): %q", out)
	}
}

// startSimulated runs the event loop of a on a simulation screen so queued
// draws are processed.
func startSimulated(t *testing.T, a *App) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	screen.SetSize(120, 40)
	a.app.SetScreen(screen)

	done := make(chan error, 1)
	go func() { done <- a.app.Run() }()
	t.Cleanup(func() {
		a.app.Stop()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("event loop did not stop")
		}
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSetResultsCachesBeforeDrawing(t *testing.T) {
	// No event loop: rendering must not depend on a queued draw being run.
	a := NewApp("outputs", stats.Estimator{})
	a.SetResults(sampleTable())

	waitFor(t, "cache", a.cache.IsCacheComplete)
	cached, _, _, _, _ := a.cache.GetCacheStats()
	if cached != 2 {
		t.Errorf("cached = %d, want 2", cached)
	}
}

func TestAppSwitchesDistributions(t *testing.T) {
	a := NewApp("outputs", stats.Estimator{})
	startSimulated(t, a)
	a.SetResults(sampleTable())

	waitFor(t, "results page", func() bool {
		if !a.loaded.Load() {
			return false
		}
		done := make(chan string, 1)
		a.app.QueueUpdate(func() {
			name, _ := a.pages.GetFrontPage()
			done <- name
		})
		return <-done == "results"
	})

	a.nextDistribution()
	waitFor(t, "distribution switch", func() bool { return !a.switching.Load() })

	a.mu.Lock()
	defer a.mu.Unlock()
	if got := a.currentDistribution(); got != dataset.Sorted {
		t.Errorf("current distribution = %q, want sorted", got)
	}
}
