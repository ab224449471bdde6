package experiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/trial"
)

func TestInputSizes(t *testing.T) {
	sizes, err := InputSizes(100, 1_000_000, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sizes) != 24 {
		t.Errorf("expected 24 distinct sizes, got %d", len(sizes))
	}
	if sizes[0] != 100 || sizes[len(sizes)-1] != 1_000_000 {
		t.Errorf("range = %d..%d, want 100..1000000", sizes[0], sizes[len(sizes)-1])
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] <= sizes[i-1] {
			t.Fatalf("sizes not strictly increasing at %d: %v", i, sizes)
		}
	}
	// Log spacing: consecutive ratios are roughly constant.
	r0 := float64(sizes[1]) / float64(sizes[0])
	rn := float64(sizes[23]) / float64(sizes[22])
	if r0 < 1.4 || r0 > 1.6 || rn < 1.4 || rn > 1.6 {
		t.Errorf("unexpected spacing ratios %.3f, %.3f", r0, rn)
	}
}

func TestInputSizesDedupAndFilter(t *testing.T) {
	sizes, err := InputSizes(1, 10, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sizes[0] < 2 {
		t.Errorf("sizes below 2 must be filtered: %v", sizes)
	}
	if len(slices.Compact(slices.Clone(sizes))) != len(sizes) {
		t.Errorf("duplicates remain: %v", sizes)
	}

	single, _ := InputSizes(500, 500, 1)
	if !slices.Equal(single, []int{500}) {
		t.Errorf("InputSizes(500, 500, 1) = %v", single)
	}

	for _, tc := range [][3]int{{0, 10, 5}, {10, 5, 5}, {10, 100, 0}} {
		if _, err := InputSizes(tc[0], tc[1], tc[2]); err == nil {
			t.Errorf("InputSizes%v expected error", tc)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Sizes = []int{1, 10}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for size below 2")
	}
	cfg = DefaultConfig()
	cfg.Repeats = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero repeats")
	}
}

func TestFeasible(t *testing.T) {
	cfg := DefaultConfig()
	bubble := sorting.New("Bubble Sort", sorting.Quadratic, nil)
	merge := sorting.New("Merge Sort", sorting.Linearithmic, nil)

	tests := []struct {
		subj trial.Subject
		n    int
		want bool
	}{
		{bubble, 20_000, true},
		{bubble, 20_001, false},
		{merge, 1_000_000, true},
	}
	for _, tt := range tests {
		if got := cfg.Feasible(tt.subj, tt.n); got != tt.want {
			t.Errorf("Feasible(%s, %d) = %v, want %v", tt.subj.Name(), tt.n, got, tt.want)
		}
	}

	cfg.QuadraticCutoff = 0
	if !cfg.Feasible(bubble, 1_000_000) {
		t.Error("cutoff 0 should disable the filter")
	}
}

func smallConfig(sizes ...int) Config {
	cfg := DefaultConfig()
	cfg.Sizes = sizes
	cfg.Repeats = 3
	cfg.WarmupRuns = 1
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	algs, err := sorting.Select(sorting.Default(), []string{"Insertion Sort", "Merge Sort"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var progress bytes.Buffer
	d, err := NewDriver(smallConfig(100, 1000, 10000), trial.Subjects(algs...), WithProgress(&progress))
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	table, err := d.Run(context.Background(), dataset.Random)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if table.Len() != 6 {
		t.Fatalf("expected 6 rows, got %d", table.Len())
	}

	for _, name := range []string{"Insertion Sort", "Merge Sort"} {
		rows := table.ForAlgorithm(name).Rows()
		for i := 1; i < len(rows); i++ {
			if rows[i].MedianSeconds < rows[i-1].MedianSeconds {
				t.Errorf("%s median decreased from n=%d to n=%d", name, rows[i-1].N, rows[i].N)
			}
		}
	}

	// Three sizes only, so relax the minimum point count.
	est := stats.Estimator{MinPoints: 3}
	quad := est.Estimate("Insertion Sort", table.Points("Insertion Sort"))
	lin := est.Estimate("Merge Sort", table.Points("Merge Sort"))
	if !quad.Valid || !lin.Valid {
		t.Fatalf("expected valid estimates, got %v and %v", quad, lin)
	}
	if quad.Slope <= lin.Slope {
		t.Errorf("quadratic slope %.3f should exceed linearithmic slope %.3f", quad.Slope, lin.Slope)
	}

	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 progress lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "       random | Insertion Sort | n=100      | ") {
		t.Errorf("unexpected progress line %q", lines[0])
	}
}

// recorder captures the dataset each invocation receives.
type recorder struct {
	name  string
	class sorting.Class
	seen  map[int][][]int
}

func (r *recorder) Name() string         { return r.name }
func (r *recorder) Class() sorting.Class { return r.class }
func (r *recorder) Sort(data []int) []int {
	r.seen[len(data)] = append(r.seen[len(data)], slices.Clone(data))
	slices.Sort(data)
	return data
}

func TestRunSharesDatasetAcrossAlgorithms(t *testing.T) {
	a := &recorder{name: "A", class: sorting.Linearithmic, seen: map[int][][]int{}}
	b := &recorder{name: "B", class: sorting.Linearithmic, seen: map[int][][]int{}}
	d, err := NewDriver(smallConfig(50, 200), []trial.Subject{a, b})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if _, err := d.Run(context.Background(), dataset.NearlySorted); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, n := range []int{50, 200} {
		ref := a.seen[n][0]
		for _, s := range append(a.seen[n], b.seen[n]...) {
			if !slices.Equal(s, ref) {
				t.Fatalf("n=%d: algorithms received different datasets", n)
			}
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	first := &recorder{name: "A", class: sorting.Linearithmic, seen: map[int][][]int{}}
	second := &recorder{name: "A", class: sorting.Linearithmic, seen: map[int][][]int{}}
	for _, r := range []*recorder{first, second} {
		d, err := NewDriver(smallConfig(64, 128), []trial.Subject{r})
		if err != nil {
			t.Fatalf("NewDriver: %v", err)
		}
		if _, err := d.Run(context.Background(), dataset.Random); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	for _, n := range []int{64, 128} {
		if !slices.Equal(first.seen[n][0], second.seen[n][0]) {
			t.Errorf("n=%d: datasets differ across runs with the same seed", n)
		}
	}
}

func TestRunAppliesQuadraticCutoff(t *testing.T) {
	cfg := smallConfig(10, 100, 1000)
	cfg.QuadraticCutoff = 100
	cfg.Repeats = 1
	algs, _ := sorting.Select(sorting.Default(), []string{"bubble", "merge"})
	d, err := NewDriver(cfg, trial.Subjects(algs...))
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	table, err := d.Run(context.Background(), dataset.Reverse)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := table.ForAlgorithm("Bubble Sort").Len(); got != 2 {
		t.Errorf("bubble sort rows = %d, want 2 (n=10, n=100)", got)
	}
	if got := table.ForAlgorithm("Merge Sort").Len(); got != 3 {
		t.Errorf("merge sort rows = %d, want 3", got)
	}
}

// flaky fails at one size with ErrTrialFailed.
type flaky struct{ failAt int }

func (f flaky) Name() string         { return "flaky" }
func (f flaky) Class() sorting.Class { return sorting.Linearithmic }
func (f flaky) Measure(_ context.Context, data []int) (trial.Measurement, error) {
	if len(data) == f.failAt {
		return trial.Measurement{}, fmt.Errorf("%w: exit status 1", trial.ErrTrialFailed)
	}
	slices.Sort(data)
	return trial.Measurement{Seconds: float64(len(data)) * 1e-6, Output: data}, nil
}

func TestRunContinuesAfterFailedTrial(t *testing.T) {
	merge, _ := sorting.Select(sorting.Default(), []string{"merge"})
	subjects := []trial.Subject{flaky{failAt: 100}, merge[0]}
	d, err := NewDriver(smallConfig(10, 100, 1000), subjects)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	table, err := d.Run(context.Background(), dataset.Random)
	if err != nil {
		t.Fatalf("a failed trial must not halt the sweep: %v", err)
	}
	if table.Len() != 6 {
		t.Fatalf("expected full factorial coverage (6 rows), got %d", table.Len())
	}
	rows := table.ForAlgorithm("flaky").Rows()
	if rows[0].Failed() || !rows[1].Failed() || rows[2].Failed() {
		t.Errorf("expected only n=100 to fail: %+v", rows)
	}
}

func TestRunAbortsOnValidationError(t *testing.T) {
	broken := sorting.New("Broken", sorting.Linearithmic, func(d []int) []int {
		slices.Sort(d)
		slices.Reverse(d)
		return d
	})
	d, err := NewDriver(smallConfig(10, 100), trial.Subjects(broken))
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	_, err = d.Run(context.Background(), dataset.Random)
	var verr *trial.SortValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected SortValidationError, got %v", err)
	}
}

func TestRunInvalidDistribution(t *testing.T) {
	d, _ := NewDriver(smallConfig(10), trial.Subjects(sorting.Default()[3]))
	if _, err := d.Run(context.Background(), dataset.Distribution("zigzag")); !errors.Is(err, dataset.ErrInvalidDistribution) {
		t.Errorf("expected ErrInvalidDistribution, got %v", err)
	}
}

func TestRunFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "test_data")
	gen := dataset.NewGenerator(dataset.NewRand(42), dataset.Compiled)
	if _, err := gen.GenerateFiles(dir, []int{100, 1000}, []dataset.Distribution{dataset.Random, dataset.Sorted}); err != nil {
		t.Fatalf("GenerateFiles: %v", err)
	}
	files, err := dataset.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}

	algs, _ := sorting.Select(sorting.Default(), []string{"quick", "heap"})
	d, err := NewDriver(smallConfig(2), trial.Subjects(algs...))
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	table, err := d.RunFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if table.Len() != 8 {
		t.Errorf("expected 8 rows, got %d", table.Len())
	}
	if got := table.Distributions(); len(got) != 2 {
		t.Errorf("distributions = %v", got)
	}
}

func TestRunAllConcatenates(t *testing.T) {
	algs, _ := sorting.Select(sorting.Default(), []string{"radix"})
	d, err := NewDriver(smallConfig(16, 32), trial.Subjects(algs...))
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	table, err := d.RunAll(context.Background(), dataset.All)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if table.Len() != 2*len(dataset.All) {
		t.Errorf("expected %d rows, got %d", 2*len(dataset.All), table.Len())
	}
	if !slices.Equal(table.Distributions(), dataset.All) {
		t.Errorf("distribution order = %v", table.Distributions())
	}
}
