// Package trial runs one algorithm against one dataset: warmup, timed
// repetitions on fresh copies, output validation and aggregation.
package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/pools"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

// ErrTrialFailed marks a measurement that could not complete, such as an
// external program exiting non-zero. It is recorded, not propagated.
var ErrTrialFailed = errors.New("trial failed")

// SortValidationError reports output that is not a sorted permutation of the
// input length. It aborts the whole experiment.
type SortValidationError struct {
	Algorithm string
	Size      int
	Reason    string
}

func (e *SortValidationError) Error() string {
	return fmt.Sprintf("sort validation failed for %s at n=%d: %s", e.Algorithm, e.Size, e.Reason)
}

// Subject is anything the runner can measure.
type Subject interface {
	Name() string
	Class() sorting.Class
}

// Measurement is one invocation's outcome. Measurers that time themselves
// report Seconds; Output is nil when the sorted sequence is not available.
type Measurement struct {
	Seconds        float64
	Comparisons    int64
	HasComparisons bool
	Output         []int
}

// Measurer is a Subject that measures itself, e.g. a compiled program timing
// its own sort and reporting on a side channel.
type Measurer interface {
	Subject
	Measure(ctx context.Context, data []int) (Measurement, error)
}

// Subjects lifts in-process algorithms to runner subjects.
func Subjects(algs ...sorting.Algorithm) []Subject {
	out := make([]Subject, len(algs))
	for i, a := range algs {
		out[i] = a
	}
	return out
}

// Config controls repetitions.
type Config struct {
	Repeats    int
	WarmupRuns int
	// FullValidation checks every adjacent pair instead of only the endpoints.
	FullValidation bool
}

// DefaultConfig mirrors the standard experiment settings.
func DefaultConfig() Config {
	return Config{Repeats: 5, WarmupRuns: 1}
}

func (c Config) Validate() error {
	if c.Repeats < 1 {
		return fmt.Errorf("repeats must be at least 1, got %d", c.Repeats)
	}
	if c.WarmupRuns < 0 {
		return fmt.Errorf("warmup runs must be non-negative, got %d", c.WarmupRuns)
	}
	return nil
}

// Runner executes trials sequentially.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run measures subj on data and returns the aggregated row. data is never
// modified; every invocation receives its own copy.
//
// A SortValidationError is returned as-is and must abort the run. A Measurer
// failing with ErrTrialFailed yields a sentinel failed row and a nil error.
func (r *Runner) Run(ctx context.Context, subj Subject, spec dataset.Spec, data []int) (results.Row, error) {
	spec.Size = len(data)
	for i := 0; i < r.cfg.WarmupRuns; i++ {
		if err := ctx.Err(); err != nil {
			return results.Row{}, err
		}
		if _, err := r.invoke(ctx, subj, data, false); err != nil {
			return r.handleFailure(subj, spec, err)
		}
	}

	repeats := max(1, r.cfg.Repeats)
	samples := make([]float64, 0, repeats)
	var comparisons []int64
	for i := 0; i < repeats; i++ {
		if err := ctx.Err(); err != nil {
			return results.Row{}, err
		}
		m, err := r.invoke(ctx, subj, data, true)
		if err != nil {
			return r.handleFailure(subj, spec, err)
		}
		if math.IsInf(m.Seconds, 1) {
			return r.handleFailure(subj, spec, fmt.Errorf("%w: no timing reported", ErrTrialFailed))
		}
		samples = append(samples, m.Seconds)
		if m.HasComparisons {
			comparisons = append(comparisons, m.Comparisons)
		}
	}

	row := results.Row{
		Distribution:  spec.Distribution,
		Algorithm:     subj.Name(),
		N:             spec.Size,
		MedianSeconds: stats.Median(samples),
		StdevSeconds:  stats.PopulationStdDev(samples),
		Samples:       samples,
	}
	if len(comparisons) > 0 {
		c := stats.MedianInt64(comparisons)
		row.Comparisons = &c
	}
	return row, nil
}

// invoke runs one repetition on a fresh pooled copy of data and, with check,
// validates the output. The copy goes back to the pool on return, so the
// returned Measurement never carries Output.
func (r *Runner) invoke(ctx context.Context, subj Subject, data []int, check bool) (Measurement, error) {
	input := pools.Pools.CopyInts(data)
	defer pools.Pools.ReturnIntSlice(input)

	var m Measurement
	switch s := subj.(type) {
	case Measurer:
		var err error
		if m, err = s.Measure(ctx, input); err != nil {
			return Measurement{}, err
		}
	case sorting.Algorithm:
		start := time.Now()
		out := s.Sort(input)
		elapsed := time.Since(start)
		if out == nil {
			// Still validated: a nil result fails the length check.
			out = []int{}
		}
		m = Measurement{Seconds: elapsed.Seconds(), Output: out}
	default:
		return Measurement{}, fmt.Errorf("subject %s can neither sort nor measure", subj.Name())
	}

	if check && m.Output != nil {
		if err := r.validate(subj.Name(), data, m.Output); err != nil {
			return Measurement{}, err
		}
	}
	m.Output = nil
	return m, nil
}

func (r *Runner) handleFailure(subj Subject, spec dataset.Spec, err error) (results.Row, error) {
	if !errors.Is(err, ErrTrialFailed) {
		return results.Row{}, err
	}
	r.logger.Warn("trial failed, recording sentinel",
		"algorithm", subj.Name(),
		"distribution", spec.Distribution,
		"n", spec.Size,
		"error", err)
	return results.FailedRow(spec.Distribution, subj.Name(), spec.Size), nil
}

// validate checks length and order. The default check compares only the
// endpoints; FullValidation walks the whole output.
func (r *Runner) validate(name string, input, output []int) error {
	if len(output) != len(input) {
		return &SortValidationError{
			Algorithm: name,
			Size:      len(input),
			Reason:    fmt.Sprintf("output length %d differs from input length %d", len(output), len(input)),
		}
	}
	if len(output) < 2 {
		return nil
	}
	if output[0] > output[len(output)-1] {
		return &SortValidationError{
			Algorithm: name,
			Size:      len(input),
			Reason:    fmt.Sprintf("first element %d exceeds last element %d", output[0], output[len(output)-1]),
		}
	}
	if r.cfg.FullValidation {
		for i := 1; i < len(output); i++ {
			if output[i] < output[i-1] {
				return &SortValidationError{
					Algorithm: name,
					Size:      len(input),
					Reason:    fmt.Sprintf("out of order at index %d", i),
				}
			}
		}
	}
	return nil
}
