// Package experiment drives the size x algorithm sweep for one distribution
// and assembles the flat results table.
package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/trial"
)

// DefaultQuadraticCutoff is the size above which quadratic algorithms are
// skipped.
const DefaultQuadraticCutoff = 20_000

type Config struct {
	Seed       int64
	Repeats    int
	WarmupRuns int
	MinN       int
	MaxN       int
	Points     int
	// QuadraticCutoff excludes quadratic algorithms once size exceeds it.
	// Zero or negative disables the filter.
	QuadraticCutoff int
	// Sizes overrides the log-spaced range when non-empty.
	Sizes          []int
	FullValidation bool
}

func DefaultConfig() Config {
	return Config{
		Seed:            42,
		Repeats:         5,
		WarmupRuns:      1,
		MinN:            100,
		MaxN:            1_000_000,
		Points:          24,
		QuadraticCutoff: DefaultQuadraticCutoff,
	}
}

func (c Config) Validate() error {
	if err := c.trialConfig().Validate(); err != nil {
		return err
	}
	if len(c.Sizes) > 0 {
		_, err := normalizeSizes(c.Sizes)
		return err
	}
	_, err := InputSizes(c.MinN, c.MaxN, c.Points)
	return err
}

// InputSizes resolves the sizes the experiment sweeps.
func (c Config) InputSizes() ([]int, error) {
	if len(c.Sizes) > 0 {
		return normalizeSizes(c.Sizes)
	}
	return InputSizes(c.MinN, c.MaxN, c.Points)
}

func (c Config) trialConfig() trial.Config {
	return trial.Config{Repeats: c.Repeats, WarmupRuns: c.WarmupRuns, FullValidation: c.FullValidation}
}

// Feasible reports whether subj should be measured at size n.
func (c Config) Feasible(subj trial.Subject, n int) bool {
	if c.QuadraticCutoff <= 0 {
		return true
	}
	return !(subj.Class() == sorting.Quadratic && n > c.QuadraticCutoff)
}

// Driver runs experiments sequentially. Trials never overlap.
type Driver struct {
	cfg      Config
	subjects []trial.Subject
	runner   *trial.Runner
	progress io.Writer
	logger   *slog.Logger
}

// Option customizes a Driver.
type Option func(*Driver)

// WithProgress sets where per-trial progress lines are written. nil
// discards them.
func WithProgress(w io.Writer) Option {
	return func(d *Driver) {
		if w == nil {
			w = io.Discard
		}
		d.progress = w
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver builds a driver over an ordered set of subjects.
func NewDriver(cfg Config, subjects []trial.Subject, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment config: %w", err)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("no algorithms to measure")
	}
	d := &Driver{
		cfg:      cfg,
		subjects: subjects,
		progress: io.Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.runner = trial.NewRunner(cfg.trialConfig(), d.logger)
	return d, nil
}

// Run sweeps every feasible (size, algorithm) pair for one distribution in
// increasing size order. The random source is seeded once here and advanced
// only by dataset generation, so equal configs give equal datasets.
func (d *Driver) Run(ctx context.Context, dist dataset.Distribution) (*results.Table, error) {
	if _, err := dataset.ParseDistribution(dist.String()); err != nil {
		return nil, err
	}
	sizes, err := d.cfg.InputSizes()
	if err != nil {
		return nil, err
	}

	gen := dataset.NewGenerator(dataset.NewRand(d.cfg.Seed), dataset.InProcess)
	points := make([]point, len(sizes))
	for i, n := range sizes {
		points[i] = point{
			spec: dataset.Spec{Size: n, Distribution: dist, Seed: d.cfg.Seed},
			load: func() ([]int, error) { return gen.Generate(n, dist) },
		}
	}
	return d.sweep(ctx, points)
}

// RunAll runs each distribution in turn and concatenates the tables.
func (d *Driver) RunAll(ctx context.Context, dists []dataset.Distribution) (*results.Table, error) {
	all := results.NewTable()
	for _, dist := range dists {
		t, err := d.Run(ctx, dist)
		if err != nil {
			return all, fmt.Errorf("%s: %w", dist, err)
		}
		all.Merge(t)
	}
	return all, nil
}

// RunFiles sweeps persisted test-data files, in the order given, instead of
// generating datasets. Each file is read once and shared by every subject.
func (d *Driver) RunFiles(ctx context.Context, files []dataset.File) (*results.Table, error) {
	points := make([]point, len(files))
	for i, f := range files {
		points[i] = point{
			spec: dataset.Spec{Size: f.Size, Distribution: f.Distribution, Seed: d.cfg.Seed},
			load: func() ([]int, error) { return dataset.ReadFile(f.Path, false) },
		}
	}
	return d.sweep(ctx, points)
}

type point struct {
	spec dataset.Spec
	load func() ([]int, error)
}

func (d *Driver) sweep(ctx context.Context, points []point) (*results.Table, error) {
	table := results.NewTable()
	for _, p := range points {
		// One dataset per point, copied by the runner for every subject.
		data, err := p.load()
		if err != nil {
			return table, err
		}
		for _, subj := range d.subjects {
			if !d.cfg.Feasible(subj, p.spec.Size) {
				d.logger.Debug("skipping infeasible trial", "algorithm", subj.Name(), "n", p.spec.Size)
				continue
			}
			row, err := d.runner.Run(ctx, subj, p.spec, data)
			if err != nil {
				return table, err
			}
			table.Append(row)
			fmt.Fprintf(d.progress, "%13s | %-14s | n=%-8d | %.6fs\n", p.spec.Distribution, subj.Name(), row.N, row.MedianSeconds)
		}
	}
	return table, nil
}
