package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/config"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/experiment"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/external"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/output"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/report"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/trial"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/tui"
)

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact bool
	Plain   bool
	// Progress receives one line per completed trial.
	Progress io.Writer
	// Stdout receives the run summary and tables.
	Stdout io.Writer
}

func (o OutputConfig) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

// ============================================================================
// MAIN ENTRY POINTS
// ============================================================================

// Run measures the in-process algorithms over every configured distribution,
// then persists the table and derives plots, reports and the JSON summary.
func Run(ctx context.Context, cfg *config.Config, out OutputConfig) error {
	start := time.Now()

	algs, err := cfg.Algorithms()
	if err != nil {
		return err
	}
	dists, err := cfg.Distributions()
	if err != nil {
		return err
	}
	settings := cfg.ExperimentSettings()
	driver, err := experiment.NewDriver(settings, trial.Subjects(algs...),
		experiment.WithProgress(out.Progress),
		experiment.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	slog.Info("starting experiment", "distributions", len(dists), "algorithms", len(algs), "seed", settings.Seed)
	t, err := driver.RunAll(ctx, dists)
	if err != nil {
		return fmt.Errorf("experiment aborted: %w", err)
	}

	sizes, _ := settings.InputSizes()
	summary := output.NewRunSummary("run", start)
	summary.Configuration = output.Configuration{
		Seed:          settings.Seed,
		Repeats:       settings.Repeats,
		WarmupRuns:    settings.WarmupRuns,
		Sizes:         sizes,
		Distributions: cfg.Experiment.Distributions,
		Algorithms:    sorting.Names(algs),
	}
	setup := report.Setup{Repeats: settings.Repeats, WarmupRuns: settings.WarmupRuns, Sizes: sizes}
	return persistAndDerive(t, cfg, setup, summary, start, out)
}

// Bench compiles the external sources, makes sure the persisted test data
// exists and sweeps it. A compile failure aborts before anything is measured.
func Bench(ctx context.Context, cfg *config.Config, out OutputConfig) error {
	start := time.Now()
	ext := cfg.External

	programs, err := externalPrograms(ctx, ext)
	if err != nil {
		return err
	}
	dists, err := cfg.ExternalDistributions()
	if err != nil {
		return err
	}

	files, err := testDataFiles(cfg, dists)
	if err != nil {
		return err
	}

	subjects := make([]trial.Subject, len(programs))
	names := make([]string, len(programs))
	for i, p := range programs {
		p.ValidateOutput = ext.ValidateOutput
		subjects[i] = p
		names[i] = p.Name()
	}

	settings := cfg.ExternalSettings()
	driver, err := experiment.NewDriver(settings, subjects,
		experiment.WithProgress(out.Progress),
		experiment.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	slog.Info("starting external benchmark", "programs", len(programs), "files", len(files))
	t, err := driver.RunFiles(ctx, files)
	if err != nil {
		return fmt.Errorf("benchmark aborted: %w", err)
	}

	summary := output.NewRunSummary("bench", start)
	summary.Configuration = output.Configuration{
		Seed:          settings.Seed,
		Repeats:       settings.Repeats,
		WarmupRuns:    settings.WarmupRuns,
		Sizes:         fileSizes(files),
		Distributions: ext.Distributions,
		Algorithms:    names,
	}
	setup := report.Setup{Repeats: settings.Repeats, WarmupRuns: settings.WarmupRuns, Sizes: fileSizes(files)}
	return persistAndDerive(t, cfg, setup, summary, start, out)
}

// Generate writes the persisted test-data grid of the [external] section.
func Generate(cfg *config.Config) ([]string, error) {
	dists, err := cfg.ExternalDistributions()
	if err != nil {
		return nil, err
	}
	gen := dataset.NewGenerator(dataset.NewRand(cfg.Experiment.Seed), dataset.Compiled)
	paths, err := gen.GenerateFiles(cfg.External.TestDataDir, cfg.External.Sizes, dists)
	if err != nil {
		return paths, fmt.Errorf("failed to generate test data: %w", err)
	}
	slog.Info("generated test data", "dir", cfg.External.TestDataDir, "files", len(paths))
	return paths, nil
}

// Report rebuilds every derived artifact from the CSV files in dir.
func Report(dir string, cfg *config.Config, out OutputConfig) error {
	start := time.Now()
	t, err := results.LoadDir(dir)
	if err != nil {
		if t == nil || t.Len() == 0 {
			return fmt.Errorf("failed to load results: %w", err)
		}
		slog.Warn("some results files were skipped", "error", err)
	}

	derived := *cfg
	derivedOutput := *cfg.Output
	derivedOutput.Dir = dir
	derived.Output = &derivedOutput

	summary := output.NewRunSummary("report", start)
	summary.Configuration.Algorithms = t.Algorithms()
	for _, d := range t.Distributions() {
		summary.Configuration.Distributions = append(summary.Configuration.Distributions, d.String())
	}
	if err != nil {
		summary.AddWarning("load", err.Error(), 0)
	}
	return derive(t, &derived, report.Setup{}, summary, start, out)
}

// Slopes prints the fitted slope of every algorithm per distribution. A
// terminal gets a styled table, anything else plain aligned text.
func Slopes(w io.Writer, dir string, e stats.Estimator, dist string, styled bool) error {
	t, err := results.LoadDir(dir)
	if err != nil {
		if t == nil || t.Len() == 0 {
			return fmt.Errorf("failed to load results: %w", err)
		}
		slog.Warn("some results files were skipped", "error", err)
	}

	dists := t.Distributions()
	if dist != "" {
		d, err := dataset.ParseDistribution(dist)
		if err != nil {
			return err
		}
		if t.ForDistribution(d).Len() == 0 {
			return fmt.Errorf("no results for distribution %s in %s", d, dir)
		}
		dists = []dataset.Distribution{d}
	}

	for i, d := range dists {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sub := t.ForDistribution(d)
		if styled {
			fmt.Fprintln(w, renderSlopeTable(d, sub, e))
		} else {
			writeSlopesPlain(w, d, sub, e)
		}
	}
	return nil
}

// View opens the interactive browser over the results in dir.
func View(dir string, e stats.Estimator) error {
	app := tui.NewApp(dir, e)

	go func() {
		t, err := results.LoadDir(dir)
		if err != nil && (t == nil || t.Len() == 0) {
			app.ShowError(fmt.Sprintf("Loading results failed: %v", err))
			return
		}
		if err != nil {
			slog.Warn("some results files were skipped", "error", err)
		}
		app.SetResults(t)
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Collect receives rows shipped by remote runs and saves the growing table
// to dir after every batch, until ctx is cancelled. Rows already in dir are
// kept.
func Collect(ctx context.Context, addr, dir string, readTimeout time.Duration, ready func(addr string)) error {
	collected := results.NewTable()
	if existing, err := results.LoadAll(dir); err == nil {
		collected.Merge(existing)
		slog.Info("appending to existing results", "dir", dir, "rows", existing.Len())
	}

	collector, err := results.NewCollector(addr, readTimeout)
	if err != nil {
		return err
	}
	defer collector.Close()
	if err := collector.Accept(); err != nil {
		return err
	}
	slog.Info("waiting for shipped results", "addr", collector.Addr())
	if ready != nil {
		ready(collector.Addr())
	}

	sink := results.Sink{Dir: dir}
	for {
		rows, err := collector.Next(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, results.ErrCollectorClosed) {
			slog.Info("collector stopped", "rows", collected.Len())
			return nil
		}
		if err != nil {
			slog.Warn("dropped undecodable events", "error", err)
		}
		if len(rows) == 0 {
			continue
		}
		collected.Append(rows...)
		if _, err := sink.Save(collected); err != nil {
			return fmt.Errorf("failed to save collected results: %w", err)
		}
		slog.Info("collected batch", "rows", len(rows), "total", collected.Len())
	}
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

// persistAndDerive saves the table, ships it when configured, then derives
// the artifacts.
func persistAndDerive(t *results.Table, cfg *config.Config, setup report.Setup, summary *output.RunSummary, start time.Time, out OutputConfig) error {
	sink := results.Sink{Dir: cfg.Output.Dir, Parquet: cfg.Output.Parquet}
	paths, err := sink.Save(t)
	summary.Artifacts = append(summary.Artifacts, paths...)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if cfg.Output.ShipTo != "" {
		if err := ship(t, cfg.Output.ShipTo, cfg.Output.ShipTimeout); err != nil {
			slog.Warn("shipping results failed", "addr", cfg.Output.ShipTo, "error", err)
			summary.AddWarning("ship", err.Error(), t.Len())
		} else {
			slog.Info("shipped results", "addr", cfg.Output.ShipTo, "rows", t.Len())
		}
	}
	return derive(t, cfg, setup, summary, start, out)
}

func ship(t *results.Table, addr string, timeout time.Duration) error {
	s, err := results.NewShipper(addr, timeout)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Ship(t)
}

// derive writes plots, reports and the JSON summary. Each derivation is
// independent: a failure is recorded in the summary and the rest still run.
func derive(t *results.Table, cfg *config.Config, setup report.Setup, summary *output.RunSummary, start time.Time, out OutputConfig) error {
	e := cfg.SlopeEstimator()
	dir := cfg.Output.Dir

	if cfg.Output.Plots {
		paths, err := output.Plotter{Dir: dir, Estimator: e}.PlotAll(t)
		summary.Artifacts = append(summary.Artifacts, paths...)
		if err != nil {
			summary.AddError("plots", err.Error(), 0)
		}
	}
	if cfg.Output.Report {
		paths, err := report.Reporter{Dir: dir, Setup: setup, Estimator: e}.WriteAll(t)
		summary.Artifacts = append(summary.Artifacts, paths...)
		if err != nil {
			summary.AddError("report", err.Error(), 0)
		}
	}

	if failed := t.Filter(results.Row.Failed).Len(); failed > 0 {
		summary.AddWarning("failed_trials", "trials recorded as failed measurements", failed)
	}
	summary.AddTable(t, e)
	summary.UpdateDuration(start)

	if cfg.Output.JSON {
		path := filepath.Join(dir, output.SummaryFileName)
		if err := summary.WriteFile(path); err != nil {
			slog.Warn("skipping summary", "error", err)
		} else {
			summary.Artifacts = append(summary.Artifacts, path)
		}
	}
	outputResult(summary, out)
	return nil
}

// externalPrograms compiles the configured sources and wraps configured
// executables. Sources found in SourceDir are compiled when no explicit
// program list is given.
func externalPrograms(ctx context.Context, ext *config.ExternalConfig) ([]*external.Program, error) {
	mode, err := external.ParseInputMode(ext.InputMode)
	if err != nil {
		return nil, err
	}
	compiler := external.Compiler{CC: ext.CC, Flags: ext.Flags, OutDir: ext.ExecutablesDir}

	if len(ext.Programs) == 0 {
		srcs, err := external.FindSources(ext.SourceDir, ext.SourceExt)
		if err != nil {
			return nil, err
		}
		return compiler.CompileAll(ctx, srcs, mode)
	}

	programs := make([]*external.Program, 0, len(ext.Programs))
	for _, p := range ext.Programs {
		class, err := config.ClassFromName(p.Class)
		if err != nil {
			return nil, err
		}
		path := p.Path
		if p.Source != "" {
			if path, err = compiler.Compile(ctx, p.Source); err != nil {
				return nil, err
			}
		}
		programs = append(programs, external.NewProgram(p.Name, path, class, mode))
	}
	return programs, nil
}

// testDataFiles lists the persisted grid, generating it first when the
// directory holds no matching files.
func testDataFiles(cfg *config.Config, dists []dataset.Distribution) ([]dataset.File, error) {
	dir := cfg.External.TestDataDir
	files, err := selectFiles(dir, cfg.External.Sizes, dists)
	if err == nil && len(files) > 0 {
		return files, nil
	}
	slog.Info("test data missing, generating", "dir", dir)
	if _, err := Generate(cfg); err != nil {
		return nil, err
	}
	files, err = selectFiles(dir, cfg.External.Sizes, dists)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no test data files in %s", dir)
	}
	return files, nil
}

// selectFiles keeps the files of the requested sizes and distributions, in
// (size, distribution) order. Empty sizes keep every size.
func selectFiles(dir string, sizes []int, dists []dataset.Distribution) ([]dataset.File, error) {
	all, err := dataset.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	wantSize := make(map[int]bool, len(sizes))
	for _, n := range sizes {
		wantSize[n] = true
	}
	wantDist := make(map[dataset.Distribution]bool, len(dists))
	for _, d := range dists {
		wantDist[d] = true
	}

	var files []dataset.File
	for _, f := range all {
		if (len(sizes) == 0 || wantSize[f.Size]) && wantDist[f.Distribution] {
			files = append(files, f)
		}
	}
	return files, nil
}

func fileSizes(files []dataset.File) []int {
	var sizes []int
	for _, f := range files {
		if len(sizes) == 0 || sizes[len(sizes)-1] != f.Size {
			sizes = append(sizes, f.Size)
		}
	}
	return sizes
}

// ============================================================================
// OUTPUT FORMATTING
// ============================================================================

// outputResult outputs the summary in the requested format
func outputResult(summary *output.RunSummary, out OutputConfig) {
	w := out.stdout()
	if out.Plain {
		outputPlain(w, summary)
		return
	}

	var data []byte
	var err error
	if out.Compact {
		data, err = summary.ToCompactJSON()
	} else {
		data, err = summary.ToJSON()
	}
	if err != nil {
		fmt.Fprintf(w, `{"error": "failed to marshal JSON: %v"}`+"\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// outputPlain formats the summary as human-readable plain text
func outputPlain(w io.Writer, summary *output.RunSummary) {
	fmt.Fprintf(w, "Run %s (%s) finished in %dms\n", summary.Metadata.RunID, summary.Metadata.Command, summary.Metadata.DurationMS)

	for _, ds := range summary.Distributions {
		fmt.Fprintf(w, "\n%s: %s rows", ds.Distribution, output.FormatNumber(ds.Rows))
		if ds.FailedRows > 0 {
			fmt.Fprintf(w, " (%s failed)", output.FormatNumber(ds.FailedRows))
		}
		fmt.Fprintln(w)
		for _, e := range ds.Estimates {
			if e.Slope == nil {
				fmt.Fprintf(w, "  %-28s insufficient data (%d points)\n", e.Algorithm, e.Points)
				continue
			}
			fmt.Fprintf(w, "  %-28s slope %.3f  %s\n", e.Algorithm, *e.Slope, stats.ComplexityClass(e.Class).Describe())
		}
	}

	if len(summary.Artifacts) > 0 {
		fmt.Fprintf(w, "\nWrote %d files\n", len(summary.Artifacts))
	}
	for _, warning := range summary.Warnings {
		if warning.Count > 0 {
			fmt.Fprintf(w, "Warning: %s (%d)\n", warning.Message, warning.Count)
		} else {
			fmt.Fprintf(w, "Warning: %s\n", warning.Message)
		}
	}
	for _, e := range summary.Errors {
		fmt.Fprintf(w, "Error: [%s] %s\n", e.Type, e.Message)
	}
}

func slopeCells(sub *results.Table, e stats.Estimator) [][]string {
	var rows [][]string
	for _, est := range sub.Estimates(e) {
		slope := "-"
		class := "insufficient data"
		if est.Valid {
			slope = fmt.Sprintf("%.3f", est.Slope)
			class = est.Class.Describe()
		}
		corr := "-"
		if r, ok := sub.Correlation(est.Algorithm); ok {
			corr = fmt.Sprintf("%.3f", r)
		}
		rows = append(rows, []string{est.Algorithm, slope, fmt.Sprint(est.Points), class, corr})
	}
	return rows
}

var slopeHeaders = []string{"Algorithm", "Slope", "Points", "Class", "r(time,cmp)"}

func writeSlopesPlain(w io.Writer, dist dataset.Distribution, sub *results.Table, e stats.Estimator) {
	fmt.Fprintf(w, "%s\n%s\n", dist.Title(), strings.Repeat("=", len(dist.Title())))
	fmt.Fprintf(w, "%-28s %8s %6s  %-22s %s\n", slopeHeaders[0], slopeHeaders[1], slopeHeaders[2], slopeHeaders[3], slopeHeaders[4])
	for _, row := range slopeCells(sub, e) {
		fmt.Fprintf(w, "%-28s %8s %6s  %-22s %s\n", row[0], row[1], row[2], row[3], row[4])
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	classStyles = map[stats.ComplexityClass]lipgloss.Style{
		stats.ClassQuadratic:          cellStyle.Foreground(lipgloss.Color("196")),
		stats.ClassLinearithmicLinear: cellStyle.Foreground(lipgloss.Color("214")),
		stats.ClassLinear:             cellStyle.Foreground(lipgloss.Color("42")),
		stats.ClassSublinear:          cellStyle.Foreground(lipgloss.Color("75")),
		stats.ClassUnknown:            cellStyle.Foreground(lipgloss.Color("241")),
	}
)

func renderSlopeTable(dist dataset.Distribution, sub *results.Table, e stats.Estimator) string {
	estimates := sub.Estimates(e)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers(slopeHeaders...).
		Rows(slopeCells(sub, e)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(estimates) {
				return classStyles[estimates[row].Class]
			}
			return cellStyle
		})
	return titleStyle.Render(dist.Title()) + "\n" + tbl.String()
}
