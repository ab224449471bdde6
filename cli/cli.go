package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	cli "github.com/urfave/cli/v2"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/config"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/logging"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/version"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to a TOML or YAML configuration file (mutually exclusive with tuning flags)",
	}

	// Global flags
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn or error",
		Value: "info",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format: text or json",
		Value: "text",
	}

	// Experiment flags
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed of the dataset generator, fixed for the whole run",
		Value: 42,
	}
	repeatsFlag = &cli.IntFlag{
		Name:  "repeats",
		Usage: "Timed repetitions per trial (the median is reported)",
	}
	warmupFlag = &cli.IntFlag{
		Name:  "warmup",
		Usage: "Untimed warmup runs per trial",
	}
	minNFlag = &cli.IntFlag{
		Name:  "minN",
		Usage: "Smallest input size of the log-spaced range",
		Value: 100,
	}
	maxNFlag = &cli.IntFlag{
		Name:  "maxN",
		Usage: "Largest input size of the log-spaced range",
		Value: 1_000_000,
	}
	pointsFlag = &cli.IntFlag{
		Name:  "points",
		Usage: "Number of log-spaced sizes between minN and maxN",
		Value: 24,
	}
	sizesFlag = &cli.IntSliceFlag{
		Name:  "sizes",
		Usage: "Explicit input sizes (e.g., --sizes 100,1000,10000), overrides minN/maxN/points",
	}
	quadraticCutoffFlag = &cli.IntFlag{
		Name:  "quadraticCutoff",
		Usage: "Skip quadratic algorithms above this size (0 disables)",
		Value: 20_000,
	}
	distributionsFlag = &cli.StringSliceFlag{
		Name:  "distributions",
		Usage: "Input distributions: random, sorted, reverse, nearly_sorted",
	}
	algorithmsFlag = &cli.StringSliceFlag{
		Name:  "algorithms",
		Usage: "Algorithms to measure by name (default: all)",
	}
	quickSortVariantsFlag = &cli.BoolFlag{
		Name:  "quickSortVariants",
		Usage: "Also measure every quick sort pivot strategy",
	}
	fullValidationFlag = &cli.BoolFlag{
		Name:  "fullValidation",
		Usage: "Check the whole output is non-decreasing, not only its endpoints",
	}

	// Output flags
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Directory for results, plots and reports",
		Value: config.DefaultOutputDir,
	}
	parquetFlag = &cli.BoolFlag{
		Name:  "parquet",
		Usage: "Also write results_all.parquet",
	}
	noPlotsFlag = &cli.BoolFlag{
		Name:  "noPlots",
		Usage: "Do not render HTML plots",
	}
	noReportFlag = &cli.BoolFlag{
		Name:  "noReport",
		Usage: "Do not write conclusions and the lab report",
	}
	shipToFlag = &cli.StringFlag{
		Name:  "shipTo",
		Usage: "Ship every results row to a lumberjack v2 endpoint (e.g., 'localhost:5044')",
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
	}
	quietFlag = &cli.BoolFlag{
		Name:  "quiet",
		Usage: "Do not print a progress line per trial",
	}

	// External flags
	ccFlag = &cli.StringFlag{
		Name:  "cc",
		Usage: "C compiler used to build the external programs",
		Value: "gcc",
	}
	sourceDirFlag = &cli.StringFlag{
		Name:  "sourceDir",
		Usage: "Directory of program sources to compile",
		Value: "sorting_algorithms",
	}
	executablesDirFlag = &cli.StringFlag{
		Name:  "executablesDir",
		Usage: "Directory receiving the compiled executables",
		Value: "executables",
	}
	testDataDirFlag = &cli.StringFlag{
		Name:  "testDataDir",
		Usage: "Directory of persisted test-data files",
		Value: "test_data",
	}
	inputModeFlag = &cli.StringFlag{
		Name:  "inputMode",
		Usage: "How values are fed to external programs: space or lines",
		Value: "space",
	}
	validateOutputFlag = &cli.BoolFlag{
		Name:  "validateOutput",
		Usage: "Parse program stdout as the sorted output and validate it",
	}

	// Persisted results flags
	dirFlag = &cli.StringFlag{
		Name:  "dir",
		Usage: "Directory holding results_<distribution>.csv files",
		Value: config.DefaultOutputDir,
	}
	distributionFlag = &cli.StringFlag{
		Name:  "distribution",
		Usage: "Only show one distribution",
	}

	// Collect flags
	listenFlag = &cli.StringFlag{
		Name:  "listen",
		Usage: "Address to receive shipped results on",
		Value: "127.0.0.1:5044",
	}
	readTimeoutFlag = &cli.DurationFlag{
		Name:  "readTimeout",
		Usage: "Per-connection read timeout",
		Value: 30 * time.Second,
	}
)

// tuningFlags are rejected alongside --config.
var tuningFlags = []string{
	"seed", "repeats", "warmup", "minN", "maxN", "points", "sizes", "quadraticCutoff",
	"distributions", "algorithms", "quickSortVariants", "fullValidation",
	"out", "parquet", "noPlots", "noReport", "shipTo",
	"cc", "sourceDir", "executablesDir", "testDataDir", "inputMode", "validateOutput",
}

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	for _, flag := range tuningFlags {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

// loadConfig reads --config, or builds the configuration from flags.
func loadConfig(c *cli.Context, fromFlags func(*cli.Context, *config.Config) error) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		if err := validateConfigModeFlags(c, []string{"compact", "plain", "quiet"}); err != nil {
			return nil, err
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg := config.Default()
	if fromFlags != nil {
		if err := fromFlags(c, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// experimentFromFlags applies the experiment and output flags.
func experimentFromFlags(c *cli.Context, cfg *config.Config) error {
	exp := cfg.Experiment
	if c.IsSet("seed") {
		exp.Seed = c.Int64("seed")
	}
	if c.IsSet("repeats") {
		exp.Repeats = c.Int("repeats")
	}
	if c.IsSet("warmup") {
		exp.WarmupRuns = c.Int("warmup")
	}
	if c.IsSet("minN") {
		exp.MinN = c.Int("minN")
	}
	if c.IsSet("maxN") {
		exp.MaxN = c.Int("maxN")
	}
	if c.IsSet("points") {
		exp.Points = c.Int("points")
	}
	if c.IsSet("sizes") {
		exp.Sizes = c.IntSlice("sizes")
	}
	if c.IsSet("quadraticCutoff") {
		exp.QuadraticCutoff = c.Int("quadraticCutoff")
	}
	if c.IsSet("distributions") {
		exp.Distributions = c.StringSlice("distributions")
	}
	if c.IsSet("algorithms") {
		exp.Algorithms = c.StringSlice("algorithms")
	}
	exp.QuickSortVariants = c.Bool("quickSortVariants")
	exp.FullValidation = c.Bool("fullValidation")
	outputFromFlags(c, cfg)
	return nil
}

func outputFromFlags(c *cli.Context, cfg *config.Config) {
	out := cfg.Output
	if c.IsSet("out") {
		out.Dir = c.String("out")
	}
	out.Parquet = c.Bool("parquet")
	out.Plots = !c.Bool("noPlots")
	out.Report = !c.Bool("noReport")
	if c.IsSet("shipTo") {
		out.ShipTo = c.String("shipTo")
	}
}

// externalFromFlags applies the external benchmark flags.
func externalFromFlags(c *cli.Context, cfg *config.Config) error {
	ext := cfg.External
	if c.IsSet("cc") {
		ext.CC = c.String("cc")
	}
	if c.IsSet("sourceDir") {
		ext.SourceDir = c.String("sourceDir")
	}
	if c.IsSet("executablesDir") {
		ext.ExecutablesDir = c.String("executablesDir")
	}
	if c.IsSet("testDataDir") {
		ext.TestDataDir = c.String("testDataDir")
	}
	if c.IsSet("inputMode") {
		ext.InputMode = c.String("inputMode")
	}
	if c.IsSet("sizes") {
		ext.Sizes = c.IntSlice("sizes")
	}
	if c.IsSet("distributions") {
		ext.Distributions = c.StringSlice("distributions")
	}
	if c.IsSet("repeats") {
		ext.Repeats = c.Int("repeats")
	}
	if c.IsSet("warmup") {
		ext.WarmupRuns = c.Int("warmup")
	}
	if c.IsSet("seed") {
		cfg.Experiment.Seed = c.Int64("seed")
	}
	ext.ValidateOutput = c.Bool("validateOutput")
	outputFromFlags(c, cfg)
	return nil
}

func outputConfig(c *cli.Context) OutputConfig {
	out := OutputConfig{
		Compact:  c.Bool("compact"),
		Plain:    c.Bool("plain"),
		Progress: c.App.Writer,
		Stdout:   c.App.Writer,
	}
	if c.Bool("quiet") {
		out.Progress = io.Discard
	}
	return out
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

// setupLogging installs the global logger before any command runs.
func setupLogging(c *cli.Context) error {
	logger, err := logging.New(c.String("log-level"), c.String("log-format"), c.App.ErrWriter)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Command handler functions

// handleRunCommand processes the run command
func handleRunCommand(c *cli.Context) error {
	cfg, err := loadConfig(c, experimentFromFlags)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRun(); err != nil {
		return fmt.Errorf("invalid run configuration: %w", err)
	}

	ctx, stop := signalContext(c)
	defer stop()
	return Run(ctx, cfg, outputConfig(c))
}

// handleBenchCommand processes the bench command
func handleBenchCommand(c *cli.Context) error {
	cfg, err := loadConfig(c, externalFromFlags)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBench(); err != nil {
		return fmt.Errorf("invalid bench configuration: %w", err)
	}

	ctx, stop := signalContext(c)
	defer stop()
	return Bench(ctx, cfg, outputConfig(c))
}

// handleGenerateCommand processes the generate command
func handleGenerateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c, externalFromFlags)
	if err != nil {
		return err
	}
	if cfg.External == nil || cfg.External.TestDataDir == "" {
		return fmt.Errorf("testDataDir is required")
	}
	if len(cfg.External.Sizes) == 0 {
		return fmt.Errorf("at least one size is required")
	}
	paths, err := Generate(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Generated %d test data files in %s\n", len(paths), cfg.External.TestDataDir)
	return nil
}

// handleReportCommand processes the report command
func handleReportCommand(c *cli.Context) error {
	cfg, err := loadConfig(c, func(c *cli.Context, cfg *config.Config) error {
		outputFromFlags(c, cfg)
		return nil
	})
	if err != nil {
		return err
	}
	if err := cfg.ValidateEstimator(); err != nil {
		return fmt.Errorf("invalid estimator configuration: %w", err)
	}
	return Report(c.String("dir"), cfg, outputConfig(c))
}

// handleSlopesCommand processes the slopes command
func handleSlopesCommand(c *cli.Context) error {
	cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}
	if err := cfg.ValidateEstimator(); err != nil {
		return fmt.Errorf("invalid estimator configuration: %w", err)
	}
	styled := !c.Bool("plain") && isTerminal(c.App.Writer)
	return Slopes(c.App.Writer, c.String("dir"), cfg.SlopeEstimator(), c.String("distribution"), styled)
}

// handleViewCommand processes the view command
func handleViewCommand(c *cli.Context) error {
	cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}
	if err := cfg.ValidateEstimator(); err != nil {
		return fmt.Errorf("invalid estimator configuration: %w", err)
	}
	return View(c.String("dir"), cfg.SlopeEstimator())
}

// handleCollectCommand processes the collect command
func handleCollectCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()
	return Collect(ctx, c.String("listen"), c.String("out"), c.Duration("readTimeout"), nil)
}

var App = &cli.App{
	Name:     "sortbench",
	Usage:    "Benchmark sorting algorithms and estimate their complexity from log-log slopes",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Flags: []cli.Flag{
		logLevelFlag,
		logFormatFlag,
	},
	Before: setupLogging,
	Commands: []*cli.Command{
		{
			Name:  "run",
			Usage: "Measure the in-process algorithms over every distribution",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				// Experiment flags
				seedFlag,
				repeatsFlag,
				warmupFlag,
				minNFlag,
				maxNFlag,
				pointsFlag,
				sizesFlag,
				quadraticCutoffFlag,
				distributionsFlag,
				algorithmsFlag,
				quickSortVariantsFlag,
				fullValidationFlag,
				// Output flags
				outFlag,
				parquetFlag,
				noPlotsFlag,
				noReportFlag,
				shipToFlag,
				compactFlag,
				plainFlag,
				quietFlag,
			},
			Action: handleRunCommand,
		},
		{
			Name:  "bench",
			Usage: "Compile external programs and sweep the persisted test data",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				// External flags
				ccFlag,
				sourceDirFlag,
				executablesDirFlag,
				testDataDirFlag,
				inputModeFlag,
				validateOutputFlag,
				seedFlag,
				repeatsFlag,
				warmupFlag,
				sizesFlag,
				distributionsFlag,
				// Output flags
				outFlag,
				parquetFlag,
				noPlotsFlag,
				noReportFlag,
				shipToFlag,
				compactFlag,
				plainFlag,
				quietFlag,
			},
			Action: handleBenchCommand,
		},
		{
			Name:  "generate",
			Usage: "Write the persisted test-data grid for external programs",
			Flags: []cli.Flag{
				configFlag,
				testDataDirFlag,
				seedFlag,
				sizesFlag,
				distributionsFlag,
			},
			Action: handleGenerateCommand,
		},
		{
			Name:  "report",
			Usage: "Rebuild plots, reports and the summary from persisted results",
			Flags: []cli.Flag{
				configFlag,
				dirFlag,
				noPlotsFlag,
				noReportFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleReportCommand,
		},
		{
			Name:  "slopes",
			Usage: "Print the fitted slopes of persisted results",
			Flags: []cli.Flag{
				configFlag,
				dirFlag,
				distributionFlag,
				plainFlag,
			},
			Action: handleSlopesCommand,
		},
		{
			Name:  "view",
			Usage: "Browse persisted results in a terminal UI",
			Flags: []cli.Flag{
				configFlag,
				dirFlag,
			},
			Action: handleViewCommand,
		},
		{
			Name:  "collect",
			Usage: "Receive shipped results over lumberjack v2 and save them",
			Flags: []cli.Flag{
				listenFlag,
				outFlag,
				readTimeoutFlag,
			},
			Action: handleCollectCommand,
		},
	},
}
