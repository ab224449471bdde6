package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/experiment"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/external"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
)

// DefaultOutputDir receives results, plots and reports.
var DefaultOutputDir = "outputs"

// ExternalSizes are the persisted test-data sizes benchmarked against
// compiled programs.
var ExternalSizes = []int{100, 500, 1000, 5000, 10000, 25000, 50000, 75000, 100000}

type ExperimentConfig struct {
	Seed            int64
	Repeats         int
	WarmupRuns      int
	MinN            int
	MaxN            int
	Points          int
	QuadraticCutoff int
	Sizes           []int
	Distributions   []string
	Algorithms      []string
	FullValidation  bool
	// QuickSortVariants adds every quick sort pivot strategy to the run.
	QuickSortVariants bool
}

type OutputConfig struct {
	Dir     string
	Parquet bool
	Plots   bool
	Report  bool
	JSON    bool
	// ShipTo is a lumberjack v2 address rows are shipped to; empty disables.
	ShipTo      string
	ShipTimeout time.Duration
}

type EstimatorConfig struct {
	MinPoints      int
	Quadratic      [2]float64
	Linearithmic   [2]float64
	Linear         [2]float64
	SublinearBelow float64
}

// ProgramConfig names one external program. Either Source (compiled before
// the run) or Path (an existing executable) is set.
type ProgramConfig struct {
	Name   string
	Source string
	Path   string
	Class  string
}

type ExternalConfig struct {
	CC             string
	Flags          []string
	SourceDir      string
	SourceExt      string
	ExecutablesDir string
	TestDataDir    string
	InputMode      string
	ValidateOutput bool
	Sizes          []int
	Distributions  []string
	Repeats        int
	WarmupRuns     int
	Programs       []ProgramConfig
}

type Config struct {
	Experiment *ExperimentConfig
	Output     *OutputConfig
	Estimator  *EstimatorConfig
	External   *ExternalConfig
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	exp := experiment.DefaultConfig()
	bands := stats.DefaultBands
	return &Config{
		Experiment: &ExperimentConfig{
			Seed:            exp.Seed,
			Repeats:         exp.Repeats,
			WarmupRuns:      exp.WarmupRuns,
			MinN:            exp.MinN,
			MaxN:            exp.MaxN,
			Points:          exp.Points,
			QuadraticCutoff: exp.QuadraticCutoff,
			Distributions:   distributionLabels(dataset.All),
		},
		Output: &OutputConfig{
			Dir:         DefaultOutputDir,
			Plots:       true,
			Report:      true,
			JSON:        true,
			ShipTimeout: 10 * time.Second,
		},
		Estimator: &EstimatorConfig{
			MinPoints:      stats.DefaultMinPoints,
			Quadratic:      [2]float64{bands.Quadratic.Min, bands.Quadratic.Max},
			Linearithmic:   [2]float64{bands.LinearithmicLinear.Min, bands.LinearithmicLinear.Max},
			Linear:         [2]float64{bands.Linear.Min, bands.Linear.Max},
			SublinearBelow: bands.SublinearBelow,
		},
		External: &ExternalConfig{
			CC:             "gcc",
			Flags:          append([]string(nil), external.DefaultFlags...),
			SourceDir:      "sorting_algorithms",
			SourceExt:      ".c",
			ExecutablesDir: "executables",
			TestDataDir:    "test_data",
			InputMode:      "space",
			Sizes:          append([]int(nil), ExternalSizes...),
			Distributions:  []string{"random", "sorted", "reverse"},
			Repeats:        7,
		},
	}
}

func distributionLabels(dists []dataset.Distribution) []string {
	out := make([]string, len(dists))
	for i, d := range dists {
		out[i] = d.String()
	}
	return out
}

// LoadConfig reads a TOML file, or YAML when the extension is .yaml or .yml,
// over the defaults. Unknown keys are ignored.
func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var rawConfig map[string]any
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(configData, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if _, err := toml.Decode(string(configData), &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config := Default()
	for key, value := range rawConfig {
		section, ok := value.(map[string]any)
		if !ok {
			continue
		}
		switch key {
		case "experiment":
			if err := parseExperimentConfig(section, config.Experiment); err != nil {
				return nil, fmt.Errorf("parsing [experiment]: %w", err)
			}
		case "output":
			if err := parseOutputConfig(section, config.Output); err != nil {
				return nil, fmt.Errorf("parsing [output]: %w", err)
			}
		case "estimator":
			if err := parseEstimatorConfig(section, config.Estimator); err != nil {
				return nil, fmt.Errorf("parsing [estimator]: %w", err)
			}
		case "external":
			if err := parseExternalConfig(section, config.External); err != nil {
				return nil, fmt.Errorf("parsing [external]: %w", err)
			}
		}
	}
	return config, nil
}

func parseExperimentConfig(m map[string]any, config *ExperimentConfig) error {
	if v, ok := asInt(m["seed"]); ok {
		config.Seed = v
	}
	if v, ok := asInt(m["repeats"]); ok {
		config.Repeats = int(v)
	}
	if v, ok := asInt(m["warmupRuns"]); ok {
		config.WarmupRuns = int(v)
	}
	if v, ok := asInt(m["minN"]); ok {
		config.MinN = int(v)
	}
	if v, ok := asInt(m["maxN"]); ok {
		config.MaxN = int(v)
	}
	if v, ok := asInt(m["points"]); ok {
		config.Points = int(v)
	}
	if v, ok := asInt(m["quadraticCutoff"]); ok {
		config.QuadraticCutoff = int(v)
	}
	if raw, present := m["sizes"]; present {
		sizes, err := asIntSlice(raw)
		if err != nil {
			return fmt.Errorf("invalid sizes: %w", err)
		}
		config.Sizes = sizes
	}
	if v, ok := asStringSlice(m["distributions"]); ok {
		config.Distributions = v
	}
	if v, ok := asStringSlice(m["algorithms"]); ok {
		config.Algorithms = v
	}
	if v, ok := m["fullValidation"].(bool); ok {
		config.FullValidation = v
	}
	if v, ok := m["quickSortVariants"].(bool); ok {
		config.QuickSortVariants = v
	}
	return nil
}

func parseOutputConfig(m map[string]any, config *OutputConfig) error {
	if v, ok := m["dir"].(string); ok {
		config.Dir = v
	}
	if v, ok := m["parquet"].(bool); ok {
		config.Parquet = v
	}
	if v, ok := m["plots"].(bool); ok {
		config.Plots = v
	}
	if v, ok := m["report"].(bool); ok {
		config.Report = v
	}
	if v, ok := m["json"].(bool); ok {
		config.JSON = v
	}
	if v, ok := m["shipTo"].(string); ok {
		config.ShipTo = v
	}
	if v, ok := m["shipTimeout"].(string); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid shipTimeout %q: %w", v, err)
		}
		config.ShipTimeout = d
	}
	return nil
}

func parseEstimatorConfig(m map[string]any, config *EstimatorConfig) error {
	if v, ok := asInt(m["minPoints"]); ok {
		config.MinPoints = int(v)
	}
	for key, dst := range map[string]*[2]float64{
		"quadratic":    &config.Quadratic,
		"linearithmic": &config.Linearithmic,
		"linear":       &config.Linear,
	} {
		raw, present := m[key]
		if !present {
			continue
		}
		band, err := asFloatPair(raw)
		if err != nil {
			return fmt.Errorf("invalid %s band: %w", key, err)
		}
		*dst = band
	}
	if v, ok := asFloat(m["sublinearBelow"]); ok {
		config.SublinearBelow = v
	}
	return nil
}

func parseExternalConfig(m map[string]any, config *ExternalConfig) error {
	for key, dst := range map[string]*string{
		"cc":             &config.CC,
		"sourceDir":      &config.SourceDir,
		"sourceExt":      &config.SourceExt,
		"executablesDir": &config.ExecutablesDir,
		"testDataDir":    &config.TestDataDir,
		"inputMode":      &config.InputMode,
	} {
		if v, ok := m[key].(string); ok {
			*dst = v
		}
	}
	if v, ok := asStringSlice(m["flags"]); ok {
		config.Flags = v
	}
	if v, ok := m["validateOutput"].(bool); ok {
		config.ValidateOutput = v
	}
	if raw, present := m["sizes"]; present {
		sizes, err := asIntSlice(raw)
		if err != nil {
			return fmt.Errorf("invalid sizes: %w", err)
		}
		config.Sizes = sizes
	}
	if v, ok := asStringSlice(m["distributions"]); ok {
		config.Distributions = v
	}
	if v, ok := asInt(m["repeats"]); ok {
		config.Repeats = int(v)
	}
	if v, ok := asInt(m["warmupRuns"]); ok {
		config.WarmupRuns = int(v)
	}
	if raw, present := m["programs"]; present {
		tables, err := asTables(raw)
		if err != nil {
			return fmt.Errorf("invalid programs: %w", err)
		}
		config.Programs = nil
		for _, pm := range tables {
			var p ProgramConfig
			p.Name, _ = pm["name"].(string)
			p.Source, _ = pm["source"].(string)
			p.Path, _ = pm["path"].(string)
			p.Class, _ = pm["class"].(string)
			config.Programs = append(config.Programs, p)
		}
	}
	return nil
}

// asInt accepts the integer types produced by the TOML and YAML decoders.
func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

func asIntSlice(v any) ([]int, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of integers")
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		i, ok := asInt(item)
		if !ok {
			return nil, fmt.Errorf("%v is not an integer", item)
		}
		out = append(out, int(i))
	}
	return out, nil
}

// asTables accepts TOML arrays of tables and YAML lists of maps.
func asTables(v any) ([]map[string]any, error) {
	switch x := v.(type) {
	case []map[string]any:
		return x, nil
	case []any:
		out := make([]map[string]any, 0, len(x))
		for i, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entry %d is not a table", i)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list of tables")
}

func asStringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func asFloatPair(v any) ([2]float64, error) {
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		return [2]float64{}, fmt.Errorf("expected [min, max]")
	}
	var out [2]float64
	for i, item := range items {
		f, ok := asFloat(item)
		if !ok {
			return [2]float64{}, fmt.Errorf("%v is not a number", item)
		}
		out[i] = f
	}
	return out, nil
}

// ExperimentSettings converts the [experiment] section for the driver.
func (c *Config) ExperimentSettings() experiment.Config {
	e := c.Experiment
	return experiment.Config{
		Seed:            e.Seed,
		Repeats:         e.Repeats,
		WarmupRuns:      e.WarmupRuns,
		MinN:            e.MinN,
		MaxN:            e.MaxN,
		Points:          e.Points,
		QuadraticCutoff: e.QuadraticCutoff,
		Sizes:           e.Sizes,
		FullValidation:  e.FullValidation,
	}
}

// ExternalSettings is the driver configuration for the compiled-program
// sweep. The sizes come from the persisted files, so only repetition
// settings and the cutoff carry over.
func (c *Config) ExternalSettings() experiment.Config {
	cfg := c.ExperimentSettings()
	cfg.Repeats = c.External.Repeats
	cfg.WarmupRuns = c.External.WarmupRuns
	cfg.Sizes = c.External.Sizes
	cfg.QuadraticCutoff = 0
	return cfg
}

// Distributions parses the [experiment] distributions.
func (c *Config) Distributions() ([]dataset.Distribution, error) {
	return dataset.ParseDistributions(c.Experiment.Distributions)
}

// ExternalDistributions parses the [external] distributions.
func (c *Config) ExternalDistributions() ([]dataset.Distribution, error) {
	return dataset.ParseDistributions(c.External.Distributions)
}

// Algorithms resolves the configured in-process algorithm set.
func (c *Config) Algorithms() ([]sorting.Algorithm, error) {
	set := sorting.Default()
	if c.Experiment.QuickSortVariants {
		set = append(set, sorting.QuickSortVariants(c.Experiment.Seed)...)
	}
	return sorting.Select(set, c.Experiment.Algorithms)
}

// SlopeEstimator builds the slope estimator from the [estimator] section.
func (c *Config) SlopeEstimator() stats.Estimator {
	e := c.EstimatorSettings()
	bands := stats.Bands{
		Quadratic:          stats.Band{Min: e.Quadratic[0], Max: e.Quadratic[1]},
		LinearithmicLinear: stats.Band{Min: e.Linearithmic[0], Max: e.Linearithmic[1]},
		Linear:             stats.Band{Min: e.Linear[0], Max: e.Linear[1]},
		SublinearBelow:     e.SublinearBelow,
	}
	return stats.Estimator{MinPoints: e.MinPoints, Bands: &bands}
}

// EstimatorSettings returns the [estimator] section, falling back to the
// defaults when absent.
func (c *Config) EstimatorSettings() *EstimatorConfig {
	if c.Estimator == nil {
		return Default().Estimator
	}
	return c.Estimator
}

// ClassFromName maps a configured class label to a sorting class.
func ClassFromName(s string) (sorting.Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return sorting.Unclassified, nil
	case "quadratic", "n^2", "o(n^2)":
		return sorting.Quadratic, nil
	case "linearithmic", "nlogn", "n log n", "o(n log n)":
		return sorting.Linearithmic, nil
	case "linear", "n", "o(n)", "o(n+k)":
		return sorting.Linear, nil
	}
	return sorting.Unclassified, fmt.Errorf("invalid class %q", s)
}

func (c *Config) ValidateRun() error {
	if c.Experiment == nil {
		return fmt.Errorf("experiment configuration section is required")
	}
	if err := c.ExperimentSettings().Validate(); err != nil {
		return err
	}
	if len(c.Experiment.Distributions) == 0 {
		return fmt.Errorf("at least one distribution is required")
	}
	if _, err := c.Distributions(); err != nil {
		return err
	}
	if _, err := c.Algorithms(); err != nil {
		return err
	}
	if c.Output == nil || c.Output.Dir == "" {
		return fmt.Errorf("output dir is required")
	}
	return c.ValidateEstimator()
}

func (c *Config) ValidateEstimator() error {
	e := c.EstimatorSettings()
	if e.MinPoints < 2 {
		return fmt.Errorf("estimator minPoints must be at least 2, got %d", e.MinPoints)
	}
	return c.SlopeEstimator().Bands.Validate()
}

func (c *Config) ValidateBench() error {
	if c.External == nil {
		return fmt.Errorf("external configuration section is required")
	}
	ext := c.External
	if ext.TestDataDir == "" {
		return fmt.Errorf("testDataDir is required in external configuration")
	}
	if ext.Repeats < 1 {
		return fmt.Errorf("external repeats must be at least 1, got %d", ext.Repeats)
	}
	if ext.WarmupRuns < 0 {
		return fmt.Errorf("external warmupRuns must be non-negative, got %d", ext.WarmupRuns)
	}
	if _, err := external.ParseInputMode(ext.InputMode); err != nil {
		return err
	}
	if _, err := c.ExternalDistributions(); err != nil {
		return err
	}
	if len(ext.Programs) == 0 && ext.SourceDir == "" {
		return fmt.Errorf("either sourceDir or programs is required in external configuration")
	}
	for i, p := range ext.Programs {
		if (p.Source == "") == (p.Path == "") {
			return fmt.Errorf("program %d must set exactly one of source or path", i)
		}
		if _, err := ClassFromName(p.Class); err != nil {
			return fmt.Errorf("program %d: %w", i, err)
		}
	}
	if c.Output == nil || c.Output.Dir == "" {
		return fmt.Errorf("output dir is required")
	}
	return c.ValidateEstimator()
}
