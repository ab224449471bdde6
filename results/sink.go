package results

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
)

const (
	// AllFileName is the concatenated all-distributions table.
	AllFileName = "results_all.csv"
	// ParquetFileName is the optional columnar copy of the full table.
	ParquetFileName = "results_all.parquet"
)

// DistributionFileName is the per-distribution table name.
func DistributionFileName(dist dataset.Distribution) string {
	return fmt.Sprintf("results_%s.csv", dist)
}

// Sink persists results tables under a directory.
type Sink struct {
	Dir     string
	Parquet bool
}

// Save writes one CSV per distribution, the all-distributions CSV and, when
// enabled, the parquet copy. It returns the written paths.
func (s Sink) Save(t *Table) ([]string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", s.Dir, err)
	}

	var paths []string
	for _, dist := range t.Distributions() {
		p, err := s.SaveDistribution(dist, t.ForDistribution(dist))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}

	all := filepath.Join(s.Dir, AllFileName)
	if err := writeCSVFile(all, t); err != nil {
		return paths, err
	}
	paths = append(paths, all)

	if s.Parquet {
		pq := filepath.Join(s.Dir, ParquetFileName)
		if err := WriteParquetFile(pq, t); err != nil {
			return paths, err
		}
		paths = append(paths, pq)
	}
	return paths, nil
}

// SaveDistribution writes the rows of one distribution to its own file.
func (s Sink) SaveDistribution(dist dataset.Distribution, t *Table) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, DistributionFileName(dist))
	return path, writeCSVFile(path, t)
}

func writeCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("failed to write results file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close results file %s: %w", path, err)
	}
	return nil
}

// ReadCSVFile reads one persisted table.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadDir reloads every per-distribution file in dir, skipping the
// all-distributions file. Files that cannot be read are logged and reported
// in the joined error while the rest still load; the error is nil only when
// every file loaded.
func LoadDir(dir string) (*Table, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "results_*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	t := &Table{}
	var errs []error
	loaded := 0
	for _, path := range matches {
		if filepath.Base(path) == AllFileName {
			continue
		}
		part, err := ReadCSVFile(path)
		if err != nil {
			slog.Warn("skipping results file", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		t.Merge(part)
		loaded++
	}
	if loaded == 0 && len(errs) == 0 {
		return t, fmt.Errorf("no results_<distribution>.csv files in %s", dir)
	}
	return t, errors.Join(errs...)
}

// LoadAll reads results_all.csv from dir, falling back to LoadDir when it is
// missing.
func LoadAll(dir string) (*Table, error) {
	path := filepath.Join(dir, AllFileName)
	if _, err := os.Stat(path); err != nil {
		return LoadDir(dir)
	}
	return ReadCSVFile(path)
}
