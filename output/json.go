package output

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/results"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/stats"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/version"
)

// SummaryFileName is the JSON run summary written next to the results.
const SummaryFileName = "summary.json"

// RunSummary represents the complete JSON summary of one run
type RunSummary struct {
	Metadata      Metadata              `json:"metadata"`
	Configuration Configuration         `json:"configuration"`
	Distributions []DistributionSummary `json:"distributions"`
	Artifacts     []string              `json:"artifacts,omitempty"`
	Warnings      []Warning             `json:"warnings"`
	Errors        []Error               `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Command     string    `json:"command"`
	Version     string    `json:"version"`
	DurationMS  int64     `json:"duration_ms"`
}

// Configuration records the settings the measurements were taken with
type Configuration struct {
	Seed          int64    `json:"seed"`
	Repeats       int      `json:"repeats"`
	WarmupRuns    int      `json:"warmup_runs"`
	Sizes         []int    `json:"sizes,omitempty"`
	Distributions []string `json:"distributions,omitempty"`
	Algorithms    []string `json:"algorithms,omitempty"`
}

// DistributionSummary holds the estimates for one input distribution
type DistributionSummary struct {
	Distribution string            `json:"distribution"`
	Rows         int               `json:"rows"`
	FailedRows   int               `json:"failed_rows"`
	Estimates    []EstimateSummary `json:"estimates"`
}

// EstimateSummary is one fitted slope. Slope is omitted when there were too
// few usable points; Correlation when no comparison counts exist.
type EstimateSummary struct {
	Algorithm   string   `json:"algorithm"`
	Slope       *float64 `json:"slope,omitempty"`
	Points      int      `json:"points"`
	Class       string   `json:"class"`
	Correlation *float64 `json:"time_comparisons_correlation,omitempty"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewRunSummary creates a new RunSummary with a fresh run id
func NewRunSummary(command string, startTime time.Time) *RunSummary {
	return &RunSummary{
		Metadata: Metadata{
			RunID:       uuid.NewString(),
			GeneratedAt: time.Now().UTC(),
			Command:     command,
			Version:     version.Version,
			DurationMS:  time.Since(startTime).Milliseconds(),
		},
		Distributions: []DistributionSummary{},
		Warnings:      []Warning{},
		Errors:        []Error{},
	}
}

// AddTable summarizes every distribution of t with the estimator e.
func (s *RunSummary) AddTable(t *results.Table, e stats.Estimator) {
	for _, dist := range t.Distributions() {
		sub := t.ForDistribution(dist)
		ds := DistributionSummary{
			Distribution: dist.String(),
			Rows:         sub.Len(),
			FailedRows:   sub.Filter(results.Row.Failed).Len(),
		}
		for _, est := range sub.Estimates(e) {
			es := EstimateSummary{
				Algorithm: est.Algorithm,
				Points:    est.Points,
				Class:     string(est.Class),
			}
			if est.Valid && !math.IsNaN(est.Slope) {
				slope := est.Slope
				es.Slope = &slope
			}
			if r, ok := sub.Correlation(est.Algorithm); ok {
				es.Correlation = &r
			}
			ds.Estimates = append(ds.Estimates, es)
		}
		s.Distributions = append(s.Distributions, ds)
	}
}

// ToJSON converts the summary to pretty-printed JSON
func (s *RunSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ToCompactJSON converts the summary to compact JSON
func (s *RunSummary) ToCompactJSON() ([]byte, error) {
	return json.Marshal(s)
}

// WriteFile writes the pretty-printed summary to path.
func (s *RunSummary) WriteFile(path string) error {
	data, err := s.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}

// AddWarning adds a warning to the summary (thread-safe)
func (s *RunSummary) AddWarning(warningType, message string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Warnings = append(s.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the summary (thread-safe)
func (s *RunSummary) AddError(errorType, message string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// UpdateDuration updates the duration in metadata
func (s *RunSummary) UpdateDuration(startTime time.Time) {
	s.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}

// FormatNumber formats an integer with thousands separators.
func FormatNumber(n int) string {
	return humanize.Comma(int64(n))
}
