package main

import (
	"fmt"
	"io"
	"testing"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/cli"
)

// BenchmarkEndToEndRun drives the run command through the CLI, from flag
// parsing to the written results, plots and reports.
func BenchmarkEndToEndRun(b *testing.B) {
	cli.App.Writer = io.Discard
	cli.App.ErrWriter = io.Discard

	cases := []struct {
		name    string
		derived bool
	}{
		{"ResultsOnly", false},
		{"WithPlotsAndReports", true},
	}
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				args := []string{"sortbench", "--log-level", "error", "run",
					"--sizes", "100,1000,5000,10000",
					"--distributions", "random,sorted",
					"--algorithms", "Insertion Sort,Merge Sort,Radix Sort",
					"--repeats", "1",
					"--warmup", "0",
					"--out", b.TempDir(),
					"--quiet", "--compact",
				}
				if !tc.derived {
					args = append(args, "--noPlots", "--noReport")
				}
				if err := cli.App.Run(args); err != nil {
					b.Fatalf("run failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkEndToEndReport rebuilds plots and reports from persisted results.
func BenchmarkEndToEndReport(b *testing.B) {
	cli.App.Writer = io.Discard
	cli.App.ErrWriter = io.Discard

	dir := b.TempDir()
	err := cli.App.Run([]string{"sortbench", "--log-level", "error", "run",
		"--sizes", "100,500,1000,5000", "--repeats", "1", "--warmup", "0",
		"--out", dir, "--quiet", "--noPlots", "--noReport",
	})
	if err != nil {
		b.Fatalf("setup run failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cli.App.Run([]string{"sortbench", "--log-level", "error", "report", "--dir", dir, "--compact"}); err != nil {
			b.Fatal(fmt.Errorf("report failed: %w", err))
		}
	}
}
