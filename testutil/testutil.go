package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// FakeProgramOptions controls the behavior of a fake external sorting
// program.
type FakeProgramOptions struct {
	// Exponent makes the reported time n^Exponent nanoseconds. Zero reports a
	// fixed 0.001s.
	Exponent float64
	// Comparisons reports n*n/2 comparisons.
	Comparisons bool
	// PrintSorted writes the sorted input to stdout.
	PrintSorted bool
	// ExitCode is the exit status for every run.
	ExitCode int
	// FailAtSize exits 1 when the input count equals it.
	FailAtSize int
	// NoTime omits the TIME line.
	NoTime bool
	// Noise writes unrelated and malformed lines to stderr as well.
	Noise bool
}

// FakeProgram writes an executable POSIX shell script named name into a
// temporary directory. It reads "count\nvalues" from stdin and reports on
// stderr like a compiled sorting program. Tests are skipped on Windows.
func FakeProgram(t *testing.T, name string, opts FakeProgramOptions) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake external programs need a POSIX shell")
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("input=$(cat)\n")
	b.WriteString("n=$(printf '%s\\n' \"$input\" | head -n 1)\n")
	if opts.FailAtSize > 0 {
		fmt.Fprintf(&b, "if [ \"$n\" = \"%d\" ]; then echo 'Segmentation fault' >&2; exit 1; fi\n", opts.FailAtSize)
	}
	if opts.Noise {
		b.WriteString("echo 'starting sort' >&2\n")
		b.WriteString("echo 'TIME: not-a-number' >&2\n")
		b.WriteString("echo 'COMPARISONS: many' >&2\n")
	}
	if !opts.NoTime {
		if opts.Exponent > 0 {
			fmt.Fprintf(&b, "awk -v n=\"$n\" 'BEGIN { printf \"TIME: %%.12f\\n\", (n ^ %g) * 1e-9 }' >&2\n", opts.Exponent)
		} else {
			b.WriteString("echo 'TIME: 0.001000000' >&2\n")
		}
	}
	if opts.Comparisons {
		b.WriteString("awk -v n=\"$n\" 'BEGIN { printf \"COMPARISONS: %d\\n\", n * n / 2 }' >&2\n")
	}
	if opts.PrintSorted {
		b.WriteString("printf '%s\\n' \"$input\" | tail -n +2 | tr ' ' '\\n' | grep -v '^$' | sort -n | tr '\\n' ' '\n")
	}
	fmt.Fprintf(&b, "exit %d\n", opts.ExitCode)

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatalf("Failed to write fake program: %v", err)
	}
	return path
}

// WriteResultsCSV writes a results table in the persisted CSV layout and
// returns its path. rows are "distribution,algorithm,n,median,stdev[,comparisons]".
func WriteResultsCSV(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	content := "distribution,algorithm,n,median_seconds,stdev_seconds,comparisons\n"
	for _, r := range rows {
		if strings.Count(r, ",") == 4 {
			r += ","
		}
		content += r + "\n"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write results file: %v", err)
	}
	return path
}

// PowerRows returns persisted rows for an algorithm whose median time is
// n^exponent nanoseconds at each size.
func PowerRows(dist, algorithm string, exponent float64, sizes ...int) []string {
	rows := make([]string, len(sizes))
	for i, n := range sizes {
		rows[i] = fmt.Sprintf("%s,%s,%d,%g,0", dist, algorithm, n, math.Pow(float64(n), exponent)*1e-9)
	}
	return rows
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t *testing.T, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path) // Remove immediately, just need the path

	return path
}
