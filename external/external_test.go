package external

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/experiment"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/testutil"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/trial"
)

func TestParseSideChannel(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		seconds  float64
		comps    int64
		hasComps bool
	}{
		{"both", "TIME: 0.001234\nCOMPARISONS: 4950\n", 0.001234, 4950, true},
		{"no space", "TIME:0.5\nCOMPARISONS:10", 0.5, 10, true},
		{"time only", "TIME: 2e-3\n", 0.002, 0, false},
		{"noise ignored", "hello\nTIME: bad\nTIME: 0.25\nCOMPARISONS: -3\nwarning: x\n", 0.25, 0, false},
		{"last wins", "TIME: 1\nTIME: 2\n", 2, 0, false},
		{"missing time", "COMPARISONS: 7\n", math.Inf(1), 7, true},
		{"empty", "", math.Inf(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ParseSideChannel(strings.NewReader(tt.in))
			if math.IsInf(tt.seconds, 1) {
				assert.True(t, math.IsInf(m.Seconds, 1))
			} else {
				assert.InDelta(t, tt.seconds, m.Seconds, 1e-12)
			}
			assert.Equal(t, tt.comps, m.Comparisons)
			assert.Equal(t, tt.hasComps, m.HasComparisons)
		})
	}
}

func FuzzParseSideChannel(f *testing.F) {
	f.Add("TIME: 0.1\nCOMPARISONS: 3\n")
	f.Add("TIME:\n")
	f.Add("COMPARISONS: 99999999999999999999999\n")
	f.Add("\x00\xff")

	f.Fuzz(func(t *testing.T, s string) {
		m := ParseSideChannel(strings.NewReader(s))
		if m.Seconds < 0 || math.IsNaN(m.Seconds) {
			t.Errorf("invalid seconds %v for %q", m.Seconds, s)
		}
		if m.Comparisons < 0 {
			t.Errorf("negative comparisons for %q", s)
		}
	})
}

func TestEncodeInput(t *testing.T) {
	space := &Program{mode: SpaceSeparated}
	assert.Equal(t, "3\n5 1 4", string(space.encodeInput([]int{5, 1, 4})))

	lines := &Program{mode: OnePerLine}
	assert.Equal(t, "3\n5\n1\n4\n", string(lines.encodeInput([]int{5, 1, 4})))

	assert.Equal(t, "0\n", string(space.encodeInput(nil)))
}

func TestParseInputMode(t *testing.T) {
	m, err := ParseInputMode("lines")
	require.NoError(t, err)
	assert.Equal(t, OnePerLine, m)
	m, err = ParseInputMode("")
	require.NoError(t, err)
	assert.Equal(t, SpaceSeparated, m)
	_, err = ParseInputMode("json")
	assert.Error(t, err)
}

func TestNameAndClassInference(t *testing.T) {
	assert.Equal(t, "quick_sort_first_pivot", NameFromPath("/x/executables/quick_sort_first_pivot.exe"))
	assert.Equal(t, "heap_sort", NameFromPath("heap_sort"))

	assert.Equal(t, sorting.Quadratic, InferClass("selection_sort"))
	assert.Equal(t, sorting.Linear, InferClass("radix_sort"))
	assert.Equal(t, sorting.Linearithmic, InferClass("heap_sort"))

	p := NewProgram("", "/bin/insertion_sort", sorting.Unclassified, SpaceSeparated)
	assert.Equal(t, "insertion_sort", p.Name())
	assert.Equal(t, sorting.Quadratic, p.Class())
}

func TestProgramMeasure(t *testing.T) {
	path := testutil.FakeProgram(t, "merge_sort", testutil.FakeProgramOptions{
		Exponent:    2,
		Comparisons: true,
		PrintSorted: true,
		Noise:       true,
	})
	p := NewProgram("", path, sorting.Unclassified, SpaceSeparated)
	p.ValidateOutput = true

	m, err := p.Measure(context.Background(), []int{5, 3, 9, 1})
	require.NoError(t, err)
	assert.InDelta(t, 16e-9, m.Seconds, 1e-12)
	assert.True(t, m.HasComparisons)
	assert.Equal(t, int64(8), m.Comparisons)
	assert.Equal(t, []int{1, 3, 5, 9}, m.Output)
}

func TestProgramMeasureNonZeroExit(t *testing.T) {
	path := testutil.FakeProgram(t, "bubble_sort", testutil.FakeProgramOptions{ExitCode: 139})
	p := NewProgram("", path, sorting.Unclassified, SpaceSeparated)

	_, err := p.Measure(context.Background(), []int{2, 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, trial.ErrTrialFailed))
	assert.Contains(t, err.Error(), "exited with code 139")
}

func TestProgramMeasureMissingExecutable(t *testing.T) {
	p := NewProgram("ghost", filepath.Join(t.TempDir(), "missing"), sorting.Linearithmic, SpaceSeparated)
	_, err := p.Measure(context.Background(), []int{1})
	assert.ErrorIs(t, err, trial.ErrTrialFailed)
}

func TestProgramMeasureUnparseableOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "chatty_sort")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\ncat >/dev/null\necho 'TIME: 0.1' >&2\necho sorted!\n"), 0o755))
	p := NewProgram("", path, sorting.Unclassified, SpaceSeparated)
	p.ValidateOutput = true

	_, err := p.Measure(context.Background(), []int{1, 2})
	assert.ErrorIs(t, err, trial.ErrTrialFailed)
}

func TestFailedProgramDoesNotHaltSweep(t *testing.T) {
	crashy := NewProgram("", testutil.FakeProgram(t, "quick_sort_first_pivot", testutil.FakeProgramOptions{
		Exponent:   2,
		FailAtSize: 100,
	}), sorting.Unclassified, SpaceSeparated)
	steady := NewProgram("", testutil.FakeProgram(t, "heap_sort", testutil.FakeProgramOptions{
		Exponent:    1.1,
		Comparisons: true,
	}), sorting.Unclassified, SpaceSeparated)

	cfg := experiment.DefaultConfig()
	cfg.Sizes = []int{10, 100, 1000}
	cfg.Repeats = 2
	d, err := experiment.NewDriver(cfg, []trial.Subject{crashy, steady})
	require.NoError(t, err)

	table, err := d.Run(context.Background(), dataset.Random)
	require.NoError(t, err)
	require.Equal(t, 6, table.Len())

	rows := table.ForAlgorithm("quick_sort_first_pivot").Rows()
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Failed())
	assert.True(t, rows[1].Failed())
	assert.Equal(t, int64(0), *rows[1].Comparisons)
	assert.False(t, rows[2].Failed())

	heap := table.ForAlgorithm("heap_sort").Rows()
	for _, r := range heap {
		assert.False(t, r.Failed())
		require.NotNil(t, r.Comparisons)
		assert.Equal(t, int64(r.N*r.N/2), *r.Comparisons)
	}
}

func TestCompile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	// A stand-in compiler that copies the source to the output path.
	cc := filepath.Join(dir, "fakecc")
	require.NoError(t, os.WriteFile(cc, []byte("#!/bin/sh\ncp \"$1\" \"$3\" && chmod +x \"$3\"\n"), 0o755))
	src := filepath.Join(dir, "radix_sort.c")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\ncat >/dev/null\necho 'TIME: 0.5' >&2\n"), 0o644))

	c := Compiler{CC: cc, OutDir: filepath.Join(dir, "executables")}
	programs, err := c.CompileAll(context.Background(), []string{src}, SpaceSeparated)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "radix_sort", programs[0].Name())
	assert.Equal(t, sorting.Linear, programs[0].Class())

	m, err := programs[0].Measure(context.Background(), []int{1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.Seconds)
}

func TestCompileFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	cc := filepath.Join(dir, "badcc")
	require.NoError(t, os.WriteFile(cc, []byte("#!/bin/sh\necho 'error: expected ;' >&2\nexit 1\n"), 0o755))

	c := Compiler{CC: cc, OutDir: dir}
	_, err := c.Compile(context.Background(), filepath.Join(dir, "broken.c"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompile)
	assert.Contains(t, err.Error(), "expected ;")
}

func TestFindSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_sort.c", "a_sort.c", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	srcs, err := FindSources(dir, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a_sort.c"), filepath.Join(dir, "b_sort.c")}, srcs)

	_, err = FindSources(dir, ".go")
	assert.Error(t, err)
}
