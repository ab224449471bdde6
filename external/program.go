// Package external compiles and runs sorting programs written in other
// languages. A program reads its input on stdin, times its own sort and
// reports the result on stderr.
package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/trial"
)

// InputMode is how values follow the count line on stdin.
type InputMode int

const (
	// SpaceSeparated writes "count\nv1 v2 v3".
	SpaceSeparated InputMode = iota
	// OnePerLine writes "count\nv1\nv2\nv3\n".
	OnePerLine
)

// ParseInputMode accepts "space" and "lines".
func ParseInputMode(s string) (InputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "space", "spaces":
		return SpaceSeparated, nil
	case "lines", "line", "newline":
		return OnePerLine, nil
	}
	return 0, fmt.Errorf("invalid input mode %q (expected space or lines)", s)
}

// Program is a compiled sorting executable. It implements trial.Measurer.
type Program struct {
	name  string
	path  string
	class sorting.Class
	mode  InputMode
	// ValidateOutput parses stdout as the sorted sequence so the runner can
	// check it. Programs that print nothing must leave it off.
	ValidateOutput bool
}

// NewProgram wraps an executable. An empty name is derived from the file
// name and an unclassified class is inferred from the name.
func NewProgram(name, path string, class sorting.Class, mode InputMode) *Program {
	if name == "" {
		name = NameFromPath(path)
	}
	if class == sorting.Unclassified {
		class = InferClass(name)
	}
	return &Program{name: name, path: path, class: class, mode: mode}
}

func (p *Program) Name() string         { return p.name }
func (p *Program) Class() sorting.Class { return p.class }
func (p *Program) Path() string         { return p.path }

// Measure runs the program once on data. A non-zero exit, or a failure to
// start, is reported as trial.ErrTrialFailed.
func (p *Program) Measure(ctx context.Context, data []int) (trial.Measurement, error) {
	cmd := exec.CommandContext(ctx, p.path)
	cmd.Stdin = bytes.NewReader(p.encodeInput(data))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return trial.Measurement{}, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return trial.Measurement{}, fmt.Errorf("%w: %s exited with code %d at n=%d: %s",
				trial.ErrTrialFailed, p.name, exitErr.ExitCode(), len(data), firstLine(stderr.String()))
		}
		return trial.Measurement{}, fmt.Errorf("%w: failed to run %s: %v", trial.ErrTrialFailed, p.path, err)
	}

	m := ParseSideChannel(&stderr)
	if p.ValidateOutput {
		out, err := parseOutput(stdout.String())
		if err != nil {
			return trial.Measurement{}, fmt.Errorf("%w: %s printed unparseable output: %v", trial.ErrTrialFailed, p.name, err)
		}
		m.Output = out
	}
	return m, nil
}

func (p *Program) encodeInput(data []int) []byte {
	var b bytes.Buffer
	b.Grow(len(data)*8 + 16)
	b.WriteString(strconv.Itoa(len(data)))
	b.WriteByte('\n')
	sep := byte(' ')
	if p.mode == OnePerLine {
		sep = '\n'
	}
	for i, v := range data {
		if i > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(strconv.Itoa(v))
	}
	if p.mode == OnePerLine {
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// NameFromPath derives a program name from its file name, e.g.
// "build/quick_sort_first_pivot.exe" gives "quick_sort_first_pivot".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// InferClass guesses the complexity class from a program name so the
// feasibility filter applies to external programs too.
func InferClass(name string) sorting.Class {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "bubble"), strings.Contains(n, "selection"), strings.Contains(n, "insertion"):
		return sorting.Quadratic
	case strings.Contains(n, "counting"), strings.Contains(n, "radix"), strings.Contains(n, "bucket"):
		return sorting.Linear
	}
	return sorting.Linearithmic
}
