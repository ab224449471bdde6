package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/sorting"
)

// ErrCompile is returned when a source file does not compile. Nothing can be
// measured afterwards, so callers abort.
var ErrCompile = errors.New("compilation failed")

// Compiler builds program sources into executables.
type Compiler struct {
	// CC is the compiler command, "gcc" when empty.
	CC string
	// Flags are appended after "-o <exe>".
	Flags []string
	// OutDir receives the executables.
	OutDir string
}

// DefaultFlags are used when no flags are configured.
var DefaultFlags = []string{"-O2"}

func (c Compiler) cc() string {
	if c.CC == "" {
		return "gcc"
	}
	return c.CC
}

// Compile builds src into OutDir and returns the executable path.
func (c Compiler) Compile(ctx context.Context, src string) (string, error) {
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create executables directory %s: %w", c.OutDir, err)
	}
	exe := filepath.Join(c.OutDir, NameFromPath(src))

	args := append([]string{src, "-o", exe}, c.Flags...)
	cmd := exec.CommandContext(ctx, c.cc(), args...)
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	slog.Info("compiling", "source", src, "executable", exe)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %v: %s", ErrCompile, src, err, strings.TrimSpace(stderr.String()))
	}
	return exe, nil
}

// CompileAll compiles every source and wraps the executables as programs.
// The first failure aborts.
func (c Compiler) CompileAll(ctx context.Context, sources []string, mode InputMode) ([]*Program, error) {
	programs := make([]*Program, 0, len(sources))
	for _, src := range sources {
		exe, err := c.Compile(ctx, src)
		if err != nil {
			return nil, err
		}
		programs = append(programs, NewProgram("", exe, sorting.Unclassified, mode))
	}
	return programs, nil
}

// FindSources lists the files in dir with the given extension, sorted.
func FindSources(dir, ext string) ([]string, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no %s sources in %s", ext, dir)
	}
	sort.Strings(matches)
	return matches, nil
}
