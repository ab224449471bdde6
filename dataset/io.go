package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^n_(\d+)_(\w+)\.txt$`)

// FileName returns the persisted test-data file name for a grid point.
func FileName(size int, dist Distribution) string {
	return fmt.Sprintf("n_%d_%s.txt", size, dist)
}

// ParseFileName extracts the size and distribution from a name produced by
// FileName. ok is false for anything else.
func ParseFileName(name string) (size int, dist Distribution, ok bool) {
	m := fileNamePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, "", false
	}
	size, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	dist, err = ParseDistribution(m[2])
	if err != nil {
		return 0, "", false
	}
	return size, dist, true
}

// WriteFile writes one integer per line. With withCount the first line
// carries the element count.
func WriteFile(path string, data []int, withCount bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file %s: %w", path, err)
	}

	w := bufio.NewWriterSize(file, 64*1024)
	if withCount {
		w.WriteString(strconv.Itoa(len(data)))
		w.WriteByte('\n')
	}
	for _, v := range data {
		w.WriteString(strconv.Itoa(v))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write dataset file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close dataset file %s: %w", path, err)
	}
	return nil
}

// maxCountHint caps the capacity preallocated from a declared count.
const maxCountHint = 1 << 20

// ReadFile reads integers, one per line, skipping blank lines. With
// withCount the first value is the element count and is checked.
func ReadFile(path string, withCount bool) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file %s: %w", path, err)
	}
	defer file.Close()

	var data []int
	expected := -1
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("invalid integer at line %d in %s: %q", lineNum, path, line)
		}
		if withCount && expected < 0 {
			if v < 0 {
				return nil, fmt.Errorf("negative element count %d at line %d in %s", v, lineNum, path)
			}
			expected = v
			data = make([]int, 0, min(v, maxCountHint))
			continue
		}
		data = append(data, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset file %s: %w", path, err)
	}
	if withCount && expected != len(data) {
		return nil, fmt.Errorf("dataset file %s declares %d values, found %d", path, expected, len(data))
	}
	return data, nil
}

// GenerateAndPersist generates one dataset and writes it under dir using
// FileName. It returns the file path.
func (g *Generator) GenerateAndPersist(dir string, size int, dist Distribution) (string, error) {
	data, err := g.Generate(size, dist)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(size, dist))
	if err := WriteFile(path, data, false); err != nil {
		return "", err
	}
	return path, nil
}

// GenerateFiles writes the full sizes x distributions grid under dir.
func (g *Generator) GenerateFiles(dir string, sizes []int, dists []Distribution) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create test data directory %s: %w", dir, err)
	}
	paths := make([]string, 0, len(sizes)*len(dists))
	for _, n := range sizes {
		for _, d := range dists {
			p, err := g.GenerateAndPersist(dir, n, d)
			if err != nil {
				return paths, err
			}
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// File is a persisted dataset discovered on disk.
type File struct {
	Path         string
	Size         int
	Distribution Distribution
}

// ListFiles returns the recognised test-data files in dir ordered by size,
// then distribution. Unrecognised names are ignored.
func ListFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read test data directory %s: %w", dir, err)
	}
	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		size, dist, ok := ParseFileName(e.Name())
		if !ok {
			continue
		}
		files = append(files, File{Path: filepath.Join(dir, e.Name()), Size: size, Distribution: dist})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size < files[j].Size
		}
		return files[i].Distribution < files[j].Distribution
	})
	return files, nil
}
