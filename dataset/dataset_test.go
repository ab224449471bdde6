package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	for _, dist := range All {
		for _, size := range []int{2, 17, 1000} {
			a, err := Generate(size, dist, NewRand(42))
			if err != nil {
				t.Fatalf("Generate(%d, %s) unexpected error: %v", size, dist, err)
			}
			b, err := Generate(size, dist, NewRand(42))
			if err != nil {
				t.Fatalf("Generate(%d, %s) unexpected error: %v", size, dist, err)
			}
			if !slices.Equal(a, b) {
				t.Errorf("Generate(%d, %s) not deterministic for equal seeds", size, dist)
			}
		}
	}
}

func TestGenerateLength(t *testing.T) {
	rng := NewRand(7)
	for _, dist := range All {
		for _, size := range []int{1, 2, 99, 100, 101, 5000} {
			data, err := Generate(size, dist, rng)
			if err != nil {
				t.Fatalf("Generate(%d, %s) unexpected error: %v", size, dist, err)
			}
			if len(data) != size {
				t.Errorf("Generate(%d, %s) returned %d elements", size, dist, len(data))
			}
		}
	}
}

func TestGenerateShapes(t *testing.T) {
	rng := NewRand(1)

	sorted, _ := Generate(500, Sorted, rng)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] < sorted[i-1] {
			t.Fatalf("sorted output decreases at index %d", i)
		}
	}
	if sorted[0] != 0 || sorted[499] != 499 {
		t.Errorf("sorted bounds = %d..%d, want 0..499", sorted[0], sorted[499])
	}

	reverse, _ := Generate(500, Reverse, rng)
	for i := 1; i < len(reverse); i++ {
		if reverse[i] > reverse[i-1] {
			t.Fatalf("reverse output increases at index %d", i)
		}
	}
	if reverse[0] != 499 || reverse[499] != 0 {
		t.Errorf("reverse bounds = %d..%d, want 499..0", reverse[0], reverse[499])
	}

	random, _ := Generate(2000, Random, rng)
	for _, v := range random {
		if v < 0 || v > RandomUpperBound {
			t.Fatalf("random value %d outside [0, %d]", v, RandomUpperBound)
		}
	}
}

func TestNearlySortedIsPermutation(t *testing.T) {
	data, err := Generate(1000, NearlySorted, NewRand(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp := slices.Clone(data)
	slices.Sort(cp)
	for i, v := range cp {
		if v != i {
			t.Fatalf("nearly sorted is not a permutation of 0..999 (index %d = %d)", i, v)
		}
	}

	displaced := 0
	for i, v := range data {
		if v != i {
			displaced++
		}
	}
	// 10 swaps move at most 20 elements.
	if displaced > 20 {
		t.Errorf("nearly sorted displaced %d elements, want <= 20", displaced)
	}
}

func TestCompiledTargetBound(t *testing.T) {
	g := NewGenerator(NewRand(5), Compiled)
	data, err := g.Generate(50, Random)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range data {
		if v > 100 {
			t.Fatalf("compiled random value %d exceeds 2*size", v)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := Generate(10, Distribution("zigzag"), NewRand(1)); !errors.Is(err, ErrInvalidDistribution) {
		t.Errorf("expected ErrInvalidDistribution, got %v", err)
	}
	if _, err := Generate(0, Random, NewRand(1)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestParseDistribution(t *testing.T) {
	tests := []struct {
		input   string
		want    Distribution
		wantErr bool
	}{
		{"random", Random, false},
		{"Sorted", Sorted, false},
		{"reverse", Reverse, false},
		{"reverse_sorted", Reverse, false},
		{"nearly_sorted", NearlySorted, false},
		{" random ", Random, false},
		{"", "", true},
		{"shuffled", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDistribution(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDistribution) {
				t.Errorf("ParseDistribution(%q) expected ErrInvalidDistribution, got %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDistribution(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	if got := NearlySorted.Title(); got != "Nearly Sorted" {
		t.Errorf("Title() = %q", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	data := []int{5, 3, 9, 0, 12}

	plain := filepath.Join(tmpDir, "plain.txt")
	if err := WriteFile(plain, data, false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(plain, false)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !slices.Equal(got, data) {
		t.Errorf("ReadFile = %v, want %v", got, data)
	}

	counted := filepath.Join(tmpDir, "counted.txt")
	if err := WriteFile(counted, data, true); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err = ReadFile(counted, true)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !slices.Equal(got, data) {
		t.Errorf("ReadFile(counted) = %v, want %v", got, data)
	}
}

func TestReadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	bad := filepath.Join(tmpDir, "bad.txt")
	os.WriteFile(bad, []byte("1\n2\nthree\n"), 0644)
	if _, err := ReadFile(bad, false); err == nil {
		t.Error("expected error for non-integer line")
	}

	short := filepath.Join(tmpDir, "short.txt")
	os.WriteFile(short, []byte("4\n1\n2\n"), 0644)
	if _, err := ReadFile(short, true); err == nil {
		t.Error("expected error for count mismatch")
	}

	if _, err := ReadFile(filepath.Join(tmpDir, "missing.txt"), false); err == nil {
		t.Error("expected error for missing file")
	}

	negative := filepath.Join(tmpDir, "negative.txt")
	os.WriteFile(negative, []byte("-1\n1\n2\n"), 0644)
	if _, err := ReadFile(negative, true); err == nil || !strings.Contains(err.Error(), "negative element count") {
		t.Errorf("ReadFile(negative count) error = %v, want negative element count", err)
	}

	huge := filepath.Join(tmpDir, "huge.txt")
	os.WriteFile(huge, []byte("9000000000000\n1\n"), 0644)
	if _, err := ReadFile(huge, true); err == nil {
		t.Error("expected error for oversized count")
	}
}

func TestWriteFileErrors(t *testing.T) {
	tmpDir := t.TempDir()
	if err := WriteFile(tmpDir, []int{1, 2}, false); err == nil {
		t.Error("expected error writing over a directory")
	}
	if err := WriteFile(filepath.Join(tmpDir, "missing", "n_2_random.txt"), []int{1, 2}, true); err == nil {
		t.Error("expected error for missing parent directory")
	}
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name string
		size int
		dist Distribution
		ok   bool
	}{
		{"n_100_random.txt", 100, Random, true},
		{"n_5000_reverse_sorted.txt", 5000, Reverse, true},
		{"/tmp/test_data/n_25_nearly_sorted.txt", 25, NearlySorted, true},
		{"n_100_random.csv", 0, "", false},
		{"n_x_random.txt", 0, "", false},
		{"n_100_bogus.txt", 0, "", false},
	}
	for _, tt := range tests {
		size, dist, ok := ParseFileName(tt.name)
		if ok != tt.ok || size != tt.size || dist != tt.dist {
			t.Errorf("ParseFileName(%q) = %d, %q, %v; want %d, %q, %v", tt.name, size, dist, ok, tt.size, tt.dist, tt.ok)
		}
	}
}

func TestGenerateFilesAndList(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "test_data")
	g := NewGenerator(NewRand(42), Compiled)

	paths, err := g.GenerateFiles(tmpDir, []int{1000, 100}, []Distribution{Sorted, Random})
	if err != nil {
		t.Fatalf("GenerateFiles: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %d", len(paths))
	}
	os.WriteFile(filepath.Join(tmpDir, "README"), []byte("ignored"), 0644)

	files, err := ListFiles(tmpDir)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("ListFiles returned %d files, want 4", len(files))
	}
	want := []struct {
		size int
		dist Distribution
	}{{100, Random}, {100, Sorted}, {1000, Random}, {1000, Sorted}}
	for i, w := range want {
		if files[i].Size != w.size || files[i].Distribution != w.dist {
			t.Errorf("files[%d] = %d/%s, want %d/%s", i, files[i].Size, files[i].Distribution, w.size, w.dist)
		}
	}

	data, err := ReadFile(files[2].Path, false)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 1000 {
		t.Errorf("persisted random file has %d values, want 1000", len(data))
	}
}

func FuzzParseFileName(f *testing.F) {
	f.Add("n_100_random.txt")
	f.Add("n_0_sorted.txt")
	f.Add("n__.txt")
	f.Add("")
	f.Add("n_99999999999999999999_random.txt")

	f.Fuzz(func(t *testing.T, s string) {
		size, dist, ok := ParseFileName(s)
		if ok && (size < 0 || dist == "") {
			t.Errorf("ParseFileName(%q) accepted invalid result %d/%q", s, size, dist)
		}
	})
}
