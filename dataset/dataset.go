package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Distribution is the ordering pattern of a generated input.
type Distribution string

const (
	Random       Distribution = "random"
	Sorted       Distribution = "sorted"
	Reverse      Distribution = "reverse"
	NearlySorted Distribution = "nearly_sorted"
)

// All lists the supported distributions in reporting order.
var All = []Distribution{Random, Sorted, Reverse, NearlySorted}

var (
	ErrInvalidDistribution = errors.New("invalid distribution")
	ErrInvalidSize         = errors.New("invalid dataset size")
)

// RandomUpperBound is the inclusive upper bound of random values for
// in-process experiments.
const RandomUpperBound = 1_000_000

// ParseDistribution maps a label to a Distribution. The label
// "reverse_sorted" used by persisted test-data files is accepted as Reverse.
func ParseDistribution(label string) (Distribution, error) {
	switch Distribution(strings.ToLower(strings.TrimSpace(label))) {
	case Random:
		return Random, nil
	case Sorted:
		return Sorted, nil
	case Reverse, "reverse_sorted":
		return Reverse, nil
	case NearlySorted, "nearly-sorted":
		return NearlySorted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDistribution, label)
}

// ParseDistributions parses a list of labels, failing on the first unknown one.
func ParseDistributions(labels []string) ([]Distribution, error) {
	dists := make([]Distribution, 0, len(labels))
	for _, l := range labels {
		d, err := ParseDistribution(l)
		if err != nil {
			return nil, err
		}
		dists = append(dists, d)
	}
	return dists, nil
}

func (d Distribution) String() string { return string(d) }

// Title is the display form, e.g. "Nearly Sorted".
func (d Distribution) Title() string {
	words := strings.Split(string(d), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Spec identifies one experiment point.
type Spec struct {
	Size         int
	Distribution Distribution
	Seed         int64
}

// Target selects the value range used for random data.
type Target int

const (
	// InProcess draws random values from [0, RandomUpperBound].
	InProcess Target = iota
	// Compiled draws random values from [0, 2*size], the range used for
	// persisted test-data files fed to external programs.
	Compiled
)

// NewRand returns the seeded source an experiment threads through the
// generator. The seed is fixed once per run.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Generator produces datasets from a shared pseudo-random source. It is not
// safe for concurrent use; every call advances the source.
type Generator struct {
	rng    *rand.Rand
	target Target
}

func NewGenerator(rng *rand.Rand, target Target) *Generator {
	return &Generator{rng: rng, target: target}
}

func (g *Generator) upperBound(size int) int {
	if g.target == Compiled {
		return 2 * size
	}
	return RandomUpperBound
}

// Generate returns a new dataset of exactly size elements.
//
// reverse is size-1 down to 0, so it is a permutation of sorted.
// nearly_sorted applies max(1, size/100) random index-pair swaps to sorted.
func (g *Generator) Generate(size int, dist Distribution) ([]int, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	data := make([]int, size)
	switch dist {
	case Random:
		bound := g.upperBound(size) + 1
		for i := range data {
			data[i] = g.rng.IntN(bound)
		}
	case Sorted:
		for i := range data {
			data[i] = i
		}
	case Reverse:
		for i := range data {
			data[i] = size - 1 - i
		}
	case NearlySorted:
		for i := range data {
			data[i] = i
		}
		swaps := max(1, size/100)
		for range swaps {
			i := g.rng.IntN(size)
			j := g.rng.IntN(size)
			data[i], data[j] = data[j], data[i]
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDistribution, string(dist))
	}
	return data, nil
}

// Generate is a convenience wrapper for a single in-process dataset.
func Generate(size int, dist Distribution, rng *rand.Rand) ([]int, error) {
	return NewGenerator(rng, InProcess).Generate(size, dist)
}
