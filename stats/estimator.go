package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/fit"
)

// ComplexityClass is the bucket a fitted slope falls into.
type ComplexityClass string

const (
	ClassQuadratic          ComplexityClass = "quadratic"
	ClassLinearithmicLinear ComplexityClass = "linearithmic_or_linear"
	ClassLinear             ComplexityClass = "linear"
	ClassSublinear          ComplexityClass = "sublinear"
	ClassUnknown            ComplexityClass = "unknown"
)

// Describe is the human form used in conclusions and reports.
func (c ComplexityClass) Describe() string {
	switch c {
	case ClassQuadratic:
		return "~O(n^2)"
	case ClassLinearithmicLinear:
		return "~O(n log n) or O(n)"
	case ClassLinear:
		return "~O(n)"
	case ClassSublinear:
		return "sub-linear (likely noise)"
	}
	return "unclear"
}

// Band is an inclusive slope interval.
type Band struct {
	Min, Max float64
}

func (b Band) contains(slope float64) bool { return slope >= b.Min && slope <= b.Max }

// Bands are the classification thresholds, checked in order: quadratic,
// linearithmic-or-linear, linear (upper bound exclusive), sub-linear.
type Bands struct {
	Quadratic          Band
	LinearithmicLinear Band
	Linear             Band
	SublinearBelow     float64
}

// DefaultBands are the heuristic thresholds used unless configured otherwise.
var DefaultBands = Bands{
	Quadratic:          Band{Min: 1.8, Max: 2.2},
	LinearithmicLinear: Band{Min: 1.0, Max: 1.3},
	Linear:             Band{Min: 0.8, Max: 1.0},
	SublinearBelow:     0.8,
}

// Classify maps a slope to a complexity class.
func (b Bands) Classify(slope float64) ComplexityClass {
	switch {
	case math.IsNaN(slope) || math.IsInf(slope, 0):
		return ClassUnknown
	case b.Quadratic.contains(slope):
		return ClassQuadratic
	case b.LinearithmicLinear.contains(slope):
		return ClassLinearithmicLinear
	case slope >= b.Linear.Min && slope < b.Linear.Max:
		return ClassLinear
	case slope < b.SublinearBelow:
		return ClassSublinear
	}
	return ClassUnknown
}

// Validate checks that every band is well formed.
func (b Bands) Validate() error {
	for name, band := range map[string]Band{
		"quadratic":    b.Quadratic,
		"linearithmic": b.LinearithmicLinear,
		"linear":       b.Linear,
	} {
		if band.Min > band.Max {
			return fmt.Errorf("%s band min %.3f exceeds max %.3f", name, band.Min, band.Max)
		}
	}
	return nil
}

// DefaultMinPoints is the fewest valid points a slope is fitted from.
const DefaultMinPoints = 4

// Point is one aggregated measurement of an algorithm.
type Point struct {
	N       int
	Seconds float64
}

// Estimate is the fitted growth exponent of one algorithm. Valid is false
// when there were too few usable points, in which case Slope is NaN and
// Class is ClassUnknown.
type Estimate struct {
	Algorithm string
	Slope     float64
	Valid     bool
	Points    int
	Class     ComplexityClass
}

func (e Estimate) String() string {
	if !e.Valid {
		return fmt.Sprintf("%s: insufficient data", e.Algorithm)
	}
	return fmt.Sprintf("%s: slope %.3f (%s)", e.Algorithm, e.Slope, e.Class.Describe())
}

// Estimator fits log-log slopes. The zero value uses DefaultMinPoints and
// DefaultBands.
type Estimator struct {
	MinPoints int
	Bands     *Bands
}

func (e Estimator) minPoints() int {
	if e.MinPoints > 0 {
		return e.MinPoints
	}
	return DefaultMinPoints
}

func (e Estimator) bands() Bands {
	if e.Bands != nil {
		return *e.Bands
	}
	return DefaultBands
}

// Slope fits log10(time) against log10(size) by least squares. Points with
// non-positive, infinite or NaN time, or size below 1, are dropped first.
// ok is false when fewer than MinPoints remain or they share a single size.
func (e Estimator) Slope(points []Point) (slope float64, used int, ok bool) {
	var xs, ys []float64
	sizes := make(map[int]struct{})
	for _, p := range points {
		if p.N < 1 || !(p.Seconds > 0) || math.IsInf(p.Seconds, 0) {
			continue
		}
		xs = append(xs, math.Log10(float64(p.N)))
		ys = append(ys, math.Log10(p.Seconds))
		sizes[p.N] = struct{}{}
	}
	if len(xs) < e.minPoints() || len(sizes) < 2 {
		return math.NaN(), len(xs), false
	}
	res := fit.PolynomialRegression(xs, ys, nil, 1)
	return res.Coefficients[1], len(xs), true
}

// Estimate fits and classifies one algorithm's series. Insufficient data is
// a normal outcome reported through Estimate.Valid.
func (e Estimator) Estimate(algorithm string, points []Point) Estimate {
	slope, used, ok := e.Slope(points)
	est := Estimate{Algorithm: algorithm, Slope: slope, Valid: ok, Points: used, Class: ClassUnknown}
	if ok {
		est.Class = e.bands().Classify(slope)
	}
	return est
}

// EstimateAll estimates every series in the map, ordered by algorithm name.
func (e Estimator) EstimateAll(series map[string][]Point) []Estimate {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Estimate, 0, len(names))
	for _, name := range names {
		out = append(out, e.Estimate(name, series[name]))
	}
	return out
}
