package external

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/trial"
)

const (
	timePrefix        = "TIME:"
	comparisonsPrefix = "COMPARISONS:"
)

// ParseSideChannel reads the TIME:<seconds> and COMPARISONS:<n> lines an
// external program writes to stderr. Any other or unparseable line is
// ignored; the last valid value of each tag wins. Seconds is +Inf when no
// valid TIME line was seen.
func ParseSideChannel(r io.Reader) trial.Measurement {
	m := trial.Measurement{Seconds: math.Inf(1)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, timePrefix):
			v, err := strconv.ParseFloat(strings.TrimSpace(line[len(timePrefix):]), 64)
			if err != nil || v < 0 || math.IsNaN(v) {
				continue
			}
			m.Seconds = v
		case strings.HasPrefix(line, comparisonsPrefix):
			v, err := strconv.ParseInt(strings.TrimSpace(line[len(comparisonsPrefix):]), 10, 64)
			if err != nil || v < 0 {
				continue
			}
			m.Comparisons = v
			m.HasComparisons = true
		}
	}
	return m
}

// parseOutput reads whitespace separated integers from a program's stdout.
func parseOutput(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
