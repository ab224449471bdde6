package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
)

// Columns is the stable persisted column set.
var Columns = []string{"distribution", "algorithm", "n", "median_seconds", "stdev_seconds", "comparisons"}

// ErrMalformed marks a results file that cannot be parsed.
var ErrMalformed = errors.New("malformed results")

// WriteCSV writes the table with a header row. Comparisons are left empty when
// absent and failed medians are written as +Inf.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	record := make([]string, len(Columns))
	for _, r := range t.Rows() {
		record[0] = r.Distribution.String()
		record[1] = r.Algorithm
		record[2] = strconv.Itoa(r.N)
		record[3] = strconv.FormatFloat(r.MedianSeconds, 'g', -1, 64)
		record[4] = strconv.FormatFloat(r.StdevSeconds, 'g', -1, 64)
		record[5] = ""
		if r.Comparisons != nil {
			record[5] = strconv.FormatInt(*r.Comparisons, 10)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV. Files without the comparisons
// column are accepted.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, col := range Columns[:5] {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformed, col)
		}
	}
	compIdx, hasComp := idx["comparisons"]

	t := &Table{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		field := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		dist, err := dataset.ParseDistribution(field("distribution"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		n, err := strconv.Atoi(field("n"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid n %q", ErrMalformed, line, field("n"))
		}
		median, err := strconv.ParseFloat(field("median_seconds"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid median_seconds %q", ErrMalformed, line, field("median_seconds"))
		}
		stdev, err := strconv.ParseFloat(field("stdev_seconds"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid stdev_seconds %q", ErrMalformed, line, field("stdev_seconds"))
		}

		row := Row{
			Distribution:  dist,
			Algorithm:     field("algorithm"),
			N:             n,
			MedianSeconds: median,
			StdevSeconds:  stdev,
		}
		if hasComp && compIdx < len(rec) {
			if s := strings.TrimSpace(rec[compIdx]); s != "" {
				c, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: invalid comparisons %q", ErrMalformed, line, s)
				}
				row.Comparisons = &c
			}
		}
		t.Append(row)
	}
	return t, nil
}
