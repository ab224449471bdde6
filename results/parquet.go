package results

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/AppajiDheeraj/Sorting-algorithms-benchmark/dataset"
)

// parquetRow is the columnar schema of a results row.
type parquetRow struct {
	Distribution  string  `parquet:"distribution,dict"`
	Algorithm     string  `parquet:"algorithm,dict"`
	N             int64   `parquet:"n"`
	MedianSeconds float64 `parquet:"median_seconds"`
	StdevSeconds  float64 `parquet:"stdev_seconds"`
	Comparisons   *int64  `parquet:"comparisons,optional"`
}

// WriteParquetFile writes the table as a snappy-compressed parquet file.
func WriteParquetFile(path string, t *Table) error {
	rows := make([]parquetRow, 0, t.Len())
	for _, r := range t.Rows() {
		rows = append(rows, parquetRow{
			Distribution:  r.Distribution.String(),
			Algorithm:     r.Algorithm,
			N:             int64(r.N),
			MedianSeconds: r.MedianSeconds,
			StdevSeconds:  r.StdevSeconds,
			Comparisons:   r.Comparisons,
		})
	}
	if err := parquet.WriteFile(path, rows, parquet.Compression(&parquet.Snappy)); err != nil {
		return fmt.Errorf("failed to write parquet file %s: %w", path, err)
	}
	return nil
}

// ReadParquetFile reads a table written by WriteParquetFile.
func ReadParquetFile(path string) (*Table, error) {
	rows, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	t := &Table{rows: make([]Row, 0, len(rows))}
	for i, pr := range rows {
		dist, err := dataset.ParseDistribution(pr.Distribution)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformed, path, i, err)
		}
		t.rows = append(t.rows, Row{
			Distribution:  dist,
			Algorithm:     pr.Algorithm,
			N:             int(pr.N),
			MedianSeconds: pr.MedianSeconds,
			StdevSeconds:  pr.StdevSeconds,
			Comparisons:   pr.Comparisons,
		})
	}
	return t, nil
}
