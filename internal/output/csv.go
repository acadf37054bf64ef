// internal/output/csv.go
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVWriter flattens nested records to dot-joined columns and writes one CSV
// file per run, header included.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a CSV file writer.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("CSV output path is required")
	}
	return &CSVWriter{path: path}, nil
}

// Write implements Writer.
func (w *CSVWriter) Write(ctx context.Context, records []map[string]interface{}) error {
	flat := make([]map[string]interface{}, len(records))
	for i, record := range records {
		flat[i] = Flatten(record)
	}
	columns := Columns(flat)

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", w.path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, record := range flat {
		for i, column := range columns {
			row[i] = CellValue(record[column])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	outputLogger.Infof("wrote %d records to %s", len(records), w.path)
	return nil
}

// Close implements Writer.
func (w *CSVWriter) Close() error { return nil }
