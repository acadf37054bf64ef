// internal/output/json.go
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONWriter writes the whole result set as one pretty-printed document with
// a small envelope, so dumps are self-describing and diff-friendly.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a JSON file writer.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("JSON output path is required")
	}
	return &JSONWriter{path: path}, nil
}

type jsonEnvelope struct {
	ScrapedAt string                   `json:"scraped_at"`
	Count     int                      `json:"count"`
	Results   []map[string]interface{} `json:"results"`
}

// Write implements Writer.
func (w *JSONWriter) Write(ctx context.Context, records []map[string]interface{}) error {
	envelope := jsonEnvelope{
		ScrapedAt: time.Now().UTC().Format(time.RFC3339),
		Count:     len(records),
		Results:   records,
	}
	if envelope.Results == nil {
		envelope.Results = []map[string]interface{}{}
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}

	outputLogger.Infof("wrote %d records to %s", len(records), w.path)
	return nil
}

// Close implements Writer.
func (w *JSONWriter) Close() error { return nil }
