// internal/output/types.go

// Package output persists schema-mapped lead records to the configured sink.
// File formats (json, csv, excel) rewrite the whole result set; database
// sinks (mongodb, postgresql, mysql, sqlite) upsert keyed on the profile URL
// so repeated runs converge instead of duplicating.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/valpere/LeadScrapexter/internal/utils"
)

var outputLogger = utils.NewComponentLogger("output")

// Supported output formats.
const (
	FormatJSON       = "json"
	FormatCSV        = "csv"
	FormatExcel      = "excel"
	FormatMongoDB    = "mongodb"
	FormatPostgreSQL = "postgresql"
	FormatMySQL      = "mysql"
	FormatSQLite     = "sqlite"
)

// KeyField is the record field every sink keys on for upserts.
const KeyField = "url"

// Writer persists a batch of mapped records.
type Writer interface {
	// Write persists records. Database writers upsert by KeyField; file
	// writers replace the destination file.
	Write(ctx context.Context, records []map[string]interface{}) error

	// Close releases the sink's resources.
	Close() error
}

// Flatten converts a nested record into a flat column map with dot-joined
// keys, for tabular sinks. Lists and deeper structures that survive
// flattening are JSON-encoded.
func Flatten(record map[string]interface{}) map[string]interface{} {
	flat := make(map[string]interface{}, len(record))
	flattenInto(flat, "", record)
	return flat
}

func flattenInto(flat map[string]interface{}, prefix string, value map[string]interface{}) {
	for key, v := range value {
		column := key
		if prefix != "" {
			column = prefix + "." + key
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flattenInto(flat, column, nested)
			continue
		}
		flat[column] = v
	}
}

// Columns returns the sorted union of column names across flattened records,
// with the key field first.
func Columns(records []map[string]interface{}) []string {
	set := make(map[string]struct{})
	for _, record := range records {
		for column := range record {
			set[column] = struct{}{}
		}
	}

	columns := make([]string, 0, len(set))
	for column := range set {
		if column == KeyField {
			continue
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	if _, ok := set[KeyField]; ok {
		columns = append([]string{KeyField}, columns...)
	}
	return columns
}

// CellValue renders a flattened value for a tabular cell. Lists join with
// "; " for readability; other composites fall back to JSON.
func CellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, "; ")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, CellValue(item))
		}
		return strings.Join(parts, "; ")
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return fmt.Sprintf("%v", v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

// recordKey extracts the upsert key from a record, flattened or nested.
func recordKey(record map[string]interface{}) string {
	if s, ok := record[KeyField].(string); ok {
		return s
	}
	return ""
}
