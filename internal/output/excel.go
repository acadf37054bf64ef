// internal/output/excel.go
package output

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter writes flattened records to a single-sheet workbook with a bold
// header row and frozen pane, the shape sales teams expect to filter in.
type ExcelWriter struct {
	path  string
	sheet string
}

// NewExcelWriter creates an Excel workbook writer.
func NewExcelWriter(path string) (*ExcelWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("Excel output path is required")
	}
	return &ExcelWriter{path: path, sheet: "Leads"}, nil
}

// Write implements Writer.
func (w *ExcelWriter) Write(ctx context.Context, records []map[string]interface{}) error {
	flat := make([]map[string]interface{}, len(records))
	for i, record := range records {
		flat[i] = Flatten(record)
	}
	columns := Columns(flat)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("invalid header coordinate: %w", err)
		}
		if err := f.SetCellValue(w.sheet, cell, column); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(w.sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for r, record := range flat {
		for c, column := range columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("invalid cell coordinate: %w", err)
			}

			value := record[column]
			switch v := value.(type) {
			case nil:
				continue
			case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool, string:
				err = f.SetCellValue(w.sheet, cell, v)
			default:
				err = f.SetCellValue(w.sheet, cell, CellValue(v))
			}
			if err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", w.path, err)
	}

	outputLogger.Infof("wrote %d records to %s", len(records), w.path)
	return nil
}

// Close implements Writer.
func (w *ExcelWriter) Close() error { return nil }
