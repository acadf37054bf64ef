// internal/output/manager.go
package output

import (
	"context"
	"fmt"

	"github.com/valpere/LeadScrapexter/internal/config"
)

// NewWriter builds the writer the configuration asks for.
func NewWriter(ctx context.Context, cfg config.OutputConfig) (Writer, error) {
	switch cfg.Format {
	case FormatJSON, "":
		return NewJSONWriter(cfg.File)
	case FormatCSV:
		return NewCSVWriter(cfg.File)
	case FormatExcel:
		return NewExcelWriter(cfg.File)
	case FormatMongoDB:
		return NewMongoWriter(ctx, cfg.MongoDB)
	case FormatPostgreSQL:
		return NewPostgresWriter(cfg.Database.DSN, cfg.Database.Table)
	case FormatMySQL:
		return NewMySQLWriter(cfg.Database.DSN, cfg.Database.Table)
	case FormatSQLite:
		return NewSQLiteWriter(cfg.Database.DSN, cfg.Database.Table)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
}
