// internal/output/sqlite.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteWriter upserts flattened lead rows into a local database file. Handy
// for small runs that still want queryable, converging storage without a
// server.
type SQLiteWriter struct {
	db    *sql.DB
	table string
}

// NewSQLiteWriter opens (or creates) the database file.
func NewSQLiteWriter(path, table string) (*SQLiteWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}
	if table == "" {
		return nil, fmt.Errorf("SQLite table name is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	return &SQLiteWriter{db: db, table: table}, nil
}

// Write implements Writer.
func (w *SQLiteWriter) Write(ctx context.Context, records []map[string]interface{}) error {
	flat := make([]map[string]interface{}, len(records))
	for i, record := range records {
		flat[i] = Flatten(record)
	}
	columns := Columns(flat)

	if err := w.ensureTable(ctx, columns); err != nil {
		return err
	}

	upserted := 0
	for _, record := range flat {
		if recordKey(record) == "" {
			outputLogger.Warnf("skipping record without %s field", KeyField)
			continue
		}
		if err := w.upsert(ctx, columns, record); err != nil {
			return err
		}
		upserted++
	}

	outputLogger.Infof("upserted %d rows into %s", upserted, w.table)
	return nil
}

func (w *SQLiteWriter) ensureTable(ctx context.Context, columns []string) error {
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == KeyField {
			defs = append(defs, liteQuote(column)+" TEXT PRIMARY KEY")
		} else {
			defs = append(defs, liteQuote(column)+" TEXT")
		}
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", liteQuote(w.table), strings.Join(defs, ", "))
	if _, err := w.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}

	existing, err := w.existingColumns(ctx)
	if err != nil {
		return err
	}
	for _, column := range columns {
		if _, ok := existing[column]; ok {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", liteQuote(w.table), liteQuote(column))
		if _, err := w.db.ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("failed to add column %s: %w", column, err)
		}
	}
	return nil
}

func (w *SQLiteWriter) existingColumns(ctx context.Context) (map[string]struct{}, error) {
	rows, err := w.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", liteQuote(w.table)))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", w.table, err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		existing[name] = struct{}{}
	}
	return existing, rows.Err()
}

func (w *SQLiteWriter) upsert(ctx context.Context, columns []string, record map[string]interface{}) error {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))

	for i, column := range columns {
		quoted[i] = liteQuote(column)
		placeholders[i] = "?"
		args[i] = sqlValue(record[column])
	}

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		liteQuote(w.table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert %v: %w", record[KeyField], err)
	}
	return nil
}

// Close implements Writer.
func (w *SQLiteWriter) Close() error {
	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

func liteQuote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
