// internal/output/postgresql.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresWriter upserts flattened lead rows keyed on the profile URL. The
// table is created on first write and widened when a batch carries columns
// the table has not seen yet.
type PostgresWriter struct {
	db    *sql.DB
	table string
}

// NewPostgresWriter connects to PostgreSQL.
func NewPostgresWriter(dsn, table string) (*PostgresWriter, error) {
	if dsn == "" {
		return nil, fmt.Errorf("PostgreSQL DSN is required")
	}
	if table == "" {
		return nil, fmt.Errorf("PostgreSQL table name is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresWriter{db: db, table: table}, nil
}

// Write implements Writer.
func (w *PostgresWriter) Write(ctx context.Context, records []map[string]interface{}) error {
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

func (w *PostgresWriter) ensureTable(ctx context.Context, columns []string) error {
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == KeyField {
			defs = append(defs, pqQuote(column)+" TEXT PRIMARY KEY")
		} else {
			defs = append(defs, pqQuote(column)+" TEXT")
		}
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pqQuote(w.table), strings.Join(defs, ", "))
	if _, err := w.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}

	// Widen an existing table for columns this batch introduces.
	for _, column := range columns {
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s TEXT", pqQuote(w.table), pqQuote(column))
		if _, err := w.db.ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("failed to add column %s: %w", column, err)
		}
	}
	return nil
}

func (w *PostgresWriter) upsert(ctx context.Context, columns []string, record map[string]interface{}) error {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns))
	args := make([]interface{}, len(columns))

	for i, column := range columns {
		quoted[i] = pqQuote(column)
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = sqlValue(record[column])
		if column != KeyField {
			updates = append(updates, quoted[i]+" = EXCLUDED."+quoted[i])
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		pqQuote(w.table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		pqQuote(KeyField),
		strings.Join(updates, ", "),
	)

	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert %v: %w", record[KeyField], err)
	}
	return nil
}

// Close implements Writer.
func (w *PostgresWriter) Close() error {
	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

// sqlValue renders a flattened value for a TEXT column; nil stays NULL.
func sqlValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	return CellValue(value)
}

func pqQuote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
