// internal/output/mysql.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLWriter upserts flattened lead rows keyed on the profile URL, using
// INSERT ... ON DUPLICATE KEY UPDATE against a primary key on the URL column.
type MySQLWriter struct {
	db    *sql.DB
	table string
}

// NewMySQLWriter connects to MySQL.
func NewMySQLWriter(dsn, table string) (*MySQLWriter, error) {
	if dsn == "" {
		return nil, fmt.Errorf("MySQL DSN is required")
	}
	if table == "" {
		return nil, fmt.Errorf("MySQL table name is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &MySQLWriter{db: db, table: table}, nil
}

// Write implements Writer.
func (w *MySQLWriter) Write(ctx context.Context, records []map[string]interface{}) error {
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

func (w *MySQLWriter) ensureTable(ctx context.Context, columns []string) error {
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == KeyField {
			// VARCHAR because MySQL cannot index unbounded TEXT.
			defs = append(defs, myQuote(column)+" VARCHAR(512) PRIMARY KEY")
		} else {
			defs = append(defs, myQuote(column)+" TEXT")
		}
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", myQuote(w.table), strings.Join(defs, ", "))
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
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT", myQuote(w.table), myQuote(column))
		if _, err := w.db.ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("failed to add column %s: %w", column, err)
		}
	}
	return nil
}

func (w *MySQLWriter) existingColumns(ctx context.Context) (map[string]struct{}, error) {
	rows, err := w.db.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?",
		w.table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", w.table, err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		existing[column] = struct{}{}
	}
	return existing, rows.Err()
}

func (w *MySQLWriter) upsert(ctx context.Context, columns []string, record map[string]interface{}) error {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns))
	args := make([]interface{}, len(columns))

	for i, column := range columns {
		quoted[i] = myQuote(column)
		placeholders[i] = "?"
		args[i] = sqlValue(record[column])
		if column != KeyField {
			updates = append(updates, quoted[i]+" = VALUES("+quoted[i]+")")
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		myQuote(w.table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := w.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert %v: %w", record[KeyField], err)
	}
	return nil
}

// Close implements Writer.
func (w *MySQLWriter) Close() error {
	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

func myQuote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}
