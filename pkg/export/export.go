// Package export writes parsed records to a SQL database: SQLite through
// modernc.org/sqlite or PostgreSQL through lib/pq.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ccollicutt/logframe/pkg/record"
)

// dialect holds the per-driver differences.
type dialect struct {
	driver      string
	placeholder func(n int) string
	boolType    string
	timeType    string
}

var (
	sqliteDialect = dialect{
		driver:      "sqlite",
		placeholder: func(int) string { return "?" },
		boolType:    "INTEGER",
		timeType:    "DATETIME",
	}
	postgresDialect = dialect{
		driver:      "postgres",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		boolType:    "BOOLEAN",
		timeType:    "TIMESTAMPTZ",
	}
)

// placeholders returns n comma-separated bind parameters.
func (d dialect) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// parseDSN picks a dialect from the DSN scheme. "sqlite://path",
// "sqlite:path" and "file:path" select SQLite; "postgres://" and
// "postgresql://" select PostgreSQL with the DSN passed through.
func parseDSN(dsn string) (dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgresDialect, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqliteDialect, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqliteDialect, strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.HasPrefix(dsn, "file:"):
		return sqliteDialect, dsn, nil
	default:
		return dialect{}, "", fmt.Errorf("unsupported export DSN %q (want sqlite://, file: or postgres://)", dsn)
	}
}

// Exporter writes logs to a database.
type Exporter struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to dsn and creates the tables if needed.
func Open(ctx context.Context, dsn string) (*Exporter, error) {
	d, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if d.driver == sqliteDialect.driver {
		// One writer at a time avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	e := &Exporter{db: db, dialect: d}
	if err := e.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return e, nil
}

// Close closes the database connection.
func (e *Exporter) Close() error {
	return e.db.Close()
}

// DB returns the underlying connection.
func (e *Exporter) DB() *sql.DB {
	return e.db
}

func (e *Exporter) migrate(ctx context.Context) error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			header_schema TEXT NOT NULL,
			lines INTEGER NOT NULL,
			records INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			exported_at %s NOT NULL
		)`, e.dialect.timeType),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			line_num INTEGER NOT NULL,
			headless %s NOT NULL,
			level TEXT,
			logged_at %s,
			module TEXT,
			code TEXT,
			line_count INTEGER NOT NULL,
			body TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`, e.dialect.boolType, e.dialect.timeType),
		`CREATE INDEX IF NOT EXISTS idx_records_level ON records(level)`,
	}

	for _, m := range migrations {
		if _, err := e.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// WriteLog stores one parsed log and all its records in a single
// transaction. It returns the number of records written.
func (e *Exporter) WriteLog(ctx context.Context, log *record.Log) (int, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	schemaText := ""
	if log.Schema != nil {
		schemaText = log.Schema.String()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, header_schema, lines, records, warnings, exported_at) VALUES (`+e.dialect.placeholders(7)+`)`,
		log.ID.String(), log.Source, schemaText, log.Lines, len(log.Records), log.Warnings, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, seq, line_num, headless, level, logged_at, module, code, line_count, body) VALUES (`+e.dialect.placeholders(10)+`)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range log.Records {
		_, err := stmt.ExecContext(ctx,
			log.ID.String(), i, r.LineNum, r.Headless,
			nullString(levelName(r.Level)), nullTime(r.Date),
			nullString(r.Module), nullString(r.Code),
			len(r.Lines), strings.Join(r.Lines, "\n"),
		)
		if err != nil {
			return 0, fmt.Errorf("insert record at line %d: %w", r.LineNum, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(log.Records), nil
}

func levelName(l record.Level) string {
	if l == record.LevelNone {
		return ""
	}
	return l.String()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
