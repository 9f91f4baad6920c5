package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:autograde.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/autograde?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS roster (
  assignment TEXT NOT NULL,
  student_id TEXT NOT NULL,
  repo TEXT NOT NULL,
  status TEXT NOT NULL,
  score REAL,
  max_score REAL,
  graded_at TEXT,
  component_summary TEXT NOT NULL DEFAULT '',
  components_json TEXT NOT NULL DEFAULT '',
  collected_at INTEGER NOT NULL,
  PRIMARY KEY (assignment, student_id)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS roster (
  assignment TEXT NOT NULL,
  student_id TEXT NOT NULL,
  repo TEXT NOT NULL,
  status TEXT NOT NULL,
  score DOUBLE PRECISION,
  max_score DOUBLE PRECISION,
  graded_at TEXT,
  component_summary TEXT NOT NULL DEFAULT '',
  components_json TEXT NOT NULL DEFAULT '',
  collected_at BIGINT NOT NULL,
  PRIMARY KEY (assignment, student_id)
);
`
