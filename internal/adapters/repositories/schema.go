package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// The DDL is shared: SQLite accepts the Postgres type names.
var schemaStatements = []string{
	`
	CREATE TABLE IF NOT EXISTS packages (
		package_id INTEGER PRIMARY KEY,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT NOT NULL,
		deadline TEXT NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS locations (
		location TEXT PRIMARY KEY,
		package_text TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS distances (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		miles DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		finished_at INTEGER NOT NULL,
		total_miles DOUBLE PRECISION NOT NULL,
		delivered INTEGER NOT NULL,
		extra_routes INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		fail_reason TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS deliveries (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		seq INTEGER NOT NULL,
		package_id INTEGER NOT NULL,
		truck_id INTEGER NOT NULL,
		destination TEXT NOT NULL,
		delivered_at INTEGER NOT NULL,
		deadline INTEGER NOT NULL,
		annotation TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, seq)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_distances_destination_origin
	ON distances(destination, origin);
	`,
}

// Initialize the database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
