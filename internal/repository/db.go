package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// execer is satisfied by both *sql.DB and *sql.Tx, so the insert helpers
// can run standalone or inside a snapshot transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			ownership_allows_deficit_backcharge INTEGER NOT NULL DEFAULT 0,
			labor_payout_enabled INTEGER NOT NULL DEFAULT 1,
			rounding_mode TEXT NOT NULL DEFAULT 'nearest',
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS participants (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			ownership_share TEXT NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_project ON participants(project_id)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			amount TEXT NOT NULL,
			paid_by_participant_id TEXT,
			external_payer TEXT,
			is_sale_cost INTEGER NOT NULL DEFAULT 0,
			description TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_project ON expenses(project_id)`,

		`CREATE TABLE IF NOT EXISTS loans (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			type TEXT NOT NULL,
			principal TEXT NOT NULL,
			lender_participant_id TEXT,
			lender_label TEXT,
			interest_note TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_project ON loans(project_id)`,

		`CREATE TABLE IF NOT EXISTS labor_entries (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			participant_id TEXT NOT NULL,
			hours TEXT NOT NULL,
			hourly_rate TEXT NOT NULL,
			is_billable INTEGER NOT NULL DEFAULT 1,
			description TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_labor_entries_project ON labor_entries(project_id)`,

		`CREATE TABLE IF NOT EXISTS sales (
			project_id TEXT PRIMARY KEY,
			gross_sale_price TEXT NOT NULL,
			sale_costs TEXT NOT NULL,
			sold_at DATETIME NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,

		`CREATE TABLE IF NOT EXISTS imports (
			file_hash TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			imported_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
