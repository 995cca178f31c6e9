package db

import "database/sql"

func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT NOT NULL,
			country_code TEXT NOT NULL,
			created_at INTEGER,
			UNIQUE(name, country, country_code)
		);`,

		`CREATE TABLE IF NOT EXISTS prize_pool (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			balance REAL NOT NULL DEFAULT 0
		);`,

		`INSERT OR IGNORE INTO prize_pool(id, balance) VALUES (1, 0);`,

		`CREATE TABLE IF NOT EXISTS earnings_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ref TEXT,
			player_id TEXT,
			amount REAL,
			pool_cut REAL,
			ts INTEGER
		);`,

		`CREATE TABLE IF NOT EXISTS settlement_runs (
			id TEXT PRIMARY KEY,
			status TEXT,
			drained REAL,
			distributed REAL,
			winners INTEGER,
			started_at INTEGER,
			finished_at INTEGER
		);`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT,
			action TEXT,
			metadata TEXT,
			created_at INTEGER
		);`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
