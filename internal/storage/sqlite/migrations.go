package sqlite

import (
	"context"
	"database/sql"
)

// Migrate runs all database migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// Runs table
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			job TEXT NOT NULL,
			job_path TEXT,
			state INTEGER NOT NULL DEFAULT 10,
			failures INTEGER NOT NULL DEFAULT 0,
			message TEXT,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			version INTEGER NOT NULL DEFAULT 1
		)`,

		// Clusters table
		`CREATE TABLE IF NOT EXISTS clusters (
			run_id TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			name TEXT NOT NULL,
			test_cases_json TEXT NOT NULL,
			elements_json TEXT NOT NULL,
			PRIMARY KEY (run_id, algorithm, name),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,

		// Orderings table
		`CREATE TABLE IF NOT EXISTS orderings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			cluster TEXT,
			revision INTEGER NOT NULL DEFAULT 0,
			tests_json TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,

		// Scores table
		`CREATE TABLE IF NOT EXISTS scores (
			run_id TEXT NOT NULL,
			technique TEXT NOT NULL,
			revision INTEGER NOT NULL,
			code_element TEXT NOT NULL,
			suspicion REAL NOT NULL,
			fl_score REAL,
			PRIMARY KEY (run_id, technique, revision, code_element),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,

		// Indexes for efficient queries
		`CREATE INDEX IF NOT EXISTS idx_runs_job ON runs(job, started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`,
		`CREATE INDEX IF NOT EXISTS idx_orderings_run ON orderings(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_suspicion ON scores(run_id, suspicion DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}
