package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS classifications (
					request_id TEXT PRIMARY KEY,
					input TEXT NOT NULL,
					code TEXT NOT NULL,
					description TEXT,
					source TEXT NOT NULL,
					confidence TEXT NOT NULL,
					warning TEXT,
					duty_rate REAL DEFAULT 0,
					statistical_tax REAL DEFAULT 0,
					specific_duty REAL DEFAULT 0,
					export_duty REAL DEFAULT 0,
					export_rebate REAL DEFAULT 0,
					duty_pending INTEGER DEFAULT 0,
					interventions TEXT,
					requires_manual_review INTEGER DEFAULT 0,
					classified_at DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_classifications_code ON classifications(code)`,
				`CREATE INDEX idx_classifications_source ON classifications(source)`,

				`CREATE TABLE IF NOT EXISTS review_queue (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					request_id TEXT NOT NULL,
					reason TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'pending',
					resolved_code TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					resolved_at DATETIME,
					FOREIGN KEY (request_id) REFERENCES classifications(request_id)
				)`,
				`CREATE INDEX idx_review_queue_status ON review_queue(status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Record disambiguation refinement details",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE classifications ADD COLUMN refinement_original_code TEXT`,
				`ALTER TABLE classifications ADD COLUMN refinement_justification TEXT`,
				`ALTER TABLE classifications ADD COLUMN refinement_options INTEGER DEFAULT 0`,
				`ALTER TABLE classifications ADD COLUMN refinement_chosen INTEGER DEFAULT 0`,
				`ALTER TABLE classifications ADD COLUMN refinement_llm INTEGER DEFAULT 0`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
