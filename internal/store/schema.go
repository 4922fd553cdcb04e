package store

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (s *Store) initializeSchema() error {
	return s.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createBaselinesTable(tx); err != nil {
			return err
		}
		if err := createReportsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		s.logger.Info("Baseline schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (s *Store) runMigrations() error {
	version, err := s.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		s.logger.Debug("Baseline schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	s.logger.Info("Running baseline schema migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Run migrations sequentially as the schema evolves
	return nil
}

// getSchemaVersion gets the current schema version
func (s *Store) getSchemaVersion() (int, error) {
	var tableName string
	err := s.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = s.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createBaselinesTable creates the baselines table. The surface snapshot is
// stored as a zstd-compressed JSON blob; everything else is metadata for
// listing and lookup.
func createBaselinesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS baselines (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			node_count INTEGER NOT NULL,
			export_count INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			snapshot BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create baselines table: %w", err)
	}

	if _, err := tx.Exec(
		"CREATE INDEX IF NOT EXISTS idx_baselines_created_at ON baselines(created_at)",
	); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// createReportsTable creates the reports table. The classified change list
// is stored as a zstd-compressed JSON payload.
func createReportsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			policy TEXT NOT NULL,
			verdict TEXT NOT NULL,
			old_ref TEXT NOT NULL DEFAULT '',
			new_ref TEXT NOT NULL DEFAULT '',
			change_count INTEGER NOT NULL,
			generated_at TEXT NOT NULL,
			payload BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	if _, err := tx.Exec(
		"CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at)",
	); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}
