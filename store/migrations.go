package store

import (
	"context"
	"database/sql"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		identity TEXT NOT NULL,
		public_nickname TEXT NOT NULL DEFAULT '',
		public_key BLOB,
		avatar BLOB
	);`,

	`CREATE TABLE IF NOT EXISTS contact_receivers (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL DEFAULT 'contact',
		display_name TEXT NOT NULL DEFAULT '',
		public_nickname TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		avatar BLOB,
		is_blocked INTEGER NOT NULL DEFAULT 0,
		access TEXT NOT NULL DEFAULT '{}'
	);`,

	`CREATE TABLE IF NOT EXISTS group_receivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		members TEXT NOT NULL DEFAULT '[]',
		administrator TEXT NOT NULL DEFAULT '',
		avatar BLOB,
		disabled INTEGER NOT NULL DEFAULT 0,
		access TEXT NOT NULL DEFAULT '{}'
	);`,
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
