package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/creastudio/internal/profile"
	"github.com/hrygo/creastudio/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the journal database named by profile.JournalDSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.JournalDSN == "" {
		return nil, errors.New("dsn required")
	}

	// - No foreign key constraints: turns are removed explicitly with their transcript.
	// - Journal mode set to WAL to avoid locking between the chat loop and the preview server.
	//
	// With `modernc.org/sqlite` each pragma must be prefixed with `_pragma=`.
	sqliteDB, err := sql.Open("sqlite", profile.JournalDSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.JournalDSN)
	}

	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	driver := DB{db: sqliteDB, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type='table' AND name='transcript')").Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transcript (
		uid TEXT NOT NULL PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		created_ts BIGINT NOT NULL,
		updated_ts BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transcript_turn (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transcript_uid TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		content TEXT NOT NULL,
		created_ts BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_turn_uid ON transcript_turn (transcript_uid, id)`,
}

// Migrate creates the journal tables when they are missing.
func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema")
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit migration")
}
