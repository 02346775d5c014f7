package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS email_templates (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	subject    TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	html_mode  INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sender_configs (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	smtp_host    TEXT NOT NULL,
	smtp_port    INTEGER NOT NULL,
	sender_email TEXT NOT NULL DEFAULT '',
	sender_name  TEXT NOT NULL DEFAULT '',
	use_ssl      INTEGER NOT NULL DEFAULT 0,
	use_tls      INTEGER NOT NULL DEFAULT 0,
	html_mode    INTEGER NOT NULL DEFAULT 0,
	protected    INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS send_logs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id        TEXT NOT NULL,
	recipient_email TEXT NOT NULL,
	recipient_name  TEXT NOT NULL DEFAULT '',
	subject         TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	message         TEXT NOT NULL DEFAULT '',
	sent_at         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_send_logs_batch_id ON send_logs (batch_id);
CREATE INDEX IF NOT EXISTS idx_send_logs_status   ON send_logs (batch_id, status);
`

// OpenSQLite opens (creating if needed) the sqlite database at dsn and
// makes sure the schema exists. SQLite works best with one writer, so
// the pool is pinned to a single connection.
func OpenSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open sqlite database %s: %w", dsn, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot initialize schema: %w", err)
	}

	return db, nil
}
