package sqlite

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sla_definitions (
		id                     TEXT PRIMARY KEY,
		tenant_id              TEXT NOT NULL,
		name                   TEXT NOT NULL,
		first_response_minutes INTEGER NOT NULL,
		resolution_minutes     INTEGER DEFAULT 0,
		priority               TEXT DEFAULT 'medium',
		active                 INTEGER DEFAULT 1,
		business_days          TEXT DEFAULT '',
		business_open          TEXT DEFAULT '',
		business_close         TEXT DEFAULT '',
		business_tz            TEXT DEFAULT '',
		created_at             DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sla_definitions_tenant ON sla_definitions(tenant_id, created_at);

	CREATE TABLE IF NOT EXISTS sla_bindings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id    TEXT NOT NULL,
		sla_id       TEXT NOT NULL,
		scope        TEXT NOT NULL,
		location_id  TEXT DEFAULT '',
		channel_type TEXT DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sla_bindings_local
		ON sla_bindings(tenant_id, location_id) WHERE scope = 'local';
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sla_bindings_channel
		ON sla_bindings(tenant_id, channel_type) WHERE scope = 'channel';

	CREATE TABLE IF NOT EXISTS conversations (
		id               TEXT PRIMARY KEY,
		tenant_id        TEXT NOT NULL,
		subject          TEXT DEFAULT '',
		state            TEXT NOT NULL DEFAULT 'open',
		location_id      TEXT DEFAULT '',
		channel_type     TEXT DEFAULT '',
		contact_id       TEXT DEFAULT '',
		contact_name     TEXT DEFAULT '',
		assignee_id      TEXT DEFAULT '',
		assignee_name    TEXT DEFAULT '',
		created_at       DATETIME NOT NULL,
		last_activity_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_tenant_state ON conversations(tenant_id, state);
	CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	// Migration: add location_name column if missing.
	var colCount int
	_ = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('conversations') WHERE name = 'location_name'`).Scan(&colCount)
	if colCount == 0 {
		_, _ = db.Exec(`ALTER TABLE conversations ADD COLUMN location_name TEXT DEFAULT ''`)
	}

	return db, nil
}
