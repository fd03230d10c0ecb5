package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// TimeFormat is the fixed-width UTC layout used for every timestamp column,
// so that lexical order matches chronological order.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps a sql.DB with saarathi-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// fileParams are applied to every pooled connection of a file database.
// Writers wait on each other for up to busy_timeout instead of failing with
// SQLITE_BUSY, and _txlock=immediate takes the write lock at BEGIN.
const fileParams = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+fileParams)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
// Every pooled connection to ":memory:" would see its own empty database,
// so the pool is pinned to a single connection.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the file path the database was opened from.
func (d *DB) Path() string {
	return d.path
}

// FormatTime renders t in TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a timestamp column. Unparseable values yield the zero time.
func ParseTime(s string) time.Time {
	if t, err := time.Parse(TimeFormat, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	return time.Time{}
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    uid TEXT PRIMARY KEY,
    full_name TEXT NOT NULL DEFAULT '',
    phone_number TEXT NOT NULL DEFAULT '',
    district TEXT NOT NULL DEFAULT '',
    land_size REAL NOT NULL DEFAULT 0,
    land_unit TEXT NOT NULL DEFAULT 'acres' CHECK(land_unit IN ('acres','hectares')),
    soil_type TEXT NOT NULL DEFAULT '',
    crops_grown TEXT NOT NULL DEFAULT '[]',
    farming_experience INTEGER NOT NULL DEFAULT 0,
    irrigation_type TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT 'en',
    audio_notifications INTEGER NOT NULL DEFAULT 1,
    daily_summary INTEGER NOT NULL DEFAULT 1,
    market_alerts INTEGER NOT NULL DEFAULT 1,
    extra TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_daily_summary ON users(daily_summary);

CREATE TABLE IF NOT EXISTS interactions (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    query_text TEXT NOT NULL DEFAULT '',
    image_url TEXT,
    intent TEXT NOT NULL CHECK(intent IN ('disease','irrigation','market','scheme','weather','general')),
    response TEXT NOT NULL DEFAULT '',
    audio_url TEXT,
    priority TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low','medium','high')),
    additional_data TEXT NOT NULL DEFAULT '{}',
    timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_uid_ts ON interactions(uid, timestamp);

CREATE TABLE IF NOT EXISTS user_stats (
    uid TEXT PRIMARY KEY,
    total_queries INTEGER NOT NULL DEFAULT 0,
    last_intent TEXT NOT NULL DEFAULT '',
    last_query_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_intent_stats (
    uid TEXT NOT NULL,
    intent TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY(uid, intent)
);

CREATE TABLE IF NOT EXISTS daily_summaries (
    uid TEXT NOT NULL,
    date TEXT NOT NULL,
    summary TEXT NOT NULL,
    audio_url TEXT NOT NULL DEFAULT '',
    categories TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    PRIMARY KEY(uid, date)
);

CREATE TABLE IF NOT EXISTS daily_recommendations (
    uid TEXT NOT NULL,
    date TEXT NOT NULL,
    bundle TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY(uid, date)
);
`
