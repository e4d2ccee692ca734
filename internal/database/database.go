// Package database provides SQLite storage for the threat feed aggregator.
package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/openthreatiq/threatiq/internal/model"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		published_date TEXT NOT NULL DEFAULT '',
		published_at INTEGER,
		read_flag INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_entries_published_at ON entries(published_at);
	CREATE TABLE IF NOT EXISTS sources (
		url TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		category TEXT NOT NULL,
		format TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// --- Entry Methods ---

// UpsertEntry inserts the entry, or overwrites all fields except read_flag if
// the id already exists. A refresh never downgrades read state: once an entry
// is read, re-fetching it keeps it read.
func (db *DB) UpsertEntry(e model.Entry) error {
	// Stored as unix seconds so ordering is consistent across the mixed
	// timezone formats feeds use; NULL sorts last.
	var publishedAt interface{}
	if t, ok := parsePublished(e.PublishedDate); ok {
		publishedAt = t.Unix()
	}
	_, err := db.conn.Exec(`
		INSERT INTO entries (id, title, description, link, source, category, published_date, published_at, read_flag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			source = excluded.source,
			category = excluded.category,
			published_date = excluded.published_date,
			published_at = excluded.published_at`,
		e.ID, e.Title, e.Description, e.Link, e.Source, e.Category, e.PublishedDate, publishedAt)
	return err
}

// ListEntries returns all entries ordered by published date descending.
// Dates are parsed to timestamps at upsert time; entries whose published_date
// could not be parsed sort last.
func (db *DB) ListEntries() ([]model.Entry, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, description, link, source, category, published_date, read_flag
		FROM entries
		ORDER BY published_at IS NULL, published_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Link, &e.Source, &e.Category, &e.PublishedDate, &e.ReadFlag); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkRead marks an entry as read. Unknown ids are a no-op, not an error.
func (db *DB) MarkRead(id string) error {
	_, err := db.conn.Exec("UPDATE entries SET read_flag = 1 WHERE id = ?", id)
	return err
}

// --- Source Methods ---

// GetUserSources returns user-added sources ordered by label.
func (db *DB) GetUserSources() ([]model.Source, error) {
	rows, err := db.conn.Query("SELECT url, source, category, format FROM sources ORDER BY source")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sources []model.Source
	for rows.Next() {
		var s model.Source
		var format string
		if err := rows.Scan(&s.URL, &s.Source, &s.Category, &format); err != nil {
			return nil, err
		}
		s.Format = model.Format(format)
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// AddUserSource saves a user-added source, keyed by URL.
func (db *DB) AddUserSource(s model.Source) error {
	_, err := db.conn.Exec(`
		INSERT INTO sources (url, source, category, format) VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET source = excluded.source, category = excluded.category, format = excluded.format`,
		s.URL, s.Source, s.Category, string(s.Format))
	return err
}

// --- Refresh State Methods ---

// GetRefreshState returns the last refresh time (zero if never refreshed)
// and the configured interval.
func (db *DB) GetRefreshState() (model.RefreshState, error) {
	state := model.RefreshState{}
	interval, err := db.GetRefreshInterval()
	if err != nil {
		return state, err
	}
	state.IntervalMinutes = interval

	val, err := db.GetSetting(model.SettingLastRefresh)
	if err == sql.ErrNoRows {
		return state, nil
	}
	if err != nil {
		return state, err
	}
	if t, perr := time.Parse(time.RFC3339, val); perr == nil {
		state.LastRefresh = t
	}
	return state, nil
}

// SetLastRefresh records the completion time of a refresh cycle.
func (db *DB) SetLastRefresh(t time.Time) error {
	return db.SetSetting(model.SettingLastRefresh, t.UTC().Format(time.RFC3339))
}

// GetRefreshInterval returns the refresh interval in minutes. A missing or
// unusable stored value falls back to the default; a storage failure does
// not.
func (db *DB) GetRefreshInterval() (int, error) {
	val, err := db.GetSetting(model.SettingRefreshInterval)
	if err == sql.ErrNoRows {
		return model.DefaultRefreshIntervalMinutes, nil
	}
	if err != nil {
		return 0, err
	}
	mins, err := strconv.Atoi(val)
	if err != nil || mins <= 0 {
		return model.DefaultRefreshIntervalMinutes, nil
	}
	return mins, nil
}

// SetRefreshInterval saves the refresh interval. It takes effect on the next
// freshness check.
func (db *DB) SetRefreshInterval(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("interval must be positive, got %d", minutes)
	}
	return db.SetSetting(model.SettingRefreshInterval, strconv.Itoa(minutes))
}

// --- Settings Methods ---

// GetSetting retrieves a setting value.
func (db *DB) GetSetting(key string) (string, error) {
	var val string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	return val, err
}

// SetSetting saves a setting.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec("INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = ?", key, value, value)
	return err
}
