// Package store persists change-log entries in SQLite. It sits on the
// caller side of the change log's serialize/restore hooks: the log itself
// never touches I/O.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"easyconfd/internal/changelog"
	"easyconfd/internal/paramset"
)

// Schema for the change-log store.
const schema = `
CREATE TABLE IF NOT EXISTS change_entries (
    seq             INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp       TEXT NOT NULL,
    entry_id        TEXT NOT NULL,
    interface_id    TEXT NOT NULL,
    channel_address TEXT NOT NULL,
    device_name     TEXT NOT NULL,
    device_model    TEXT NOT NULL,
    paramset_key    TEXT NOT NULL,
    changes         TEXT NOT NULL,
    source          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_change_entries_entry ON change_entries(entry_id);
CREATE INDEX IF NOT EXISTS idx_change_entries_channel ON change_entries(channel_address);
`

// Store is the SQLite change-log store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEntries replaces the persisted entry list wholesale with the given
// entries, oldest first. Pair it with Log.Entries().
func (s *Store) SaveEntries(entries []changelog.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM change_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO change_entries (timestamp, entry_id, interface_id, channel_address, device_name, device_model, paramset_key, changes, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		changesJSON, err := json.Marshal(e.Changes)
		if err != nil {
			return fmt.Errorf("marshal changes: %w", err)
		}
		if _, err := stmt.Exec(e.Timestamp, e.EntryID, e.InterfaceID, e.ChannelAddress,
			e.DeviceName, e.DeviceModel, e.ParamsetKey, string(changesJSON), e.Source); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AppendEntry persists a single entry at the tail.
func (s *Store) AppendEntry(e changelog.Entry) error {
	changesJSON, err := json.Marshal(e.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO change_entries (timestamp, entry_id, interface_id, channel_address, device_name, device_model, paramset_key, changes, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp, e.EntryID, e.InterfaceID, e.ChannelAddress,
		e.DeviceName, e.DeviceModel, e.ParamsetKey, string(changesJSON), e.Source)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// LoadEntries returns all persisted entries, oldest first. Pair it with
// Log.LoadEntries().
func (s *Store) LoadEntries() ([]changelog.Entry, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, entry_id, interface_id, channel_address, device_name, device_model, paramset_key, changes, source
		FROM change_entries
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []changelog.Entry
	for rows.Next() {
		var e changelog.Entry
		var changesJSON string
		if err := rows.Scan(&e.Timestamp, &e.EntryID, &e.InterfaceID, &e.ChannelAddress,
			&e.DeviceName, &e.DeviceModel, &e.ParamsetKey, &changesJSON, &e.Source); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Changes = make(paramset.ChangeDiff)
		if changesJSON != "" {
			if err := json.Unmarshal([]byte(changesJSON), &e.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal changes: %w", err)
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// DeleteByEntryID removes all persisted entries with the given entry id
// and returns how many were removed.
func (s *Store) DeleteByEntryID(entryID string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM change_entries WHERE entry_id = ?`, entryID)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return removed, nil
}

// Count returns the number of persisted entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM change_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
