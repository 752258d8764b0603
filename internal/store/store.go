// Package store persists the station settings. It stands in for the NVS
// flash namespace of the device: a single string key that must survive the
// restart triggered right after it is written. SQLite's journaled write path
// gives the atomic single-key update that contract needs.
package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/create-settings.sql
var createSettingsSQL string

//go:embed sql/get-setting.sql
var getSettingSQL string

//go:embed sql/upsert-setting.sql
var upsertSettingSQL string

const (
	namespace = "station"
	placeKey  = "place"
)

// SettingsStore is the persistence contract the scheduler depends on.
type SettingsStore interface {
	LoadPlace() (string, error)
	SavePlace(value string) error
}

// Store is the SQLite-backed settings store.
type Store struct {
	db       *sql.DB
	fallback string
}

// Open opens (creating if needed) the settings database at path. fallback is
// returned by LoadPlace until a value has been saved.
func Open(path, fallback string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	// One writer, one reader, same thread.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createSettingsSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}
	return &Store{db: db, fallback: fallback}, nil
}

// LoadPlace returns the persisted place name, or the fallback if none was
// ever saved. Repeated calls without an intervening save return the same
// value.
func (s *Store) LoadPlace() (string, error) {
	var value string
	err := s.db.QueryRow(getSettingSQL, namespace, placeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return s.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s/%s: %w", namespace, placeKey, err)
	}
	return value, nil
}

// SavePlace persists the place name. The write is durable once SavePlace
// returns; a power cut mid-write leaves the previous value intact.
func (s *Store) SavePlace(value string) error {
	if _, err := s.db.Exec(upsertSettingSQL, namespace, placeKey, value); err != nil {
		return fmt.Errorf("save %s/%s: %w", namespace, placeKey, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
