package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Well-known settings keys.
const (
	// SettingMQTT holds the persisted MQTT provisioning overrides written
	// via the REST gateway. Persisted values take precedence over the
	// MAC-derived defaults seeded at startup.
	SettingMQTT = "mqtt"
)

// SettingsStore persists small JSON documents by key.
//
// It stands in for the original firmware's on-flash provisioning files: a
// handful of documents, written rarely, read once at startup.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a settings store over an open database.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the raw JSON document stored under key.
// The second return is false when the key has never been written.
func (s *SettingsStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading setting %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Put stores a JSON document under key, replacing any previous value.
func (s *SettingsStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("storing setting %q: invalid JSON", key)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing setting %q: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under key. Deleting an absent key is
// not an error.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting %q: %w", key, err)
	}
	return nil
}
