// Package database provides SQLite-backed persistence for the Edgelink
// device core.
//
// The only consumer is the settings store: provisioning overrides written
// through the REST gateway survive restarts here, taking precedence over
// the defaults derived at bring-up. The schema is a single key/document
// table applied idempotently on open; there is no migration machinery.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/edgelink.db"})
//	store := database.NewSettingsStore(db)
//	raw, found, err := store.Get(ctx, database.SettingMQTT)
package database
