// Package logging provides structured logging for the Edgelink device core.
//
// This package wraps Go's standard log/slog package to provide consistent,
// structured logging across the application, plus an MQTT sink that mirrors
// log lines to the device's log topic once the session is connected — the
// broker-side registry tails that topic for remote diagnostics.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Optional MQTT tee via NewTee + MQTTWriter
//   - Thread-safe for concurrent use
//
// # Usage
//
//	sink := logging.NewMQTTWriter()
//	logger := logging.NewTee(cfg.Logging, version, sink)
//	logger.Info("starting device core", "port", 80)
//
// The sink stays mute until SetPublisher and SetTopic are called; the device
// facade does this from the MQTT on-connected callback.
package logging
