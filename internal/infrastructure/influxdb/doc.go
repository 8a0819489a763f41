// Package influxdb mirrors the device's telemetry documents into an
// InfluxDB v2 bucket, giving the broker-facing telemetry stream a local
// history. The mirror is optional and strictly best-effort: it is enabled
// by configuration, writes are batched and non-blocking, and failures are
// reported through an error callback without touching the MQTT path.
package influxdb
