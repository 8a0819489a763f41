// Edgelink Core - device integration layer
//
// This is the main entry point for the Edgelink device core. It wires the
// network transport, MQTT session, adoption builder and REST gateway into
// the device facade, declares the reference config/command schemas, and
// drives the poll loop until shutdown.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgelink-io/edgelink-core/internal/adoption"
	"github.com/edgelink-io/edgelink-core/internal/api"
	"github.com/edgelink-io/edgelink-core/internal/device"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/database"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/influxdb"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/logging"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/mqtt"
	"github.com/edgelink-io/edgelink-core/internal/jsontree"
	"github.com/edgelink-io/edgelink-core/internal/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// pollInterval paces the device loop. It must stay well under the MQTT
// keep-alive so the session never starves.
const pollInterval = 100 * time.Millisecond

// defaultTelemetryInterval is used until config overrides it.
const defaultTelemetryInterval = 30 * time.Second

// configSchema describes the config payload this firmware accepts.
const configSchema = `{
	"telemetryIntervalSeconds": {
		"type": "integer",
		"minimum": 1,
		"description": "Seconds between telemetry publishes"
	}
}`

// commandSchema describes the command payload this firmware accepts.
const commandSchema = `{
	"restart": {
		"type": "boolean",
		"description": "Gracefully restart the device core"
	}
}`

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Edgelink Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise the logger with config settings, teeing into the MQTT
	// log sink. The sink stays mute until the facade targets it on connect.
	logSink := logging.NewMQTTWriter()
	log = logging.NewTee(cfg.Logging, version, logSink)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the settings database (persisted provisioning overrides)
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	settings := database.NewSettingsStore(db)

	tr := buildTransport(cfg)
	session := mqtt.New(cfg.MQTT)
	builder := adoption.NewBuilder(cfg.Firmware, tr)

	gateway, err := api.New(api.Deps{
		Config:   cfg.API,
		MQTT:     cfg.MQTT,
		Logger:   log,
		Adoption: builder,
		Settings: settings,
		Session:  session,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating api gateway: %w", err)
	}

	// Optional telemetry mirror
	var mirror device.TelemetryMirror
	influxClient, err := influxdb.Connect(cfg.InfluxDB, cfg.Firmware.ShortName)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("telemetry mirror disabled")
	case err != nil:
		log.Warn("telemetry mirror unavailable, continuing without history", "error", err)
	default:
		influxClient.SetOnError(func(writeErr error) {
			log.Warn("telemetry mirror write error", "error", writeErr)
		})
		defer influxClient.Close()
		mirror = influxClient
		log.Info("telemetry mirror connected", "url", cfg.InfluxDB.URL)
	}

	ctrl, err := device.New(device.Deps{
		Logger:    log,
		Transport: tr,
		Session:   session,
		Gateway:   gateway,
		Adoption:  builder,
		LogSink:   logSink,
		Telemetry: mirror,
	})
	if err != nil {
		return fmt.Errorf("creating device controller: %w", err)
	}

	ctrl.SetConfigSchema(mustParseSchema(configSchema))
	ctrl.SetCommandSchema(mustParseSchema(commandSchema))

	// Command handlers run on the poll goroutine, so these plain variables
	// need no synchronisation.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	telemetryInterval := defaultTelemetryInterval

	onConfig := func(doc *jsontree.Object) {
		if value, ok := doc.Get("telemetryIntervalSeconds"); ok {
			if seconds, ok := asInt(value); ok && seconds > 0 {
				telemetryInterval = time.Duration(seconds) * time.Second
				log.Info("telemetry interval updated", "seconds", seconds)
			}
		}
	}
	onCommand := func(doc *jsontree.Object) {
		if value, ok := doc.Get("restart"); ok {
			if restart, ok := value.(bool); ok && restart {
				log.Info("restart requested via command topic")
				stop()
			}
		}
	}

	if err := ctrl.Begin(runCtx, onConfig, onCommand); err != nil {
		return fmt.Errorf("initialising device: %w", err)
	}

	started := time.Now()
	lastTelemetry := started
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			log.Info("shutting down")
			return ctrl.Close()
		case <-ticker.C:
			ctrl.Loop()
			if time.Since(lastTelemetry) >= telemetryInterval {
				publishUptime(ctrl, started)
				lastTelemetry = time.Now()
			}
		}
	}
}

// publishUptime sends the standing telemetry heartbeat. Fail-closed: a
// false return just means the link or session is down and the sample is
// dropped.
func publishUptime(ctrl *device.Controller, started time.Time) {
	doc := jsontree.New()
	doc.Set("uptimeSeconds", int64(time.Since(started).Seconds()))
	doc.Set("connectionState", ctrl.ConnectionState().String())
	ctrl.PublishTelemetry(doc)
}

// buildTransport selects the transport variant from configuration.
func buildTransport(cfg *config.Config) transport.Transport {
	if cfg.Network.Mode == "wireless" {
		return transport.NewWireless(transport.WirelessConfig{
			Interface:      cfg.Network.Interface,
			PortalSSID:     cfg.Network.Portal.SSID,
			PortalPassword: cfg.Network.Portal.Password,
			PortalTimeout:  cfg.GetPortalTimeout(),
		})
	}
	return transport.NewWired(transport.WiredConfig{
		Interface:    cfg.Network.Interface,
		SetupTimeout: cfg.GetSetupTimeout(),
	})
}

// mustParseSchema parses a compile-time schema literal.
func mustParseSchema(schema string) *jsontree.Object {
	doc, err := jsontree.Parse([]byte(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return doc
}

// asInt coerces a parsed JSON number to an int.
func asInt(value any) (int, bool) {
	number, ok := value.(json.Number)
	if !ok {
		return 0, false
	}
	parsed, err := number.Int64()
	if err != nil {
		return 0, false
	}
	return int(parsed), true
}

// getConfigPath returns the configuration file path.
// Uses EDGELINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("EDGELINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
