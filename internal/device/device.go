package device

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/edgelink-io/edgelink-core/internal/adoption"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/logging"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/mqtt"
	"github.com/edgelink-io/edgelink-core/internal/jsontree"
	"github.com/edgelink-io/edgelink-core/internal/transport"
)

// Session is the slice of the MQTT session the facade drives.
type Session interface {
	SetClientID(clientID string)
	SetLogger(logger mqtt.Logger)
	Begin(handlers mqtt.Handlers)
	Loop()
	Connected() bool
	Topics() mqtt.Topics
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishStatus(doc *jsontree.Object) error
	PublishTelemetry(doc *jsontree.Object) error
	PublishAdopt(doc *jsontree.Object) error
	Close()
}

// Gateway is the slice of the REST gateway the facade drives.
type Gateway interface {
	Get(pattern string, handler http.HandlerFunc)
	Post(pattern string, handler http.HandlerFunc)
	Start(ctx context.Context) error
	Close() error
}

// TelemetryMirror receives a copy of every telemetry document, typically
// backed by the InfluxDB client. Mirror failures never affect publishing.
type TelemetryMirror interface {
	WriteTelemetry(doc *jsontree.Object) error
}

// Deps holds the collaborators the facade wires together.
type Deps struct {
	Logger    *logging.Logger
	Transport transport.Transport
	Session   Session
	Gateway   Gateway
	Adoption  *adoption.Builder

	// LogSink, when set, has its publisher and topic managed across the
	// session lifecycle so log lines mirror to the log topic while
	// connected.
	LogSink *logging.MQTTWriter

	// Telemetry, when set, mirrors telemetry documents to a history store.
	Telemetry TelemetryMirror
}

// Controller is the device facade. It is not safe for concurrent use:
// Begin, Loop and the publish helpers belong to the firmware's single
// poll goroutine, mirroring the session's dispatch model.
type Controller struct {
	logger    *logging.Logger
	transport transport.Transport
	session   Session
	gateway   Gateway
	adoption  *adoption.Builder
	logSink   *logging.MQTTWriter
	telemetry TelemetryMirror
}

// New creates the facade. Nothing is started until Begin.
func New(deps Deps) (*Controller, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("mqtt session is required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("api gateway is required")
	}
	if deps.Adoption == nil {
		return nil, fmt.Errorf("adoption builder is required")
	}

	return &Controller{
		logger:    deps.Logger,
		transport: deps.Transport,
		session:   deps.Session,
		gateway:   deps.Gateway,
		adoption:  deps.Adoption,
		logSink:   deps.LogSink,
		telemetry: deps.Telemetry,
	}, nil
}

// Begin runs the ordered initialisation chain: network bring-up, MQTT
// identity seeding, then the REST gateway, which loads persisted
// provisioning overrides on top of the seeded defaults. The session itself
// connects on the first Loop, after all three phases are complete.
func (c *Controller) Begin(ctx context.Context, onConfig, onCommand func(doc *jsontree.Object)) error {
	result := c.transport.Setup(ctx)
	switch result.Outcome {
	case transport.SetupSuccess:
		c.logger.Info("network up",
			"mode", string(c.transport.Mode()),
			"ip", c.transport.IP().String(),
			"mac", FormatMAC(c.transport.MAC()),
		)
	case transport.SetupTimeout:
		return fmt.Errorf("%w: bring-up window elapsed", ErrNetworkSetup)
	default:
		return fmt.Errorf("%w: %v", ErrNetworkSetup, result.Err)
	}

	if id := ClientID(c.transport.MAC()); id != "" {
		c.session.SetClientID(id)
	}
	c.session.SetLogger(c.logger)
	if c.logSink != nil {
		c.logSink.SetPublisher(logPublisher{session: c.session})
	}

	c.session.Begin(mqtt.Handlers{
		OnConnected:    c.onConnected,
		OnDisconnected: c.onDisconnected,
		OnConfig:       onConfig,
		OnCommand:      onCommand,
	})

	if err := c.gateway.Start(ctx); err != nil {
		return fmt.Errorf("starting api gateway: %w", err)
	}

	c.logger.Info("device initialised", "client_id", ClientID(c.transport.MAC()))
	return nil
}

// Loop is the poll-driven heart of the device. While the link is up it
// maintains the transport's view of the link and drives the MQTT session;
// while the link is down it does nothing and lets the transport's own
// recovery bring the link back. Firmware calls it from its main loop.
func (c *Controller) Loop() {
	if !c.transport.LinkUp() {
		return
	}
	c.transport.Maintain()
	c.session.Loop()
}

// Close shuts down the gateway and the MQTT session.
func (c *Controller) Close() error {
	err := c.gateway.Close()
	c.session.Close()
	return err
}

// SetConfigSchema declares the firmware's config schema properties for the
// adoption document.
func (c *Controller) SetConfigSchema(schema *jsontree.Object) {
	c.adoption.SetConfigSchema(schema)
}

// SetCommandSchema declares the firmware's command schema properties for
// the adoption document.
func (c *Controller) SetCommandSchema(schema *jsontree.Object) {
	c.adoption.SetCommandSchema(schema)
}

// APIGet registers a firmware GET endpoint on the REST gateway.
// Must be called before Begin.
func (c *Controller) APIGet(pattern string, handler http.HandlerFunc) {
	c.gateway.Get(pattern, handler)
}

// APIPost registers a firmware POST endpoint on the REST gateway.
// Must be called before Begin.
func (c *Controller) APIPost(pattern string, handler http.HandlerFunc) {
	c.gateway.Post(pattern, handler)
}

// PublishStatus publishes a status document, failing closed: it reports
// false without queueing when the link or session is down.
func (c *Controller) PublishStatus(doc *jsontree.Object) bool {
	if !c.transport.LinkUp() {
		return false
	}
	if err := c.session.PublishStatus(doc); err != nil {
		c.logPublishFailure("status", err)
		return false
	}
	return true
}

// PublishTelemetry publishes a telemetry document with the same fail-closed
// contract as PublishStatus. The telemetry mirror receives a copy
// regardless of the MQTT outcome.
func (c *Controller) PublishTelemetry(doc *jsontree.Object) bool {
	c.mirrorTelemetry(doc)

	if !c.transport.LinkUp() {
		return false
	}
	if err := c.session.PublishTelemetry(doc); err != nil {
		c.logPublishFailure("telemetry", err)
		return false
	}
	return true
}

// ConnectionState classifies the current connectivity level.
func (c *Controller) ConnectionState() ConnectionState {
	return ClassifyConnection(c.transport.LinkUp(), c.session.Connected())
}

func (c *Controller) onConnected() {
	topics := c.session.Topics()
	if c.logSink != nil {
		c.logSink.SetTopic(topics.Log())
	}

	if err := c.session.PublishAdopt(c.adoption.Build()); err != nil {
		c.logger.Warn("publishing adoption document", "error", err)
		return
	}
	c.logger.Info("adoption document published", "topic", topics.Adopt())
}

func (c *Controller) onDisconnected(_ mqtt.DisconnectReason, _ error) {
	// Mute the log mirror until the next connect re-targets it.
	if c.logSink != nil {
		c.logSink.SetTopic("")
	}
}

// logPublishFailure records a failed publish. The not-connected case is
// routine during outages and stays quiet.
func (c *Controller) logPublishFailure(kind string, err error) {
	if errors.Is(err, mqtt.ErrNotConnected) {
		return
	}
	c.logger.Warn("publish failed", "kind", kind, "error", err)
}

func (c *Controller) mirrorTelemetry(doc *jsontree.Object) {
	if c.telemetry == nil {
		return
	}
	if err := c.telemetry.WriteTelemetry(doc); err != nil {
		c.logger.Warn("telemetry mirror write failed", "error", err)
	}
}

// logPublisher adapts the session to the log sink's publisher interface.
type logPublisher struct {
	session Session
}

func (p logPublisher) Publish(topic string, payload []byte) error {
	return p.session.Publish(topic, payload, 0, false)
}
