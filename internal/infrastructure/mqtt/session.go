package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
	"github.com/edgelink-io/edgelink-core/internal/jsontree"
)

// Handlers holds the callback slots registered via Begin. All slots are
// optional; a missing config/command handler turns the corresponding
// inbound traffic into a logged no-handler outcome.
//
// Handlers are invoked synchronously from Loop, on the poll goroutine.
type Handlers struct {
	OnConnected    func()
	OnDisconnected func(reason DisconnectReason, err error)
	OnConfig       func(doc *jsontree.Object)
	OnCommand      func(doc *jsontree.Object)
}

// Logger is the minimal logging interface the session needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// eventKind discriminates queued session events.
type eventKind int

const (
	eventConnected eventKind = iota
	eventDisconnected
	eventMessage
)

// event is one queued occurrence delivered by the paho client.
type event struct {
	kind    eventKind
	topic   string
	payload []byte
	err     error
}

// eventQueueSize bounds the inbound event queue. The poll loop drains the
// queue every iteration, so the bound only matters when polling stalls.
const eventQueueSize = 64

// Session owns the broker configuration, device identity, topic namespace
// and connect/disconnect lifecycle of the device's MQTT session.
//
// Provisioning setters are pure mutation and may be called before or after
// Begin; later writes always win. The session connects on the first Loop
// call after Begin, not during Begin itself, so overrides loaded between
// the two are honoured.
type Session struct {
	mu sync.Mutex

	// provisioning
	host     string
	port     int
	tls      bool
	clientID string
	username string
	password string
	prefix   string
	suffix   string
	qos      byte

	reconnectInitial time.Duration
	reconnectMax     time.Duration

	handlers Handlers
	began    bool

	client pahomqtt.Client
	events chan event

	logger Logger
}

// New creates a session seeded from configuration. The client ID is
// typically empty at this point and seeded later from the device MAC.
func New(cfg config.MQTTConfig) *Session {
	return &Session{
		host:             cfg.Broker.Host,
		port:             cfg.Broker.Port,
		tls:              cfg.Broker.TLS,
		clientID:         cfg.Broker.ClientID,
		username:         cfg.Auth.Username,
		password:         cfg.Auth.Password,
		prefix:           cfg.Topics.Prefix,
		suffix:           cfg.Topics.Suffix,
		qos:              byte(cfg.QoS),
		reconnectInitial: time.Duration(cfg.Reconnect.InitialDelay) * time.Second,
		reconnectMax:     time.Duration(cfg.Reconnect.MaxDelay) * time.Second,
		events:           make(chan event, eventQueueSize),
	}
}

// SetLogger sets a logger for session diagnostics.
// If not set, classification outcomes are silently discarded.
func (s *Session) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SetBroker sets the broker host and port.
func (s *Session) SetBroker(host string, port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host = host
	s.port = port
}

// SetTLS enables or disables TLS for the broker connection.
func (s *Session) SetTLS(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tls = enabled
}

// SetClientID sets the session client identity.
//
// The device seeds this with the MAC-derived default before persisted
// provisioning is loaded; persisted values overwrite it afterwards.
func (s *Session) SetClientID(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientID = clientID
}

// SetAuth sets the broker credentials.
func (s *Session) SetAuth(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.password = password
}

// SetTopicPrefix sets the optional leading topic segment.
func (s *Session) SetTopicPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefix = prefix
}

// SetTopicSuffix sets the optional trailing topic segment.
func (s *Session) SetTopicSuffix(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suffix = suffix
}

// ClientID returns the current client identity.
func (s *Session) ClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientID
}

// Topics returns the current topic namespace snapshot.
func (s *Session) Topics() Topics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Topics{Prefix: s.prefix, Suffix: s.suffix, ClientID: s.clientID}
}

// Begin registers the callback slots and arms the session. No connection
// is attempted here; the first Loop call connects.
func (s *Session) Begin(handlers Handlers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = handlers
	s.began = true
}

// Loop drives the session: it establishes the connection when needed and
// drains queued events, dispatching them on the caller's goroutine. It
// must be polled frequently enough to service the broker keep-alive.
func (s *Session) Loop() {
	s.ensureClient()
	s.drainEvents()
}

// Connected reports whether the MQTT session is currently established.
func (s *Session) Connected() bool {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	return client != nil && client.IsConnected()
}

// Restart tears the client down so the next Loop rebuilds it from current
// provisioning. Used after runtime provisioning changes.
func (s *Session) Restart() {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client != nil {
		client.Disconnect(disconnectQuiesceMs)
	}
}

// Close publishes the offline flag and disconnects. The session cannot be
// reused afterwards without another Begin/Loop cycle.
func (s *Session) Close() {
	s.mu.Lock()
	client := s.client
	topics := Topics{Prefix: s.prefix, Suffix: s.suffix, ClientID: s.clientID}
	qos := s.qos
	s.client = nil
	s.began = false
	s.mu.Unlock()

	if client == nil {
		return
	}
	if client.IsConnected() {
		token := client.Publish(topics.LWT(), qos, true, offlinePayload)
		token.WaitTimeout(publishTimeout)
	}
	client.Disconnect(disconnectQuiesceMs)
}

// ensureClient builds and starts the paho client on the first Loop after
// Begin (and after Restart).
func (s *Session) ensureClient() {
	s.mu.Lock()
	if !s.began || s.client != nil {
		s.mu.Unlock()
		return
	}

	snap := provisioningSnapshot{
		host:             s.host,
		port:             s.port,
		tls:              s.tls,
		clientID:         s.clientID,
		username:         s.username,
		password:         s.password,
		qos:              s.qos,
		reconnectInitial: s.reconnectInitial,
		reconnectMax:     s.reconnectMax,
		topics:           Topics{Prefix: s.prefix, Suffix: s.suffix, ClientID: s.clientID},
	}

	opts := buildClientOptions(snap)
	opts.SetOnConnectHandler(func(client pahomqtt.Client) {
		s.handleConnect(client, snap)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		s.enqueue(event{kind: eventDisconnected, err: err})
	})

	client := pahomqtt.NewClient(opts)
	s.client = client
	s.mu.Unlock()

	token := client.Connect()
	go func() {
		// With connect retry enabled the token only fails on fatal
		// configuration errors; surface those as a disconnect event.
		token.Wait()
		if err := token.Error(); err != nil {
			s.enqueue(event{kind: eventDisconnected, err: err})
		}
	}()
}

// handleConnect runs on the paho connect goroutine: restore the wildcard
// subscription, announce presence, and queue the connected event for the
// poll loop.
func (s *Session) handleConnect(client pahomqtt.Client, snap provisioningSnapshot) {
	subToken := client.Subscribe(snap.topics.Wildcard(), snap.qos,
		func(_ pahomqtt.Client, msg pahomqtt.Message) {
			s.enqueue(event{kind: eventMessage, topic: msg.Topic(), payload: msg.Payload()})
		})
	go func() {
		subToken.Wait()
		if err := subToken.Error(); err != nil {
			if log := s.getLogger(); log != nil {
				log.Error("mqtt subscription failed",
					"topic", snap.topics.Wildcard(),
					"error", fmt.Errorf("%w: %v", ErrSubscribeFailed, err),
				)
			}
		}
	}()

	// Counterpart of the LWT: flag the device online, retained.
	client.Publish(snap.topics.LWT(), snap.qos, true, onlinePayload)

	s.enqueue(event{kind: eventConnected})
}

// enqueue adds an event to the queue, dropping it when the poll loop has
// stalled long enough to fill the buffer.
func (s *Session) enqueue(ev event) {
	select {
	case s.events <- ev:
	default:
		if log := s.getLogger(); log != nil {
			log.Warn("mqtt event queue full, dropping event", "kind", int(ev.kind))
		}
	}
}

// drainEvents dispatches every queued event without blocking.
func (s *Session) drainEvents() {
	for {
		select {
		case ev := <-s.events:
			s.dispatch(ev)
		default:
			return
		}
	}
}

// dispatch handles one queued event on the poll goroutine.
func (s *Session) dispatch(ev event) {
	handlers := s.handlersSnapshot()
	log := s.getLogger()

	switch ev.kind {
	case eventConnected:
		if log != nil {
			log.Info("mqtt connected", "broker", s.brokerLabel())
		}
		if handlers.OnConnected != nil {
			handlers.OnConnected()
		}

	case eventDisconnected:
		reason := ClassifyDisconnect(ev.err)
		if log != nil {
			log.Warn("mqtt disconnected", "reason", reason.String(), "error", ev.err)
		}
		if handlers.OnDisconnected != nil {
			handlers.OnDisconnected(reason, ev.err)
		}

	case eventMessage:
		result := s.Receive(ev.topic, ev.payload)
		if result.OK() || result == ReceiveUnknownTopic {
			return
		}
		if log != nil {
			log.Warn("mqtt message dropped",
				"topic", ev.topic,
				"result", result.String(),
			)
		}
	}
}

// handlersSnapshot returns the registered handlers under the lock.
func (s *Session) handlersSnapshot() Handlers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers
}

// getLogger returns the current logger (may be nil).
func (s *Session) getLogger() Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// brokerLabel formats host:port for log lines.
func (s *Session) brokerLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return brokerAddress(s.host, s.port)
}
