package device

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"testing"

	"github.com/edgelink-io/edgelink-core/internal/adoption"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/logging"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/mqtt"
	"github.com/edgelink-io/edgelink-core/internal/jsontree"
	"github.com/edgelink-io/edgelink-core/internal/transport"
)

// fakeSession spies on the facade's session calls.
type fakeSession struct {
	clientID   string
	prefix     string
	began      bool
	handlers   mqtt.Handlers
	connected  bool
	loops      int
	publishErr error
	statusDocs int
	teleDocs   int
	adoptDocs  int
	rawTopics  []string
	closed     bool
}

func (f *fakeSession) SetClientID(clientID string) { f.clientID = clientID }
func (f *fakeSession) SetLogger(mqtt.Logger)       {}

func (f *fakeSession) Begin(handlers mqtt.Handlers) {
	f.began = true
	f.handlers = handlers
}

func (f *fakeSession) Loop()           { f.loops++ }
func (f *fakeSession) Connected() bool { return f.connected }

func (f *fakeSession) Topics() mqtt.Topics {
	return mqtt.Topics{Prefix: f.prefix, ClientID: f.clientID}
}

func (f *fakeSession) Publish(topic string, _ []byte, _ byte, _ bool) error {
	f.rawTopics = append(f.rawTopics, topic)
	return f.publishErr
}

func (f *fakeSession) PublishStatus(*jsontree.Object) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.statusDocs++
	return nil
}

func (f *fakeSession) PublishTelemetry(*jsontree.Object) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.teleDocs++
	return nil
}

func (f *fakeSession) PublishAdopt(*jsontree.Object) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.adoptDocs++
	return nil
}

func (f *fakeSession) Close() { f.closed = true }

// fakeGateway spies on the facade's gateway calls.
type fakeGateway struct {
	gets     []string
	posts    []string
	started  bool
	startErr error
	closed   bool
}

func (f *fakeGateway) Get(pattern string, _ http.HandlerFunc)  { f.gets = append(f.gets, pattern) }
func (f *fakeGateway) Post(pattern string, _ http.HandlerFunc) { f.posts = append(f.posts, pattern) }
func (f *fakeGateway) Start(context.Context) error             { f.started = true; return f.startErr }
func (f *fakeGateway) Close() error                            { f.closed = true; return nil }

// fakeMirror records telemetry copies.
type fakeMirror struct {
	docs int
	err  error
}

func (f *fakeMirror) WriteTelemetry(*jsontree.Object) error {
	f.docs++
	return f.err
}

func upTransport(t *testing.T) *transport.Fake {
	t.Helper()
	fake := transport.NewFake()
	fake.SetLink(true)
	fake.SetIP(netip.MustParseAddr("192.168.1.52"))
	fake.SetMAC(mustMAC(t, "a4:cf:12:9b:1e:3d"))
	return fake
}

func newTestController(t *testing.T, tr transport.Transport, session Session, gateway Gateway) *Controller {
	t.Helper()
	builder := adoption.NewBuilder(config.FirmwareConfig{ShortName: "sensor-node"}, tr)
	ctrl, err := New(Deps{
		Logger:    logging.Default(),
		Transport: tr,
		Session:   session,
		Gateway:   gateway,
		Adoption:  builder,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ctrl
}

// ====== Initialisation Ordering ======

func TestBeginSeedsIdentityThenStartsGateway(t *testing.T) {
	session := &fakeSession{}
	gateway := &fakeGateway{}
	ctrl := newTestController(t, upTransport(t), session, gateway)

	if err := ctrl.Begin(context.Background(), nil, nil); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	if session.clientID != "9b1e3d" {
		t.Errorf("session clientID = %q, want derived %q", session.clientID, "9b1e3d")
	}
	if !session.began {
		t.Error("session not begun")
	}
	if !gateway.started {
		t.Error("gateway not started")
	}
	// Begin must not connect: zero session polls so far.
	if session.loops != 0 {
		t.Errorf("session loops during Begin = %d, want 0", session.loops)
	}
}

func TestBeginFailsOnSetupTimeout(t *testing.T) {
	tr := transport.NewFake()
	tr.SetSetupResult(transport.Result{Outcome: transport.SetupTimeout})
	session := &fakeSession{}
	gateway := &fakeGateway{}
	ctrl := newTestController(t, tr, session, gateway)

	err := ctrl.Begin(context.Background(), nil, nil)
	if !errors.Is(err, ErrNetworkSetup) {
		t.Fatalf("Begin() error = %v, want %v", err, ErrNetworkSetup)
	}
	if session.began {
		t.Error("session begun despite failed network setup")
	}
	if gateway.started {
		t.Error("gateway started despite failed network setup")
	}
}

func TestBeginPropagatesGatewayError(t *testing.T) {
	session := &fakeSession{}
	gateway := &fakeGateway{startErr: errors.New("port in use")}
	ctrl := newTestController(t, upTransport(t), session, gateway)

	if err := ctrl.Begin(context.Background(), nil, nil); err == nil {
		t.Error("Begin() error = nil, want gateway error")
	}
}

// ====== Poll Loop ======

func TestLoopGatesSessionOnLink(t *testing.T) {
	tr := upTransport(t)
	session := &fakeSession{}
	ctrl := newTestController(t, tr, session, &fakeGateway{})

	ctrl.Loop()
	if session.loops != 1 {
		t.Errorf("session loops = %d, want 1", session.loops)
	}
	if tr.MaintainCount() != 1 {
		t.Errorf("transport maintains = %d, want 1", tr.MaintainCount())
	}

	tr.SetLink(false)
	ctrl.Loop()
	if session.loops != 1 {
		t.Errorf("session polled with link down: loops = %d, want 1", session.loops)
	}
	if tr.MaintainCount() != 1 {
		t.Errorf("transport maintained with link down: maintains = %d, want 1", tr.MaintainCount())
	}
}

// ====== Fail-Closed Publishing ======

func TestPublishStatusFailsClosed(t *testing.T) {
	tr := upTransport(t)
	session := &fakeSession{}
	ctrl := newTestController(t, tr, session, &fakeGateway{})
	doc := jsontree.New()

	if !ctrl.PublishStatus(doc) {
		t.Error("PublishStatus() = false with link up and session healthy")
	}
	if session.statusDocs != 1 {
		t.Errorf("session status publishes = %d, want 1", session.statusDocs)
	}

	tr.SetLink(false)
	if ctrl.PublishStatus(doc) {
		t.Error("PublishStatus() = true with link down")
	}
	if session.statusDocs != 1 {
		t.Error("publish attempted with link down")
	}

	tr.SetLink(true)
	session.publishErr = mqtt.ErrNotConnected
	if ctrl.PublishStatus(doc) {
		t.Error("PublishStatus() = true with session disconnected")
	}
}

func TestPublishTelemetryMirrorsRegardlessOfLink(t *testing.T) {
	tr := upTransport(t)
	tr.SetLink(false)
	session := &fakeSession{}
	mirror := &fakeMirror{}

	builder := adoption.NewBuilder(config.FirmwareConfig{}, tr)
	ctrl, err := New(Deps{
		Logger:    logging.Default(),
		Transport: tr,
		Session:   session,
		Gateway:   &fakeGateway{},
		Adoption:  builder,
		Telemetry: mirror,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if ctrl.PublishTelemetry(jsontree.New()) {
		t.Error("PublishTelemetry() = true with link down")
	}
	if mirror.docs != 1 {
		t.Errorf("mirror writes = %d, want 1", mirror.docs)
	}
}

// ====== Connect Lifecycle ======

func TestOnConnectedPublishesAdoptionAndTargetsLogSink(t *testing.T) {
	session := &fakeSession{}
	sink := logging.NewMQTTWriter()

	tr := upTransport(t)
	builder := adoption.NewBuilder(config.FirmwareConfig{ShortName: "sensor-node"}, tr)
	ctrl, err := New(Deps{
		Logger:    logging.Default(),
		Transport: tr,
		Session:   session,
		Gateway:   &fakeGateway{},
		Adoption:  builder,
		LogSink:   sink,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := ctrl.Begin(context.Background(), nil, nil); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	session.handlers.OnConnected()

	if session.adoptDocs != 1 {
		t.Errorf("adoption publishes = %d, want 1", session.adoptDocs)
	}
	if got, want := sink.Topic(), "log/9b1e3d"; got != want {
		t.Errorf("log sink topic = %q, want %q", got, want)
	}

	session.handlers.OnDisconnected(mqtt.ReasonConnectionLost, errors.New("broken pipe"))
	if sink.Topic() != "" {
		t.Errorf("log sink topic after disconnect = %q, want muted", sink.Topic())
	}
}

// ====== Schema and Route Delegation ======

func TestSchemaAndRouteDelegation(t *testing.T) {
	session := &fakeSession{}
	gateway := &fakeGateway{}
	ctrl := newTestController(t, upTransport(t), session, gateway)

	schema, err := jsontree.Parse([]byte(`{"interval":{"type":"integer"}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ctrl.SetConfigSchema(schema)
	ctrl.APIGet("/sensor", func(http.ResponseWriter, *http.Request) {})
	ctrl.APIPost("/relay", func(http.ResponseWriter, *http.Request) {})

	if len(gateway.gets) != 1 || gateway.gets[0] != "/sensor" {
		t.Errorf("gateway gets = %v, want [/sensor]", gateway.gets)
	}
	if len(gateway.posts) != 1 || gateway.posts[0] != "/relay" {
		t.Errorf("gateway posts = %v, want [/relay]", gateway.posts)
	}
}

// ====== Display Text ======

func TestDisplayText(t *testing.T) {
	tr := upTransport(t)
	session := &fakeSession{clientID: "9b1e3d"}
	ctrl := newTestController(t, tr, session, &fakeGateway{})

	if got, want := ctrl.IPAddressText(), "192.168.001.052"; got != want {
		t.Errorf("IPAddressText() = %q, want %q", got, want)
	}
	if got, want := ctrl.MACAddressText(), "A4:CF:12:9B:1E:3D"; got != want {
		t.Errorf("MACAddressText() = %q, want %q", got, want)
	}

	// Session down: placeholder topic.
	if got, want := ctrl.MQTTTopicText(), "-/------"; got != want {
		t.Errorf("MQTTTopicText() disconnected = %q, want %q", got, want)
	}

	session.connected = true
	if got, want := ctrl.MQTTTopicText(), "+/9b1e3d"; got != want {
		t.Errorf("MQTTTopicText() connected = %q, want %q", got, want)
	}

	session.prefix = strings.Repeat("x", 50)
	if got := ctrl.MQTTTopicText(); len(got) != 39 {
		t.Errorf("MQTTTopicText() length = %d, want truncated to 39", len(got))
	}

	tr.SetIP(netip.Addr{})
	if got, want := ctrl.IPAddressText(), "---.---.---.---"; got != want {
		t.Errorf("IPAddressText() without address = %q, want %q", got, want)
	}
}
