package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/edgelink-io/edgelink-core/internal/adoption"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/database"
	"github.com/edgelink-io/edgelink-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// SettingsStore is the slice of the settings store the gateway needs for
// persisted provisioning overrides.
type SettingsStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
}

// ProvisioningSession is the slice of the MQTT session the gateway can
// reprovision at runtime.
type ProvisioningSession interface {
	SetBroker(host string, port int)
	SetTLS(enabled bool)
	SetClientID(clientID string)
	SetAuth(username, password string)
	SetTopicPrefix(prefix string)
	SetTopicSuffix(suffix string)
	ClientID() string
	Restart()
}

// route is a firmware-registered custom endpoint.
type route struct {
	method  string
	pattern string
	handler http.HandlerFunc
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	MQTT     config.MQTTConfig
	Logger   *logging.Logger
	Adoption *adoption.Builder
	Settings SettingsStore
	Session  ProvisioningSession
	Version  string
}

// Server is the device's local HTTP gateway.
//
// It is created with New() and started with Start(). Custom routes must be
// registered between the two.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	adoption *adoption.Builder
	settings SettingsStore
	session  ProvisioningSession
	version  string

	provisioning *provisioning

	routes []route
	server *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Adoption == nil {
		return nil, fmt.Errorf("adoption builder is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("mqtt session is required")
	}
	// Settings are optional: without a store, provisioning overrides are
	// runtime-only and lost on restart.

	return &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		adoption:     deps.Adoption,
		settings:     deps.Settings,
		session:      deps.Session,
		version:      deps.Version,
		provisioning: newProvisioning(deps.MQTT),
	}, nil
}

// Get registers a firmware GET endpoint. Must be called before Start.
func (s *Server) Get(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, route{method: http.MethodGet, pattern: pattern, handler: handler})
}

// Post registers a firmware POST endpoint. Must be called before Start.
func (s *Server) Post(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, route{method: http.MethodPost, pattern: pattern, handler: handler})
}

// Start loads persisted provisioning overrides, applies them to the MQTT
// session, and launches the HTTP listener in a background goroutine.
//
// The session's derived defaults must already be seeded: persisted values
// are applied on top and win.
func (s *Server) Start(ctx context.Context) error {
	if err := s.loadPersistedProvisioning(ctx); err != nil {
		return fmt.Errorf("loading persisted provisioning: %w", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// loadPersistedProvisioning merges stored overrides into the current
// provisioning view and pushes the result into the session.
func (s *Server) loadPersistedProvisioning(ctx context.Context) error {
	if s.settings == nil {
		return nil
	}

	raw, found, err := s.settings.Get(ctx, database.SettingMQTT)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	merged, err := s.provisioning.merged(raw)
	if err != nil {
		// A corrupt stored document must not brick startup; the seeded
		// defaults stay in effect.
		s.logger.Warn("ignoring corrupt persisted mqtt provisioning", "error", err)
		return nil
	}

	s.provisioning.commit(merged)
	s.provisioning.apply(s.session)
	s.logger.Info("applied persisted mqtt provisioning")
	return nil
}
