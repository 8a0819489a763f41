package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edgelink-io/edgelink-core/internal/infrastructure/database"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Built-in device surface
	r.Get("/health", s.handleHealth)
	r.Get("/adopt", s.handleAdopt)
	r.Get("/mqtt", s.handleGetMQTT)
	r.Post("/mqtt", s.handleSetMQTT)

	// Firmware-registered endpoints
	for _, rt := range s.routes {
		switch rt.method {
		case http.MethodGet:
			r.Get(rt.pattern, rt.handler)
		case http.MethodPost:
			r.Post(rt.pattern, rt.handler)
		}
	}

	return r
}

// handleHealth reports liveness plus the running firmware version.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// handleAdopt serves the adoption document. Identical output to the
// on-connect MQTT publish; both sides build from the same state.
func (s *Server) handleAdopt(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.adoption.Build())
}

// handleGetMQTT returns the effective MQTT provisioning with credentials
// redacted.
func (s *Server) handleGetMQTT(w http.ResponseWriter, _ *http.Request) {
	doc := s.provisioning.redacted()
	if doc.ClientID == "" {
		doc.ClientID = s.session.ClientID()
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleSetMQTT accepts provisioning overrides, persists them, applies them
// to the live session and restarts it so the new values take effect on the
// next poll.
func (s *Server) handleSetMQTT(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body")
		return
	}
	if !json.Valid(body) {
		writeBadRequest(w, "body must be a JSON document")
		return
	}

	merged, err := s.provisioning.merged(body)
	if err != nil {
		writeBadRequest(w, "malformed provisioning document")
		return
	}

	if s.settings != nil {
		persisted, err := json.Marshal(merged)
		if err == nil {
			err = s.settings.Put(r.Context(), database.SettingMQTT, persisted)
		}
		if err != nil {
			s.logger.Error("persisting mqtt provisioning", "error", err)
			writeInternalError(w, "persisting provisioning")
			return
		}
	}

	s.provisioning.commit(merged)
	s.provisioning.apply(s.session)
	s.session.Restart()

	s.logger.Info("mqtt provisioning updated")
	writeJSON(w, http.StatusOK, s.provisioning.redacted())
}
