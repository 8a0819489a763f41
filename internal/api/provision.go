package api

import (
	"encoding/json"
	"sync"

	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
)

// provisioningDoc is the wire shape of the MQTT provisioning surface. The
// same shape is persisted in the settings store, accepted by POST /mqtt
// and returned (redacted) by GET /mqtt.
type provisioningDoc struct {
	Broker      string `json:"broker,omitempty"`
	Port        int    `json:"port,omitempty"`
	TLS         bool   `json:"tls,omitempty"`
	ClientID    string `json:"clientId,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topicPrefix,omitempty"`
	TopicSuffix string `json:"topicSuffix,omitempty"`
}

// provisioning tracks the current effective MQTT provisioning: config
// defaults, overlaid with persisted overrides, overlaid with runtime POSTs.
type provisioning struct {
	mu  sync.Mutex
	doc provisioningDoc
}

// newProvisioning seeds the view from configuration defaults.
func newProvisioning(cfg config.MQTTConfig) *provisioning {
	return &provisioning{
		doc: provisioningDoc{
			Broker:      cfg.Broker.Host,
			Port:        cfg.Broker.Port,
			TLS:         cfg.Broker.TLS,
			ClientID:    cfg.Broker.ClientID,
			Username:    cfg.Auth.Username,
			Password:    cfg.Auth.Password,
			TopicPrefix: cfg.Topics.Prefix,
			TopicSuffix: cfg.Topics.Suffix,
		},
	}
}

// merged unmarshals raw over a copy of the current document and returns the
// result without committing it. Fields absent from raw keep their current
// values; fields present override them. The live view only changes via
// commit, so a merge that is later rejected (failed persistence) leaves no
// trace.
func (p *provisioning) merged(raw []byte) (provisioningDoc, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc := p.doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return provisioningDoc{}, err
	}
	return doc, nil
}

// commit replaces the current document.
func (p *provisioning) commit(doc provisioningDoc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc = doc
}

// snapshot returns a copy of the current document.
func (p *provisioning) snapshot() provisioningDoc {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

// redacted returns the current document with credentials stripped, for the
// read side of the provisioning surface.
func (p *provisioning) redacted() provisioningDoc {
	doc := p.snapshot()
	doc.Password = ""
	return doc
}

// apply pushes the current document into the session. An empty client ID
// is skipped so the derived default survives; everything else is applied
// verbatim, including empty prefix/suffix which clear the namespace.
func (p *provisioning) apply(session ProvisioningSession) {
	doc := p.snapshot()

	if doc.Broker != "" {
		session.SetBroker(doc.Broker, doc.Port)
	}
	session.SetTLS(doc.TLS)
	if doc.ClientID != "" {
		session.SetClientID(doc.ClientID)
	}
	session.SetAuth(doc.Username, doc.Password)
	session.SetTopicPrefix(doc.TopicPrefix)
	session.SetTopicSuffix(doc.TopicSuffix)
}
