package adoption

import (
	"strings"
	"sync"

	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
	"github.com/edgelink-io/edgelink-core/internal/jsontree"
	"github.com/edgelink-io/edgelink-core/internal/transport"
)

// schemaDraft is the JSON Schema dialect the schema envelopes declare.
const schemaDraft = "http://json-schema.org/draft-07/schema#"

// Builder assembles adoption documents from firmware metadata, the current
// network identity and the firmware-declared schema trees.
//
// The two schema trees are long-lived: firmware sets them once during
// startup (or replaces them wholesale later), and every Build embeds a
// snapshot. Builder is safe for concurrent use; the REST gateway reads it
// while the poll loop may be replacing schemas.
type Builder struct {
	mu            sync.Mutex
	firmware      config.FirmwareConfig
	transport     transport.Transport
	configSchema  *jsontree.Object
	commandSchema *jsontree.Object
}

// NewBuilder creates a builder with empty schema trees.
func NewBuilder(firmware config.FirmwareConfig, tr transport.Transport) *Builder {
	return &Builder{
		firmware:      firmware,
		transport:     tr,
		configSchema:  jsontree.New(),
		commandSchema: jsontree.New(),
	}
}

// SetConfigSchema replaces the config schema properties with a copy of src.
// The owned tree is cleared first, so repeated calls never accumulate
// stale keys.
func (b *Builder) SetConfigSchema(src *jsontree.Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configSchema.Clear()
	jsontree.Merge(b.configSchema, src)
}

// SetCommandSchema replaces the command schema properties with a copy of
// src.
func (b *Builder) SetCommandSchema(src *jsontree.Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commandSchema.Clear()
	jsontree.Merge(b.commandSchema, src)
}

// Build assembles the adoption document. Sections appear in fixed order:
// firmware, system, network, configSchema, commandSchema. The system
// section is best-effort; metrics that cannot be read are omitted rather
// than failing the build.
func (b *Builder) Build() *jsontree.Object {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := jsontree.New()
	doc.Set("firmware", b.firmwareSection())
	doc.Set("system", systemSnapshot())
	doc.Set("network", b.networkSection())
	doc.Set("configSchema", b.schemaEnvelope(b.configSchema))
	doc.Set("commandSchema", b.schemaEnvelope(b.commandSchema))
	return doc
}

func (b *Builder) firmwareSection() *jsontree.Object {
	section := jsontree.New()
	section.Set("name", b.firmware.Name)
	section.Set("shortName", b.firmware.ShortName)
	section.Set("maker", b.firmware.Maker)
	section.Set("version", b.firmware.Version)
	if b.firmware.GithubURL != "" {
		section.Set("githubUrl", b.firmware.GithubURL)
	}
	return section
}

func (b *Builder) networkSection() *jsontree.Object {
	section := jsontree.New()
	if b.transport == nil {
		return section
	}
	section.Set("mode", string(b.transport.Mode()))
	if ip := b.transport.IP(); ip.IsValid() {
		section.Set("ip", ip.String())
	}
	if mac := b.transport.MAC(); len(mac) > 0 {
		section.Set("mac", strings.ToUpper(mac.String()))
	}
	return section
}

// schemaEnvelope wraps a properties tree in the JSON Schema envelope the
// registry expects. The properties object is always present, empty when
// firmware declared nothing.
func (b *Builder) schemaEnvelope(properties *jsontree.Object) *jsontree.Object {
	envelope := jsontree.New()
	envelope.Set("$schema", schemaDraft)
	envelope.Set("title", b.firmware.ShortName)
	envelope.Set("type", "object")
	envelope.Set("properties", properties.Clone())
	return envelope
}
