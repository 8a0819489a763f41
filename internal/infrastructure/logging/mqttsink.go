package logging

import (
	"bytes"
	"sync"
)

// Publisher is the outbound primitive the MQTT sink needs. The device
// facade provides an adapter over the session manager.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTWriter is an io.Writer that forwards complete log lines to an MQTT
// topic. It starts mute: lines are discarded until both a publisher and a
// topic are set, which happens once the session connects and its log topic
// is known. Publish failures are dropped silently — the sink must never
// recurse into logging or disturb the session.
//
// Thread Safety: all methods are safe for concurrent use.
type MQTTWriter struct {
	mu      sync.Mutex
	topic   string
	pub     Publisher
	partial bytes.Buffer
}

// NewMQTTWriter returns a sink with no destination configured.
func NewMQTTWriter() *MQTTWriter {
	return &MQTTWriter{}
}

// SetPublisher attaches the publish primitive.
func (w *MQTTWriter) SetPublisher(pub Publisher) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pub = pub
}

// SetTopic points the sink at a destination topic. An empty topic mutes the
// sink again (used across disconnects).
func (w *MQTTWriter) SetTopic(topic string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.topic = topic
}

// Topic returns the current destination topic.
func (w *MQTTWriter) Topic() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.topic
}

// Write implements io.Writer. Input is buffered until a newline completes a
// line; each complete line is published as one message. Write never fails:
// log output must not propagate transport errors back into slog.
func (w *MQTTWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.partial.Write(p)

	for {
		line, err := w.partial.ReadBytes('\n')
		if err != nil {
			// Partial line: keep it for the next Write.
			w.partial.Write(line)
			break
		}
		w.publishLine(bytes.TrimRight(line, "\n"))
	}

	return len(p), nil
}

// publishLine sends one line if the sink has a destination. Called with the
// mutex held.
func (w *MQTTWriter) publishLine(line []byte) {
	if w.pub == nil || w.topic == "" || len(line) == 0 {
		return
	}
	// Best effort: a failed publish is not an event worth logging.
	_ = w.pub.Publish(w.topic, line)
}
