package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/edgelink-io/edgelink-core/internal/jsontree"
)

// Publish sends a raw payload to a topic and waits for broker confirmation.
// It fails closed: a session that is not connected returns ErrNotConnected
// without queueing anything.
func (s *Session) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidTopic)
	}

	s.mu.Lock()
	began := s.began
	client := s.client
	s.mu.Unlock()

	if !began {
		return ErrNotBegun
	}
	if client == nil || !client.IsConnected() {
		return ErrNotConnected
	}

	token := client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: confirmation timeout on %s", ErrPublishFailed, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublishFailed, topic, err)
	}
	return nil
}

// publishDocument marshals a document and publishes it at the session QoS.
func (s *Session) publishDocument(topic string, doc *jsontree.Object, retained bool) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal for %s: %v", ErrPublishFailed, topic, err)
	}

	s.mu.Lock()
	qos := s.qos
	s.mu.Unlock()

	return s.Publish(topic, payload, qos, retained)
}

// PublishStatus publishes a document to the status topic.
func (s *Session) PublishStatus(doc *jsontree.Object) error {
	return s.publishDocument(s.Topics().Status(), doc, false)
}

// PublishTelemetry publishes a document to the telemetry topic.
func (s *Session) PublishTelemetry(doc *jsontree.Object) error {
	return s.publishDocument(s.Topics().Telemetry(), doc, false)
}

// PublishAdopt publishes the adoption document to the adopt status topic.
func (s *Session) PublishAdopt(doc *jsontree.Object) error {
	return s.publishDocument(s.Topics().Adopt(), doc, false)
}
