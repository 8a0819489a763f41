package logging

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/edgelink-io/edgelink-core/internal/infrastructure/config"
)

// =============================================================================
// Level Parsing Tests
// =============================================================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}, "test")
	logger.Debug("debug line", "key", "value")

	logger = Default()
	logger.Info("info line")
}

func TestWithAddsAttributes(t *testing.T) {
	logger := Default().With("component", "test")
	if logger == nil {
		t.Fatal("With() returned nil")
	}
	logger.Info("attributed line")
}

// =============================================================================
// MQTT Sink Tests
// =============================================================================

// spyPublisher records published payloads.
type spyPublisher struct {
	mu       sync.Mutex
	messages []string
	topics   []string
}

func (s *spyPublisher) Publish(topic string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	s.messages = append(s.messages, string(payload))
	return nil
}

func (s *spyPublisher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func TestMQTTWriterMuteWithoutTopic(t *testing.T) {
	pub := &spyPublisher{}
	w := NewMQTTWriter()
	w.SetPublisher(pub)

	if _, err := w.Write([]byte("dropped line\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if pub.count() != 0 {
		t.Errorf("published %d messages with no topic set, want 0", pub.count())
	}
}

func TestMQTTWriterPublishesCompleteLines(t *testing.T) {
	pub := &spyPublisher{}
	w := NewMQTTWriter()
	w.SetPublisher(pub)
	w.SetTopic("log/abc123")

	w.Write([]byte("first line\nsecond "))
	w.Write([]byte("half\n"))

	if pub.count() != 2 {
		t.Fatalf("published %d messages, want 2", pub.count())
	}
	if pub.messages[0] != "first line" {
		t.Errorf("message[0] = %q, want %q", pub.messages[0], "first line")
	}
	if pub.messages[1] != "second half" {
		t.Errorf("message[1] = %q, want %q", pub.messages[1], "second half")
	}
	if pub.topics[0] != "log/abc123" {
		t.Errorf("topic = %q, want log/abc123", pub.topics[0])
	}
}

func TestMQTTWriterRetopic(t *testing.T) {
	pub := &spyPublisher{}
	w := NewMQTTWriter()
	w.SetPublisher(pub)

	w.SetTopic("log/old")
	w.Write([]byte("one\n"))
	w.SetTopic("log/new")
	w.Write([]byte("two\n"))

	if pub.topics[0] != "log/old" || pub.topics[1] != "log/new" {
		t.Errorf("topics = %v, want [log/old log/new]", pub.topics)
	}
}

func TestTeeLoggerWritesToSink(t *testing.T) {
	pub := &spyPublisher{}
	sink := NewMQTTWriter()
	sink.SetPublisher(pub)
	sink.SetTopic("log/tee")

	logger := NewTee(config.LoggingConfig{Level: "info", Format: "json"}, "test", sink)
	logger.Info("tee line")

	if pub.count() != 1 {
		t.Fatalf("published %d messages via tee, want 1", pub.count())
	}
}
