package mqtt

import (
	"fmt"

	"github.com/edgelink-io/edgelink-core/internal/jsontree"
)

// ReceiveResult classifies the handling of one inbound wire message.
type ReceiveResult int

const (
	// ReceiveConfigHandled means a config payload was parsed and dispatched.
	ReceiveConfigHandled ReceiveResult = iota

	// ReceiveCommandHandled means a command payload was parsed and
	// dispatched.
	ReceiveCommandHandled

	// ReceiveZeroLength means the payload was empty.
	ReceiveZeroLength

	// ReceiveJSONError means the payload was not a valid JSON object.
	ReceiveJSONError

	// ReceiveNoConfigHandler means a config payload arrived with no
	// registered config handler.
	ReceiveNoConfigHandler

	// ReceiveNoCommandHandler means a command payload arrived with no
	// registered command handler.
	ReceiveNoCommandHandler

	// ReceiveUnknownTopic means the topic matched neither the config nor
	// the command topic. The wildcard subscription also matches the
	// device's own outbound topics, so this is expected traffic, not an
	// error.
	ReceiveUnknownTopic
)

// String returns the log label for the result.
func (r ReceiveResult) String() string {
	switch r {
	case ReceiveConfigHandled:
		return "config handled"
	case ReceiveCommandHandled:
		return "command handled"
	case ReceiveZeroLength:
		return "zero-length payload"
	case ReceiveJSONError:
		return "json error"
	case ReceiveNoConfigHandler:
		return "no config handler"
	case ReceiveNoCommandHandler:
		return "no command handler"
	case ReceiveUnknownTopic:
		return "unknown topic"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// OK reports whether the result is a successful dispatch.
func (r ReceiveResult) OK() bool {
	return r == ReceiveConfigHandled || r == ReceiveCommandHandled
}

// Receive classifies and dispatches one inbound message.
//
// Classification happens in priority order: empty payload, topic class,
// JSON validity, handler presence. Non-success outcomes are reported to the
// caller for logging; none of them disturb the session.
func (s *Session) Receive(topic string, payload []byte) ReceiveResult {
	if len(payload) == 0 {
		return ReceiveZeroLength
	}

	topics := s.Topics()
	handlers := s.handlersSnapshot()

	switch topic {
	case topics.Config():
		doc, err := jsontree.Parse(payload)
		if err != nil {
			return ReceiveJSONError
		}
		if handlers.OnConfig == nil {
			return ReceiveNoConfigHandler
		}
		handlers.OnConfig(doc)
		return ReceiveConfigHandled

	case topics.Command():
		doc, err := jsontree.Parse(payload)
		if err != nil {
			return ReceiveJSONError
		}
		if handlers.OnCommand == nil {
			return ReceiveNoCommandHandler
		}
		handlers.OnCommand(doc)
		return ReceiveCommandHandled

	default:
		return ReceiveUnknownTopic
	}
}
