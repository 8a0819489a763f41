package mqtt

import (
	"errors"
	"fmt"
	"net"

	"github.com/eclipse/paho.mqtt.golang/packets"
)

// DisconnectReason classifies why the session dropped. The classification
// is purely advisory — every reason is handled by the same uniform
// reconnect policy — but the distinction matters in the field: "bad
// credentials" and "flaky switch port" call for very different visits.
type DisconnectReason int

const (
	// ReasonDisconnected is a clean, requested disconnect.
	ReasonDisconnected DisconnectReason = iota

	// ReasonTimeout is a keep-alive or network timeout.
	ReasonTimeout

	// ReasonConnectionLost is an established connection dropping for any
	// other cause.
	ReasonConnectionLost

	// ReasonConnectFailed is a failure to reach the broker at all.
	ReasonConnectFailed

	// ReasonBadProtocol is a broker CONNACK refusal: unacceptable protocol
	// version.
	ReasonBadProtocol

	// ReasonBadClientID is a broker CONNACK refusal: identifier rejected.
	ReasonBadClientID

	// ReasonUnavailable is a broker CONNACK refusal: server unavailable.
	ReasonUnavailable

	// ReasonBadCredentials is a broker CONNACK refusal: bad username or
	// password.
	ReasonBadCredentials

	// ReasonUnauthorized is a broker CONNACK refusal: not authorised.
	ReasonUnauthorized
)

// String returns the log label for the reason.
func (r DisconnectReason) String() string {
	switch r {
	case ReasonDisconnected:
		return "disconnected"
	case ReasonTimeout:
		return "connection timeout"
	case ReasonConnectionLost:
		return "connection lost"
	case ReasonConnectFailed:
		return "connect failed"
	case ReasonBadProtocol:
		return "bad protocol"
	case ReasonBadClientID:
		return "bad client id"
	case ReasonUnavailable:
		return "unavailable"
	case ReasonBadCredentials:
		return "bad credentials"
	case ReasonUnauthorized:
		return "unauthorised"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// ClassifyDisconnect maps the error reported by the underlying client to a
// DisconnectReason. A nil error is a clean disconnect.
func ClassifyDisconnect(err error) DisconnectReason {
	if err == nil {
		return ReasonDisconnected
	}

	switch {
	case errors.Is(err, packets.ErrorRefusedBadProtocolVersion):
		return ReasonBadProtocol
	case errors.Is(err, packets.ErrorRefusedIDRejected):
		return ReasonBadClientID
	case errors.Is(err, packets.ErrorRefusedServerUnavailable):
		return ReasonUnavailable
	case errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword):
		return ReasonBadCredentials
	case errors.Is(err, packets.ErrorRefusedNotAuthorised):
		return ReasonUnauthorized
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	if errors.Is(err, packets.ErrorNetworkError) {
		return ReasonConnectFailed
	}

	return ReasonConnectionLost
}
