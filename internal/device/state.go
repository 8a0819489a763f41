package device

import "fmt"

// ConnectionState is the device's coarse connectivity level, used by status
// displays and health reporting.
type ConnectionState int

const (
	// StateNone means no usable network link.
	StateNone ConnectionState = iota

	// StateIP means the link is up with an address but the MQTT session is
	// down.
	StateIP

	// StateMQTT means the MQTT session is established.
	StateMQTT
)

// String returns the display label for the state.
func (s ConnectionState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateIP:
		return "ip"
	case StateMQTT:
		return "mqtt"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ClassifyConnection derives the connection state from the transport link
// and the MQTT session. The link is authoritative: a session that still
// reports connected over a dead link classifies as StateNone.
func ClassifyConnection(linkUp, mqttConnected bool) ConnectionState {
	switch {
	case !linkUp:
		return StateNone
	case !mqttConnected:
		return StateIP
	default:
		return StateMQTT
	}
}
