package mqtt

import "strings"

// Topic type segments. The namespace follows the pattern:
//
//	[prefix/]<type>/<clientID>[/suffix]
//
// with fixed types for config, command, status, telemetry and log traffic.
const (
	topicTypeConfig    = "conf"
	topicTypeCommand   = "cmnd"
	topicTypeStatus    = "stat"
	topicTypeTelemetry = "tele"
	topicTypeLog       = "log"
)

// Topics builds the session's topic namespace from the configurable prefix
// and suffix plus the device client ID.
//
//	topics := mqtt.Topics{ClientID: "ab12cd"}
//	topics.Config() // "conf/ab12cd"
//
//	topics = mqtt.Topics{Prefix: "site-1", Suffix: "lab", ClientID: "ab12cd"}
//	topics.Config() // "site-1/conf/ab12cd/lab"
type Topics struct {
	Prefix   string
	Suffix   string
	ClientID string
}

// build assembles [prefix/]<type>/<clientID>[/suffix][/extra...].
func (t Topics) build(topicType string, extra ...string) string {
	segments := make([]string, 0, 5)
	if t.Prefix != "" {
		segments = append(segments, t.Prefix)
	}
	segments = append(segments, topicType, t.ClientID)
	if t.Suffix != "" {
		segments = append(segments, t.Suffix)
	}
	segments = append(segments, extra...)
	return strings.Join(segments, "/")
}

// Config returns the inbound configuration topic.
//
// Example: conf/ab12cd
func (t Topics) Config() string {
	return t.build(topicTypeConfig)
}

// Command returns the inbound command topic.
//
// Example: cmnd/ab12cd
func (t Topics) Command() string {
	return t.build(topicTypeCommand)
}

// Status returns the outbound status topic.
//
// Example: stat/ab12cd
func (t Topics) Status() string {
	return t.build(topicTypeStatus)
}

// Telemetry returns the outbound telemetry topic.
//
// Example: tele/ab12cd
func (t Topics) Telemetry() string {
	return t.build(topicTypeTelemetry)
}

// Adopt returns the topic the adoption document is published to on connect.
// The broker-side registry subscribes here to learn the device's schema
// without polling the REST endpoint.
//
// Example: stat/ab12cd/adopt
func (t Topics) Adopt() string {
	return t.build(topicTypeStatus, "adopt")
}

// LWT returns the last-will topic carrying the online/offline flag.
//
// Example: stat/ab12cd/lwt
func (t Topics) LWT() string {
	return t.build(topicTypeStatus, "lwt")
}

// Log returns the topic the device mirrors its log output to.
//
// Example: log/ab12cd
func (t Topics) Log() string {
	return t.build(topicTypeLog)
}

// Wildcard returns the subscription pattern covering all inbound topic
// types for this device.
//
// Example: +/ab12cd
func (t Topics) Wildcard() string {
	return t.build("+")
}
