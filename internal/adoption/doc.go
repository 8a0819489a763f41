// Package adoption builds the device's adoption document: the
// self-describing JSON payload a broker-side registry uses to discover the
// device, its firmware, its network identity and the JSON schemas for the
// config and command payloads it accepts.
//
// The same document is served over REST and published to the adopt topic
// on every MQTT connect, so registries can discover devices either by
// polling or push.
package adoption
