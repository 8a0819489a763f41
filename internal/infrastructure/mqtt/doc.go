// Package mqtt provides the device's MQTT session manager.
//
// It wraps paho.mqtt.golang with Edgelink-specific functionality: the
// topic namespace derived from device identity, inbound message
// classification, publish helpers for the status/telemetry/adoption
// topics, and disconnect-reason diagnostics.
//
// # Poll-driven dispatch
//
// The paho library delivers connection events and inbound messages on its
// own goroutines. The session funnels them into an internal queue that
// Loop drains on the caller's goroutine, so firmware callbacks always run
// single-threaded and in arrival order:
//
//	session := mqtt.New(cfg)
//	session.Begin(mqtt.Handlers{OnConfig: onConfig, OnCommand: onCommand})
//	for {
//	    session.Loop() // called from the device poll loop
//	}
//
// The session does not connect during Begin: the first Loop call after
// initialisation establishes the connection, so provisioning overrides
// loaded between Begin and the first poll are honoured. Reconnection after
// that is the paho client's own retry machinery; disconnect reasons are
// classified for logging only and carry no differentiated recovery.
package mqtt
