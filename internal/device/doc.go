// Package device is the facade firmware builds against. It owns the
// initialisation ordering (network, then MQTT identity, then the REST
// gateway with its persisted overrides), the poll loop that drives the
// transport and the MQTT session, connection-state classification, and the
// fixed-width display text helpers for status screens.
//
// Typical firmware shape:
//
//	ctrl, err := device.New(deps)
//	err = ctrl.Begin(ctx, onConfig, onCommand)
//	for {
//	    ctrl.Loop()
//	}
package device
