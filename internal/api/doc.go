// Package api provides the device's local REST gateway.
//
// It serves the adoption document, exposes the MQTT provisioning surface
// (read redacted, write persisted), and mounts firmware-registered custom
// routes. The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Start also completes the provisioning chain: persisted MQTT overrides
// are loaded from the settings store and applied over the seeded defaults
// before the listener comes up, so they win regardless of how the session
// was seeded. Start must therefore run after the MQTT defaults (including
// the derived client ID) are in place.
package api
