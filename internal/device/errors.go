package device

import "errors"

// Domain-specific errors for the device facade.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNetworkSetup is returned when the transport bring-up phase does
	// not produce a usable link.
	ErrNetworkSetup = errors.New("device: network setup failed")
)
