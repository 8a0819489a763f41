// Package transport abstracts the network interface the device runs on.
//
// The physical stack (cabling, Wi-Fi supplicant, DHCP client) is an
// external collaborator: this package only observes link and address state
// and turns the one-time blocking bring-up into a bounded, cancellable
// setup phase with an explicit outcome.
//
// Two production variants exist, selected by configuration rather than
// build tags:
//
//   - Wired: watches a named interface for link and an IPv4 lease
//   - Wireless: the same observation with a provisioning window, during
//     which an operator (or the supplicant's portal) is expected to get
//     the station associated
//
// A Fake transport with settable state is provided for unit tests.
package transport
