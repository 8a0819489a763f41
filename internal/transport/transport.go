package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// Mode identifies the transport variant, and is reported verbatim in the
// adoption document's network section.
type Mode string

const (
	// ModeWired is an Ethernet-style transport.
	ModeWired Mode = "ethernet"

	// ModeWireless is a Wi-Fi transport.
	ModeWireless Mode = "wifi"
)

// Outcome is the result class of a setup attempt.
type Outcome int

const (
	// SetupSuccess means the link came up with an address inside the window.
	SetupSuccess Outcome = iota

	// SetupTimeout means the window elapsed without connectivity.
	SetupTimeout

	// SetupFailed means bring-up cannot succeed without intervention
	// (missing interface, cancelled context).
	SetupFailed
)

// String returns a short label for logging.
func (o Outcome) String() string {
	switch o {
	case SetupSuccess:
		return "success"
	case SetupTimeout:
		return "timeout"
	case SetupFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of the one-time bring-up phase.
// Err carries detail for non-success outcomes and may be nil on timeout.
type Result struct {
	Outcome Outcome
	Err     error
}

// Transport is the capability interface the device core consumes.
//
// Setup is the one-shot, startup-only bring-up; it blocks until connectivity
// is established, the configured window elapses, or ctx is cancelled.
// LinkUp and IP re-probe live state on every call so callers never see a
// cached stale answer. MAC is fixed at setup time and is the basis of the
// device's default identity.
type Transport interface {
	Mode() Mode
	Setup(ctx context.Context) Result
	Maintain()
	LinkUp() bool
	IP() netip.Addr
	MAC() net.HardwareAddr
}

// ErrInterfaceNotFound is returned when the configured interface does not
// exist on the host.
var ErrInterfaceNotFound = errors.New("transport: interface not found")

// defaultPollInterval is how often the setup phase re-probes the interface.
const defaultPollInterval = 250 * time.Millisecond

// ifaceState is a point-in-time observation of a network interface.
type ifaceState struct {
	linkUp bool
	ip     netip.Addr
	mac    net.HardwareAddr
}

// probeInterface inspects the named interface.
// A missing interface is a hard error; everything else is reported as state.
func probeInterface(name string) (ifaceState, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return ifaceState{}, fmt.Errorf("%w: %q", ErrInterfaceNotFound, name)
	}

	state := ifaceState{
		linkUp: iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagRunning != 0,
		mac:    iface.HardwareAddr,
	}

	addrs, err := iface.Addrs()
	if err != nil {
		// Treat address enumeration failure as "no lease yet".
		return state, nil
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		v4 := ipNet.IP.To4()
		if v4 == nil || !ipNet.IP.IsGlobalUnicast() {
			continue
		}
		if parsed, ok := netip.AddrFromSlice(v4); ok {
			state.ip = parsed
			break
		}
	}

	return state, nil
}

// waitForConnectivity polls the interface until it has link and an address,
// the window elapses, or ctx is cancelled.
func waitForConnectivity(ctx context.Context, name string, window time.Duration) (ifaceState, Result) {
	deadline := time.Now().Add(window)
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		state, err := probeInterface(name)
		if err != nil {
			return state, Result{Outcome: SetupFailed, Err: err}
		}
		if state.linkUp && state.ip.IsValid() {
			return state, Result{Outcome: SetupSuccess}
		}
		if time.Now().After(deadline) {
			return state, Result{Outcome: SetupTimeout}
		}

		select {
		case <-ctx.Done():
			return state, Result{Outcome: SetupFailed, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
