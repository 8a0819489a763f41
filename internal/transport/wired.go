package transport

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// defaultSetupTimeout matches the DHCP wait budget of the original firmware.
const defaultSetupTimeout = 15 * time.Second

// WiredConfig configures a wired transport.
type WiredConfig struct {
	// Interface is the host interface name, e.g. "eth0".
	Interface string

	// SetupTimeout bounds the bring-up wait. Zero means the default (15s).
	SetupTimeout time.Duration
}

// Wired observes an Ethernet-style interface. Link state and address are
// managed by the host (driver + DHCP client); Wired only reports them.
type Wired struct {
	cfg WiredConfig
	mac net.HardwareAddr
}

// NewWired creates a wired transport for the configured interface.
func NewWired(cfg WiredConfig) *Wired {
	if cfg.SetupTimeout <= 0 {
		cfg.SetupTimeout = defaultSetupTimeout
	}
	return &Wired{cfg: cfg}
}

// Mode returns ModeWired.
func (w *Wired) Mode() Mode {
	return ModeWired
}

// Setup waits for link and an IPv4 lease within the configured window.
// The interface MAC is captured here and fixed for the process lifetime.
func (w *Wired) Setup(ctx context.Context) Result {
	state, result := waitForConnectivity(ctx, w.cfg.Interface, w.cfg.SetupTimeout)
	w.mac = state.mac
	return result
}

// Maintain is a no-op: DHCP lease renewal belongs to the host.
func (w *Wired) Maintain() {}

// LinkUp re-probes the interface and reports live link state.
func (w *Wired) LinkUp() bool {
	state, err := probeInterface(w.cfg.Interface)
	return err == nil && state.linkUp
}

// IP returns the current IPv4 address, or the zero Addr when there is none.
func (w *Wired) IP() netip.Addr {
	state, err := probeInterface(w.cfg.Interface)
	if err != nil {
		return netip.Addr{}
	}
	return state.ip
}

// MAC returns the hardware address captured during Setup.
func (w *Wired) MAC() net.HardwareAddr {
	return w.mac
}
