package transport

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// defaultPortalTimeout bounds the provisioning window for wireless setup.
// The window is deliberately long: an operator may need to join the
// supplicant's portal and enter credentials.
const defaultPortalTimeout = 5 * time.Minute

// WirelessConfig configures a wireless transport.
type WirelessConfig struct {
	// Interface is the host Wi-Fi interface name, e.g. "wlan0".
	Interface string

	// PortalSSID and PortalPassword identify the provisioning portal the
	// supplicant raises when no credentials are stored. They are reported
	// for operator-facing logs only; the portal itself is external.
	PortalSSID     string
	PortalPassword string

	// PortalTimeout bounds the provisioning window. Zero means 5 minutes.
	PortalTimeout time.Duration
}

// Wireless observes a Wi-Fi interface. Association and provisioning are the
// supplicant's job; Wireless waits (bounded) for the result.
type Wireless struct {
	cfg WirelessConfig
	mac net.HardwareAddr
}

// NewWireless creates a wireless transport for the configured interface.
func NewWireless(cfg WirelessConfig) *Wireless {
	if cfg.PortalTimeout <= 0 {
		cfg.PortalTimeout = defaultPortalTimeout
	}
	return &Wireless{cfg: cfg}
}

// Mode returns ModeWireless.
func (w *Wireless) Mode() Mode {
	return ModeWireless
}

// PortalSSID returns the provisioning portal name, for operator-facing logs.
func (w *Wireless) PortalSSID() string {
	return w.cfg.PortalSSID
}

// Setup waits for association and an IPv4 lease within the provisioning
// window. A timeout here usually means the portal was never completed.
func (w *Wireless) Setup(ctx context.Context) Result {
	state, result := waitForConnectivity(ctx, w.cfg.Interface, w.cfg.PortalTimeout)
	w.mac = state.mac
	return result
}

// Maintain is a no-op: roaming and rekeying belong to the supplicant.
func (w *Wireless) Maintain() {}

// LinkUp re-probes the interface and reports live association state.
func (w *Wireless) LinkUp() bool {
	state, err := probeInterface(w.cfg.Interface)
	return err == nil && state.linkUp
}

// IP returns the current IPv4 address, or the zero Addr when there is none.
func (w *Wireless) IP() netip.Addr {
	state, err := probeInterface(w.cfg.Interface)
	if err != nil {
		return netip.Addr{}
	}
	return state.ip
}

// MAC returns the hardware address captured during Setup.
func (w *Wireless) MAC() net.HardwareAddr {
	return w.mac
}
