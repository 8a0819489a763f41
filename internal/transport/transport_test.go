package transport

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"
)

// =============================================================================
// Setup Outcome Tests
// =============================================================================

func TestWiredSetupMissingInterfaceFails(t *testing.T) {
	w := NewWired(WiredConfig{
		Interface:    "edgelink-does-not-exist0",
		SetupTimeout: time.Second,
	})

	result := w.Setup(context.Background())

	if result.Outcome != SetupFailed {
		t.Errorf("Setup() outcome = %v, want %v", result.Outcome, SetupFailed)
	}
	if !errors.Is(result.Err, ErrInterfaceNotFound) {
		t.Errorf("Setup() err = %v, want ErrInterfaceNotFound", result.Err)
	}
}

func TestWirelessSetupCancelledFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Loopback exists but never gets a global unicast IPv4 address, so the
	// wait can only end via the cancelled context.
	w := NewWireless(WirelessConfig{
		Interface:     "lo",
		PortalTimeout: time.Minute,
	})

	result := w.Setup(ctx)

	if result.Outcome != SetupFailed {
		t.Errorf("Setup() outcome = %v, want %v", result.Outcome, SetupFailed)
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Errorf("Setup() err = %v, want context.Canceled", result.Err)
	}
}

func TestWiredSetupTimeout(t *testing.T) {
	w := NewWired(WiredConfig{
		Interface:    "lo",
		SetupTimeout: 10 * time.Millisecond,
	})

	result := w.Setup(context.Background())

	if result.Outcome != SetupTimeout {
		t.Errorf("Setup() outcome = %v, want %v", result.Outcome, SetupTimeout)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{SetupSuccess, "success"},
		{SetupTimeout, "timeout"},
		{SetupFailed, "failed"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(tt.outcome), got, tt.want)
		}
	}
}

// =============================================================================
// Defaults
// =============================================================================

func TestDefaultTimeouts(t *testing.T) {
	wired := NewWired(WiredConfig{Interface: "eth0"})
	if wired.cfg.SetupTimeout != defaultSetupTimeout {
		t.Errorf("wired SetupTimeout = %v, want %v", wired.cfg.SetupTimeout, defaultSetupTimeout)
	}

	wireless := NewWireless(WirelessConfig{Interface: "wlan0"})
	if wireless.cfg.PortalTimeout != defaultPortalTimeout {
		t.Errorf("wireless PortalTimeout = %v, want %v", wireless.cfg.PortalTimeout, defaultPortalTimeout)
	}
}

// =============================================================================
// Fake Transport
// =============================================================================

func TestFakeTransport(t *testing.T) {
	f := NewFake()

	if f.LinkUp() {
		t.Error("LinkUp() = true on fresh fake, want false")
	}

	f.SetLink(true)
	f.SetMode(ModeWireless)
	f.SetIP(netip.MustParseAddr("192.168.1.20"))
	f.SetMAC(net.HardwareAddr{0x0A, 0x1B, 0x2C, 0x3D, 0x4E, 0x5F})

	if !f.LinkUp() {
		t.Error("LinkUp() = false, want true")
	}
	if f.Mode() != ModeWireless {
		t.Errorf("Mode() = %v, want %v", f.Mode(), ModeWireless)
	}
	if f.IP().String() != "192.168.1.20" {
		t.Errorf("IP() = %v, want 192.168.1.20", f.IP())
	}

	f.Maintain()
	f.Maintain()
	if f.MaintainCount() != 2 {
		t.Errorf("MaintainCount() = %d, want 2", f.MaintainCount())
	}

	if result := f.Setup(context.Background()); result.Outcome != SetupSuccess {
		t.Errorf("Setup() outcome = %v, want %v", result.Outcome, SetupSuccess)
	}
}
