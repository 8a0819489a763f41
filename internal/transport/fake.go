package transport

import (
	"context"
	"net"
	"net/netip"
	"sync"
)

// Fake is an in-memory transport for unit tests. All state is settable and
// safe for concurrent use.
type Fake struct {
	mu        sync.RWMutex
	mode      Mode
	linkUp    bool
	ip        netip.Addr
	mac       net.HardwareAddr
	setup     Result
	maintains int
}

// NewFake returns a fake wired transport with link down and no address.
func NewFake() *Fake {
	return &Fake{
		mode:  ModeWired,
		setup: Result{Outcome: SetupSuccess},
	}
}

// SetMode overrides the reported mode.
func (f *Fake) SetMode(mode Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
}

// SetLink sets the reported link state.
func (f *Fake) SetLink(up bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkUp = up
}

// SetIP sets the reported address.
func (f *Fake) SetIP(ip netip.Addr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ip = ip
}

// SetMAC sets the reported hardware address.
func (f *Fake) SetMAC(mac net.HardwareAddr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mac = mac
}

// SetSetupResult sets the result Setup will return.
func (f *Fake) SetSetupResult(result Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setup = result
}

// MaintainCount reports how many times Maintain was called.
func (f *Fake) MaintainCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.maintains
}

// Mode implements Transport.
func (f *Fake) Mode() Mode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mode
}

// Setup implements Transport.
func (f *Fake) Setup(_ context.Context) Result {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.setup
}

// Maintain implements Transport.
func (f *Fake) Maintain() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maintains++
}

// LinkUp implements Transport.
func (f *Fake) LinkUp() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.linkUp
}

// IP implements Transport.
func (f *Fake) IP() netip.Addr {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.ip
}

// MAC implements Transport.
func (f *Fake) MAC() net.HardwareAddr {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mac
}
