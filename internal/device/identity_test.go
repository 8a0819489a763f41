package device

import (
	"net"
	"testing"
)

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC(s)
	if err != nil {
		t.Fatalf("ParseMAC(%q) error = %v", s, err)
	}
	return mac
}

// ====== Client ID Derivation ======

func TestClientID(t *testing.T) {
	tests := []struct {
		name string
		mac  net.HardwareAddr
		want string
	}{
		{"standard six bytes", mustMAC(t, "a4:cf:12:9b:1e:3d"), "9b1e3d"},
		{"uppercase input", mustMAC(t, "A4:CF:12:9B:1E:3D"), "9b1e3d"},
		{"eui-64 uses trailing bytes", mustMAC(t, "02:00:5e:10:00:00:00:01"), "000001"},
		{"exactly three bytes", net.HardwareAddr{0xab, 0xcd, 0xef}, "abcdef"},
		{"too short", net.HardwareAddr{0xab, 0xcd}, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientID(tt.mac); got != tt.want {
				t.Errorf("ClientID(%v) = %q, want %q", tt.mac, got, tt.want)
			}
		})
	}
}

// ====== MAC Formatting ======

func TestFormatMAC(t *testing.T) {
	tests := []struct {
		name string
		mac  net.HardwareAddr
		want string
	}{
		{"lowercase input", mustMAC(t, "a4:cf:12:9b:1e:3d"), "A4:CF:12:9B:1E:3D"},
		{"already uppercase", mustMAC(t, "AA:BB:CC:DD:EE:FF"), "AA:BB:CC:DD:EE:FF"},
		{"empty", nil, "--:--:--:--:--:--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMAC(tt.mac); got != tt.want {
				t.Errorf("FormatMAC(%v) = %q, want %q", tt.mac, got, tt.want)
			}
		})
	}
}
