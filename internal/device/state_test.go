package device

import "testing"

// ====== Connection Classification ======

func TestClassifyConnection(t *testing.T) {
	tests := []struct {
		name          string
		linkUp        bool
		mqttConnected bool
		want          ConnectionState
	}{
		{"no link", false, false, StateNone},
		{"link only", true, false, StateIP},
		{"fully connected", true, true, StateMQTT},
		{"stale session over dead link", false, true, StateNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyConnection(tt.linkUp, tt.mqttConnected); got != tt.want {
				t.Errorf("ClassifyConnection(%v, %v) = %v, want %v",
					tt.linkUp, tt.mqttConnected, got, tt.want)
			}
		})
	}
}

func TestConnectionStateLabels(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateNone, "none"},
		{StateIP, "ip"},
		{StateMQTT, "mqtt"},
		{ConnectionState(7), "state(7)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
