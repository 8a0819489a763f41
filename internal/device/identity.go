package device

import (
	"fmt"
	"net"
	"strings"
)

// macClientIDBytes is how many trailing MAC bytes form the derived client
// ID. Three bytes keeps IDs short while staying unique within a site.
const macClientIDBytes = 3

// ClientID derives the default MQTT client ID from a hardware address: the
// last three bytes as lowercase hex, no separators.
//
//	ClientID(a4:cf:12:9b:1e:3d) = "9b1e3d"
//
// Returns "" for addresses too short to derive from; callers keep the
// configured ID in that case.
func ClientID(mac net.HardwareAddr) string {
	if len(mac) < macClientIDBytes {
		return ""
	}
	tail := mac[len(mac)-macClientIDBytes:]
	return fmt.Sprintf("%02x%02x%02x", tail[0], tail[1], tail[2])
}

// noMACText is displayed when no hardware address is known.
const noMACText = "--:--:--:--:--:--"

// FormatMAC renders a hardware address as colon-separated uppercase hex
// pairs, the form used in display text and the adoption document.
func FormatMAC(mac net.HardwareAddr) string {
	if len(mac) == 0 {
		return noMACText
	}
	return strings.ToUpper(mac.String())
}
