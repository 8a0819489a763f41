package device

import "fmt"

// Display placeholders for fields with no live value. Fixed width keeps
// character-cell status screens from reflowing.
const (
	noIPText    = "---.---.---.---"
	noTopicText = "-/------"
)

// maxTopicTextLen is the widest topic a status screen row can show.
const maxTopicTextLen = 39

// IPAddressText renders the current address zero-padded to a fixed width,
// or the placeholder when no address is held.
//
//	"192.168.001.052"
//	"---.---.---.---"
func (c *Controller) IPAddressText() string {
	ip := c.transport.IP()
	if !ip.IsValid() || !ip.Is4() {
		return noIPText
	}
	octets := ip.As4()
	return fmt.Sprintf("%03d.%03d.%03d.%03d", octets[0], octets[1], octets[2], octets[3])
}

// MACAddressText renders the hardware address as uppercase colon pairs.
func (c *Controller) MACAddressText() string {
	return FormatMAC(c.transport.MAC())
}

// MQTTTopicText renders the subscribed topic pattern while the session is
// up, truncated to the display width, and the placeholder otherwise.
func (c *Controller) MQTTTopicText() string {
	if c.ConnectionState() != StateMQTT {
		return noTopicText
	}
	topic := c.session.Topics().Wildcard()
	if len(topic) > maxTopicTextLen {
		topic = topic[:maxTopicTextLen]
	}
	return topic
}
