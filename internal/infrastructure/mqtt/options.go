package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	// onlinePayload is published retained to the LWT topic on connect.
	onlinePayload = `{"online":true}`

	// offlinePayload is registered as the broker-published will and sent
	// explicitly on graceful shutdown.
	offlinePayload = `{"online":false}`

	// keepAlive is the MQTT keep-alive interval.
	keepAlive = 30 * time.Second

	// connectTimeout bounds a single broker connection attempt.
	connectTimeout = 10 * time.Second

	// publishTimeout bounds waiting for a publish token.
	publishTimeout = 5 * time.Second

	// disconnectQuiesceMs is handed to paho on disconnect to let in-flight
	// work settle.
	disconnectQuiesceMs = 250
)

// provisioningSnapshot is an immutable copy of the session's provisioning
// taken under the lock when the client is built. Paho callbacks close over
// the snapshot rather than re-reading live fields.
type provisioningSnapshot struct {
	host             string
	port             int
	tls              bool
	clientID         string
	username         string
	password         string
	qos              byte
	reconnectInitial time.Duration
	reconnectMax     time.Duration
	topics           Topics
}

// brokerAddress formats the broker address for logs and client options.
func brokerAddress(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// buildClientOptions translates a provisioning snapshot into paho client
// options. Reconnection is delegated to paho with the configured backoff
// ceiling; the will flags the device offline, retained, so registries see
// the last state even across broker restarts.
func buildClientOptions(snap provisioningSnapshot) *pahomqtt.ClientOptions {
	scheme := "tcp"
	if snap.tls {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s", scheme, brokerAddress(snap.host, snap.port)))
	opts.SetClientID(snap.clientID)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(keepAlive)
	opts.SetConnectTimeout(connectTimeout)

	if snap.username != "" {
		opts.SetUsername(snap.username)
		opts.SetPassword(snap.password)
	}

	// Retry the initial connect and reconnect on loss; backoff ramps up to
	// the configured ceiling.
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(snap.reconnectInitial)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(snap.reconnectMax)

	opts.SetWill(snap.topics.LWT(), offlinePayload, snap.qos, true)

	return opts
}
