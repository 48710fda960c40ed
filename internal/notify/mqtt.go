package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/metrics"
)

const (
	DefaultMQTTTopic = "displayproxy/buttons"
	publishTimeout   = 2 * time.Second
)

// MQTTPublisher publishes presses to <topic>/<label> at QoS 0.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	log    *slog.Logger
}

var _ Publisher = (*MQTTPublisher)(nil)

// NewMQTTPublisher connects to the broker named by the mqtt_broker option.
// It returns nil when no broker is configured. The connection is retried in
// the background, so an unreachable broker is not an error.
func NewMQTTPublisher(cfg *config.Config) (*MQTTPublisher, error) {
	broker := strings.TrimSpace(cfg.String("mqtt_broker", ""))
	if broker == "" {
		return nil, nil
	}
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	clientID := "displayproxy-" + uuid.NewString()
	log := slog.With("component", "mqtt", "broker", broker)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info("MQTT connection established", "client_id", clientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn("MQTT connection lost, will auto-reconnect", "error", err)
	}

	client := mqtt.NewClient(opts)
	log.Info("Connecting to MQTT broker")
	client.Connect()

	return newMQTTPublisher(client, cfg.String("mqtt_topic", DefaultMQTTTopic), log), nil
}

func newMQTTPublisher(client mqtt.Client, topic string, log *slog.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		topic:  strings.TrimSuffix(topic, "/"),
		log:    log,
	}
}

// Publish hands the press to the client and checks the outcome off the
// caller's goroutine.
func (m *MQTTPublisher) Publish(p buttons.Press) {
	topic := fmt.Sprintf("%s/%s", m.topic, p.Label)
	token := m.client.Publish(topic, 0, false, encodePress(p))
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			metrics.MQTTPublishErrors.Inc()
			m.log.Warn("MQTT publish timed out", "topic", topic)
			return
		}
		if err := token.Error(); err != nil {
			metrics.MQTTPublishErrors.Inc()
			m.log.Warn("MQTT publish failed", "topic", topic, "error", err)
		}
	}()
}

// Close disconnects with a short grace period.
func (m *MQTTPublisher) Close() error {
	m.client.Disconnect(250)
	m.log.Info("MQTT disconnected")
	return nil
}
