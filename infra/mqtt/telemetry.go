// Package mqtt subscribes to live station telemetry and applies it to the
// in-memory network. Stations publish JSON status payloads on
// ev/stations/<id>/status; each accepted update is fanned out on the event
// bus for observers such as metrics sinks.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/NJ2612/ev-charge-optimizer/core/metrics"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
	"github.com/NJ2612/ev-charge-optimizer/infra/logger"
	"github.com/NJ2612/ev-charge-optimizer/internal/eventbus"
)

// Config defines the connection parameters for the telemetry subscriber.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "ev/stations/+/status"
	}
	if c.ClientID == "" {
		c.ClientID = "evopt-" + uuid.NewString()[:8]
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when telemetry is enabled")
	}
	return nil
}

// statusPayload is the wire form of a station status update.
type statusPayload struct {
	CurrentLoad float64 `json:"current_load"`
	Status      string  `json:"status"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Telemetry applies incoming status updates to the network.
type Telemetry struct {
	cli   pahoClient
	topic string
	qos   byte
	net   *network.Network
	bus   eventbus.EventBus
	log   logger.Logger
}

// NewTelemetry connects to the broker and subscribes to the status topic.
func NewTelemetry(cfg Config, net *network.Network, bus eventbus.EventBus) (*Telemetry, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	t := &Telemetry{
		cli:   newMQTTClient(opts),
		topic: cfg.Topic,
		qos:   cfg.QoS,
		net:   net,
		bus:   bus,
		log:   logger.New("station-telemetry"),
	}
	if tok := t.cli.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", tok.Error())
	}
	if tok := t.cli.Subscribe(cfg.Topic, cfg.QoS, t.handle); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt subscribe: %w", tok.Error())
	}
	return t, nil
}

// handle decodes one telemetry message and applies it to the network.
// Malformed messages are logged and dropped.
func (t *Telemetry) handle(_ paho.Client, msg paho.Message) {
	id, err := stationIDFromTopic(msg.Topic())
	if err != nil {
		t.log.Warnf("drop telemetry: %v", err)
		return
	}
	var p statusPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		t.log.Warnf("drop telemetry for station %d: %v", id, err)
		return
	}
	status, err := model.ParseStatus(p.Status)
	if err != nil {
		t.log.Warnf("drop telemetry for station %d: %v", id, err)
		return
	}
	if err := t.net.UpdateStationStatus(id, p.CurrentLoad, status); err != nil {
		t.log.Warnf("telemetry update: %v", err)
		return
	}
	t.log.Debugw("station status updated", map[string]any{
		"station": id, "status": p.Status, "load": p.CurrentLoad,
	})
	if t.bus != nil {
		t.bus.Publish(metrics.StatusEvent{
			StationID:   id,
			Status:      string(status),
			CurrentLoad: p.CurrentLoad,
			Time:        time.Now().UTC(),
		})
	}
}

// stationIDFromTopic extracts the id segment of ev/stations/<id>/status.
func stationIDFromTopic(topic string) (int, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return 0, fmt.Errorf("unexpected topic %q", topic)
	}
	id, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, fmt.Errorf("bad station id in topic %q: %w", topic, err)
	}
	return id, nil
}

// Close disconnects from the broker.
func (t *Telemetry) Close() {
	if t.cli.IsConnected() {
		t.cli.Disconnect(250)
	}
}
