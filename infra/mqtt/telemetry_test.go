package mqtt

import (
	"testing"

	"github.com/NJ2612/ev-charge-optimizer/core/metrics"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
	"github.com/NJ2612/ev-charge-optimizer/infra/logger"
	"github.com/NJ2612/ev-charge-optimizer/internal/eventbus"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func testTelemetry(t *testing.T) (*Telemetry, *network.Network, *eventbus.Bus) {
	t.Helper()
	n := network.New()
	n.AddStation(model.Station{
		ID: 7, Name: "s", Capacity: 4,
		Status: model.StatusAvailable, ChargingRate: 50,
	})
	bus := eventbus.New()
	return &Telemetry{net: n, bus: bus, log: logger.NopLogger{}}, n, bus
}

func TestHandleAppliesUpdate(t *testing.T) {
	tel, n, bus := testTelemetry(t)
	events := bus.Subscribe()

	tel.handle(nil, fakeMessage{
		topic:   "ev/stations/7/status",
		payload: []byte(`{"current_load": 0.8, "status": "occupied"}`),
	})

	st, err := n.StationInfo(7)
	if err != nil {
		t.Fatalf("station info: %v", err)
	}
	if st.CurrentLoad != 0.8 || st.Status != model.StatusOccupied {
		t.Fatalf("update not applied: %+v", st)
	}
	select {
	case e := <-events:
		ev, ok := e.(metrics.StatusEvent)
		if !ok || ev.StationID != 7 {
			t.Fatalf("unexpected event %#v", e)
		}
	default:
		t.Fatalf("expected status event on the bus")
	}
}

func TestHandleDropsMalformed(t *testing.T) {
	tel, n, _ := testTelemetry(t)
	cases := []fakeMessage{
		{topic: "ev/stations/abc/status", payload: []byte(`{}`)},
		{topic: "bad", payload: []byte(`{}`)},
		{topic: "ev/stations/7/status", payload: []byte(`not json`)},
		{topic: "ev/stations/7/status", payload: []byte(`{"current_load":0.5,"status":"exploded"}`)},
		{topic: "ev/stations/99/status", payload: []byte(`{"current_load":0.5,"status":"occupied"}`)},
	}
	for _, msg := range cases {
		tel.handle(nil, msg)
	}
	st, _ := n.StationInfo(7)
	if st.Status != model.StatusAvailable || st.CurrentLoad != 0 {
		t.Fatalf("malformed message mutated station: %+v", st)
	}
}

func TestStationIDFromTopic(t *testing.T) {
	id, err := stationIDFromTopic("ev/stations/42/status")
	if err != nil || id != 42 {
		t.Fatalf("got %d, %v", id, err)
	}
	if _, err := stationIDFromTopic("ev/status"); err == nil {
		t.Fatalf("expected error for short topic")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing broker")
	}
	cfg.Broker = "tcp://localhost:1883"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.SetDefaults()
	if cfg.Topic == "" || cfg.ClientID == "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
