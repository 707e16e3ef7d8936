package stations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NJ2612/ev-charge-optimizer/core/metrics"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
	"github.com/NJ2612/ev-charge-optimizer/infra/logger"
	"github.com/NJ2612/ev-charge-optimizer/internal/eventbus"
)

func testMux(t *testing.T, bus eventbus.EventBus) (*http.ServeMux, *network.Network) {
	t.Helper()
	n := network.New()
	n.AddStation(model.Station{ID: 1, Name: "north", Lat: 40.1, Lng: -3, Capacity: 4, Status: model.StatusAvailable, ChargingRate: 50})
	n.AddStation(model.Station{ID: 2, Name: "south", Lat: 40.2, Lng: -3, Capacity: 2, Status: model.StatusOccupied, CurrentLoad: 0.8, ChargingRate: 22})
	h := New(n, nil, bus, logger.NopLogger{})
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, n
}

func TestListStations(t *testing.T) {
	mux, _ := testMux(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/stations", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var got []model.Station
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(got))
	}
}

func TestStationStatus(t *testing.T) {
	mux, _ := testMux(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/stations/2/status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var got statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 2 || got.Status != model.StatusOccupied {
		t.Fatalf("unexpected station: %+v", got)
	}
	if got.PredictedLoad != nil {
		t.Fatalf("no feed configured, predicted_load must be absent")
	}
}

func TestStationStatusNotFound(t *testing.T) {
	mux, _ := testMux(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/stations/99/status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func put(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(b))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestUpdateStatus(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	mux, n := testMux(t, bus)
	w := put(t, mux, "/api/stations/1/status", map[string]any{"current_load": 0.5, "status": "occupied"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	st, err := n.StationInfo(1)
	if err != nil {
		t.Fatalf("station info: %v", err)
	}
	if st.Status != model.StatusOccupied || st.CurrentLoad != 0.5 {
		t.Fatalf("update not applied: %+v", st)
	}

	select {
	case e := <-sub:
		ev, ok := e.(metrics.StatusEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", e)
		}
		if ev.StationID != 1 || ev.Status != "occupied" || ev.CurrentLoad != 0.5 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected a status event on the bus")
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	mux, _ := testMux(t, nil)

	w := put(t, mux, "/api/stations/1/status", map[string]any{"current_load": 0.5, "status": "charging"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status must be 400, got %d", w.Code)
	}

	w = put(t, mux, "/api/stations/1/status", map[string]any{"status": "available"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing current_load must be 400, got %d", w.Code)
	}

	w = put(t, mux, "/api/stations/99/status", map[string]any{"current_load": 0.1, "status": "available"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown station must be 404, got %d", w.Code)
	}
}
