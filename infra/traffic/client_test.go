package traffic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

func TestDistanceDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("origin") == "" || r.URL.Query().Get("destination") == "" {
			t.Errorf("missing coordinates in query: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("missing api key")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"distance_meters": 12500, "duration_in_traffic_seconds": 1800}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	dd, err := c.DistanceDuration(context.Background(), model.Coord{Lat: 41.4, Lng: 2.1}, model.Coord{Lat: 41.5, Lng: 2.2})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if dd.DistanceMeters != 12500 || dd.DurationSeconds != 1800 {
		t.Fatalf("unexpected result: %+v", dd)
	}
}

func TestDistanceDurationHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.DistanceDuration(context.Background(), model.Coord{}, model.Coord{}); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestDistanceDurationContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.DistanceDuration(ctx, model.Coord{}, model.Coord{}); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
