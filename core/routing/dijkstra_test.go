package routing

import (
	"math"
	"testing"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
)

// lineNetwork builds five stations in a line (hop distances 1.0, 1.5, 2.0,
// 1.0 km) plus a direct 1-5 edge of 4.0 km.
func lineNetwork(t *testing.T) *network.Network {
	t.Helper()
	n := network.New()
	for id := 1; id <= 5; id++ {
		n.AddStation(model.Station{
			ID: id, Name: "s", Capacity: 4,
			Status: model.StatusAvailable, ChargingRate: 50,
		})
	}
	edges := []struct {
		a, b int
		d    float64
	}{
		{1, 2, 1.0}, {2, 3, 1.5}, {3, 4, 2.0}, {4, 5, 1.0}, {1, 5, 4.0},
	}
	for _, e := range edges {
		if err := n.AddConnection(e.a, e.b, e.d, 1); err != nil {
			t.Fatalf("add connection: %v", err)
		}
	}
	return n
}

func bigBattery() model.VehicleState {
	return model.VehicleState{BatteryKWh: 75, CurrentCharge: 100, Efficiency: 0.2}
}

func TestFindRoutePrefersShorterTotalDistance(t *testing.T) {
	r := New(lineNetwork(t))
	res := r.FindRoute(1, 5, bigBattery(), nil)
	want := []int{1, 2, 3, 4, 5}
	if len(res.Path) != len(want) {
		t.Fatalf("expected %v, got %v", want, res.Path)
	}
	for i := range want {
		if res.Path[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, res.Path)
		}
	}
	if res.TotalDistance != 5.5 {
		t.Fatalf("expected total distance 5.5, got %f", res.TotalDistance)
	}
}

func TestFindRouteSkipsUnavailableStation(t *testing.T) {
	n := lineNetwork(t)
	if err := n.UpdateStationStatus(2, 0, model.StatusMaintenance); err != nil {
		t.Fatalf("update: %v", err)
	}
	res := New(n).FindRoute(1, 5, bigBattery(), nil)
	if !res.Found() {
		t.Fatalf("expected fallback to direct edge, got no route")
	}
	for _, id := range res.Path {
		if id == 2 {
			t.Fatalf("path traverses maintenance station: %v", res.Path)
		}
	}
	if res.TotalDistance != 4.0 {
		t.Fatalf("expected direct distance 4.0, got %f", res.TotalDistance)
	}
}

func TestFindRouteBatteryLimitsPerHop(t *testing.T) {
	// Usable energy 2 kWh at 2 kWh/km affords 1 km per hop. Hops over
	// 1 km are infeasible and no all-short-hop route exists.
	vehicle := model.VehicleState{BatteryKWh: 10, CurrentCharge: 20, Efficiency: 2}
	res := New(lineNetwork(t)).FindRoute(1, 5, vehicle, nil)
	if res.Found() {
		t.Fatalf("expected no route, got %v", res.Path)
	}
	if !math.IsInf(res.TotalDistance, 1) {
		t.Fatalf("expected infinite distance, got %f", res.TotalDistance)
	}
}

func TestFindRouteNoHopAffordable(t *testing.T) {
	// Every edge leaving the start exceeds the single-hop budget.
	vehicle := model.VehicleState{BatteryKWh: 1, CurrentCharge: 10, Efficiency: 0.5}
	res := New(lineNetwork(t)).FindRoute(1, 5, vehicle, nil)
	if res.Found() || !math.IsInf(res.TotalDistance, 1) {
		t.Fatalf("expected empty path with infinite distance, got %+v", res)
	}
}

func TestFindRouteAbsentEndpoints(t *testing.T) {
	r := New(lineNetwork(t))
	for _, pair := range [][2]int{{99, 5}, {1, 99}} {
		res := r.FindRoute(pair[0], pair[1], bigBattery(), nil)
		if res.Found() || !math.IsInf(res.TotalDistance, 1) {
			t.Fatalf("endpoints %v: expected no route, got %+v", pair, res)
		}
	}
}

func TestFindRoutePredictedLoadBiasesChoice(t *testing.T) {
	// Two parallel two-hop routes of equal length; congestion on one
	// midpoint must push the search to the other.
	n := network.New()
	for id := 1; id <= 4; id++ {
		n.AddStation(model.Station{
			ID: id, Capacity: 4, Status: model.StatusAvailable, ChargingRate: 50,
		})
	}
	for _, e := range []struct {
		a, b int
		d    float64
	}{
		{1, 2, 1.0}, {2, 4, 1.0}, // via 2
		{1, 3, 1.0}, {3, 4, 1.0}, // via 3
	} {
		if err := n.AddConnection(e.a, e.b, e.d, 1); err != nil {
			t.Fatalf("add connection: %v", err)
		}
	}
	predicted := map[int]float64{2: 0.9}
	res := New(n).FindRoute(1, 4, bigBattery(), predicted)
	if len(res.Path) != 3 || res.Path[1] != 3 {
		t.Fatalf("expected route via station 3, got %v", res.Path)
	}
	// The congestion bias must not change the reported raw distance.
	if res.TotalDistance != 2.0 {
		t.Fatalf("expected total distance 2.0, got %f", res.TotalDistance)
	}
}

func TestFindRoutePredictionNeverGatesFeasibility(t *testing.T) {
	n := lineNetwork(t)
	predicted := map[int]float64{2: 1, 3: 1, 4: 1, 5: 1}
	res := New(n).FindRoute(1, 5, bigBattery(), predicted)
	if !res.Found() {
		t.Fatalf("full congestion must bias, not prune: %+v", res)
	}
}

func TestFindRouteSameStartAndEnd(t *testing.T) {
	res := New(lineNetwork(t)).FindRoute(3, 3, bigBattery(), nil)
	if len(res.Path) != 1 || res.Path[0] != 3 || res.TotalDistance != 0 {
		t.Fatalf("expected trivial path [3], got %+v", res)
	}
}

func TestRechargeEnRoutePolicy(t *testing.T) {
	// First hop affordable on the initial charge, later hops only on a
	// full battery.
	n := network.New()
	for id := 1; id <= 3; id++ {
		n.AddStation(model.Station{
			ID: id, Capacity: 2, Status: model.StatusAvailable, ChargingRate: 50,
		})
	}
	if err := n.AddConnection(1, 2, 1.0, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := n.AddConnection(2, 3, 5.0, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	// 2 kWh usable, 1 kWh/km: hop 1-2 (1 km) fits the initial charge,
	// hop 2-3 (5 km) only fits a full battery.
	vehicle := model.VehicleState{BatteryKWh: 10, CurrentCharge: 20, Efficiency: 1}

	if res := New(n).FindRoute(1, 3, vehicle, nil); res.Found() {
		t.Fatalf("initial-charge policy should fail, got %v", res.Path)
	}
	res := NewWithPolicy(n, PolicyRechargeEnRoute).FindRoute(1, 3, vehicle, nil)
	if !res.Found() || res.TotalDistance != 6.0 {
		t.Fatalf("recharge policy should succeed with 6 km, got %+v", res)
	}
}

func TestDirectionalFeasibility(t *testing.T) {
	// An edge into an unavailable station is pruned, but the reverse
	// direction out of it stays usable.
	n := network.New()
	for id := 1; id <= 2; id++ {
		n.AddStation(model.Station{
			ID: id, Capacity: 2, Status: model.StatusAvailable, ChargingRate: 50,
		})
	}
	if err := n.AddConnection(1, 2, 1.0, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := n.UpdateStationStatus(1, 1, model.StatusOccupied); err != nil {
		t.Fatalf("update: %v", err)
	}
	r := New(n)
	if res := r.FindRoute(2, 1, bigBattery(), nil); res.Found() {
		t.Fatalf("step into occupied station must be infeasible: %v", res.Path)
	}
	if res := r.FindRoute(1, 2, bigBattery(), nil); !res.Found() {
		t.Fatalf("step out of occupied station must stay feasible")
	}
}
