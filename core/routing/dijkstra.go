// Package routing implements the constrained shortest-path search over the
// station network. Edge costs are computed per traversal from live station
// state and optional predicted loads, so the same edge can be feasible in one
// direction and pruned in the other.
package routing

import (
	"container/heap"
	"math"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
)

// BatteryPolicy selects how the single-hop energy check treats the battery.
type BatteryPolicy string

const (
	// PolicyInitialCharge checks every hop against the vehicle's initial
	// charge. No recharge at intermediate stations is assumed.
	PolicyInitialCharge BatteryPolicy = "initial-charge"
	// PolicyRechargeEnRoute assumes a full recharge at every visited
	// station: hops out of the start are checked against the initial
	// charge, later hops against the full battery capacity.
	PolicyRechargeEnRoute BatteryPolicy = "recharge-en-route"
)

// Result is the outcome of a route search. An unreachable destination is
// reported as an empty path with infinite distance, never as an error.
type Result struct {
	Path          []int   `json:"path"`
	TotalDistance float64 `json:"total_distance"` // km, sum of raw edge distances
}

// NoRoute is the canonical empty result.
func NoRoute() Result { return Result{TotalDistance: math.Inf(1)} }

// Found reports whether the search produced a usable path.
func (r Result) Found() bool { return len(r.Path) > 0 }

// Router runs feasibility-aware Dijkstra searches over a shared network.
type Router struct {
	net    *network.Network
	policy BatteryPolicy
}

// New returns a Router using the per-hop initial-charge policy.
func New(net *network.Network) *Router {
	return &Router{net: net, policy: PolicyInitialCharge}
}

// NewWithPolicy returns a Router with an explicit battery policy.
func NewWithPolicy(net *network.Network, policy BatteryPolicy) *Router {
	if policy != PolicyRechargeEnRoute {
		policy = PolicyInitialCharge
	}
	return &Router{net: net, policy: policy}
}

// edgeCost returns the dynamic cost of stepping from u to v, or +Inf when the
// step is infeasible. Predicted congestion at the destination inflates the
// cost, it never gates feasibility.
func (r *Router) edgeCost(u int, e network.Edge, vehicle model.VehicleState, predicted map[int]float64, startID int) float64 {
	dest, err := r.net.StationInfo(e.To)
	if err != nil || dest.Status != model.StatusAvailable {
		return math.Inf(1)
	}

	budget := vehicle.UsableEnergyKWh()
	if r.policy == PolicyRechargeEnRoute && u != startID {
		budget = vehicle.BatteryKWh
	}
	if e.Conn.DistanceKm*vehicle.Efficiency > budget {
		return math.Inf(1)
	}

	cost := e.Conn.BaseWeight()
	if load, ok := predicted[e.To]; ok && load > 0 {
		cost *= 1 + load
	}
	return cost
}

// FindRoute runs Dijkstra from startID to endID. predicted maps station ids
// to forecast loads in [0,1] and may be nil. Absent endpoints yield NoRoute.
func (r *Router) FindRoute(startID, endID int, vehicle model.VehicleState, predicted map[int]float64) Result {
	if _, err := r.net.StationInfo(startID); err != nil {
		return NoRoute()
	}
	if _, err := r.net.StationInfo(endID); err != nil {
		return NoRoute()
	}

	dist := map[int]float64{startID: 0}
	prev := map[int]int{}
	visited := map[int]bool{}

	pq := &costHeap{{id: startID, cost: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(costItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == endID {
			break
		}
		for _, e := range r.net.Neighbors(cur.id) {
			if visited[e.To] {
				continue
			}
			w := r.edgeCost(cur.id, e, vehicle, predicted, startID)
			if math.IsInf(w, 1) {
				continue
			}
			next := cur.cost + w
			// Strictly-smaller comparison keeps the first discovered
			// path on cost ties.
			if d, ok := dist[e.To]; !ok || next < d {
				dist[e.To] = next
				prev[e.To] = cur.id
				heap.Push(pq, costItem{id: e.To, cost: next})
			}
		}
	}

	if !visited[endID] {
		return NoRoute()
	}

	path := []int{endID}
	for at := endID; at != startID; {
		at = prev[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	var total float64
	for i := 0; i < len(path)-1; i++ {
		for _, e := range r.net.Neighbors(path[i]) {
			if e.To == path[i+1] {
				total += e.Conn.DistanceKm
				break
			}
		}
	}
	return Result{Path: path, TotalDistance: total}
}

type costItem struct {
	id   int
	cost float64
}

type costHeap []costItem

func (h costHeap) Len() int            { return len(h) }
func (h costHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h costHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *costHeap) Push(x any) { *h = append(*h, x.(costItem)) }
func (h *costHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
