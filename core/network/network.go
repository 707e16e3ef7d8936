// Package network holds the in-memory graph of charging stations and their
// road connections. A single Network instance is shared by all concurrent
// route and scoring requests; mutation goes through UpdateStationStatus only.
package network

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

// ErrNotFound is returned when a station id is not part of the network.
var ErrNotFound = errors.New("station not found")

// ErrInvalidEdge is returned for self-loops, unknown endpoints or negative
// distances.
var ErrInvalidEdge = errors.New("invalid connection")

// Connection is an undirected edge between two stations.
type Connection struct {
	DistanceKm    float64
	TrafficFactor float64
}

// BaseWeight is the static edge weight before load biasing.
func (c Connection) BaseWeight() float64 { return c.DistanceKm * c.TrafficFactor }

// Edge pairs a neighbor station id with the connection attributes.
type Edge struct {
	To   int
	Conn Connection
}

// Network is a thread-safe undirected graph of stations. A single RWMutex
// guards the whole graph: a reader can never observe a half-applied status
// update, which is the only atomicity the search algorithms require.
type Network struct {
	mu       sync.RWMutex
	stations map[int]model.Station
	adj      map[int]map[int]Connection
}

// New returns an empty network.
func New() *Network {
	return &Network{
		stations: make(map[int]model.Station),
		adj:      make(map[int]map[int]Connection),
	}
}

// AddStation inserts or replaces the node for station.ID.
func (n *Network) AddStation(st model.Station) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stations[st.ID] = st
	if n.adj[st.ID] == nil {
		n.adj[st.ID] = make(map[int]Connection)
	}
}

// AddConnection inserts or replaces the undirected edge between a and b.
// Re-adding an existing pair replaces its attributes. Traffic factors below
// one are normalized to one.
func (n *Network) AddConnection(a, b int, distanceKm, trafficFactor float64) error {
	if a == b {
		return fmt.Errorf("%w: self loop on station %d", ErrInvalidEdge, a)
	}
	if distanceKm < 0 {
		return fmt.Errorf("%w: negative distance %f", ErrInvalidEdge, distanceKm)
	}
	if trafficFactor < 1 {
		trafficFactor = 1
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.stations[a]; !ok {
		return fmt.Errorf("%w: unknown station %d", ErrInvalidEdge, a)
	}
	if _, ok := n.stations[b]; !ok {
		return fmt.Errorf("%w: unknown station %d", ErrInvalidEdge, b)
	}
	c := Connection{DistanceKm: distanceKm, TrafficFactor: trafficFactor}
	n.adj[a][b] = c
	n.adj[b][a] = c
	return nil
}

// StationInfo returns the station record for id.
func (n *Network) StationInfo(id int) (model.Station, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	st, ok := n.stations[id]
	if !ok {
		return model.Station{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return st, nil
}

// UpdateStationStatus mutates the load and status of a station in place.
func (n *Network) UpdateStationStatus(id int, currentLoad float64, status model.StationStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	st, ok := n.stations[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	st.CurrentLoad = currentLoad
	st.Status = status
	n.stations[id] = st
	return nil
}

// Neighbors returns the edges leaving id, sorted by neighbor id for
// deterministic traversal order.
func (n *Network) Neighbors(id int) []Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	adj := n.adj[id]
	edges := make([]Edge, 0, len(adj))
	for to, c := range adj {
		edges = append(edges, Edge{To: to, Conn: c})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	return edges
}

// StationIDs returns all station ids in ascending order.
func (n *Network) StationIDs() []int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ids := make([]int, 0, len(n.stations))
	for id := range n.stations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Stations returns a copy of all station records.
func (n *Network) Stations() []model.Station {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]model.Station, 0, len(n.stations))
	for _, st := range n.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of stations.
func (n *Network) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.stations)
}
