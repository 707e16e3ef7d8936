// Package routes exposes the route search and single-station recommendation
// endpoints.
package routes

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/logger"
	coremetrics "github.com/NJ2612/ev-charge-optimizer/core/metrics"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
	"github.com/NJ2612/ev-charge-optimizer/core/prediction"
	"github.com/NJ2612/ev-charge-optimizer/core/routing"
	"github.com/NJ2612/ev-charge-optimizer/core/scoring"
)

// Defaults applied when the request omits vehicle parameters, matching the
// documented request contract.
const (
	defaultBatteryKWh = 75.0
	defaultCharge     = 20.0
	defaultEfficiency = 0.2
	minutesPerKm      = 2.0 // rough travel-time estimate for responses
)

// RouteSaver persists computed routes. Saving is best effort; failures are
// logged, never returned to the caller.
type RouteSaver interface {
	SaveRoute(ctx context.Context, startID, endID int, path []int, totalKm float64) (string, error)
}

// Handler serves /api/route and /api/recommend.
type Handler struct {
	net    *network.Network
	router *routing.Router
	feed   *prediction.Feed
	scorer *scoring.Scorer
	sink   coremetrics.RouteSink
	saver  RouteSaver
	log    logger.Logger
}

// New creates the handler. feed, sink and saver may be nil.
func New(net *network.Network, router *routing.Router, feed *prediction.Feed, scorer *scoring.Scorer, sink coremetrics.RouteSink, saver RouteSaver, log logger.Logger) *Handler {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Handler{net: net, router: router, feed: feed, scorer: scorer, sink: sink, saver: saver, log: log}
}

// Register attaches the routing endpoints to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/route", h.route)
	mux.HandleFunc("POST /api/recommend", h.recommend)
}

type routeRequest struct {
	StartID         int      `json:"start_id"`
	EndID           int      `json:"end_id"`
	BatteryCapacity *float64 `json:"battery_capacity"`
	CurrentCharge   *float64 `json:"current_charge"`
	Efficiency      *float64 `json:"efficiency"`
}

func (r routeRequest) vehicle() model.VehicleState {
	v := model.VehicleState{BatteryKWh: defaultBatteryKWh, CurrentCharge: defaultCharge, Efficiency: defaultEfficiency}
	if r.BatteryCapacity != nil {
		v.BatteryKWh = *r.BatteryCapacity
	}
	if r.CurrentCharge != nil {
		v.CurrentCharge = *r.CurrentCharge
	}
	if r.Efficiency != nil {
		v.Efficiency = *r.Efficiency
	}
	return v
}

type routeStop struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	ChargingRate  float64 `json:"charging_rate"`
	PredictedLoad float64 `json:"predicted_load"`
	IsFinal       bool    `json:"is_final"`
}

type routeResponse struct {
	Route            []routeStop `json:"route"`
	TotalDistance    float64     `json:"total_distance"`
	EstimatedTimeMin float64     `json:"estimated_time"`
	RouteID          string      `json:"route_id,omitempty"`
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	vehicle := req.vehicle()
	if err := vehicle.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Forecast congestion over the whole network; an untrained feed just
	// means no biasing.
	var predicted map[int]float64
	if h.feed != nil && h.feed.Trained() {
		var err error
		predicted, err = h.feed.PredictLoadsForRoute(h.net.StationIDs(), time.Now().UTC())
		if err != nil {
			h.log.Warnf("load prediction unavailable: %v", err)
		}
	}

	start := time.Now()
	res := h.router.FindRoute(req.StartID, req.EndID, vehicle, predicted)
	elapsed := time.Since(start)

	if err := h.sink.RecordRoute(coremetrics.RouteEvent{
		StartID:       req.StartID,
		EndID:         req.EndID,
		Hops:          len(res.Path),
		TotalDistance: res.TotalDistance,
		Found:         res.Found(),
		Duration:      elapsed,
		Time:          time.Now().UTC(),
	}); err != nil {
		h.log.Warnf("record route metrics: %v", err)
	}

	resp := routeResponse{Route: []routeStop{}, TotalDistance: res.TotalDistance}
	if math.IsInf(res.TotalDistance, 1) {
		// JSON has no infinity; an empty route with distance -1 is the
		// documented no-route form.
		resp.TotalDistance = -1
		writeJSON(w, http.StatusOK, resp)
		return
	}

	for i, id := range res.Path {
		st, err := h.net.StationInfo(id)
		if err != nil {
			continue
		}
		resp.Route = append(resp.Route, routeStop{
			ID:            id,
			Name:          st.Name,
			Lat:           st.Lat,
			Lng:           st.Lng,
			ChargingRate:  st.ChargingRate,
			PredictedLoad: predicted[id],
			IsFinal:       i == len(res.Path)-1,
		})
	}
	resp.EstimatedTimeMin = res.TotalDistance * minutesPerKm

	if h.saver != nil && res.Found() {
		if id, err := h.saver.SaveRoute(r.Context(), req.StartID, req.EndID, res.Path, res.TotalDistance); err != nil {
			h.log.Warnf("save route: %v", err)
		} else {
			resp.RouteID = id
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type recommendRequest struct {
	Source      model.Coord `json:"source"`
	Destination model.Coord `json:"destination"`
	// StationIDs restricts the candidate set; empty means all stations.
	StationIDs []int `json:"station_ids"`
}

type recommendResponse struct {
	Found   bool           `json:"found"`
	Station *model.Station `json:"station,omitempty"`
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	var candidates []model.Station
	if len(req.StationIDs) > 0 {
		for _, id := range req.StationIDs {
			if st, err := h.net.StationInfo(id); err == nil {
				candidates = append(candidates, st)
			}
		}
	} else {
		// Out-of-service or fully loaded stations are never recommended.
		for _, st := range h.net.Stations() {
			if st.Status == model.StatusAvailable && st.Availability() > 0 {
				candidates = append(candidates, st)
			}
		}
	}

	best, ok := h.scorer.FindOptimalStation(r.Context(), req.Source, req.Destination, candidates)
	ev := coremetrics.RecommendationEvent{Candidates: len(candidates), Found: ok, Time: time.Now().UTC()}
	if ok {
		ev.StationID = best.ID
	}
	if err := h.sink.RecordRecommendation(ev); err != nil {
		h.log.Warnf("record recommendation metrics: %v", err)
	}

	resp := recommendResponse{Found: ok}
	if ok {
		resp.Station = &best
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
