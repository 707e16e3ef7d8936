// Package stations exposes the station inventory and status endpoints.
package stations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/logger"
	coremetrics "github.com/NJ2612/ev-charge-optimizer/core/metrics"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
	"github.com/NJ2612/ev-charge-optimizer/core/prediction"
	"github.com/NJ2612/ev-charge-optimizer/internal/eventbus"
)

// Handler serves /api/stations endpoints.
type Handler struct {
	net  *network.Network
	feed *prediction.Feed
	bus  eventbus.EventBus
	log  logger.Logger
}

// New creates the handler. feed and bus may be nil.
func New(net *network.Network, feed *prediction.Feed, bus eventbus.EventBus, log logger.Logger) *Handler {
	return &Handler{net: net, feed: feed, bus: bus, log: log}
}

// Register attaches the station routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stations", h.list)
	mux.HandleFunc("GET /api/stations/{id}/status", h.status)
	mux.HandleFunc("PUT /api/stations/{id}/status", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.net.Stations())
}

type statusResponse struct {
	model.Station
	PredictedLoad *float64 `json:"predicted_load,omitempty"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid station id", http.StatusBadRequest)
		return
	}
	st, err := h.net.StationInfo(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	resp := statusResponse{Station: st}
	if h.feed != nil && h.feed.Trained() {
		if load, err := h.feed.PredictLoad(id, time.Now().UTC()); err == nil {
			resp.PredictedLoad = &load
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateRequest struct {
	CurrentLoad *float64 `json:"current_load"`
	Status      string   `json:"status"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid station id", http.StatusBadRequest)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.CurrentLoad == nil || req.Status == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.net.UpdateStationStatus(id, *req.CurrentLoad, status); err != nil {
		if errors.Is(err, network.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if h.bus != nil {
		h.bus.Publish(coremetrics.StatusEvent{
			StationID:   id,
			Status:      string(status),
			CurrentLoad: *req.CurrentLoad,
			Time:        time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "station status updated"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
