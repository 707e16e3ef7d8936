package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/NJ2612/ev-charge-optimizer/core/metrics"
)

// PromSink records routing events in Prometheus metrics.
type PromSink struct {
	routes          *prometheus.CounterVec
	searchLatency   prometheus.Histogram
	recommendations *prometheus.CounterVec
	stationLoad     *prometheus.GaugeVec
}

// NewPromSink registers routing metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.RouteSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.RouteSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	routes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_requests_total",
		Help: "Total number of route searches",
	}, []string{"found"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_search_seconds",
		Help:    "Duration of route searches",
		Buckets: prometheus.DefBuckets,
	})
	recs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "station_recommendations_total",
		Help: "Total number of single-station recommendations",
	}, []string{"found"})
	load := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "station_current_load",
		Help: "Last reported utilization per station",
	}, []string{"station_id", "status"})

	for _, c := range []prometheus.Collector{routes, latency, recs, load} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{routes: routes, searchLatency: latency, recommendations: recs, stationLoad: load}, nil
}

// RecordRoute counts the search and observes its latency.
func (s *PromSink) RecordRoute(ev coremetrics.RouteEvent) error {
	s.routes.WithLabelValues(strconv.FormatBool(ev.Found)).Inc()
	s.searchLatency.Observe(ev.Duration.Seconds())
	return nil
}

// RecordRecommendation counts the scoring request.
func (s *PromSink) RecordRecommendation(ev coremetrics.RecommendationEvent) error {
	s.recommendations.WithLabelValues(strconv.FormatBool(ev.Found)).Inc()
	return nil
}

// RecordStatusUpdate tracks the latest reported load per station.
func (s *PromSink) RecordStatusUpdate(ev coremetrics.StatusEvent) error {
	s.stationLoad.WithLabelValues(strconv.Itoa(ev.StationID), ev.Status).Set(ev.CurrentLoad)
	return nil
}
