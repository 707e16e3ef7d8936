// Package metrics defines the sink interface used to record routing and
// prediction events. Concrete sinks live under infra/metrics.
package metrics

import "time"

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":2112"
	}
}

// RouteEvent captures one route search.
type RouteEvent struct {
	StartID       int
	EndID         int
	Hops          int
	TotalDistance float64
	Found         bool
	Duration      time.Duration
	Time          time.Time
}

// RecommendationEvent captures one single-station recommendation.
type RecommendationEvent struct {
	StationID  int
	Candidates int
	Found      bool
	Time       time.Time
}

// StatusEvent captures a station status update.
type StatusEvent struct {
	StationID   int
	Status      string
	CurrentLoad float64
	Time        time.Time
}

// RouteSink records routing activity for observability purposes.
type RouteSink interface {
	RecordRoute(ev RouteEvent) error
	RecordRecommendation(ev RecommendationEvent) error
	RecordStatusUpdate(ev StatusEvent) error
}

// NopSink implements RouteSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRoute(RouteEvent) error                   { return nil }
func (NopSink) RecordRecommendation(RecommendationEvent) error { return nil }
func (NopSink) RecordStatusUpdate(StatusEvent) error           { return nil }
