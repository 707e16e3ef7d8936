// Package app assembles the record store, station network, load feed, route
// search and API surface into a runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/api/routes"
	"github.com/NJ2612/ev-charge-optimizer/api/stations"
	"github.com/NJ2612/ev-charge-optimizer/config"
	coremetrics "github.com/NJ2612/ev-charge-optimizer/core/metrics"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/network"
	"github.com/NJ2612/ev-charge-optimizer/core/prediction"
	"github.com/NJ2612/ev-charge-optimizer/core/routing"
	"github.com/NJ2612/ev-charge-optimizer/core/scoring"
	"github.com/NJ2612/ev-charge-optimizer/infra/logger"
	"github.com/NJ2612/ev-charge-optimizer/infra/metrics"
	"github.com/NJ2612/ev-charge-optimizer/infra/mqtt"
	"github.com/NJ2612/ev-charge-optimizer/infra/regression"
	"github.com/NJ2612/ev-charge-optimizer/infra/store"
	"github.com/NJ2612/ev-charge-optimizer/infra/traffic"
	"github.com/NJ2612/ev-charge-optimizer/internal/eventbus"
)

// Service orchestrates the network, predictor and API.
type Service struct {
	Network *network.Network
	Router  *routing.Router
	Feed    *prediction.Feed
	Scorer  *scoring.Scorer
	Store   *store.SQLiteStore

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.RouteSink
	telemetry *mqtt.Telemetry
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := store.NewSQLiteStore(cfg.Network.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	net := network.New()
	if err := Bootstrap(context.Background(), net, st); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("bootstrap network: %w", err)
	}
	logg.Infof("network loaded: %d stations", net.Len())

	feed := prediction.NewFeed(func() prediction.Regressor {
		return regression.NewLinear(cfg.Predictor.Ridge)
	})
	if _, err := os.Stat(cfg.Predictor.ModelPath); err == nil {
		if err := feed.Load(cfg.Predictor.ModelPath); err != nil {
			logg.Warnf("model snapshot unusable, refit required: %v", err)
		} else {
			logg.Infof("load predictor restored from %s", cfg.Predictor.ModelPath)
		}
	}
	if !feed.Trained() {
		history, err := st.UsageHistory(context.Background())
		if err != nil {
			logg.Warnf("usage history unavailable: %v", err)
		} else if len(history) > 0 {
			if err := feed.Fit(history); err != nil {
				logg.Warnf("load predictor fit failed, routing unbiased: %v", err)
			}
		}
	}

	var sinks []coremetrics.RouteSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.RouteSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	svc := &Service{
		Network: net,
		Router:  routing.NewWithPolicy(net, cfg.Routing.Policy()),
		Feed:    feed,
		Scorer:  scoring.New(trafficSource(cfg.Traffic), time.Duration(cfg.Traffic.TimeoutSeconds)*time.Second, logg),
		Store:   st,
		cfg:     cfg,
		bus:     bus,
		sink:    sink,
		log:     logg,
	}

	if cfg.MQTT.Enabled {
		tel, err := mqtt.NewTelemetry(cfg.MQTT, net, bus)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("station telemetry: %w", err)
		}
		svc.telemetry = tel
	}
	return svc, nil
}

// trafficSource returns nil when no endpoint is configured so the scorer
// falls back to the neutral traffic score.
func trafficSource(cfg traffic.Config) scoring.DurationSource {
	if cfg.BaseURL == "" {
		return nil
	}
	return traffic.NewClient(cfg)
}

// Bootstrap loads stations and connections from the record store into the
// in-memory network.
func Bootstrap(ctx context.Context, net *network.Network, st *store.SQLiteStore) error {
	all, err := st.ListStations(ctx)
	if err != nil {
		return err
	}
	for _, s := range all {
		net.AddStation(s)
	}
	conns, err := st.ListConnections(ctx)
	if err != nil {
		return err
	}
	for _, c := range conns {
		if err := net.AddConnection(c.StationA, c.StationB, c.DistanceKm, c.TrafficFactor); err != nil {
			return err
		}
	}
	return nil
}

// Handler builds the API mux.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	stations.New(s.Network, s.Feed, s.bus, s.log).Register(mux)
	routes.New(s.Network, s.Router, s.Feed, s.Scorer, s.sink, routeSaver{s.Store}, s.log).Register(mux)
	return mux
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	// Forward status updates from the bus to the metrics sink and the
	// record store. Persistence is best effort.
	events := s.bus.Subscribe()
	go func() {
		for e := range events {
			ev, ok := e.(coremetrics.StatusEvent)
			if !ok {
				continue
			}
			if err := s.sink.RecordStatusUpdate(ev); err != nil {
				s.log.Warnf("record status update: %v", err)
			}
			if status, err := model.ParseStatus(ev.Status); err == nil {
				if err := s.Store.UpdateStation(ctx, ev.StationID, ev.CurrentLoad, status); err != nil {
					s.log.Warnf("persist status of station %d: %v", ev.StationID, err)
				}
			}
		}
	}()

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.telemetry != nil {
		s.telemetry.Close()
	}
	s.bus.Close()
	return s.Store.Close()
}

type routeSaver struct {
	store *store.SQLiteStore
}

func (r routeSaver) SaveRoute(ctx context.Context, startID, endID int, path []int, totalKm float64) (string, error) {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.Itoa(id)
	}
	return r.store.SaveRoute(ctx, store.RouteRecord{
		StartID:       startID,
		EndID:         endID,
		Path:          strings.Join(parts, ","),
		TotalDistance: totalKm,
	})
}
