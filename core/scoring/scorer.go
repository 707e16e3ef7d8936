// Package scoring implements the single-station recommendation used when a
// caller wants one charger between two points rather than a multi-hop route.
// It is an independent optimizer from the route search: multi-criteria,
// single destination, and tolerant of external lookup failures.
package scoring

import (
	"context"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/logger"
	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

// Weights of the score components. Lower final score is better.
const (
	detourWeight       = 0.4
	availabilityWeight = 0.3
	trafficWeight      = 0.3
)

// DistanceDuration is the result of an external driving lookup.
type DistanceDuration struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// DurationSource resolves driving distance and in-traffic duration between
// two coordinates. Implementations may fail or time out; the scorer degrades
// to a neutral traffic score instead of propagating those failures.
type DurationSource interface {
	DistanceDuration(ctx context.Context, origin, destination model.Coord) (DistanceDuration, error)
}

// Scorer ranks candidate stations between a source and a destination.
type Scorer struct {
	traffic        DurationSource
	trafficTimeout time.Duration
	log            logger.Logger
}

// New creates a Scorer. traffic may be nil, in which case the traffic score
// is always the neutral 1.0. timeout bounds each external lookup.
func New(traffic DurationSource, timeout time.Duration, log logger.Logger) *Scorer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Scorer{traffic: traffic, trafficTimeout: timeout, log: log}
}

// trafficScore maps the in-traffic duration to (0,1], higher is better.
// Lookup errors and timeouts yield the neutral 1.0.
func (s *Scorer) trafficScore(ctx context.Context, source, station model.Coord) float64 {
	if s.traffic == nil {
		return 1
	}
	ctx, cancel := context.WithTimeout(ctx, s.trafficTimeout)
	defer cancel()
	dd, err := s.traffic.DistanceDuration(ctx, source, station)
	if err != nil {
		if s.log != nil {
			s.log.Warnf("traffic lookup failed, using neutral score: %v", err)
		}
		return 1
	}
	return 1 / (1 + dd.DurationSeconds/3600)
}

// Score computes the weighted multi-criteria score for one station.
// Lower is better.
func (s *Scorer) Score(ctx context.Context, source, destination model.Coord, st model.Station) float64 {
	detour := DetourScore(source, destination, st.Coord())
	availability := st.Availability()
	traffic := s.trafficScore(ctx, source, st.Coord())

	return detourWeight*detour +
		availabilityWeight*(1-availability) +
		trafficWeight*(1-traffic)
}

// FindOptimalStation returns the candidate with the lowest score, or false
// when the candidate set is empty.
func (s *Scorer) FindOptimalStation(ctx context.Context, source, destination model.Coord, stations []model.Station) (model.Station, bool) {
	if len(stations) == 0 {
		return model.Station{}, false
	}
	best := stations[0]
	bestScore := s.Score(ctx, source, destination, best)
	for _, st := range stations[1:] {
		if sc := s.Score(ctx, source, destination, st); sc < bestScore {
			best, bestScore = st, sc
		}
	}
	return best, true
}
