package metrics

import (
	"errors"

	coremetrics "github.com/NJ2612/ev-charge-optimizer/core/metrics"
)

// MultiSink fans events out to several sinks. Errors are joined so one
// failing backend does not hide the others.
type MultiSink struct {
	sinks []coremetrics.RouteSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.RouteSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordRoute(ev coremetrics.RouteEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordRoute(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordRecommendation(ev coremetrics.RecommendationEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordRecommendation(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordStatusUpdate(ev coremetrics.StatusEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordStatusUpdate(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
