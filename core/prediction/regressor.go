// Package prediction produces per-station load forecasts used to bias route
// costs. The numeric backend is swappable: any Regressor implementation can
// be plugged in without touching feature construction or the route search.
package prediction

import "errors"

// ErrNotTrained is returned when a prediction is requested before a fit has
// completed.
var ErrNotTrained = errors.New("load predictor not trained")

// ErrNoHistory is returned when a fit is attempted without usage samples.
var ErrNoHistory = errors.New("no historical usage data")

// Regressor is the capability interface for the numeric backend.
type Regressor interface {
	// Fit trains on the feature matrix X and targets y.
	Fit(X [][]float64, y []float64) error
	// Predict returns the raw model output for one feature vector.
	Predict(x []float64) (float64, error)
}

// PersistentRegressor can snapshot and restore its fitted state so a process
// can skip refitting at startup.
type PersistentRegressor interface {
	Regressor
	MarshalState() ([]byte, error)
	UnmarshalState(data []byte) error
}
