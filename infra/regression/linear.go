// Package regression provides the numeric backend for the load feed: an
// ordinary least squares model with ridge damping and internal z-score
// feature scaling, solved with gonum.
package regression

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned by Predict before Fit has run.
var ErrNotFitted = errors.New("regression model not fitted")

// Linear is a least-squares regressor. Features are standardized before the
// solve; the ridge term keeps the normal equations well conditioned when
// calendar features are collinear.
type Linear struct {
	ridge float64
	state *linearState
}

type linearState struct {
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
	Weights []float64 `json:"weights"` // intercept first
}

// NewLinear returns a Linear model with the given ridge damping factor.
// A non-positive ridge falls back to a small default.
func NewLinear(ridge float64) *Linear {
	if ridge <= 0 {
		ridge = 1e-6
	}
	return &Linear{ridge: ridge}
}

// Fit solves the standardized normal equations for X and y.
func (l *Linear) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("mismatched training data: %d rows, %d targets", len(X), len(y))
	}
	cols := len(X[0])
	if cols == 0 {
		return errors.New("empty feature vectors")
	}

	means := make([]float64, cols)
	stds := make([]float64, cols)
	col := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		for i, row := range X {
			if len(row) != cols {
				return fmt.Errorf("ragged feature matrix at row %d", i)
			}
			col[i] = row[j]
		}
		means[j] = stat.Mean(col, nil)
		stds[j] = stat.StdDev(col, nil)
		if stds[j] == 0 {
			// Constant column: leave values at zero after centering.
			stds[j] = 1
		}
	}

	// Design matrix with an intercept column of ones.
	a := mat.NewDense(len(X), cols+1, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, (v-means[j])/stds[j])
		}
	}
	yv := mat.NewVecDense(len(y), y)

	var ata mat.Dense
	ata.Mul(a.T(), a)
	for j := 1; j <= cols; j++ {
		ata.Set(j, j, ata.At(j, j)+l.ridge)
	}
	var aty mat.VecDense
	aty.MulVec(a.T(), yv)

	var w mat.VecDense
	if err := w.SolveVec(&ata, &aty); err != nil {
		return fmt.Errorf("solve normal equations: %w", err)
	}

	weights := make([]float64, cols+1)
	copy(weights, w.RawVector().Data)
	l.state = &linearState{Means: means, Stds: stds, Weights: weights}
	return nil
}

// Predict returns the model output for one feature vector.
func (l *Linear) Predict(x []float64) (float64, error) {
	if l.state == nil {
		return 0, ErrNotFitted
	}
	s := l.state
	if len(x) != len(s.Means) {
		return 0, fmt.Errorf("expected %d features, got %d", len(s.Means), len(x))
	}
	out := s.Weights[0]
	for j, v := range x {
		out += s.Weights[j+1] * (v - s.Means[j]) / s.Stds[j]
	}
	return out, nil
}

// MarshalState snapshots the fitted parameters.
func (l *Linear) MarshalState() ([]byte, error) {
	if l.state == nil {
		return nil, ErrNotFitted
	}
	return json.Marshal(l.state)
}

// UnmarshalState restores parameters produced by MarshalState.
func (l *Linear) UnmarshalState(data []byte) error {
	var s linearState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s.Weights) != len(s.Means)+1 || len(s.Means) != len(s.Stds) {
		return errors.New("inconsistent model state")
	}
	l.state = &s
	return nil
}
