package prediction

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

// HopInterval is the fixed time advance applied per station when predicting
// loads along a route. Real travel time between hops is not used.
const HopInterval = 30 * time.Minute

// fitted bundles a trained model with the history index the features were
// built from. It is swapped atomically so concurrent predictions keep using
// the prior model while a refit is in progress.
type fitted struct {
	model Regressor
	index historyIndex
}

// Feed trains a regression model over historical usage samples and serves
// clamped load forecasts per station and time.
type Feed struct {
	newModel func() Regressor
	cur      atomic.Pointer[fitted]
}

// NewFeed creates a Feed. newModel is invoked for every fit so retraining
// never mutates a model that is still serving predictions.
func NewFeed(newModel func() Regressor) *Feed {
	return &Feed{newModel: newModel}
}

// Trained reports whether a fit has completed.
func (f *Feed) Trained() bool { return f.cur.Load() != nil }

// Fit trains a fresh model on the full sample history and swaps it in.
// Running fits are long batch operations; PredictLoad callers are never
// blocked by one.
func (f *Feed) Fit(samples []model.UsageSample) error {
	if len(samples) == 0 {
		return ErrNoHistory
	}
	idx := buildIndex(samples)
	X := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		X[i] = idx.featuresFor(s.StationID, s.Timestamp)
		y[i] = s.Load
	}
	m := f.newModel()
	if err := m.Fit(X, y); err != nil {
		return fmt.Errorf("fit load model: %w", err)
	}
	f.cur.Store(&fitted{model: m, index: idx})
	return nil
}

// PredictLoad returns the forecast utilization for a station at time t,
// clamped to [0,1].
func (f *Feed) PredictLoad(stationID int, t time.Time) (float64, error) {
	cur := f.cur.Load()
	if cur == nil {
		return 0, ErrNotTrained
	}
	raw, err := cur.model.Predict(cur.index.featuresFor(stationID, t))
	if err != nil {
		return 0, fmt.Errorf("predict station %d: %w", stationID, err)
	}
	return clamp01(raw), nil
}

// PredictLoadsForRoute forecasts the load for each station in order,
// advancing the prediction time by HopInterval per hop.
func (f *Feed) PredictLoadsForRoute(stationIDs []int, start time.Time) (map[int]float64, error) {
	if !f.Trained() {
		return nil, ErrNotTrained
	}
	out := make(map[int]float64, len(stationIDs))
	t := start
	for _, id := range stationIDs {
		load, err := f.PredictLoad(id, t)
		if err != nil {
			return nil, err
		}
		out[id] = load
		t = t.Add(HopInterval)
	}
	return out, nil
}

// snapshot is the on-disk form of a fitted feed.
type snapshot struct {
	Model   json.RawMessage                        `json:"model"`
	History map[int]map[string]snapshotAccumulator `json:"history"`
}

type snapshotAccumulator struct {
	Sum float64 `json:"sum"`
	N   int     `json:"n"`
}

// Save persists the fitted model and history index to path. The model must
// implement PersistentRegressor.
func (f *Feed) Save(path string) error {
	cur := f.cur.Load()
	if cur == nil {
		return ErrNotTrained
	}
	pm, ok := cur.model.(PersistentRegressor)
	if !ok {
		return fmt.Errorf("model %T does not support persistence", cur.model)
	}
	state, err := pm.MarshalState()
	if err != nil {
		return fmt.Errorf("marshal model state: %w", err)
	}
	snap := snapshot{Model: state, History: encodeIndex(cur.index)}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load restores a previously saved model so the process can serve
// predictions without refitting.
func (f *Feed) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode model snapshot: %w", err)
	}
	m := f.newModel()
	pm, ok := m.(PersistentRegressor)
	if !ok {
		return fmt.Errorf("model %T does not support persistence", m)
	}
	if err := pm.UnmarshalState(snap.Model); err != nil {
		return fmt.Errorf("restore model state: %w", err)
	}
	idx, err := decodeIndex(snap.History)
	if err != nil {
		return err
	}
	f.cur.Store(&fitted{model: pm, index: idx})
	return nil
}

func encodeIndex(idx historyIndex) map[int]map[string]snapshotAccumulator {
	out := make(map[int]map[string]snapshotAccumulator, len(idx))
	for station, byKey := range idx {
		m := make(map[string]snapshotAccumulator, len(byKey))
		for k, acc := range byKey {
			m[fmt.Sprintf("%d-%d", k.hour, int(k.weekday))] = snapshotAccumulator{Sum: acc.sum, N: acc.n}
		}
		out[station] = m
	}
	return out
}

func decodeIndex(enc map[int]map[string]snapshotAccumulator) (historyIndex, error) {
	idx := make(historyIndex, len(enc))
	for station, byKey := range enc {
		m := make(map[hourWeekday]meanAcc, len(byKey))
		for k, acc := range byKey {
			var hour, wd int
			if _, err := fmt.Sscanf(k, "%d-%d", &hour, &wd); err != nil {
				return nil, fmt.Errorf("decode history key %q: %w", k, err)
			}
			m[hourWeekday{hour: hour, weekday: time.Weekday(wd)}] = meanAcc{sum: acc.Sum, n: acc.N}
		}
		idx[station] = m
	}
	return idx, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
