package prediction

import (
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

// FeatureCount is the width of a feature vector: four calendar features plus
// the mean historical load at the same hour and weekday for each of the
// previous seven days.
const FeatureCount = 11

type hourWeekday struct {
	hour    int
	weekday time.Weekday
}

type meanAcc struct {
	sum float64
	n   int
}

// historyIndex aggregates usage samples by station, hour of day and weekday
// so historical-mean features can be computed in constant time.
type historyIndex map[int]map[hourWeekday]meanAcc

func buildIndex(samples []model.UsageSample) historyIndex {
	idx := make(historyIndex)
	for _, s := range samples {
		key := hourWeekday{hour: s.Timestamp.Hour(), weekday: s.Timestamp.Weekday()}
		byStation := idx[s.StationID]
		if byStation == nil {
			byStation = make(map[hourWeekday]meanAcc)
			idx[s.StationID] = byStation
		}
		acc := byStation[key]
		acc.sum += s.Load
		acc.n++
		byStation[key] = acc
	}
	return idx
}

// meanLoad returns the average observed load for the station at the given
// hour and weekday, or 0 when no matching history exists.
func (idx historyIndex) meanLoad(stationID, hour int, weekday time.Weekday) float64 {
	byStation, ok := idx[stationID]
	if !ok {
		return 0
	}
	acc, ok := byStation[hourWeekday{hour: hour, weekday: weekday}]
	if !ok || acc.n == 0 {
		return 0
	}
	return acc.sum / float64(acc.n)
}

// featuresFor builds the feature vector for one (station, time) pair.
func (idx historyIndex) featuresFor(stationID int, t time.Time) []float64 {
	f := make([]float64, 0, FeatureCount)
	f = append(f,
		float64(t.Hour()),
		float64(t.Weekday()),
		float64(t.Month()),
		float64(t.Day()),
	)
	for i := 1; i <= 7; i++ {
		prev := t.AddDate(0, 0, -i)
		f = append(f, idx.meanLoad(stationID, prev.Hour(), prev.Weekday()))
	}
	return f
}
