package main

import (
	"math"
	"math/rand"
	"time"
)

// SimulatedStation produces a plausible utilization series for one charging
// station: a diurnal base curve with morning and evening peaks plus noise.
type SimulatedStation struct {
	ID       int
	baseline float64 // station-specific popularity in [0,1]
}

// NewSimulatedStation creates a station with a randomized popularity.
func NewSimulatedStation(id int, rng *rand.Rand) *SimulatedStation {
	return &SimulatedStation{ID: id, baseline: 0.2 + 0.5*rng.Float64()}
}

// diurnal returns the time-of-day demand multiplier in [0,1], peaking around
// 08:30 and 18:00.
func diurnal(now time.Time) float64 {
	h := float64(now.Hour()) + float64(now.Minute())/60
	morning := math.Exp(-math.Pow(h-8.5, 2) / 4)
	evening := math.Exp(-math.Pow(h-18, 2) / 6)
	return math.Min(1, 0.15+morning+evening)
}

// Step returns the station's current load and status label. Load stays in
// [0,1]; a station reporting full utilization is published as occupied.
func (s *SimulatedStation) Step(now time.Time, rng *rand.Rand, maintenancePct float64) (float64, string) {
	if rng.Float64() < maintenancePct {
		return 0, "maintenance"
	}
	load := s.baseline*diurnal(now) + rng.NormFloat64()*0.05
	load = math.Max(0, math.Min(1, load))
	if load >= 0.95 {
		return load, "occupied"
	}
	return load, "available"
}
