package model

import (
	"fmt"
	"time"
)

// VehicleState carries the battery parameters supplied with a route request.
// It is never stored; every request provides its own copy.
type VehicleState struct {
	BatteryKWh    float64 `json:"battery_capacity"` // total capacity in kWh
	CurrentCharge float64 `json:"current_charge"`   // percentage 0-100
	Efficiency    float64 `json:"efficiency"`       // consumption in kWh/km
}

// UsableEnergyKWh returns the energy currently stored in the battery.
func (v VehicleState) UsableEnergyKWh() float64 {
	return v.CurrentCharge / 100 * v.BatteryKWh
}

// Validate checks that the vehicle parameters are sound.
func (v VehicleState) Validate() error {
	if v.BatteryKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if v.CurrentCharge < 0 || v.CurrentCharge > 100 {
		return fmt.Errorf("current charge must be between 0 and 100")
	}
	if v.Efficiency <= 0 {
		return fmt.Errorf("efficiency must be positive")
	}
	return nil
}

// UsageSample is one historical observation of a station's utilization,
// used to fit the load predictor.
type UsageSample struct {
	StationID int
	Timestamp time.Time
	Load      float64 // utilization fraction in [0,1]
}
