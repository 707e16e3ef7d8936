package model

import "fmt"

// StationStatus is the operational state of a charging station.
type StationStatus string

const (
	StatusAvailable   StationStatus = "available"
	StatusOccupied    StationStatus = "occupied"
	StatusMaintenance StationStatus = "maintenance"
)

// ParseStatus converts a raw string to a StationStatus. Unknown values are
// rejected so that arbitrary strings never enter the network.
func ParseStatus(s string) (StationStatus, error) {
	switch StationStatus(s) {
	case StatusAvailable, StatusOccupied, StatusMaintenance:
		return StationStatus(s), nil
	}
	return "", fmt.Errorf("unknown station status %q", s)
}

// Coord is a latitude/longitude pair in degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Station represents a charging station node in the network.
type Station struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Lat          float64       `json:"lat"`
	Lng          float64       `json:"lng"`
	Capacity     int           `json:"capacity"`     // max concurrent charging slots
	CurrentLoad  float64       `json:"current_load"` // utilization fraction in [0,1]
	Status       StationStatus `json:"status"`
	ChargingRate float64       `json:"charging_rate"` // kW
}

// Coord returns the station position.
func (s Station) Coord() Coord { return Coord{Lat: s.Lat, Lng: s.Lng} }

// Availability returns the fraction of free slots derived from the current
// load, clamped to [0,1].
func (s Station) Availability() float64 {
	a := 1 - s.CurrentLoad
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

// Validate checks that the station definition is sound.
func (s Station) Validate() error {
	if s.Capacity <= 0 {
		return fmt.Errorf("station %d: capacity must be positive", s.ID)
	}
	if s.ChargingRate <= 0 {
		return fmt.Errorf("station %d: charging rate must be positive", s.ID)
	}
	return nil
}
