package scoring

import (
	"math"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Haversine returns the great-circle distance between two points in km.
func Haversine(p, q model.Coord) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := q.Lat * math.Pi / 180
	dLat := (q.Lat - p.Lat) * math.Pi / 180
	dLng := (q.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// DetourScore is the extra distance incurred by visiting station between
// source and destination. It is zero when the station lies exactly on the
// direct path and grows with the detour, never negative.
func DetourScore(source, destination, station model.Coord) float64 {
	via := Haversine(source, station) + Haversine(station, destination)
	return via - Haversine(source, destination)
}
