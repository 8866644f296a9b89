package geo

import "math"

const (
	// EarthRadiusKm is Earth's mean radius in kilometers for the Haversine formula.
	EarthRadiusKm = 6371.0088
	// DefaultSpeedKmh is the naive average courier speed used for travel-time estimates.
	DefaultSpeedKmh = 30.0
)

// DistanceKm calculates the great-circle distance between two points on Earth
// in kilometers using the Haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// TravelTimeMinutes estimates travel time in minutes for the given distance
// at an average speed. Non-positive speeds fall back to DefaultSpeedKmh.
func TravelTimeMinutes(distanceKm, avgSpeedKmh float64) float64 {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = DefaultSpeedKmh
	}
	return distanceKm / avgSpeedKmh * 60
}
