// Package geo computes great-circle distances for geofence checks.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two coordinates,
// computed via the haversine formula. Inputs are degrees.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Pow(math.Sin(dLng/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinFence reports whether the given point lies within radiusMeters of the
// fence center. A point exactly on the boundary counts as inside.
func WithinFence(lat, lng, centerLat, centerLng, radiusMeters float64) bool {
	return DistanceMeters(lat, lng, centerLat, centerLng) <= radiusMeters
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
