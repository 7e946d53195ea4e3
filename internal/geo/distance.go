// Package geo provides great-circle distance math for event and article
// coordinates. Ranking only needs relative distances, so the spherical
// haversine approximation is used throughout instead of an ellipsoidal model.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
// Out-of-range coordinates are not rejected; NaN and extreme values propagate
// through the math rather than panicking.
func DistanceKm(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lon1 := radians(a.Longitude)
	lat2 := radians(b.Latitude)
	lon2 := radians(b.Longitude)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
