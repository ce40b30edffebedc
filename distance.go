package main

import "math"

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance between two points in kilometres.
func haversineKm(a, b GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, h)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
