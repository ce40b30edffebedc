package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	winnipeg := GeoPoint{Latitude: 49.8951, Longitude: -97.1384}
	steinbach := GeoPoint{Latitude: 49.5258, Longitude: -96.6839}
	toronto := GeoPoint{Latitude: 43.6532, Longitude: -79.3832}

	t.Run("identical points", func(t *testing.T) {
		assert.Zero(t, haversineKm(winnipeg, winnipeg))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, haversineKm(winnipeg, toronto), haversineKm(toronto, winnipeg), 1e-9)
	})

	t.Run("known distances", func(t *testing.T) {
		assert.InDelta(t, 52.5, haversineKm(winnipeg, steinbach), 1.5)
		assert.InDelta(t, 1518, haversineKm(winnipeg, toronto), 20)
	})

	t.Run("antipodal", func(t *testing.T) {
		d := haversineKm(GeoPoint{0, 0}, GeoPoint{0, 180})
		assert.InDelta(t, 20015.1, d, 1.0)
	})
}
