package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const reverseGeocodeTimeout = 4 * time.Second

type ReverseGeocodeResult struct {
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// ReverseGeocoder is best effort: it never fails, an unknown point simply
// yields an empty result.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) ReverseGeocodeResult
}

// NominatimReverseGeocoder memoizes answers per point rounded to five decimals
// (about a metre) in a bounded, expiring LRU. Failures are not memoized.
type NominatimReverseGeocoder struct {
	reverseURL   string
	contactEmail string
	client       *upstreamClient
	memo         *expirable.LRU[string, ReverseGeocodeResult]
	logger       *slog.Logger
}

func NewNominatimReverseGeocoder(reverseURL, contactEmail string, client *upstreamClient, memoSize int, memoTTL time.Duration, logger *slog.Logger) *NominatimReverseGeocoder {
	return &NominatimReverseGeocoder{
		reverseURL:   reverseURL,
		contactEmail: contactEmail,
		client:       client,
		memo:         expirable.NewLRU[string, ReverseGeocodeResult](memoSize, nil, memoTTL),
		logger:       logger,
	}
}

func roundCoordinate(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (g *NominatimReverseGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) ReverseGeocodeResult {
	if !validCoordinates(lat, lon) {
		return ReverseGeocodeResult{}
	}
	lat, lon = roundCoordinate(lat), roundCoordinate(lon)
	key := fmt.Sprintf("%.5f,%.5f", lat, lon)
	if cached, ok := g.memo.Get(key); ok {
		return cached
	}

	params := url.Values{
		"format":         {"jsonv2"},
		"lat":            {formatOverpassFloat(lat)},
		"lon":            {formatOverpassFloat(lon)},
		"addressdetails": {"1"},
	}
	if g.contactEmail != "" {
		params.Set("email", g.contactEmail)
	}

	var place nominatimPlace
	if err := g.client.getJSON(ctx, g.reverseURL, params, reverseGeocodeTimeout, &place); err != nil {
		g.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		return ReverseGeocodeResult{}
	}

	res := ReverseGeocodeResult{
		City:       firstNonEmpty(place.Address.City, place.Address.Town, place.Address.Village),
		State:      firstNonEmpty(place.Address.State, place.Address.Province),
		PostalCode: firstNonEmpty(place.Address.Postcode),
	}
	g.memo.Add(key, res)
	return res
}
