package main

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// This file turns a textual location (city, province/state, postal code,
// country) into coordinates. The lookup goes through a Nominatim-compatible
// search endpoint and, for Canadian postal codes Nominatim cannot place,
// falls back to searching tagged objects in the Overpass index.

const nominatimSearchTimeout = 20 * time.Second

type GeocodeResult struct {
	Point       GeoPoint `json:"point"`
	DisplayName string   `json:"display_name"`
}

// Geocoder resolves a textual location. A nil result with a nil error means
// the location could not be found.
type Geocoder interface {
	Geocode(ctx context.Context, loc LocationQuery) (*GeocodeResult, error)
}

type nominatimAddress struct {
	CountryCode string `json:"country_code"`
	State       string `json:"state"`
	Province    string `json:"province"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Postcode    string `json:"postcode"`
}

type nominatimPlace struct {
	Lat         coordinate       `json:"lat"`
	Lon         coordinate       `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type NominatimGeocoder struct {
	searchURL    string
	contactEmail string
	client       *upstreamClient
	overpass     *overpassClient
	logger       *slog.Logger
}

func NewNominatimGeocoder(searchURL, contactEmail string, client *upstreamClient, overpass *overpassClient, logger *slog.Logger) *NominatimGeocoder {
	return &NominatimGeocoder{
		searchURL:    searchURL,
		contactEmail: contactEmail,
		client:       client,
		overpass:     overpass,
		logger:       logger,
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, loc LocationQuery) (*GeocodeResult, error) {
	country := strings.ToUpper(strings.TrimSpace(loc.Country))
	isCanada := country == "CA"
	postal := NormalizePostalCode(loc.PostalCode, country)
	city := strings.TrimSpace(loc.City)
	state := strings.TrimSpace(loc.State)

	if isCanada {
		if state == "" {
			state = InferProvinceAbbrevFromPostal(postal)
		} else {
			state = NormalizeProvince(state)
		}
	}

	q := joinNonEmpty(", ", postal, city, state, countryDisplayName(country))
	if q == "" {
		return nil, nil
	}

	places, err := g.search(ctx, q, country)
	if err != nil {
		return nil, classifyUpstreamError(err)
	}
	if res := pickBestPlace(places, country, state); res != nil {
		return res, nil
	}

	if !isCanada {
		return nil, nil
	}

	fullProvince := ProvinceFullName(state)
	if fullProvince == "" {
		fullProvince = InferProvinceFromPostal(postal)
	}
	if fullProvince != "" && !strings.Contains(q, fullProvince) {
		retryQ := joinNonEmpty(", ", postal, city, fullProvince, countryDisplayName(country))
		g.logger.Debug("geocode retry with full province name", "query", retryQ)
		places, err := g.search(ctx, retryQ, country)
		if err != nil {
			return nil, classifyUpstreamError(err)
		}
		if res := pickBestPlace(places, country, fullProvince); res != nil {
			return res, nil
		}
	}

	if postal != "" && city == "" && g.overpass != nil {
		g.logger.Debug("geocode fallback to postal code lookup", "postal_code", postal)
		res, err := g.overpass.locatePostalCode(ctx, postal)
		if err != nil {
			return nil, classifyUpstreamError(err)
		}
		if res != nil {
			return res, nil
		}
	}

	return nil, nil
}

func (g *NominatimGeocoder) search(ctx context.Context, q, country string) ([]nominatimPlace, error) {
	params := url.Values{
		"q":              {q},
		"format":         {"jsonv2"},
		"limit":          {"5"},
		"addressdetails": {"1"},
	}
	if cc := strings.ToLower(country); len(cc) == 2 {
		params.Set("countrycodes", cc)
	}
	if g.contactEmail != "" {
		params.Set("email", g.contactEmail)
	}

	var places []nominatimPlace
	if err := g.client.getJSON(ctx, g.searchURL, params, nominatimSearchTimeout, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// pickBestPlace returns the first candidate in the requested country (and,
// for Canada, in the requested province) with usable coordinates. Candidates
// that report no province are accepted. Nothing matching means nil: results
// outside the requested region are never returned.
func pickBestPlace(places []nominatimPlace, country, state string) *GeocodeResult {
	cc := strings.ToLower(strings.TrimSpace(country))

	var wantAbbrev, wantFull string
	if cc == "ca" && strings.TrimSpace(state) != "" {
		wantAbbrev = NormalizeProvince(state)
		wantFull = ProvinceFullName(wantAbbrev)
		if wantFull == "" {
			wantFull = strings.TrimSpace(state)
		}
	}

	for _, p := range places {
		if cc != "" && strings.ToLower(strings.TrimSpace(p.Address.CountryCode)) != cc {
			continue
		}
		if wantAbbrev != "" {
			got := firstNonEmpty(p.Address.State, p.Address.Province)
			if got != "" && NormalizeProvince(got) != wantAbbrev && !strings.EqualFold(got, wantFull) {
				continue
			}
		}
		if !p.Lat.valid || !p.Lon.valid {
			continue
		}
		return &GeocodeResult{
			Point:       GeoPoint{Latitude: p.Lat.value, Longitude: p.Lon.value},
			DisplayName: p.DisplayName,
		}
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
