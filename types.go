package main

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int32  `json:"sort_order"`
}

type Provider struct {
	ID            int64    `json:"id"`
	Category      Category `json:"category"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email,omitempty"`
	Website       string   `json:"website,omitempty"`
	AddressLine1  string   `json:"address_line1,omitempty"`
	AddressLine2  string   `json:"address_line2,omitempty"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PostalCode    string   `json:"postal_code"`
	Country       string   `json:"country"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	IsSuggested   bool     `json:"is_suggested"`
	SuggestedRank int32    `json:"suggested_rank"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
}

// ProviderResult is one external search hit. It is never persisted, only cached.
type ProviderResult struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Phone      string   `json:"phone,omitempty"`
	Website    string   `json:"website,omitempty"`
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
	Country    string   `json:"country,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Source     string   `json:"source"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationQuery is the request-scoped location a search runs against.
type LocationQuery struct {
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	RadiusKm   int      `json:"radius_km"`
	FromDevice bool     `json:"from_device"`
}

// hasSignal reports whether the textual location is enough to filter on:
// a postal code, or a city together with a state.
func (l LocationQuery) hasSignal() bool {
	return l.PostalCode != "" || (l.City != "" && l.State != "")
}

func (l LocationQuery) point() (GeoPoint, bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Latitude: *l.Latitude, Longitude: *l.Longitude}, true
}

type Profile struct {
	UserID           uuid.UUID `json:"user_id"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	PostalCode       string    `json:"postal_code"`
	Country          string    `json:"country"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	DefaultRadiusKm  int32     `json:"default_radius_km"`
	AllowGeolocation bool      `json:"allow_geolocation"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ProviderSettings struct {
	ProviderBackend  string    `json:"provider_backend"`
	GoogleMapsAPIKey string    `json:"google_maps_api_key,omitempty"`
	GoogleRegion     string    `json:"google_region"`
	UpdatedAt        time.Time `json:"updated_at"`
}
