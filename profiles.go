package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// userIDHeader is set by the authenticating proxy in front of the service.
const userIDHeader = "X-User-ID"

const maxProfileRadiusKm = 500

var errInvalidProfile = errors.New("invalid profile")

// userIDFromRequest returns the authenticated user, if any.
func userIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (cfg *apiConfig) loadProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row, err := cfg.dbQueries.GetOrCreateUserProfile(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("could not load profile: %w", err)
	}
	return databaseUserProfileToProfile(row), nil
}

type profileUpdate struct {
	City             *string  `json:"city"`
	State            *string  `json:"state"`
	PostalCode       *string  `json:"postal_code"`
	Country          *string  `json:"country"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	DefaultRadiusKm  *int32   `json:"default_radius_km"`
	AllowGeolocation *bool    `json:"allow_geolocation"`
}

// apply merges the fields present in the update into p. Coordinates are
// replaced as a pair.
func (u profileUpdate) apply(p Profile) (Profile, error) {
	if u.Country != nil {
		cc := strings.ToUpper(strings.TrimSpace(*u.Country))
		if len(cc) != 2 {
			return Profile{}, fmt.Errorf("%w: country must be a two-letter code", errInvalidProfile)
		}
		p.Country = cc
	}
	if u.City != nil {
		p.City = strings.TrimSpace(*u.City)
	}
	if u.State != nil {
		p.State = strings.TrimSpace(*u.State)
		if countryIsCanada(p.Country) {
			p.State = NormalizeProvince(p.State)
		}
	}
	if u.PostalCode != nil {
		p.PostalCode = NormalizePostalCode(*u.PostalCode, p.Country)
	}
	if (u.Latitude == nil) != (u.Longitude == nil) {
		return Profile{}, fmt.Errorf("%w: latitude and longitude must be set together", errInvalidProfile)
	}
	if u.Latitude != nil {
		if !validCoordinates(*u.Latitude, *u.Longitude) {
			return Profile{}, fmt.Errorf("%w: coordinates out of range", errInvalidProfile)
		}
		p.Latitude, p.Longitude = u.Latitude, u.Longitude
	}
	if u.DefaultRadiusKm != nil {
		if *u.DefaultRadiusKm < 1 || *u.DefaultRadiusKm > maxProfileRadiusKm {
			return Profile{}, fmt.Errorf("%w: default_radius_km must be between 1 and %d", errInvalidProfile, maxProfileRadiusKm)
		}
		p.DefaultRadiusKm = *u.DefaultRadiusKm
	}
	if u.AllowGeolocation != nil {
		p.AllowGeolocation = *u.AllowGeolocation
	}
	return p, nil
}

func (cfg *apiConfig) updateProfile(ctx context.Context, userID uuid.UUID, u profileUpdate) (Profile, error) {
	current, err := cfg.loadProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	next, err := u.apply(current)
	if err != nil {
		return Profile{}, err
	}
	row, err := cfg.dbQueries.UpdateUserProfile(ctx, profileToUpdateUserProfileParams(next))
	if err != nil {
		return Profile{}, fmt.Errorf("could not update profile: %w", err)
	}
	return databaseUserProfileToProfile(row), nil
}
