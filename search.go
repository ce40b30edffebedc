package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// SearchRequest carries the raw inputs of a search. Invalid values have
// already been dropped by the handler, so every field here is either usable
// or empty.
type SearchRequest struct {
	Category   string
	QueryText  string
	City       string
	State      string
	PostalCode string
	Country    string
	Latitude   *float64
	Longitude  *float64
	RadiusKm   int
	UserID     uuid.UUID

	// Live marks the search-as-you-type variant: fewer local results, no
	// event logging, external results only for deliberate input.
	Live bool
	// ExternalPermitted gates external search for full searches.
	ExternalPermitted bool
	RecordEvent       bool
}

type SearchResponse struct {
	Category          *Category        `json:"category,omitempty"`
	QueryText         string           `json:"query_text"`
	Location          LocationQuery    `json:"location"`
	Suggested         []Provider       `json:"suggested"`
	Providers         []Provider       `json:"providers"`
	External          []ProviderResult `json:"external"`
	ExternalSource    string           `json:"external_source,omitempty"`
	ExternalError     string           `json:"external_error,omitempty"`
	ExternalErrorKind string           `json:"external_error_kind,omitempty"`
}

// runSearch resolves category and location, runs the local search and, when
// allowed, the external one. Only a local store failure is returned as an
// error; external failures end up in the response.
func (cfg *apiConfig) runSearch(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	categories, err := cfg.listActiveCategories(ctx)
	if err != nil {
		return SearchResponse{}, err
	}

	category := findCategory(categories, req.Category)
	categoryExplicit := category != nil
	queryText := strings.TrimSpace(req.QueryText)
	hadQuery := queryText != ""
	if category == nil && hadQuery {
		inferred, consume := inferCategory(categories, queryText)
		if inferred != nil {
			category = inferred
			cfg.logger.Debug("category inferred from query", "query", queryText, "category", inferred.Slug, "consumed", consume)
			if consume {
				queryText = ""
			}
		}
	}

	loc := cfg.resolveLocation(ctx, req)

	limit := regularLimit
	if req.Live {
		limit = liveRegularLimit
	}
	local, err := cfg.searchLocalProviders(ctx, localSearchParams{
		Category:     category,
		QueryText:    queryText,
		Location:     loc,
		RegularLimit: limit,
	})
	if err != nil {
		return SearchResponse{}, err
	}

	resp := SearchResponse{
		Category:  category,
		QueryText: queryText,
		Location:  loc,
		Suggested: local.Suggested,
		Providers: local.Regular,
		External:  []ProviderResult{},
	}
	allowed := req.ExternalPermitted
	if req.Live {
		allowed = hadQuery || categoryExplicit
	}
	if category != nil && loc.hasSignal() && allowed {
		cfg.searchExternal(ctx, &resp, ExternalSearchParams{
			Category:   category,
			QueryText:  queryText,
			City:       loc.City,
			State:      loc.State,
			PostalCode: loc.PostalCode,
			Country:    loc.Country,
			RadiusKm:   loc.RadiusKm,
		})
	}

	if req.RecordEvent && !req.Live {
		var categoryID int64
		if category != nil {
			categoryID = category.ID
		}
		err := cfg.events.RecordSearch(ctx, SearchEventRecord{
			UserID:     req.UserID,
			CategoryID: categoryID,
			QueryText:  queryText,
			Location:   loc,
		})
		if err != nil {
			cfg.logger.Warn("search event not recorded", "error", err)
		}
	}

	return resp, nil
}

// searchExternal fills the external part of resp. Every failure becomes a
// user-facing message; nothing is propagated.
func (cfg *apiConfig) searchExternal(ctx context.Context, resp *SearchResponse, params ExternalSearchParams) {
	backend, err := cfg.providerBackend(ctx)
	if err != nil {
		cfg.setExternalError(resp, "unconfigured", err)
		return
	}
	resp.ExternalSource = backend.SourceLabel()

	results, err := backend.Search(ctx, params)
	if err != nil {
		cfg.setExternalError(resp, backend.Name(), err)
		return
	}
	externalSearchesTotal.WithLabelValues(backend.Name(), "ok").Inc()
	if results != nil {
		resp.External = results
	}
}

func (cfg *apiConfig) setExternalError(resp *SearchResponse, backendName string, err error) {
	msg, kind := externalErrorMessage(err)
	resp.ExternalError = msg
	resp.ExternalErrorKind = kind.String()
	externalSearchesTotal.WithLabelValues(backendName, kind.String()).Inc()

	switch kind {
	case ProviderErrorLocationUnresolved:
		cfg.logger.Info("external search location unresolved", "backend", backendName)
	case ProviderErrorBusy, ProviderErrorUnavailable:
		cfg.logger.Warn("external search failed", "backend", backendName, "kind", kind.String(), "error", err)
	default:
		cfg.logger.Error("external search failed", "backend", backendName, "kind", kind.String(), "error", err)
	}
}

// resolveLocation picks the effective location: explicit input, then the
// reverse geocoded device position, then the saved profile. Radius and
// country fall back to the profile and then to the configured defaults.
func (cfg *apiConfig) resolveLocation(ctx context.Context, req SearchRequest) LocationQuery {
	loc := LocationQuery{
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(req.Country)),
		RadiusKm:   req.RadiusKm,
	}
	if req.Latitude != nil && req.Longitude != nil && validCoordinates(*req.Latitude, *req.Longitude) {
		loc.Latitude, loc.Longitude = req.Latitude, req.Longitude
	}

	if _, ok := loc.point(); ok && !loc.hasSignal() && cfg.reverseGeocoder != nil {
		rg := cfg.reverseGeocoder.ReverseGeocode(ctx, *loc.Latitude, *loc.Longitude)
		if loc.City == "" && rg.City != "" {
			loc.City, loc.FromDevice = rg.City, true
		}
		if loc.State == "" && rg.State != "" {
			loc.State, loc.FromDevice = rg.State, true
		}
		if loc.PostalCode == "" && rg.PostalCode != "" {
			loc.PostalCode, loc.FromDevice = rg.PostalCode, true
		}
	}

	var profile *Profile
	if req.UserID != uuid.Nil && (!loc.hasSignal() || loc.RadiusKm <= 0 || loc.Country == "") {
		p, err := cfg.loadProfile(ctx, req.UserID)
		if err != nil {
			cfg.logger.Warn("could not load profile defaults", "user_id", req.UserID, "error", err)
		} else {
			profile = &p
		}
	}

	if profile != nil {
		if !loc.hasSignal() {
			if loc.PostalCode == "" && profile.PostalCode != "" {
				loc.PostalCode = profile.PostalCode
			}
			if (loc.City == "" || loc.State == "") && profile.City != "" && profile.State != "" {
				loc.City, loc.State = profile.City, profile.State
			}
		}
		if loc.RadiusKm <= 0 && profile.DefaultRadiusKm > 0 {
			loc.RadiusKm = int(profile.DefaultRadiusKm)
		}
		if loc.Country == "" {
			loc.Country = strings.ToUpper(strings.TrimSpace(profile.Country))
		}
	}

	if loc.RadiusKm <= 0 {
		loc.RadiusKm = cfg.defaultSearchRadiusKm
	}
	if loc.Country == "" {
		loc.Country = cfg.defaultCountry
	}
	loc.PostalCode = NormalizePostalCode(loc.PostalCode, loc.Country)
	return loc
}
