package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// This file contains the HTTP handlers. Handlers parse and validate the
// request, call into the search, profile, analytics and admin code, and write
// a JSON response. Routes are registered with method patterns in main.go, so
// handlers do not re-check the method.

const maxSearchRadiusKm = 500

// searchRequestFromQuery reads the search inputs shared by both search
// endpoints. Unparseable numbers are dropped rather than rejected so a
// half-filled form still searches.
func searchRequestFromQuery(r *http.Request) SearchRequest {
	q := r.URL.Query()
	req := SearchRequest{
		Category:   strings.TrimSpace(q.Get("category")),
		QueryText:  strings.TrimSpace(q.Get("q")),
		City:       strings.TrimSpace(q.Get("city")),
		State:      strings.TrimSpace(q.Get("state")),
		PostalCode: strings.TrimSpace(q.Get("postal_code")),
		Country:    strings.TrimSpace(q.Get("country")),
	}
	if radius, err := strconv.Atoi(q.Get("radius_km")); err == nil && radius > 0 {
		req.RadiusKm = min(radius, maxSearchRadiusKm)
	}
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr == nil && lonErr == nil && validCoordinates(lat, lon) {
		req.Latitude, req.Longitude = &lat, &lon
	}
	if userID, ok := userIDFromRequest(r); ok {
		req.UserID = userID
	}
	return req
}

// @Summary      Search providers
// @Description  Searches local providers by category, free text and location, and
// @Description  augments them with external results when analytics consent was given
// @Description  or the user is signed in. External failures never fail the request.
// @Tags         search
// @Produce      json
// @Param        category     query  string  false  "Category id or slug"
// @Param        q            query  string  false  "Free text; may imply a category"
// @Param        city         query  string  false  "City"
// @Param        state        query  string  false  "Province or state"
// @Param        postal_code  query  string  false  "Postal code"
// @Param        country      query  string  false  "Two-letter country code"
// @Param        lat          query  number  false  "Device latitude"
// @Param        lon          query  number  false  "Device longitude"
// @Param        radius_km    query  int     false  "Search radius in km"
// @Success      200  {object}  SearchResponse
// @Failure      500  {object}  map[string]string "Internal Server Error - local search failed"
// @Router       /api/search [get]
func (cfg *apiConfig) handlerSearch(w http.ResponseWriter, r *http.Request) {
	req := searchRequestFromQuery(r)
	consent := hasAnalyticsConsent(r)
	req.ExternalPermitted = consent || req.UserID != uuid.Nil
	req.RecordEvent = consent
	cfg.logger.Debug("search request", "category", req.Category, "q", req.QueryText, "city", req.City, "postal_code", req.PostalCode)

	resp, err := cfg.runSearch(r.Context(), req)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error searching providers", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, resp)
}

// @Summary      Search providers as you type
// @Description  Lighter search for type-ahead: fewer local results, no event logging,
// @Description  external results only for a typed query or an explicit category.
// @Tags         search
// @Produce      json
// @Success      200  {object}  SearchResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/search/live [get]
func (cfg *apiConfig) handlerLiveSearch(w http.ResponseWriter, r *http.Request) {
	req := searchRequestFromQuery(r)
	req.Live = true

	resp, err := cfg.runSearch(r.Context(), req)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error searching providers", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, resp)
}

// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}   Category
// @Router       /api/categories [get]
func (cfg *apiConfig) handlerCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := cfg.listActiveCategories(r.Context())
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error listing categories", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, categories)
}

func (cfg *apiConfig) handlerGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		cfg.respondWithError(w, http.StatusUnauthorized, "Sign in to use a profile", nil)
		return
	}
	profile, err := cfg.loadProfile(r.Context(), userID)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading profile", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, profile)
}

func (cfg *apiConfig) handlerUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		cfg.respondWithError(w, http.StatusUnauthorized, "Sign in to use a profile", nil)
		return
	}
	var update profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid profile payload", nil)
		return
	}
	profile, err := cfg.updateProfile(r.Context(), userID, update)
	if errors.Is(err, errInvalidProfile) {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error saving profile", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, profile)
}

// providerFromPath loads the active provider named by the {id} path value and
// writes the error response itself when it cannot.
func (cfg *apiConfig) providerFromPath(w http.ResponseWriter, r *http.Request) (Provider, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid provider id", nil)
		return Provider{}, false
	}
	row, err := cfg.dbQueries.GetActiveProvider(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		cfg.respondWithError(w, http.StatusNotFound, "Provider not found", nil)
		return Provider{}, false
	}
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading provider", err)
		return Provider{}, false
	}
	return databaseActiveProviderToProvider(row), true
}

// recordUsage logs a usage event when the visitor consented. The location is
// the one the visitor searched with, passed back as query parameters, or
// the signed-in user's saved location when none was passed.
func (cfg *apiConfig) recordUsage(r *http.Request, p Provider, action string) bool {
	if !hasAnalyticsConsent(r) {
		return false
	}
	search := searchRequestFromQuery(r)
	loc := LocationQuery{
		City:       search.City,
		State:      search.State,
		PostalCode: NormalizePostalCode(search.PostalCode, firstNonEmpty(search.Country, p.Country)),
		Latitude:   search.Latitude,
		Longitude:  search.Longitude,
	}
	if loc.City == "" && loc.State == "" && loc.PostalCode == "" && loc.Latitude == nil && search.UserID != uuid.Nil {
		profile, err := cfg.loadProfile(r.Context(), search.UserID)
		if err != nil {
			cfg.logger.Warn("usage event without profile location", "user_id", search.UserID, "error", err)
		} else {
			loc = LocationQuery{
				City:       profile.City,
				State:      profile.State,
				PostalCode: NormalizePostalCode(profile.PostalCode, firstNonEmpty(profile.Country, p.Country)),
				Latitude:   profile.Latitude,
				Longitude:  profile.Longitude,
			}
		}
	}

	ev := UsageEventRecord{
		UserID:     search.UserID,
		CategoryID: p.Category.ID,
		ProviderID: p.ID,
		Action:     action,
		Location:   loc,
	}
	if err := cfg.events.RecordUsage(r.Context(), ev); err != nil {
		cfg.logger.Warn("usage event not recorded", "action", action, "provider_id", p.ID, "error", err)
		return false
	}
	return true
}

// @Summary      Get provider
// @Tags         providers
// @Produce      json
// @Param        id   path      int  true  "Provider id"
// @Success      200  {object}  Provider
// @Failure      404  {object}  map[string]string
// @Router       /api/providers/{id} [get]
func (cfg *apiConfig) handlerGetProvider(w http.ResponseWriter, r *http.Request) {
	p, ok := cfg.providerFromPath(w, r)
	if !ok {
		return
	}
	cfg.recordUsage(r, p, usageActionView)
	cfg.respondWithJSON(w, http.StatusOK, p)
}

// @Summary      Record a contact
// @Tags         providers
// @Produce      json
// @Param        id   path      int  true  "Provider id"
// @Success      200  {object}  map[string]bool "Example: `{\"recorded\":true}`"
// @Failure      404  {object}  map[string]string
// @Router       /api/providers/{id}/contact [post]
func (cfg *apiConfig) handlerContactProvider(w http.ResponseWriter, r *http.Request) {
	p, ok := cfg.providerFromPath(w, r)
	if !ok {
		return
	}
	recorded := cfg.recordUsage(r, p, usageActionContact)
	cfg.respondWithJSON(w, http.StatusOK, map[string]bool{"recorded": recorded})
}

// @Summary      Visit provider website
// @Description  Records a click and redirects to the provider's website.
// @Tags         providers
// @Param        id   path      int  true  "Provider id"
// @Success      302
// @Failure      404  {object}  map[string]string
// @Router       /api/providers/{id}/website [get]
func (cfg *apiConfig) handlerProviderWebsite(w http.ResponseWriter, r *http.Request) {
	p, ok := cfg.providerFromPath(w, r)
	if !ok {
		return
	}
	target := strings.TrimSpace(p.Website)
	if target == "" {
		cfg.respondWithError(w, http.StatusNotFound, "Provider has no website", nil)
		return
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}
	cfg.recordUsage(r, p, usageActionClickWebsite)
	http.Redirect(w, r, target, http.StatusFound)
}

// adminSettingsResponse never echoes the stored API key.
type adminSettingsResponse struct {
	ProviderBackend     string    `json:"provider_backend"`
	GoogleRegion        string    `json:"google_region"`
	GoogleMapsAPIKeySet bool      `json:"google_maps_api_key_set"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func newAdminSettingsResponse(s ProviderSettings) adminSettingsResponse {
	return adminSettingsResponse{
		ProviderBackend:     s.ProviderBackend,
		GoogleRegion:        s.GoogleRegion,
		GoogleMapsAPIKeySet: s.GoogleMapsAPIKey != "",
		UpdatedAt:           s.UpdatedAt,
	}
}

func (cfg *apiConfig) handlerGetProviderSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := cfg.loadProviderSettings(r.Context())
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading provider settings", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, newAdminSettingsResponse(settings))
}

// handlerUpdateProviderSettings applies a partial update. An omitted API key
// keeps the stored one; an empty string clears it.
func (cfg *apiConfig) handlerUpdateProviderSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProviderBackend  *string `json:"provider_backend"`
		GoogleMapsAPIKey *string `json:"google_maps_api_key"`
		GoogleRegion     *string `json:"google_region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid settings payload", nil)
		return
	}

	current, err := cfg.loadProviderSettings(r.Context())
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error loading provider settings", err)
		return
	}
	if body.ProviderBackend != nil {
		current.ProviderBackend = *body.ProviderBackend
	}
	if body.GoogleMapsAPIKey != nil {
		current.GoogleMapsAPIKey = *body.GoogleMapsAPIKey
	}
	if body.GoogleRegion != nil {
		current.GoogleRegion = *body.GoogleRegion
	}

	updated, err := cfg.updateProviderSettings(r.Context(), current)
	if errors.Is(err, errInvalidProviderSettings) {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error saving provider settings", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, newAdminSettingsResponse(updated))
}

// @Summary      Usage report
// @Description  Top categories, providers and locations for the last N days and all time.
// @Tags         admin
// @Produce      json
// @Param        days  query     int  false  "Window in days (1-365, default 30)"
// @Success      200   {object}  Report
// @Failure      400   {object}  map[string]string
// @Router       /api/admin/reports [get]
func (cfg *apiConfig) handlerReports(w http.ResponseWriter, r *http.Request) {
	days := defaultReportDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxReportDays {
			cfg.respondWithError(w, http.StatusBadRequest, "days must be between 1 and 365", nil)
			return
		}
		days = n
	}
	report, err := cfg.buildReport(r.Context(), days, time.Now().UTC())
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Error building report", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, report)
}

// @Summary      Flush cache (development only)
// @Description  Drops every cached external search result.
// @Tags         development
// @Produce      json
// @Success      200  {object}  map[string]string "Example: `{\"status\":\"cache flushed\"}`"
// @Failure      500  {object}  map[string]string
// @Router       /dev/flush-cache [post]
func (cfg *apiConfig) handlerFlushCache(w http.ResponseWriter, r *http.Request) {
	cfg.logger.Debug("cache flush request received")
	if err := cfg.cache.Flush(r.Context()); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Failed to flush cache", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "cache flushed"})
}

// @Summary      Manually trigger scheduler jobs (development only)
// @Description  Runs the coordinate backfill now and restarts its interval.
// @Tags         development
// @Produce      json
// @Success      202  {object}  map[string]string "Example: `{\"status\":\"scheduler jobs triggered\"}`"
// @Router       /dev/run-scheduler-jobs [post]
func (s *Scheduler) handlerRunSchedulerJobs(w http.ResponseWriter, r *http.Request) {
	s.cfg.logger.Info("manual scheduler run triggered")
	s.tickers[0].Reset(s.cfg.backfillInterval)

	go func() {
		s.backfillJobs()
		s.cfg.logger.Info("manual scheduler run finished")
	}()

	s.cfg.respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "scheduler jobs triggered"})
}

type ConfigResponse struct {
	DevMode                bool   `json:"dev_mode"`
	DefaultCountry         string `json:"default_country"`
	DefaultSearchRadiusKm  int    `json:"default_search_radius_km"`
	AnalyticsConsentCookie string `json:"analytics_consent_cookie"`
	BackfillInterval       string `json:"backfill_interval"`
}

// @Summary      Get application configuration
// @Description  Provides client-side applications with the settings they need to build requests.
// @Tags         configuration
// @Produce      json
// @Success      200  {object}  ConfigResponse
// @Router       /api/config [get]
func (cfg *apiConfig) handlerConfig(w http.ResponseWriter, r *http.Request) {
	cfg.respondWithJSON(w, http.StatusOK, ConfigResponse{
		DevMode:                cfg.devMode,
		DefaultCountry:         cfg.defaultCountry,
		DefaultSearchRadiusKm:  cfg.defaultSearchRadiusKm,
		AnalyticsConsentCookie: analyticsConsentCookie,
		BackfillInterval:       cfg.backfillInterval.String(),
	})
}
