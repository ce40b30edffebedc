package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	backendOSM    = "OSM"
	backendGoogle = "GOOGLE"
)

// ProviderBackend searches an external directory for providers of a category
// near a location. Results are never persisted.
type ProviderBackend interface {
	Name() string
	SourceLabel() string
	Search(ctx context.Context, params ExternalSearchParams) ([]ProviderResult, error)
}

type ExternalSearchParams struct {
	Category   *Category
	QueryText  string
	City       string
	State      string
	PostalCode string
	Country    string
	RadiusKm   int
}

// cachePayload is the normalized identity of a search. Backends add their own
// fields (radius, region) before hashing it into a cache key.
func (p ExternalSearchParams) cachePayload() map[string]any {
	category := "all"
	if p.Category != nil {
		category = firstNonEmpty(strings.ToLower(p.Category.Slug), strings.ToLower(p.Category.Name), "all")
	}
	country := strings.ToUpper(strings.TrimSpace(p.Country))
	return map[string]any{
		"category":    category,
		"query_text":  strings.ToLower(strings.TrimSpace(p.QueryText)),
		"city":        strings.ToLower(strings.TrimSpace(p.City)),
		"state":       strings.ToLower(strings.TrimSpace(p.State)),
		"postal_code": NormalizePostalCode(p.PostalCode, country),
		"country":     country,
	}
}

// backendFactory builds the backend chosen by the admin settings, falling
// back to the environment default.
type backendFactory struct {
	defaultBackend  string
	osm             *OSMBackend
	googleAPIKey    string
	googlePlacesURL string
	googleTransport http.RoundTripper
	cache           Cache
	logger          *slog.Logger
}

func (f *backendFactory) forSettings(settings ProviderSettings) (ProviderBackend, error) {
	id := strings.ToUpper(strings.TrimSpace(settings.ProviderBackend))
	if id == "" {
		id = strings.ToUpper(strings.TrimSpace(f.defaultBackend))
	}
	if id == "" {
		id = backendOSM
	}

	switch id {
	case backendOSM:
		return f.osm, nil
	case backendGoogle:
		key := firstNonEmpty(settings.GoogleMapsAPIKey, f.googleAPIKey)
		return NewGooglePlacesBackend(key, settings.GoogleRegion, f.googlePlacesURL, f.googleTransport, f.cache, f.logger), nil
	}
	return nil, newConfigurationError(fmt.Sprintf("Unknown PROVIDER_BACKEND=%q", id))
}

// providerBackend resolves the active backend at call time so admin changes
// apply without a restart. A settings read failure falls back to the
// environment default.
func (cfg *apiConfig) providerBackend(ctx context.Context) (ProviderBackend, error) {
	settings, err := cfg.loadProviderSettings(ctx)
	if err != nil {
		cfg.logger.Warn("could not read provider settings, using environment default", "error", err)
		settings = ProviderSettings{}
	}
	return cfg.backends.forSettings(settings)
}
