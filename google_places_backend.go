package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

const (
	googleCacheKeyPrefix = "google:v1:providers"
	googleMaxItems       = 20
	googlePlacesTimeout  = 20 * time.Second
)

// Types that mark geocoding artifacts rather than businesses.
var googleBlockedTypes = map[string]bool{
	"locality":                    true,
	"postal_code":                 true,
	"route":                       true,
	"political":                   true,
	"administrative_area_level_1": true,
	"administrative_area_level_2": true,
	"country":                     true,
}

// GooglePlacesBackend is the paid alternative to OSM. Results come from the
// Places Text Search API and are only cached, never stored.
type GooglePlacesBackend struct {
	apiKey    string
	region    string
	baseURL   string
	transport http.RoundTripper
	cache     Cache
	logger    *slog.Logger
}

// NewGooglePlacesBackend takes the effective key and region bias; an empty key
// is reported on Search so the rest of the search can still run.
func NewGooglePlacesBackend(apiKey, region, baseURL string, transport http.RoundTripper, cache Cache, logger *slog.Logger) *GooglePlacesBackend {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &GooglePlacesBackend{
		apiKey:    strings.TrimSpace(apiKey),
		region:    strings.TrimSpace(region),
		baseURL:   baseURL,
		transport: transport,
		cache:     cache,
		logger:    logger,
	}
}

func (b *GooglePlacesBackend) Name() string        { return backendGoogle }
func (b *GooglePlacesBackend) SourceLabel() string { return "Google Places" }

func (b *GooglePlacesBackend) Search(ctx context.Context, params ExternalSearchParams) ([]ProviderResult, error) {
	if b.apiKey == "" {
		return nil, newConfigurationError("GOOGLE_MAPS_API_KEY is not set")
	}
	if params.Category == nil {
		return []ProviderResult{}, nil
	}

	query := googleTextQuery(params)
	payload := params.cachePayload()
	payload["region"] = b.regionFor(params.Country)
	key := versionedCacheKey(googleCacheKeyPrefix, payload)

	if cached, ok := getCachedJSON[[]ProviderResult](ctx, b.cache, b.logger, googleCacheKeyPrefix, key); ok {
		return cached, nil
	}

	client, err := b.newClient()
	if err != nil {
		return nil, newConfigurationError("Google Places client could not be created: " + err.Error())
	}

	resp, err := client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Region:   b.regionFor(params.Country),
		Language: "en",
	})
	if err != nil {
		upstreamRequestsTotal.WithLabelValues("google_places", "error").Inc()
		return nil, classifyPlacesError(err)
	}
	upstreamRequestsTotal.WithLabelValues("google_places", "ok").Inc()

	results := filterPlacesResults(resp.Results, params)
	setCachedJSON(ctx, b.cache, b.logger, key, results, externalResultsTTL)
	return results, nil
}

func (b *GooglePlacesBackend) newClient() (*maps.Client, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(b.apiKey),
		maps.WithHTTPClient(&http.Client{Transport: b.transport, Timeout: googlePlacesTimeout}),
	}
	if b.baseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(b.baseURL, "/")))
	}
	return maps.NewClient(opts...)
}

// regionFor picks the region bias: the admin override, else the search
// country, else "ca".
func (b *GooglePlacesBackend) regionFor(country string) string {
	region := strings.ToLower(firstNonEmpty(b.region, country))
	if len(region) != 2 {
		return "ca"
	}
	return region
}

func googleTextQuery(params ExternalSearchParams) string {
	location := joinNonEmpty(", ", params.PostalCode, params.City, params.State, params.Country)
	near := ""
	if location != "" {
		near = "near " + location
	}
	return joinNonEmpty(" ", params.Category.Name, params.QueryText, near)
}

func filterPlacesResults(items []maps.PlacesSearchResult, params ExternalSearchParams) []ProviderResult {
	if len(items) > googleMaxItems {
		items = items[:googleMaxItems]
	}
	expected := categoryToPlaceTypes(params.Category)

	results := make([]ProviderResult, 0, len(items))
	for _, item := range items {
		if !isServiceBusiness(item, expected) {
			continue
		}
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		lat, lng := item.Geometry.Location.Lat, item.Geometry.Location.Lng
		res := ProviderResult{
			Name:       name,
			Category:   params.Category.Name,
			Address:    strings.TrimSpace(item.FormattedAddress),
			City:       params.City,
			State:      params.State,
			PostalCode: params.PostalCode,
			Country:    params.Country,
			Source:     "Google",
		}
		if lat != 0 || lng != 0 {
			res.Latitude, res.Longitude = &lat, &lng
		}
		results = append(results, res)
	}
	return results
}

func isServiceBusiness(item maps.PlacesSearchResult, expected []string) bool {
	if status := strings.TrimSpace(item.BusinessStatus); status != "" && status != "OPERATIONAL" {
		return false
	}
	for _, t := range item.Types {
		if googleBlockedTypes[t] {
			return false
		}
	}
	if len(expected) == 0 {
		return true
	}
	for _, t := range item.Types {
		for _, want := range expected {
			if t == want {
				return true
			}
		}
	}
	return false
}

// classifyPlacesError maps a non-OK Places status ("maps: STATUS - message")
// to an upstream error and everything else through the common classifier.
func classifyPlacesError(err error) *ProviderError {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "maps: "); ok {
		rest = strings.TrimSuffix(strings.TrimSpace(rest), " -")
		return &ProviderError{Kind: ProviderErrorUpstream, Message: "Google Places error: " + rest, Err: err}
	}
	// the request URL carries the API key
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = "(redacted)"
	}
	return classifyUpstreamError(err)
}
