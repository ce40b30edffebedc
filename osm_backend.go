package main

import (
	"context"
	"log/slog"
	"strings"
)

const (
	osmCacheKeyPrefix      = "osm:v4:providers"
	osmUnresolvedKeyPrefix = "osm:v4:unresolved"
	// overpassResultLimit bounds "out center N" in the radius query.
	overpassResultLimit = 120
	osmMaxElements      = 50
	osmMaxResults       = 50
)

// OSMBackend finds providers with the free OpenStreetMap stack: the location
// is geocoded through Nominatim, then Overpass is asked for tagged objects
// around that point.
type OSMBackend struct {
	geocoder        Geocoder
	overpass        *overpassClient
	cache           Cache
	defaultRadiusKm int
	logger          *slog.Logger
}

func NewOSMBackend(geocoder Geocoder, overpass *overpassClient, cache Cache, defaultRadiusKm int, logger *slog.Logger) *OSMBackend {
	return &OSMBackend{
		geocoder:        geocoder,
		overpass:        overpass,
		cache:           cache,
		defaultRadiusKm: defaultRadiusKm,
		logger:          logger,
	}
}

func (b *OSMBackend) Name() string        { return backendOSM }
func (b *OSMBackend) SourceLabel() string { return "OpenStreetMap" }

func (b *OSMBackend) Search(ctx context.Context, params ExternalSearchParams) ([]ProviderResult, error) {
	groups := categoryToTagGroups(params.Category)
	if len(groups) == 0 {
		return []ProviderResult{}, nil
	}

	radiusKm := params.RadiusKm
	if radiusKm <= 0 {
		radiusKm = b.defaultRadiusKm
	}
	payload := params.cachePayload()
	payload["radius_km"] = radiusKm
	key := versionedCacheKey(osmCacheKeyPrefix, payload)

	if cached, ok := getCachedJSON[[]ProviderResult](ctx, b.cache, b.logger, osmCacheKeyPrefix, key); ok {
		return cached, nil
	}

	unresolvedKey := versionedCacheKey(osmUnresolvedKeyPrefix, map[string]any{
		"city":        payload["city"],
		"state":       payload["state"],
		"postal_code": payload["postal_code"],
		"country":     payload["country"],
	})
	if _, ok := getCachedJSON[bool](ctx, b.cache, b.logger, osmUnresolvedKeyPrefix, unresolvedKey); ok {
		return nil, newLocationUnresolvedError(params.Country)
	}

	geo, err := b.geocoder.Geocode(ctx, LocationQuery{
		City:       params.City,
		State:      params.State,
		PostalCode: params.PostalCode,
		Country:    params.Country,
	})
	if err != nil {
		return nil, err
	}
	if geo == nil {
		setCachedJSON(ctx, b.cache, b.logger, unresolvedKey, true, unresolvedLocationTTL)
		return nil, newLocationUnresolvedError(params.Country)
	}

	body, err := b.overpass.query(ctx, buildOverpassRadiusQuery(geo.Point, radiusKm*1000, groups))
	if err != nil {
		return nil, classifyUpstreamError(err)
	}

	categoryName := ""
	if params.Category != nil {
		categoryName = params.Category.Name
	}
	elements, err := decodeOverpassElements(body, osmMaxElements)
	if err != nil {
		return nil, classifyUpstreamError(err)
	}
	results := parseOverpassProviders(elements, params.QueryText, categoryName, params.Country)
	if len(results) > osmMaxResults {
		results = results[:osmMaxResults]
	}

	setCachedJSON(ctx, b.cache, b.logger, key, results, externalResultsTTL)
	return results, nil
}

// parseOverpassProviders turns tagged elements into results. Unnamed elements
// and, when queryText is set, elements whose name does not contain it are skipped.
func parseOverpassProviders(elements []overpassElement, queryText, categoryName, country string) []ProviderResult {
	needle := strings.ToLower(strings.TrimSpace(queryText))
	results := make([]ProviderResult, 0, len(elements))
	for _, el := range elements {
		if el.Tags == nil {
			continue
		}
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}

		res := ProviderResult{
			Name:       name,
			Category:   categoryName,
			Phone:      firstNonEmpty(el.Tags["phone"], el.Tags["contact:phone"]),
			Website:    firstNonEmpty(el.Tags["website"], el.Tags["contact:website"]),
			City:       strings.TrimSpace(el.Tags["addr:city"]),
			State:      firstNonEmpty(el.Tags["addr:province"], el.Tags["addr:state"]),
			PostalCode: strings.TrimSpace(el.Tags["addr:postcode"]),
			Country:    country,
			Source:     "OSM",
		}
		line1 := joinNonEmpty(" ", el.Tags["addr:housenumber"], el.Tags["addr:street"])
		res.Address = joinNonEmpty(", ", line1, res.City, res.State, res.PostalCode)
		if pt, ok := el.point(); ok {
			lat, lon := pt.Latitude, pt.Longitude
			res.Latitude, res.Longitude = &lat, &lon
		}
		results = append(results, res)
	}
	return results
}
