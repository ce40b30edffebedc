package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/cor0nius/localservices/internal/textnorm"
)

const (
	candidatePoolSize = 500
	suggestedLimit    = 6
	regularLimit      = 30
	liveRegularLimit  = 12
)

// LocationMatchPolicy decides which textual location signal filters local
// providers when both a postal code and a city+state are known.
type LocationMatchPolicy string

const (
	// LocationPolicyPreferCityState matches a device-derived location on
	// city+state first and falls back to the postal code only when that
	// yields nothing. Typed locations match on postal code first.
	LocationPolicyPreferCityState LocationMatchPolicy = "prefer_city_state"
	// LocationPolicyPostalFirst always matches on postal code when one is set.
	LocationPolicyPostalFirst LocationMatchPolicy = "postal_first"
)

func parseLocationMatchPolicy(s string) (LocationMatchPolicy, error) {
	switch LocationMatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LocationPolicyPreferCityState:
		return LocationPolicyPreferCityState, nil
	case LocationPolicyPostalFirst:
		return LocationPolicyPostalFirst, nil
	}
	return "", fmt.Errorf("unknown location match policy %q", s)
}

type localSearchParams struct {
	Category     *Category
	QueryText    string
	Location     LocationQuery
	RegularLimit int
}

type localResults struct {
	Suggested []Provider
	Regular   []Provider
}

// searchLocalProviders asks the database for the providers matching the
// category, text and location, then ranks them in memory. candidatePoolSize
// bounds the already filtered candidates handed to the distance sort. When
// a device location matches nothing on city+state, the postal code gets its
// own query.
func (cfg *apiConfig) searchLocalProviders(ctx context.Context, params localSearchParams) (localResults, error) {
	var categoryID int64
	if params.Category != nil {
		categoryID = params.Category.ID
	}

	var filtered []Provider
	for _, where := range locationAttempts(params.Location, cfg.locationPolicy) {
		arg := database.ListActiveProvidersParams{
			CategoryID:   int64ToNull(categoryID),
			QueryPattern: stringToNull(containsPattern(params.QueryText)),
			PoolLimit:    candidatePoolSize,
		}
		applyLocationFilter(&arg, where)

		rows, err := cfg.dbQueries.ListActiveProviders(ctx, arg)
		if err != nil {
			return localResults{}, fmt.Errorf("could not list providers: %w", err)
		}
		providers := make([]Provider, 0, len(rows))
		for _, row := range rows {
			providers = append(providers, databaseProviderRowToProvider(row))
		}

		filtered = filterProviders(providers, params.Category, params.QueryText, where, cfg.locationPolicy)
		if len(filtered) > 0 {
			break
		}
	}

	limit := params.RegularLimit
	if limit <= 0 {
		limit = regularLimit
	}
	return rankProviders(filtered, params.Location, suggestedLimit, limit), nil
}

// locationAttempts lists the single-signal locations to query, in order.
// Each entry carries either a postal code or a city+state, never both.
func locationAttempts(loc LocationQuery, policy LocationMatchPolicy) []LocationQuery {
	postal := compactPostalCode(loc.PostalCode)
	cityState := LocationQuery{City: strings.TrimSpace(loc.City), State: strings.TrimSpace(loc.State)}
	hasCityState := cityState.City != "" && cityState.State != ""

	if policy == LocationPolicyPreferCityState && loc.FromDevice && hasCityState {
		if postal == "" {
			return []LocationQuery{cityState}
		}
		return []LocationQuery{cityState, {PostalCode: postal}}
	}
	switch {
	case postal != "":
		return []LocationQuery{{PostalCode: postal}}
	case hasCityState:
		return []LocationQuery{cityState}
	}
	return []LocationQuery{{}}
}

func applyLocationFilter(arg *database.ListActiveProvidersParams, where LocationQuery) {
	if where.PostalCode != "" {
		arg.PostalCompact = stringToNull(compactPostalCode(where.PostalCode))
		return
	}
	if where.City == "" || where.State == "" {
		return
	}
	arg.City = stringToNull(where.City)
	arg.StateCode = stringToNull(NormalizeProvince(where.State))
	arg.StateName = stringToNull(firstNonEmpty(ProvinceFullName(where.State), where.State))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE substring pattern.
func containsPattern(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(text) + "%"
}

// filterProviders applies, in order: category, quality gate, text, location.
func filterProviders(providers []Provider, category *Category, queryText string, loc LocationQuery, policy LocationMatchPolicy) []Provider {
	needle := textnorm.Key(queryText)
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if category != nil && p.Category.ID != category.ID {
			continue
		}
		if !passesQualityGate(p) {
			continue
		}
		if needle != "" && !matchesText(p, needle) {
			continue
		}
		kept = append(kept, p)
	}
	return filterByLocation(kept, loc, policy)
}

// passesQualityGate drops listings nobody can reach.
func passesQualityGate(p Provider) bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Phone) != ""
}

func matchesText(p Provider, needle string) bool {
	return strings.Contains(textnorm.Key(p.Name), needle) ||
		strings.Contains(textnorm.Key(p.Description), needle) ||
		strings.Contains(textnorm.Key(p.Category.Name), needle)
}

func filterByLocation(providers []Provider, loc LocationQuery, policy LocationMatchPolicy) []Provider {
	postal := compactPostalCode(loc.PostalCode)
	hasCityState := strings.TrimSpace(loc.City) != "" && strings.TrimSpace(loc.State) != ""

	if policy == LocationPolicyPreferCityState && loc.FromDevice && hasCityState {
		if byCity := filterByCityState(providers, loc.City, loc.State); len(byCity) > 0 || postal == "" {
			return byCity
		}
		return filterByPostal(providers, postal)
	}

	switch {
	case postal != "":
		return filterByPostal(providers, postal)
	case hasCityState:
		return filterByCityState(providers, loc.City, loc.State)
	}
	return providers
}

func filterByPostal(providers []Provider, compact string) []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if compactPostalCode(p.PostalCode) == compact {
			out = append(out, p)
		}
	}
	return out
}

func filterByCityState(providers []Provider, city, state string) []Provider {
	cityKey := textnorm.Key(city)
	stateKey := provinceKey(state)
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if textnorm.Key(p.City) == cityKey && provinceKey(p.State) == stateKey {
			out = append(out, p)
		}
	}
	return out
}

// provinceKey lets "MB", "mb" and "Manitoba" compare equal.
func provinceKey(state string) string {
	return textnorm.Key(NormalizeProvince(state))
}

// rankProviders partitions providers into suggested and regular lists, sorts
// each and truncates them. With a known user point every provider with
// coordinates gets DistanceKm, and providers without coordinates sort after
// those with them.
func rankProviders(providers []Provider, loc LocationQuery, maxSuggested, maxRegular int) localResults {
	origin, hasOrigin := loc.point()

	var suggested, regular []Provider
	for _, p := range providers {
		if hasOrigin && p.Latitude != nil && p.Longitude != nil {
			d := haversineKm(origin, GeoPoint{Latitude: *p.Latitude, Longitude: *p.Longitude})
			p.DistanceKm = &d
		}
		if p.IsSuggested {
			suggested = append(suggested, p)
		} else {
			regular = append(regular, p)
		}
	}

	byDistance := func(a, b Provider) int {
		if !hasOrigin {
			return 0
		}
		switch {
		case a.DistanceKm != nil && b.DistanceKm == nil:
			return -1
		case a.DistanceKm == nil && b.DistanceKm != nil:
			return 1
		case a.DistanceKm != nil && b.DistanceKm != nil:
			return cmp.Compare(*a.DistanceKm, *b.DistanceKm)
		}
		return 0
	}
	byName := func(a, b Provider) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}

	slices.SortStableFunc(suggested, func(a, b Provider) int {
		return cmp.Or(cmp.Compare(a.SuggestedRank, b.SuggestedRank), byDistance(a, b), byName(a, b))
	})
	slices.SortStableFunc(regular, func(a, b Provider) int {
		return cmp.Or(byDistance(a, b), byName(a, b))
	})

	return localResults{
		Suggested: truncate(suggested, maxSuggested),
		Regular:   truncate(regular, maxRegular),
	}
}

func truncate[T any](items []T, n int) []T {
	if items == nil {
		return []T{}
	}
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
