package main

import (
	"strings"

	"github.com/cor0nius/localservices/internal/textnorm"
)

// TagFilter is a single OSM key=value condition.
type TagFilter struct {
	Key   string
	Value string
}

// TagGroup is a conjunction of filters. A category maps to a disjunction of groups.
type TagGroup []TagFilter

var carRepairTagGroups = []TagGroup{
	{{"shop", "car_repair"}},
	{{"amenity", "car_repair"}},
	{{"craft", "car_repair"}},
	{{"service", "vehicle_repair"}},
}

var categoryTagTable = map[string][]TagGroup{
	"plumber":          {{{"craft", "plumber"}}},
	"electrician":      {{{"craft", "electrician"}}},
	"locksmith":        {{{"craft", "locksmith"}}},
	"mechanic":         carRepairTagGroups,
	"hvac":             {{{"craft", "hvac"}}},
	"handyman":         {{{"craft", "handyman"}}},
	"appliance-repair": {{{"craft", "appliance_repair"}}},
	"roofing":          {{{"craft", "roofer"}}},
	"landscaping":      {{{"craft", "gardener"}}, {{"craft", "landscaper"}}},
}

type categoryHeuristic[T any] struct {
	needles []string
	value   T
}

var categoryTagHeuristics = []categoryHeuristic[[]TagGroup]{
	{[]string{"plumb"}, categoryTagTable["plumber"]},
	{[]string{"electric"}, categoryTagTable["electrician"]},
	{[]string{"lock"}, categoryTagTable["locksmith"]},
	{[]string{"mechan", "auto"}, carRepairTagGroups},
	{[]string{"hvac"}, categoryTagTable["hvac"]},
	{[]string{"handy"}, categoryTagTable["handyman"]},
	{[]string{"appliance"}, categoryTagTable["appliance-repair"]},
}

// Google place types expected for a category; results must overlap when set.
var categoryPlaceTypeTable = map[string][]string{
	"plumber":     {"plumber"},
	"electrician": {"electrician"},
	"locksmith":   {"locksmith"},
	"mechanic":    {"car_repair"},
	"roofing":     {"roofing_contractor"},
	"moving":      {"moving_company"},
}

var categoryPlaceTypeHeuristics = []categoryHeuristic[[]string]{
	{[]string{"plumb"}, []string{"plumber"}},
	{[]string{"electric"}, []string{"electrician"}},
	{[]string{"lock"}, []string{"locksmith"}},
	{[]string{"mechan", "auto"}, []string{"car_repair"}},
}

// categoryKeys returns the lookup keys for a category: its slug, then the
// slug derived from its name.
func categoryKeys(c *Category) []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, 2)
	if slug := strings.ToLower(strings.TrimSpace(c.Slug)); slug != "" {
		keys = append(keys, slug)
	}
	if derived := textnorm.Slugify(c.Name); derived != "" {
		keys = append(keys, derived)
	}
	return keys
}

func lookupCategory[T any](c *Category, table map[string]T, heuristics []categoryHeuristic[T]) (T, bool) {
	var zero T
	keys := categoryKeys(c)
	for _, key := range keys {
		if v, ok := table[key]; ok {
			return v, true
		}
	}
	for _, key := range keys {
		for _, h := range heuristics {
			for _, needle := range h.needles {
				if strings.Contains(key, needle) {
					return h.value, true
				}
			}
		}
	}
	return zero, false
}

// categoryToTagGroups maps a category to OSM tag groups. An unknown category
// maps to nothing, which means external search returns nothing for it.
func categoryToTagGroups(c *Category) []TagGroup {
	groups, _ := lookupCategory(c, categoryTagTable, categoryTagHeuristics)
	return groups
}

func categoryToPlaceTypes(c *Category) []string {
	types, _ := lookupCategory(c, categoryPlaceTypeTable, categoryPlaceTypeHeuristics)
	return types
}
