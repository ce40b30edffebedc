package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cor0nius/localservices/internal/textnorm"
)

// Keyword fragments mapped to the slug of the category they imply, checked in order.
var queryKeywordCategories = []struct {
	keyword string
	slug    string
}{
	{"plumb", "plumber"},
	{"electric", "electrician"},
	{"lock", "locksmith"},
	{"mechan", "mechanic"},
	{"auto", "mechanic"},
	{"hvac", "hvac"},
	{"heat", "hvac"},
	{"cool", "hvac"},
	{"handy", "handyman"},
	{"appliance", "appliance-repair"},
	{"roof", "roofing"},
	{"landscap", "landscaping"},
	{"clean", "cleaning"},
	{"move", "moving"},
}

func (cfg *apiConfig) listActiveCategories(ctx context.Context) ([]Category, error) {
	rows, err := cfg.dbQueries.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	categories := make([]Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, databaseCategoryToCategory(row))
	}
	return categories, nil
}

// findCategory resolves an explicit category given as an id or a slug.
// Unknown values resolve to nil.
func findCategory(categories []Category, raw string) *Category {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		for i := range categories {
			if categories[i].ID == id {
				return &categories[i]
			}
		}
		return nil
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Slug, raw) {
			return &categories[i]
		}
	}
	return nil
}

// inferCategory guesses a category from free text. consume reports that the
// text named the category itself and should no longer filter by name.
// categories must be in display order (sort_order, name).
func inferCategory(categories []Category, queryText string) (category *Category, consume bool) {
	q := textnorm.Key(queryText)
	if q == "" {
		return nil, false
	}

	for i := range categories {
		if textnorm.Key(categories[i].Name) == q {
			return &categories[i], true
		}
	}

	for _, kw := range queryKeywordCategories {
		if !strings.Contains(q, kw.keyword) {
			continue
		}
		byName := strings.ReplaceAll(kw.slug, "-", " ")
		for i := range categories {
			if strings.EqualFold(categories[i].Slug, kw.slug) || textnorm.Key(categories[i].Name) == byName {
				return &categories[i], true
			}
		}
	}

	var match *Category
	for i := range categories {
		if strings.Contains(textnorm.Key(categories[i].Name), q) {
			if match != nil {
				return nil, false
			}
			match = &categories[i]
		}
	}
	return match, false
}
