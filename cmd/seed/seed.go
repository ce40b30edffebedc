package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/cor0nius/localservices/internal/textnorm"
)

// seedStore is the subset of the generated queries the seeder needs.
type seedStore interface {
	UpsertCategory(ctx context.Context, arg database.UpsertCategoryParams) (database.ServiceCategory, error)
	GetOrCreateProviderSettings(ctx context.Context) (database.ProviderSetting, error)
	CreateProviderIfMissing(ctx context.Context, arg database.CreateProviderIfMissingParams) (int64, error)
}

type seedCategory struct {
	Name      string
	SortOrder int32
}

var starterCategories = []seedCategory{
	{"Plumber", 10},
	{"Electrician", 20},
	{"Locksmith", 30},
	{"Mechanic", 40},
	{"HVAC", 50},
	{"Handyman", 60},
	{"Appliance Repair", 70},
	{"Roofing", 80},
	{"Landscaping", 90},
	{"Cleaning", 100},
	{"Moving", 110},
}

type demoProvider struct {
	Category      string
	Name          string
	Phone         string
	Website       string
	City          string
	State         string
	PostalCode    string
	Country       string
	IsSuggested   bool
	SuggestedRank int32
}

var demoProviders = []demoProvider{
	{"Plumber", "River City Plumbing", "555-0100", "", "Springfield", "IL", "62701", "US", true, 10},
	{"Electrician", "BrightWire Electric", "555-0111", "", "Springfield", "IL", "62701", "US", false, 100},
	{"Locksmith", "KeyGuard Locksmith", "555-0122", "", "Springfield", "IL", "62701", "US", true, 20},
	{"Plumber", "Southeast MB Plumbing", "555-0200", "https://example.com/", "Steinbach", "MB", "R0A 0A0", "CA", true, 15},
	{"Electrician", "Southeast MB Electric", "555-0201", "https://example.com/", "Steinbach", "MB", "R0A 0A0", "CA", false, 110},
	{"HVAC", "Prairie HVAC Co.", "555-0300", "https://example.com/", "Winnipeg", "MB", "R3C 0V8", "CA", true, 12},
	{"Handyman", "Peg City Handyman", "555-0301", "https://example.com/", "Winnipeg", "MB", "R3C 0V8", "CA", false, 120},
	{"Appliance Repair", "North End Appliance Repair", "555-0310", "https://example.com/", "Winnipeg", "MB", "R2X 0M1", "CA", true, 18},
	{"Roofing", "Red River Roofing", "555-0320", "https://example.com/", "Winnipeg", "MB", "R3T 2N2", "CA", false, 130},
	{"Landscaping", "Prairie Lawn & Snow", "555-0330", "https://example.com/", "Winnipeg", "MB", "R3Y 0A1", "CA", false, 140},
	{"Cleaning", "Downtown Cleaning Co.", "555-0340", "https://example.com/", "Winnipeg", "MB", "R3B 1A1", "CA", false, 150},
	{"Moving", "Manitoba Movers", "555-0350", "https://example.com/", "Winnipeg", "MB", "R2C 0A1", "CA", true, 14},
}

type seedSummary struct {
	Categories       int
	ProvidersCreated int64
	ProvidersSkipped int
	Backend          string
}

type seeder struct {
	store  seedStore
	logger *slog.Logger
}

// run is safe to repeat: categories are upserted by name and demo providers
// are only inserted when their (category, name) pair is new.
func (s *seeder) run(ctx context.Context, withDemo bool) (seedSummary, error) {
	var summary seedSummary

	settings, err := s.store.GetOrCreateProviderSettings(ctx)
	if err != nil {
		return summary, fmt.Errorf("could not ensure provider settings: %w", err)
	}
	summary.Backend = settings.ProviderBackend

	ids := make(map[string]int64, len(starterCategories))
	for _, c := range starterCategories {
		row, err := s.store.UpsertCategory(ctx, database.UpsertCategoryParams{
			Name:      c.Name,
			Slug:      textnorm.Slugify(c.Name),
			IsActive:  true,
			SortOrder: c.SortOrder,
		})
		if err != nil {
			return summary, fmt.Errorf("could not upsert category %q: %w", c.Name, err)
		}
		ids[c.Name] = row.ID
		summary.Categories++
	}
	s.logger.Info("categories seeded", "count", summary.Categories)

	if !withDemo {
		return summary, nil
	}

	for _, p := range demoProviders {
		categoryID, ok := ids[p.Category]
		if !ok {
			return summary, fmt.Errorf("demo provider %q references unknown category %q", p.Name, p.Category)
		}
		n, err := s.store.CreateProviderIfMissing(ctx, database.CreateProviderIfMissingParams{
			CategoryID:    categoryID,
			Name:          p.Name,
			Phone:         p.Phone,
			Website:       p.Website,
			City:          p.City,
			State:         p.State,
			PostalCode:    p.PostalCode,
			Country:       strings.ToUpper(p.Country),
			IsSuggested:   p.IsSuggested,
			SuggestedRank: p.SuggestedRank,
		})
		if err != nil {
			return summary, fmt.Errorf("could not create demo provider %q: %w", p.Name, err)
		}
		if n == 0 {
			summary.ProvidersSkipped++
			continue
		}
		summary.ProvidersCreated += n
	}
	s.logger.Info("demo providers seeded", "created", summary.ProvidersCreated, "existing", summary.ProvidersSkipped)
	return summary, nil
}
