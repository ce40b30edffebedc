package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cor0nius/localservices/internal/database"
)

const (
	defaultReportDays = 30
	maxReportDays     = 365
	reportTopN        = 10
)

type RankedCount struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
}

type ReportWindow struct {
	Since          time.Time     `json:"since"`
	SearchEvents   int64         `json:"search_events"`
	UsageEvents    int64         `json:"usage_events"`
	UniqueUsers    int64         `json:"unique_users"`
	TopCategories  []RankedCount `json:"top_categories"`
	TopProviders   []RankedCount `json:"top_providers"`
	TopStates      []RankedCount `json:"top_states"`
	TopCities      []RankedCount `json:"top_cities"`
	TopPostalCodes []RankedCount `json:"top_postal_codes"`
}

type Report struct {
	Days    int          `json:"days"`
	Window  ReportWindow `json:"window"`
	AllTime ReportWindow `json:"all_time"`
}

func (cfg *apiConfig) buildReport(ctx context.Context, days int, now time.Time) (Report, error) {
	window, err := cfg.buildReportWindow(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return Report{}, err
	}
	allTime, err := cfg.buildReportWindow(ctx, time.Unix(0, 0).UTC())
	if err != nil {
		return Report{}, err
	}
	return Report{Days: days, Window: window, AllTime: allTime}, nil
}

func (cfg *apiConfig) buildReportWindow(ctx context.Context, since time.Time) (ReportWindow, error) {
	w := ReportWindow{Since: since}
	q := cfg.dbQueries
	var err error

	if w.SearchEvents, err = q.CountSearchEventsSince(ctx, since); err != nil {
		return ReportWindow{}, fmt.Errorf("could not count search events: %w", err)
	}
	if w.UsageEvents, err = q.CountUsageEventsSince(ctx, since); err != nil {
		return ReportWindow{}, fmt.Errorf("could not count usage events: %w", err)
	}
	if w.UniqueUsers, err = q.CountUniqueUsersSince(ctx, since); err != nil {
		return ReportWindow{}, fmt.Errorf("could not count unique users: %w", err)
	}

	categories, err := q.TopRequestedCategoriesSince(ctx, database.TopRequestedCategoriesSinceParams{CreatedAt: since, Limit: reportTopN})
	if err != nil {
		return ReportWindow{}, fmt.Errorf("could not rank categories: %w", err)
	}
	w.TopCategories = make([]RankedCount, 0, len(categories))
	for _, r := range categories {
		w.TopCategories = append(w.TopCategories, RankedCount{Label: r.Name, Total: r.Total})
	}

	providers, err := q.TopUsedProvidersSince(ctx, database.TopUsedProvidersSinceParams{CreatedAt: since, Limit: reportTopN})
	if err != nil {
		return ReportWindow{}, fmt.Errorf("could not rank providers: %w", err)
	}
	w.TopProviders = make([]RankedCount, 0, len(providers))
	for _, r := range providers {
		w.TopProviders = append(w.TopProviders, RankedCount{Label: r.Name, Total: r.Total})
	}

	states, err := q.TopSearchStatesSince(ctx, database.TopSearchStatesSinceParams{CreatedAt: since, Limit: reportTopN})
	if err != nil {
		return ReportWindow{}, fmt.Errorf("could not rank states: %w", err)
	}
	w.TopStates = make([]RankedCount, 0, len(states))
	for _, r := range states {
		w.TopStates = append(w.TopStates, RankedCount{Label: r.State, Total: r.Total})
	}

	cities, err := q.TopSearchCitiesSince(ctx, database.TopSearchCitiesSinceParams{CreatedAt: since, Limit: reportTopN})
	if err != nil {
		return ReportWindow{}, fmt.Errorf("could not rank cities: %w", err)
	}
	w.TopCities = make([]RankedCount, 0, len(cities))
	for _, r := range cities {
		w.TopCities = append(w.TopCities, RankedCount{Label: r.City + ", " + r.State, Total: r.Total})
	}

	postal, err := q.TopSearchPostalCodesSince(ctx, database.TopSearchPostalCodesSinceParams{CreatedAt: since, Limit: reportTopN})
	if err != nil {
		return ReportWindow{}, fmt.Errorf("could not rank postal codes: %w", err)
	}
	w.TopPostalCodes = make([]RankedCount, 0, len(postal))
	for _, r := range postal {
		w.TopPostalCodes = append(w.TopPostalCodes, RankedCount{Label: r.PostalCode, Total: r.Total})
	}

	return w, nil
}
