package main

import (
	"database/sql"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/google/uuid"
)

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatPtrToNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func int64ToNull(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func uuidToNull(id uuid.UUID) uuid.NullUUID {
	if id == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

// databaseCategoryToCategory converts a database.ServiceCategory to a Category.
func databaseCategoryToCategory(c database.ServiceCategory) Category {
	return Category{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		SortOrder: c.SortOrder,
	}
}

// databaseProviderRowToProvider converts a row of ListActiveProviders.
func databaseProviderRowToProvider(r database.ListActiveProvidersRow) Provider {
	return Provider{
		ID:            r.ID,
		Category:      Category{ID: r.CategoryID, Name: r.CategoryName, Slug: r.CategorySlug},
		Name:          r.Name,
		Description:   r.Description,
		Phone:         r.Phone,
		Email:         r.Email,
		Website:       r.Website,
		AddressLine1:  r.AddressLine1,
		AddressLine2:  r.AddressLine2,
		City:          r.City,
		State:         r.State,
		PostalCode:    r.PostalCode,
		Country:       r.Country,
		Latitude:      nullFloatPtr(r.Latitude),
		Longitude:     nullFloatPtr(r.Longitude),
		IsSuggested:   r.IsSuggested,
		SuggestedRank: r.SuggestedRank,
	}
}

// GetActiveProviderRow has the same columns as a list row.
func databaseActiveProviderToProvider(r database.GetActiveProviderRow) Provider {
	return databaseProviderRowToProvider(database.ListActiveProvidersRow(r))
}

func databaseProviderSettingToSettings(s database.ProviderSetting) ProviderSettings {
	return ProviderSettings{
		ProviderBackend:  s.ProviderBackend,
		GoogleMapsAPIKey: s.GoogleMapsApiKey,
		GoogleRegion:     s.GoogleRegion,
		UpdatedAt:        s.UpdatedAt,
	}
}

func databaseUserProfileToProfile(p database.UserProfile) Profile {
	return Profile{
		UserID:           p.UserID,
		City:             p.City,
		State:            p.State,
		PostalCode:       p.PostalCode,
		Country:          p.Country,
		Latitude:         nullFloatPtr(p.Latitude),
		Longitude:        nullFloatPtr(p.Longitude),
		DefaultRadiusKm:  p.DefaultRadiusKm,
		AllowGeolocation: p.AllowGeolocation,
		UpdatedAt:        p.UpdatedAt,
	}
}

func profileToUpdateUserProfileParams(p Profile) database.UpdateUserProfileParams {
	return database.UpdateUserProfileParams{
		UserID:           p.UserID,
		City:             p.City,
		State:            p.State,
		PostalCode:       p.PostalCode,
		Country:          p.Country,
		Latitude:         floatPtrToNull(p.Latitude),
		Longitude:        floatPtrToNull(p.Longitude),
		DefaultRadiusKm:  p.DefaultRadiusKm,
		AllowGeolocation: p.AllowGeolocation,
	}
}
