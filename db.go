package main

import (
	"context"
	"time"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// ConnectDB opens the PostgreSQL connection described by dbURL, verifies it
// with a ping and installs the sqlc queries as cfg.dbQueries.
func (cfg *apiConfig) ConnectDB() error {
	db, err := cfg.newDBClientFunc("postgres", cfg.dbURL)
	if err != nil {
		cfg.logger.Error("couldn't prepare connection to database", "error", err)
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		cfg.logger.Error("couldn't connect to database", "error", err)
		return err
	}
	cfg.dbQueries = database.New(db)
	cfg.logger.Info("connected to database")
	return nil
}

// dbQuerier is implemented by the sqlc-generated Queries struct and by the
// test mocks.
type dbQuerier interface {
	CountSearchEventsSince(ctx context.Context, createdAt time.Time) (int64, error)
	CountUniqueUsersSince(ctx context.Context, createdAt time.Time) (int64, error)
	CountUsageEventsSince(ctx context.Context, createdAt time.Time) (int64, error)
	CreateSearchEvent(ctx context.Context, arg database.CreateSearchEventParams) error
	CreateUsageEvent(ctx context.Context, arg database.CreateUsageEventParams) error
	GetActiveProvider(ctx context.Context, id int64) (database.GetActiveProviderRow, error)
	GetOrCreateProviderSettings(ctx context.Context) (database.ProviderSetting, error)
	GetOrCreateUserProfile(ctx context.Context, userID uuid.UUID) (database.UserProfile, error)
	ListActiveCategories(ctx context.Context) ([]database.ServiceCategory, error)
	ListActiveProviders(ctx context.Context, arg database.ListActiveProvidersParams) ([]database.ListActiveProvidersRow, error)
	ListProvidersMissingCoordinates(ctx context.Context, limit int32) ([]database.ListProvidersMissingCoordinatesRow, error)
	TopRequestedCategoriesSince(ctx context.Context, arg database.TopRequestedCategoriesSinceParams) ([]database.TopRequestedCategoriesSinceRow, error)
	TopSearchCitiesSince(ctx context.Context, arg database.TopSearchCitiesSinceParams) ([]database.TopSearchCitiesSinceRow, error)
	TopSearchPostalCodesSince(ctx context.Context, arg database.TopSearchPostalCodesSinceParams) ([]database.TopSearchPostalCodesSinceRow, error)
	TopSearchStatesSince(ctx context.Context, arg database.TopSearchStatesSinceParams) ([]database.TopSearchStatesSinceRow, error)
	TopUsedProvidersSince(ctx context.Context, arg database.TopUsedProvidersSinceParams) ([]database.TopUsedProvidersSinceRow, error)
	UpdateProviderCoordinates(ctx context.Context, arg database.UpdateProviderCoordinatesParams) error
	UpdateProviderSettings(ctx context.Context, arg database.UpdateProviderSettingsParams) (database.ProviderSetting, error)
	UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.UserProfile, error)
}
