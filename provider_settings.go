package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cor0nius/localservices/internal/database"
)

var errInvalidProviderSettings = errors.New("invalid provider settings")

// loadProviderSettings returns the singleton settings row, creating it with
// defaults on first access.
func (cfg *apiConfig) loadProviderSettings(ctx context.Context) (ProviderSettings, error) {
	row, err := cfg.dbQueries.GetOrCreateProviderSettings(ctx)
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("could not load provider settings: %w", err)
	}
	return databaseProviderSettingToSettings(row), nil
}

// validateProviderSettings normalizes an admin update. The backend must be a
// known identifier and the region, when set, a two-letter code.
func validateProviderSettings(in ProviderSettings) (ProviderSettings, error) {
	out := ProviderSettings{
		ProviderBackend:  strings.ToUpper(strings.TrimSpace(in.ProviderBackend)),
		GoogleMapsAPIKey: strings.TrimSpace(in.GoogleMapsAPIKey),
		GoogleRegion:     strings.ToUpper(strings.TrimSpace(in.GoogleRegion)),
	}
	switch out.ProviderBackend {
	case backendOSM, backendGoogle:
	default:
		return ProviderSettings{}, fmt.Errorf("%w: provider_backend must be %s or %s", errInvalidProviderSettings, backendOSM, backendGoogle)
	}
	if out.GoogleRegion != "" && len(out.GoogleRegion) != 2 {
		return ProviderSettings{}, fmt.Errorf("%w: google_region must be a two-letter code", errInvalidProviderSettings)
	}
	return out, nil
}

func (cfg *apiConfig) updateProviderSettings(ctx context.Context, in ProviderSettings) (ProviderSettings, error) {
	valid, err := validateProviderSettings(in)
	if err != nil {
		return ProviderSettings{}, err
	}
	row, err := cfg.dbQueries.UpdateProviderSettings(ctx, database.UpdateProviderSettingsParams{
		ProviderBackend:  valid.ProviderBackend,
		GoogleMapsApiKey: valid.GoogleMapsAPIKey,
		GoogleRegion:     valid.GoogleRegion,
	})
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("could not update provider settings: %w", err)
	}
	cfg.logger.Info("provider settings updated", "backend", valid.ProviderBackend, "region", valid.GoogleRegion)
	return databaseProviderSettingToSettings(row), nil
}
