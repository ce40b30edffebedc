package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var providerColumns = []string{
	"id", "category_id", "name", "description", "phone", "email", "website",
	"address_line1", "address_line2", "city", "state", "postal_code", "country",
	"latitude", "longitude", "is_suggested", "suggested_rank",
	"category_name", "category_slug",
}

func newMockQueries(t *testing.T) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestListActiveProviders(t *testing.T) {
	q, mock := newMockQueries(t)

	rows := sqlmock.NewRows(providerColumns).
		AddRow(1, 3, "Prairie HVAC Co.", "", "555-0300", "", "https://example.com/",
			"", "", "Winnipeg", "MB", "R3C 0V8", "CA", 49.8951, -97.1384, true, 12, "HVAC", "hvac").
		AddRow(2, 3, "No Coords HVAC", "", "555-0301", "", "",
			"", "", "Winnipeg", "MB", "R3C 0V8", "CA", nil, nil, false, 100, "HVAC", "hvac")

	mock.ExpectQuery(regexp.QuoteMeta("REPLACE(UPPER(p.postal_code), ' ', '') = $2")).
		WithArgs(int64(3), "R3C0V8", nil, nil, nil, "%hvac%", int64(500)).
		WillReturnRows(rows)

	got, err := q.ListActiveProviders(context.Background(), ListActiveProvidersParams{
		CategoryID:    sql.NullInt64{Int64: 3, Valid: true},
		PostalCompact: sql.NullString{String: "R3C0V8", Valid: true},
		QueryPattern:  sql.NullString{String: "%hvac%", Valid: true},
		PoolLimit:     500,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Prairie HVAC Co.", got[0].Name)
	assert.True(t, got[0].Latitude.Valid)
	assert.InDelta(t, 49.8951, got[0].Latitude.Float64, 1e-9)
	assert.True(t, got[0].IsSuggested)
	assert.Equal(t, "hvac", got[0].CategorySlug)

	assert.False(t, got[1].Latitude.Valid)
	assert.False(t, got[1].Longitude.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveProvidersWithoutCategory(t *testing.T) {
	q, mock := newMockQueries(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM service_providers p")).
		WithArgs(nil, nil, nil, nil, nil, nil, int64(50)).
		WillReturnRows(sqlmock.NewRows(providerColumns))

	got, err := q.ListActiveProviders(context.Background(), ListActiveProvidersParams{PoolLimit: 50})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveProvidersByCityState(t *testing.T) {
	q, mock := newMockQueries(t)

	mock.ExpectQuery(regexp.QuoteMeta("btrim(p.phone) <> ''")).
		WithArgs(nil, nil, "Springfield", "IL", "IL", nil, int64(500)).
		WillReturnRows(sqlmock.NewRows(providerColumns).
			AddRow(7, 1, "River City Plumbing", "", "555-0100", "", "",
				"", "", "Springfield", "IL", "62701", "US", nil, nil, true, 10, "Plumber", "plumber"))

	got, err := q.ListActiveProviders(context.Background(), ListActiveProvidersParams{
		City:      sql.NullString{String: "Springfield", Valid: true},
		StateCode: sql.NullString{String: "IL", Valid: true},
		StateName: sql.NullString{String: "IL", Valid: true},
		PoolLimit: 500,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "River City Plumbing", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateProviderSettings(t *testing.T) {
	q, mock := newMockQueries(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO provider_settings (id)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_backend", "google_maps_api_key", "google_region", "updated_at"}).
			AddRow(1, "OSM", "", "CA", now))

	got, err := q.GetOrCreateProviderSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.ID)
	assert.Equal(t, "OSM", got.ProviderBackend)
	assert.Equal(t, "CA", got.GoogleRegion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProviderIfMissing(t *testing.T) {
	q, mock := newMockQueries(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO service_providers")).
		WithArgs(int64(1), "River City Plumbing", "555-0100", "", "Springfield", "IL", "62701", "US", true, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := q.CreateProviderIfMissing(context.Background(), CreateProviderIfMissingParams{
		CategoryID:    1,
		Name:          "River City Plumbing",
		Phone:         "555-0100",
		City:          "Springfield",
		State:         "IL",
		PostalCode:    "62701",
		Country:       "US",
		IsSuggested:   true,
		SuggestedRank: 10,
	})
	require.NoError(t, err)
	assert.Zero(t, inserted, "existing provider must not be inserted again")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSearchEvent(t *testing.T) {
	q, mock := newMockQueries(t)
	id := uuid.New()
	userID := uuid.New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO search_events")).
		WithArgs(id.String(), userID.String(), int64(7), "leak", "Winnipeg", "MB", "R3C 0V8", nil, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := q.CreateSearchEvent(context.Background(), CreateSearchEventParams{
		ID:         id,
		UserID:     uuid.NullUUID{UUID: userID, Valid: true},
		CategoryID: sql.NullInt64{Int64: 7, Valid: true},
		QueryText:  "leak",
		City:       "Winnipeg",
		State:      "MB",
		PostalCode: "R3C 0V8",
		CreatedAt:  now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopSearchCitiesSince(t *testing.T) {
	q, mock := newMockQueries(t)
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY city, state")).
		WithArgs(since, int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"city", "state", "total"}).
			AddRow("Winnipeg", "MB", 12).
			AddRow("Steinbach", "MB", 3))

	got, err := q.TopSearchCitiesSince(context.Background(), TopSearchCitiesSinceParams{CreatedAt: since, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []TopSearchCitiesSinceRow{
		{City: "Winnipeg", State: "MB", Total: 12},
		{City: "Steinbach", State: "MB", Total: 3},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
