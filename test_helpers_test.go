package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

//go:embed testdata/*.json
var testData embed.FS

// --- Logging ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mocks ---

// mockQuerier is a safe mock for dbQuerier. It fails the test if a method
// without a configured func is called.
type mockQuerier struct {
	t  *testing.T
	mu sync.Mutex

	CountSearchEventsSinceFunc          func(ctx context.Context, createdAt time.Time) (int64, error)
	CountUniqueUsersSinceFunc           func(ctx context.Context, createdAt time.Time) (int64, error)
	CountUsageEventsSinceFunc           func(ctx context.Context, createdAt time.Time) (int64, error)
	CreateSearchEventFunc               func(ctx context.Context, arg database.CreateSearchEventParams) error
	CreateUsageEventFunc                func(ctx context.Context, arg database.CreateUsageEventParams) error
	GetActiveProviderFunc               func(ctx context.Context, id int64) (database.GetActiveProviderRow, error)
	GetOrCreateProviderSettingsFunc     func(ctx context.Context) (database.ProviderSetting, error)
	GetOrCreateUserProfileFunc          func(ctx context.Context, userID uuid.UUID) (database.UserProfile, error)
	ListActiveCategoriesFunc            func(ctx context.Context) ([]database.ServiceCategory, error)
	ListActiveProvidersFunc             func(ctx context.Context, arg database.ListActiveProvidersParams) ([]database.ListActiveProvidersRow, error)
	ListProvidersMissingCoordinatesFunc func(ctx context.Context, limit int32) ([]database.ListProvidersMissingCoordinatesRow, error)
	TopRequestedCategoriesSinceFunc     func(ctx context.Context, arg database.TopRequestedCategoriesSinceParams) ([]database.TopRequestedCategoriesSinceRow, error)
	TopSearchCitiesSinceFunc            func(ctx context.Context, arg database.TopSearchCitiesSinceParams) ([]database.TopSearchCitiesSinceRow, error)
	TopSearchPostalCodesSinceFunc       func(ctx context.Context, arg database.TopSearchPostalCodesSinceParams) ([]database.TopSearchPostalCodesSinceRow, error)
	TopSearchStatesSinceFunc            func(ctx context.Context, arg database.TopSearchStatesSinceParams) ([]database.TopSearchStatesSinceRow, error)
	TopUsedProvidersSinceFunc           func(ctx context.Context, arg database.TopUsedProvidersSinceParams) ([]database.TopUsedProvidersSinceRow, error)
	UpdateProviderCoordinatesFunc       func(ctx context.Context, arg database.UpdateProviderCoordinatesParams) error
	UpdateProviderSettingsFunc          func(ctx context.Context, arg database.UpdateProviderSettingsParams) (database.ProviderSetting, error)
	UpdateUserProfileFunc               func(ctx context.Context, arg database.UpdateUserProfileParams) (database.UserProfile, error)

	searchEvents          []database.CreateSearchEventParams
	usageEvents           []database.CreateUsageEventParams
	coordinateUpdates     []database.UpdateProviderCoordinatesParams
	listActiveProvidersIn []database.ListActiveProvidersParams
}

func (m *mockQuerier) fail(method string) {
	m.t.Fatalf("unexpected call to mockQuerier method: %s", method)
}

func (m *mockQuerier) CountSearchEventsSince(ctx context.Context, createdAt time.Time) (int64, error) {
	if m.CountSearchEventsSinceFunc != nil {
		return m.CountSearchEventsSinceFunc(ctx, createdAt)
	}
	m.fail("CountSearchEventsSince")
	return 0, nil
}

func (m *mockQuerier) CountUniqueUsersSince(ctx context.Context, createdAt time.Time) (int64, error) {
	if m.CountUniqueUsersSinceFunc != nil {
		return m.CountUniqueUsersSinceFunc(ctx, createdAt)
	}
	m.fail("CountUniqueUsersSince")
	return 0, nil
}

func (m *mockQuerier) CountUsageEventsSince(ctx context.Context, createdAt time.Time) (int64, error) {
	if m.CountUsageEventsSinceFunc != nil {
		return m.CountUsageEventsSinceFunc(ctx, createdAt)
	}
	m.fail("CountUsageEventsSince")
	return 0, nil
}

func (m *mockQuerier) CreateSearchEvent(ctx context.Context, arg database.CreateSearchEventParams) error {
	m.mu.Lock()
	m.searchEvents = append(m.searchEvents, arg)
	m.mu.Unlock()
	if m.CreateSearchEventFunc != nil {
		return m.CreateSearchEventFunc(ctx, arg)
	}
	m.fail("CreateSearchEvent")
	return nil
}

func (m *mockQuerier) CreateUsageEvent(ctx context.Context, arg database.CreateUsageEventParams) error {
	m.mu.Lock()
	m.usageEvents = append(m.usageEvents, arg)
	m.mu.Unlock()
	if m.CreateUsageEventFunc != nil {
		return m.CreateUsageEventFunc(ctx, arg)
	}
	m.fail("CreateUsageEvent")
	return nil
}

func (m *mockQuerier) GetActiveProvider(ctx context.Context, id int64) (database.GetActiveProviderRow, error) {
	if m.GetActiveProviderFunc != nil {
		return m.GetActiveProviderFunc(ctx, id)
	}
	m.fail("GetActiveProvider")
	return database.GetActiveProviderRow{}, nil
}

func (m *mockQuerier) GetOrCreateProviderSettings(ctx context.Context) (database.ProviderSetting, error) {
	if m.GetOrCreateProviderSettingsFunc != nil {
		return m.GetOrCreateProviderSettingsFunc(ctx)
	}
	m.fail("GetOrCreateProviderSettings")
	return database.ProviderSetting{}, nil
}

func (m *mockQuerier) GetOrCreateUserProfile(ctx context.Context, userID uuid.UUID) (database.UserProfile, error) {
	if m.GetOrCreateUserProfileFunc != nil {
		return m.GetOrCreateUserProfileFunc(ctx, userID)
	}
	m.fail("GetOrCreateUserProfile")
	return database.UserProfile{}, nil
}

func (m *mockQuerier) ListActiveCategories(ctx context.Context) ([]database.ServiceCategory, error) {
	if m.ListActiveCategoriesFunc != nil {
		return m.ListActiveCategoriesFunc(ctx)
	}
	m.fail("ListActiveCategories")
	return nil, nil
}

func (m *mockQuerier) ListActiveProviders(ctx context.Context, arg database.ListActiveProvidersParams) ([]database.ListActiveProvidersRow, error) {
	m.mu.Lock()
	m.listActiveProvidersIn = append(m.listActiveProvidersIn, arg)
	m.mu.Unlock()
	if m.ListActiveProvidersFunc != nil {
		return m.ListActiveProvidersFunc(ctx, arg)
	}
	m.fail("ListActiveProviders")
	return nil, nil
}

func (m *mockQuerier) ListProvidersMissingCoordinates(ctx context.Context, limit int32) ([]database.ListProvidersMissingCoordinatesRow, error) {
	if m.ListProvidersMissingCoordinatesFunc != nil {
		return m.ListProvidersMissingCoordinatesFunc(ctx, limit)
	}
	m.fail("ListProvidersMissingCoordinates")
	return nil, nil
}

func (m *mockQuerier) TopRequestedCategoriesSince(ctx context.Context, arg database.TopRequestedCategoriesSinceParams) ([]database.TopRequestedCategoriesSinceRow, error) {
	if m.TopRequestedCategoriesSinceFunc != nil {
		return m.TopRequestedCategoriesSinceFunc(ctx, arg)
	}
	m.fail("TopRequestedCategoriesSince")
	return nil, nil
}

func (m *mockQuerier) TopSearchCitiesSince(ctx context.Context, arg database.TopSearchCitiesSinceParams) ([]database.TopSearchCitiesSinceRow, error) {
	if m.TopSearchCitiesSinceFunc != nil {
		return m.TopSearchCitiesSinceFunc(ctx, arg)
	}
	m.fail("TopSearchCitiesSince")
	return nil, nil
}

func (m *mockQuerier) TopSearchPostalCodesSince(ctx context.Context, arg database.TopSearchPostalCodesSinceParams) ([]database.TopSearchPostalCodesSinceRow, error) {
	if m.TopSearchPostalCodesSinceFunc != nil {
		return m.TopSearchPostalCodesSinceFunc(ctx, arg)
	}
	m.fail("TopSearchPostalCodesSince")
	return nil, nil
}

func (m *mockQuerier) TopSearchStatesSince(ctx context.Context, arg database.TopSearchStatesSinceParams) ([]database.TopSearchStatesSinceRow, error) {
	if m.TopSearchStatesSinceFunc != nil {
		return m.TopSearchStatesSinceFunc(ctx, arg)
	}
	m.fail("TopSearchStatesSince")
	return nil, nil
}

func (m *mockQuerier) TopUsedProvidersSince(ctx context.Context, arg database.TopUsedProvidersSinceParams) ([]database.TopUsedProvidersSinceRow, error) {
	if m.TopUsedProvidersSinceFunc != nil {
		return m.TopUsedProvidersSinceFunc(ctx, arg)
	}
	m.fail("TopUsedProvidersSince")
	return nil, nil
}

func (m *mockQuerier) UpdateProviderCoordinates(ctx context.Context, arg database.UpdateProviderCoordinatesParams) error {
	m.mu.Lock()
	m.coordinateUpdates = append(m.coordinateUpdates, arg)
	m.mu.Unlock()
	if m.UpdateProviderCoordinatesFunc != nil {
		return m.UpdateProviderCoordinatesFunc(ctx, arg)
	}
	m.fail("UpdateProviderCoordinates")
	return nil
}

func (m *mockQuerier) UpdateProviderSettings(ctx context.Context, arg database.UpdateProviderSettingsParams) (database.ProviderSetting, error) {
	if m.UpdateProviderSettingsFunc != nil {
		return m.UpdateProviderSettingsFunc(ctx, arg)
	}
	m.fail("UpdateProviderSettings")
	return database.ProviderSetting{}, nil
}

func (m *mockQuerier) UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.UserProfile, error) {
	if m.UpdateUserProfileFunc != nil {
		return m.UpdateUserProfileFunc(ctx, arg)
	}
	m.fail("UpdateUserProfile")
	return database.UserProfile{}, nil
}

// memoryCache is an in-memory Cache that counts calls. getErr and setErr, when
// set, are returned instead of touching the map.
type memoryCache struct {
	mu       sync.Mutex
	items    map[string]string
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	flushErr error
	gets     int
	sets     int
	flushes  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	p, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = string(p)
	c.ttls[key] = expiration
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.items[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (c *memoryCache) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	if c.flushErr != nil {
		return c.flushErr
	}
	c.items = map[string]string{}
	c.ttls = map[string]time.Duration{}
	return nil
}

// mockGeocoder returns result/err and counts calls. GeocodeFunc overrides both.
type mockGeocoder struct {
	mu          sync.Mutex
	GeocodeFunc func(ctx context.Context, loc LocationQuery) (*GeocodeResult, error)
	result      *GeocodeResult
	err         error
	calls       []LocationQuery
}

func (g *mockGeocoder) Geocode(ctx context.Context, loc LocationQuery) (*GeocodeResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, loc)
	g.mu.Unlock()
	if g.GeocodeFunc != nil {
		return g.GeocodeFunc(ctx, loc)
	}
	return g.result, g.err
}

type mockReverseGeocoder struct {
	result ReverseGeocodeResult
	calls  int
}

func (g *mockReverseGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) ReverseGeocodeResult {
	g.calls++
	return g.result
}

// --- Test API config ---

type testAPIConfig struct {
	*apiConfig
	mockDB       *mockQuerier
	mockCache    *memoryCache
	mockGeocoder *mockGeocoder
	mockReverse  *mockReverseGeocoder
}

// newTestAPIConfig wires an apiConfig around mocks. The OSM backend talks to
// overpassURL, which tests that reach external search point at an httptest
// server via useOverpass.
func newTestAPIConfig(t *testing.T) *testAPIConfig {
	t.Helper()
	logger := newTestLogger()
	db := &mockQuerier{t: t}
	cache := newMemoryCache()
	geocoder := &mockGeocoder{}
	reverse := &mockReverseGeocoder{}

	cfg := &apiConfig{
		dbQueries:              db,
		cache:                  cache,
		geocoder:               geocoder,
		reverseGeocoder:        reverse,
		events:                 newDBEventSink(db),
		defaultProviderBackend: backendOSM,
		osmDefaultRadiusKm:     15,
		defaultSearchRadiusKm:  100,
		defaultCountry:         "CA",
		locationPolicy:         LocationPolicyPreferCityState,
		backfillInterval:       time.Hour,
		backfillBatchSize:      25,
		httpClient:             http.DefaultClient,
		port:                   "8080",
		logger:                 logger,
	}
	cfg.backends = &backendFactory{
		defaultBackend:  backendOSM,
		osm:             NewOSMBackend(geocoder, &overpassClient{upstream: newTestUpstreamClient("overpass", http.DefaultClient)}, cache, 15, logger),
		googleTransport: http.DefaultTransport,
		cache:           cache,
		logger:          logger,
	}

	return &testAPIConfig{
		apiConfig:    cfg,
		mockDB:       db,
		mockCache:    cache,
		mockGeocoder: geocoder,
		mockReverse:  reverse,
	}
}

// useOverpass points the OSM backend at url using client.
func (tc *testAPIConfig) useOverpass(url string, client *http.Client) {
	tc.backends.osm.overpass = &overpassClient{url: url, upstream: newTestUpstreamClient("overpass", client)}
}

// defaultSettings makes GetOrCreateProviderSettings return the seeded row.
func (tc *testAPIConfig) defaultSettings(backend string) {
	tc.mockDB.GetOrCreateProviderSettingsFunc = func(ctx context.Context) (database.ProviderSetting, error) {
		return database.ProviderSetting{ID: 1, ProviderBackend: backend, UpdatedAt: time.Now()}, nil
	}
}

func (tc *testAPIConfig) acceptEvents() {
	tc.mockDB.CreateSearchEventFunc = func(ctx context.Context, arg database.CreateSearchEventParams) error { return nil }
	tc.mockDB.CreateUsageEventFunc = func(ctx context.Context, arg database.CreateUsageEventParams) error { return nil }
}

// --- Fixtures ---

var (
	testCategoryPlumber     = database.ServiceCategory{ID: 1, Name: "Plumber", Slug: "plumber", IsActive: true, SortOrder: 10}
	testCategoryElectrician = database.ServiceCategory{ID: 2, Name: "Electrician", Slug: "electrician", IsActive: true, SortOrder: 20}
	testCategoryCleaning    = database.ServiceCategory{ID: 3, Name: "Cleaning", Slug: "cleaning", IsActive: true, SortOrder: 30}
)

func testCategories() []database.ServiceCategory {
	return []database.ServiceCategory{testCategoryPlumber, testCategoryElectrician, testCategoryCleaning}
}

func providerRow(id int64, cat database.ServiceCategory, name, city, state, postal string) database.ListActiveProvidersRow {
	return database.ListActiveProvidersRow{
		ID:           id,
		CategoryID:   cat.ID,
		Name:         name,
		Phone:        fmt.Sprintf("204-555-%04d", id),
		City:         city,
		State:        state,
		PostalCode:   postal,
		Country:      "CA",
		CategoryName: cat.Name,
		CategorySlug: cat.Slug,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
