package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	defaultNominatimURL        = "https://nominatim.openstreetmap.org/search"
	defaultNominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"
	defaultOverpassURL         = "https://overpass-api.de/api/interpreter"
	defaultUserAgent           = "localservices-dev"
	getRetryDelay              = 600 * time.Millisecond
	postRetryDelay             = 800 * time.Millisecond
)

type apiConfig struct {
	dbURL           string
	redisURL        string
	newDBClientFunc func(driverName, dataSourceName string) (*sql.DB, error)
	dbQueries       dbQuerier
	cache           Cache

	geocoder        Geocoder
	reverseGeocoder ReverseGeocoder
	backends        *backendFactory
	events          EventSink

	defaultProviderBackend string
	nominatimURL           string
	nominatimReverseURL    string
	overpassURL            string
	osmUserAgent           string
	osmContactEmail        string
	osmDefaultRadiusKm     int
	nominatimRatePerSec    float64
	googleMapsAPIKey       string
	googlePlacesURL        string
	defaultSearchRadiusKm  int
	defaultCountry         string
	locationPolicy         LocationMatchPolicy
	reverseCacheSize       int
	reverseCacheTTL        time.Duration
	backfillInterval       time.Duration
	backfillBatchSize      int
	adminToken             string

	httpClient *http.Client
	port       string
	devMode    bool
	logger     *slog.Logger
}

func newLogger(out io.Writer, devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(out, nil))
}

// getRequiredEnv retrieves an environment variable by key and fails when it is unset or empty.
func getRequiredEnv(key string) (string, error) {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("environment variable %s must be set", key)
	}
	return val, nil
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	logger.Debug("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok || valStr == "" {
		logger.Debug("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func getEnvAsFloat(key string, fallback float64, logger *slog.Logger) float64 {
	valStr, ok := os.LookupEnv(key)
	if !ok || valStr == "" {
		return fallback
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		logger.Warn("invalid number for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

// NewAPIConfig reads the configuration from the environment (and a .env file
// when present). It does not connect to anything.
func NewAPIConfig(logOutput io.Writer) (*apiConfig, error) {
	_ = godotenv.Load()

	devMode, err := strconv.ParseBool(os.Getenv("DEV_MODE"))
	if err != nil {
		devMode = false
	}
	logger := newLogger(logOutput, devMode)

	dbURL, err := getRequiredEnv("DB_URL")
	if err != nil {
		return nil, err
	}
	redisURL, err := getRequiredEnv("REDIS_URL")
	if err != nil {
		return nil, err
	}

	policy, err := parseLocationMatchPolicy(os.Getenv("LOCATION_MATCH_POLICY"))
	if err != nil {
		return nil, err
	}

	country := strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_COUNTRY", "CA", logger)))
	if len(country) != 2 {
		return nil, fmt.Errorf("DEFAULT_COUNTRY must be a two-letter code, got %q", country)
	}

	cfg := &apiConfig{
		dbURL:                  dbURL,
		redisURL:               redisURL,
		newDBClientFunc:        sql.Open,
		defaultProviderBackend: strings.ToUpper(getEnv("PROVIDER_BACKEND", backendOSM, logger)),
		nominatimURL:           getEnv("OSM_NOMINATIM_URL", defaultNominatimURL, logger),
		nominatimReverseURL:    getEnv("OSM_NOMINATIM_REVERSE_URL", defaultNominatimReverseURL, logger),
		overpassURL:            getEnv("OSM_OVERPASS_URL", defaultOverpassURL, logger),
		osmUserAgent:           getEnv("OSM_USER_AGENT", defaultUserAgent, logger),
		osmContactEmail:        os.Getenv("OSM_CONTACT_EMAIL"),
		osmDefaultRadiusKm:     getEnvAsInt("OSM_DEFAULT_RADIUS_KM", 15, logger),
		nominatimRatePerSec:    getEnvAsFloat("NOMINATIM_RATE_PER_SEC", 1, logger),
		googleMapsAPIKey:       os.Getenv("GOOGLE_MAPS_API_KEY"),
		googlePlacesURL:        os.Getenv("GOOGLE_PLACES_URL"),
		defaultSearchRadiusKm:  getEnvAsInt("DEFAULT_SEARCH_RADIUS_KM", 100, logger),
		defaultCountry:         country,
		locationPolicy:         policy,
		reverseCacheSize:       getEnvAsInt("REVERSE_GEOCODE_CACHE_SIZE", 1024, logger),
		reverseCacheTTL:        time.Duration(getEnvAsInt("REVERSE_GEOCODE_CACHE_TTL_MIN", 1440, logger)) * time.Minute,
		backfillInterval:       time.Duration(getEnvAsInt("BACKFILL_INTERVAL_MIN", 60, logger)) * time.Minute,
		backfillBatchSize:      getEnvAsInt("BACKFILL_BATCH_SIZE", 25, logger),
		adminToken:             os.Getenv("ADMIN_TOKEN"),
		httpClient:             &http.Client{Timeout: 45 * time.Second, Transport: &metricsTransport{wrapped: http.DefaultTransport}},
		port:                   getEnv("PORT", "8080", logger),
		devMode:                devMode,
		logger:                 logger,
	}
	if cfg.reverseCacheSize <= 0 {
		cfg.reverseCacheSize = 1024
	}
	if cfg.backfillInterval <= 0 {
		cfg.backfillInterval = time.Hour
	}

	return cfg, nil
}

// ConnectCache connects to Redis and installs the cache.
func (cfg *apiConfig) ConnectCache() error {
	opt, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		cfg.logger.Error("could not parse Redis URL", "error", err)
		return err
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		cfg.logger.Error("couldn't connect to cache", "error", err)
		return err
	}
	cfg.cache = NewRedisCache(client)
	cfg.logger.Info("connected to cache")
	return nil
}

// wireServices builds the geocoders, provider backends and event sink on top
// of the connected database and cache.
func (cfg *apiConfig) wireServices() {
	var nominatimLimiter *rate.Limiter
	if cfg.nominatimRatePerSec > 0 {
		nominatimLimiter = rate.NewLimiter(rate.Limit(cfg.nominatimRatePerSec), 1)
	}

	nominatim := &upstreamClient{
		service:     "nominatim",
		httpClient:  cfg.httpClient,
		userAgent:   cfg.osmUserAgent,
		limiter:     nominatimLimiter,
		retryDelay:  getRetryDelay,
		maxAttempts: 2,
		logger:      cfg.logger,
	}
	reverse := &upstreamClient{
		service:     "nominatim_reverse",
		httpClient:  cfg.httpClient,
		userAgent:   cfg.osmUserAgent,
		limiter:     nominatimLimiter,
		maxAttempts: 1,
		logger:      cfg.logger,
	}
	overpass := &overpassClient{
		url: cfg.overpassURL,
		upstream: &upstreamClient{
			service:     "overpass",
			httpClient:  cfg.httpClient,
			userAgent:   cfg.osmUserAgent,
			retryDelay:  postRetryDelay,
			maxAttempts: 2,
			logger:      cfg.logger,
		},
	}

	geocoder := NewNominatimGeocoder(cfg.nominatimURL, cfg.osmContactEmail, nominatim, overpass, cfg.logger)
	cfg.geocoder = geocoder
	cfg.reverseGeocoder = NewNominatimReverseGeocoder(cfg.nominatimReverseURL, cfg.osmContactEmail, reverse, cfg.reverseCacheSize, cfg.reverseCacheTTL, cfg.logger)
	cfg.backends = &backendFactory{
		defaultBackend:  cfg.defaultProviderBackend,
		osm:             NewOSMBackend(geocoder, overpass, cfg.cache, cfg.osmDefaultRadiusKm, cfg.logger),
		googleAPIKey:    cfg.googleMapsAPIKey,
		googlePlacesURL: cfg.googlePlacesURL,
		googleTransport: &metricsTransport{wrapped: http.DefaultTransport},
		cache:           cfg.cache,
		logger:          cfg.logger,
	}
	cfg.events = newDBEventSink(cfg.dbQueries)
}
