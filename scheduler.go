package main

import (
	"context"
	"sync"
	"time"

	"github.com/cor0nius/localservices/internal/database"
)

// backfillGeocodeTimeout bounds one provider lookup, retry included.
const backfillGeocodeTimeout = 45 * time.Second

// Scheduler periodically fills in coordinates for providers that were added
// without them, so distance ranking can use them.
type Scheduler struct {
	cfg          *apiConfig
	backfillChan <-chan time.Time
	stop         chan struct{}
	tickers      []*time.Ticker
	backfillJobs func()
	running      sync.Mutex
}

func NewScheduler(cfg *apiConfig, backfillInterval time.Duration) *Scheduler {
	backfillTicker := time.NewTicker(backfillInterval)
	s := &Scheduler{
		cfg:          cfg,
		backfillChan: backfillTicker.C,
		stop:         make(chan struct{}),
		tickers:      []*time.Ticker{backfillTicker},
	}
	s.backfillJobs = s.runCoordinateBackfill
	return s
}

func (s *Scheduler) Start() {
	go func() {
		for {
			select {
			case <-s.backfillChan:
				s.cfg.logger.Info("scheduler: running coordinate backfill")
				s.backfillJobs()
			case <-s.stop:
				s.cfg.logger.Info("scheduler: stopping")
				for _, ticker := range s.tickers {
					ticker.Stop()
				}
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

// runCoordinateBackfill geocodes one batch of providers sequentially; the
// geocoder is rate limited, so there is nothing to gain from fan-out. A run
// that overlaps a running one is skipped.
func (s *Scheduler) runCoordinateBackfill() {
	if !s.running.TryLock() {
		s.cfg.logger.Info("scheduler: coordinate backfill already running, skipping")
		return
	}
	defer s.running.Unlock()

	ctx := context.Background()
	batch := max(s.cfg.backfillBatchSize, 1)
	providers, err := s.cfg.dbQueries.ListProvidersMissingCoordinates(ctx, int32(batch))
	if err != nil {
		s.cfg.logger.Error("scheduler: failed to list providers missing coordinates", "error", err)
		return
	}

	updated := 0
	for _, p := range providers {
		if s.backfillProvider(ctx, p) {
			updated++
		}
	}
	s.cfg.logger.Info("scheduler: coordinate backfill completed", "candidates", len(providers), "updated", updated)
}

func (s *Scheduler) backfillProvider(ctx context.Context, p database.ListProvidersMissingCoordinatesRow) bool {
	ctx, cancel := context.WithTimeout(ctx, backfillGeocodeTimeout)
	defer cancel()

	res, err := s.cfg.geocoder.Geocode(ctx, LocationQuery{
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	})
	if err != nil {
		s.cfg.logger.Warn("scheduler: geocoding failed", "provider_id", p.ID, "name", p.Name, "error", err)
		return false
	}
	if res == nil {
		s.cfg.logger.Debug("scheduler: provider location not found", "provider_id", p.ID, "name", p.Name)
		return false
	}

	err = s.cfg.dbQueries.UpdateProviderCoordinates(ctx, database.UpdateProviderCoordinatesParams{
		ID:        p.ID,
		Latitude:  floatPtrToNull(&res.Point.Latitude),
		Longitude: floatPtrToNull(&res.Point.Longitude),
	})
	if err != nil {
		s.cfg.logger.Error("scheduler: failed to store coordinates", "provider_id", p.ID, "error", err)
		return false
	}
	return true
}
