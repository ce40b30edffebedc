package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/google/uuid"
)

const analyticsConsentCookie = "ls_analytics_consent"

const (
	usageActionView         = "view"
	usageActionContact      = "contact"
	usageActionClickWebsite = "click_website"
)

var consentValues = map[string]bool{
	"1": true, "true": true, "yes": true, "y": true, "accept": true, "accepted": true,
}

// hasAnalyticsConsent reads the cookie set by the front-end consent banner.
func hasAnalyticsConsent(r *http.Request) bool {
	c, err := r.Cookie(analyticsConsentCookie)
	if err != nil {
		return false
	}
	return consentValues[strings.ToLower(strings.TrimSpace(c.Value))]
}

type SearchEventRecord struct {
	UserID     uuid.UUID
	CategoryID int64
	QueryText  string
	Location   LocationQuery
}

type UsageEventRecord struct {
	UserID     uuid.UUID
	CategoryID int64
	ProviderID int64
	Action     string
	Location   LocationQuery
}

// EventSink appends analytics events. Callers log failures and carry on.
type EventSink interface {
	RecordSearch(ctx context.Context, ev SearchEventRecord) error
	RecordUsage(ctx context.Context, ev UsageEventRecord) error
}

type dbEventSink struct {
	db  dbQuerier
	now func() time.Time
}

func newDBEventSink(db dbQuerier) *dbEventSink {
	return &dbEventSink{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *dbEventSink) RecordSearch(ctx context.Context, ev SearchEventRecord) error {
	err := s.db.CreateSearchEvent(ctx, database.CreateSearchEventParams{
		ID:         uuid.New(),
		UserID:     uuidToNull(ev.UserID),
		CategoryID: int64ToNull(ev.CategoryID),
		QueryText:  ev.QueryText,
		City:       ev.Location.City,
		State:      ev.Location.State,
		PostalCode: ev.Location.PostalCode,
		Latitude:   floatPtrToNull(ev.Location.Latitude),
		Longitude:  floatPtrToNull(ev.Location.Longitude),
		CreatedAt:  s.now(),
	})
	if err != nil {
		return fmt.Errorf("could not record search event: %w", err)
	}
	return nil
}

func (s *dbEventSink) RecordUsage(ctx context.Context, ev UsageEventRecord) error {
	err := s.db.CreateUsageEvent(ctx, database.CreateUsageEventParams{
		ID:         uuid.New(),
		UserID:     uuidToNull(ev.UserID),
		CategoryID: int64ToNull(ev.CategoryID),
		ProviderID: int64ToNull(ev.ProviderID),
		Action:     ev.Action,
		City:       ev.Location.City,
		State:      ev.Location.State,
		PostalCode: ev.Location.PostalCode,
		Latitude:   floatPtrToNull(ev.Location.Latitude),
		Longitude:  floatPtrToNull(ev.Location.Longitude),
		CreatedAt:  s.now(),
	})
	if err != nil {
		return fmt.Errorf("could not record %s event: %w", ev.Action, err)
	}
	return nil
}
