// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rahulsidpara/event-finder/internal/apperr"
	"github.com/rahulsidpara/event-finder/internal/model"
	"github.com/rahulsidpara/event-finder/internal/repository"
)

// windowDays is the span of the listing window: [date, date+14] inclusive.
const windowDays = 14

// Defaults applied when the pagination parameters are absent or unusable.
const (
	defaultPage     = 1
	defaultPageSize = 10
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// EventStore is the persistence surface the service needs. Window bounds
// are inclusive ISO date strings.
type EventStore interface {
	CountInWindow(ctx context.Context, from, to string) (int64, error)
	ListInWindow(ctx context.Context, from, to string, skip, limit int64) ([]model.Event, error)
	Insert(ctx context.Context, event *model.Event) error
}

// Enricher fetches read-time weather and distance data. Implementations
// never fail: they return sentinel values instead.
type Enricher interface {
	Weather(ctx context.Context, city, date string) string
	Distance(ctx context.Context, lat1, lon1, lat2, lon2 float64) float64
}

// EventService orchestrates event listing and creation.
type EventService struct {
	store    EventStore
	enricher Enricher
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(store EventStore, enricher Enricher) *EventService {
	return &EventService{store: store, enricher: enricher}
}

// ListEventsInput carries the raw query parameters of a listing request.
// All fields are untrimmed text exactly as received; Page and PageSize
// may be empty.
type ListEventsInput struct {
	Latitude  string
	Longitude string
	Date      string
	Page      string
	PageSize  string
}

// ListEvents validates the query, fetches one page of events dated within
// [date, date+14] and enriches every row with weather and caller distance.
//
// Validation happens eagerly, before any store access. Enrichment calls
// run concurrently: one task per row, each awaiting its two lookups, with
// no cap beyond the page size.
func (s *EventService) ListEvents(ctx context.Context, in ListEventsInput) (*model.EventPage, error) {
	if in.Latitude == "" || in.Longitude == "" || in.Date == "" {
		return nil, apperr.Validation("Latitude, longitude, and date are required")
	}

	lat, ok := parseFinite(in.Latitude)
	if !ok {
		return nil, apperr.Validation("Latitude and longitude must be valid numbers")
	}
	lon, ok := parseFinite(in.Longitude)
	if !ok {
		return nil, apperr.Validation("Latitude and longitude must be valid numbers")
	}

	from, to, err := dateWindow(in.Date)
	if err != nil {
		return nil, err
	}

	page := parsePositive(in.Page, defaultPage)
	pageSize := parsePositive(in.PageSize, defaultPageSize)

	total, err := s.store.CountInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("count events in window: %w", err)
	}

	events, err := s.store.ListInWindow(ctx, from, to, int64(page-1)*int64(pageSize), int64(pageSize))
	if err != nil {
		return nil, fmt.Errorf("list events in window: %w", err)
	}

	rows := s.enrichAll(ctx, events, lat, lon)

	return &model.EventPage{
		Events:      rows,
		Page:        page,
		PageSize:    pageSize,
		TotalEvents: total,
		TotalPages:  int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// enrichAll fans out the weather and distance lookups: every row gets its
// own task, and within a row the two lookups run concurrently. Lookups
// cannot fail (they fall back to sentinels), so the joins never error.
func (s *EventService) enrichAll(ctx context.Context, events []model.Event, lat, lon float64) []model.EnrichedEvent {
	rows := make([]model.EnrichedEvent, len(events))

	var g errgroup.Group
	for i, ev := range events {
		i, ev := i, ev
		g.Go(func() error {
			var (
				weather  string
				distance float64
			)

			var pair errgroup.Group
			pair.Go(func() error {
				weather = s.enricher.Weather(ctx, ev.City, ev.Date)
				return nil
			})
			pair.Go(func() error {
				// Stored coordinates are [longitude, latitude].
				distance = s.enricher.Distance(ctx, lat, lon, ev.Location.Coordinates[1], ev.Location.Coordinates[0])
				return nil
			})
			_ = pair.Wait()

			rows[i] = model.EnrichedEvent{
				EventName: ev.EventName,
				City:      ev.City,
				Date:      ev.Date,
				Weather:   weather,
				Distance:  distance,
			}
			return nil
		})
	}
	_ = g.Wait()

	return rows
}

// CreateEvent validates the request, normalizes it into a stored document
// and persists it, returning the event with its generated identifier.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	if strings.TrimSpace(req.EventName) == "" ||
		strings.TrimSpace(req.City) == "" ||
		req.Date == "" || req.Time == "" ||
		req.Latitude == "" || req.Longitude == "" {
		return nil, apperr.Validation("All fields are required")
	}

	lat, ok := parseFinite(string(req.Latitude))
	if !ok {
		return nil, apperr.Validation("Latitude and longitude must be valid numbers")
	}
	lon, ok := parseFinite(string(req.Longitude))
	if !ok {
		return nil, apperr.Validation("Latitude and longitude must be valid numbers")
	}

	if _, _, err := dateWindow(req.Date); err != nil {
		return nil, err
	}
	if !timePattern.MatchString(req.Time) {
		return nil, apperr.Validation("%s is not a valid time format (HH:mm:ss)", req.Time)
	}

	event := &model.Event{
		EventName: req.EventName,
		City:      req.City,
		Date:      req.Date,
		Time:      req.Time,
		Location: model.GeoJSONPoint{
			Type:        "Point",
			Coordinates: [2]float64{lon, lat},
		},
	}

	if err := s.store.Insert(ctx, event); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Duplicate("event")
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// dateWindow validates an ISO date and returns the inclusive listing
// window [date, date+14] as a pair of ISO strings.
func dateWindow(date string) (from, to string, err error) {
	if !datePattern.MatchString(date) {
		return "", "", apperr.Validation("%s is not a valid date format (YYYY-MM-DD)", date)
	}
	day, parseErr := time.Parse("2006-01-02", date)
	if parseErr != nil {
		return "", "", apperr.Validation("%s is not a valid date format (YYYY-MM-DD)", date)
	}
	return date, day.AddDate(0, 0, windowDays).Format("2006-01-02"), nil
}

// parseFinite parses text as a finite float64. NaN and infinities are
// rejected; range checks on the coordinate values are deliberately not
// applied here.
func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parsePositive parses an optional positive integer parameter, falling
// back to def when absent or unusable.
func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
