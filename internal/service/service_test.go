package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulsidpara/event-finder/internal/apperr"
	"github.com/rahulsidpara/event-finder/internal/model"
	"github.com/rahulsidpara/event-finder/internal/service"
)

// fakeStore filters an in-memory slice the same way the repository
// filters the collection: lexicographic range on the date string.
type fakeStore struct {
	events []model.Event

	insertErr error
	countErr  error
	listErr   error

	inserted []model.Event
	gotFrom  string
	gotTo    string
	gotSkip  int64
	gotLimit int64
}

func (f *fakeStore) inWindow(from, to string) []model.Event {
	var out []model.Event
	for _, ev := range f.events {
		if ev.Date >= from && ev.Date <= to {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (f *fakeStore) CountInWindow(ctx context.Context, from, to string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.gotFrom, f.gotTo = from, to
	return int64(len(f.inWindow(from, to))), nil
}

func (f *fakeStore) ListInWindow(ctx context.Context, from, to string, skip, limit int64) ([]model.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.gotSkip, f.gotLimit = skip, limit
	matched := f.inWindow(from, to)
	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeStore) Insert(ctx context.Context, event *model.Event) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *event)
	return nil
}

// fakeEnricher records its calls; a mutex guards against the concurrent
// fan-out.
type fakeEnricher struct {
	mu       sync.Mutex
	weather  string
	distance float64
	calls    int
}

func (f *fakeEnricher) Weather(ctx context.Context, city, date string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.weather
}

func (f *fakeEnricher) Distance(ctx context.Context, lat1, lon1, lat2, lon2 float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.distance
}

func event(name, city, date string, lon, lat float64) model.Event {
	return model.Event{
		EventName: name,
		City:      city,
		Date:      date,
		Time:      "10:00:00",
		Location:  model.GeoJSONPoint{Type: "Point", Coordinates: [2]float64{lon, lat}},
	}
}

func TestListEvents_Window(t *testing.T) {
	store := &fakeStore{events: []model.Event{
		event("Fair", "Lyon", "2024-03-10", 4.85, 45.75),
		event("Expo", "Paris", "2024-03-15", 2.35, 48.85),
		event("Too early", "Nice", "2024-02-29", 7.26, 43.70),
		event("Too late", "Lille", "2024-03-16", 3.06, 50.63),
	}}
	enricher := &fakeEnricher{weather: "Sunny", distance: 42.5}
	svc := service.NewEventService(store, enricher)

	page, err := svc.ListEvents(context.Background(), service.ListEventsInput{
		Latitude:  "45.75",
		Longitude: "4.85",
		Date:      "2024-03-01",
	})
	require.NoError(t, err)

	// Window is inclusive on both ends: [2024-03-01, 2024-03-15].
	assert.Equal(t, "2024-03-01", store.gotFrom)
	assert.Equal(t, "2024-03-15", store.gotTo)

	require.Len(t, page.Events, 2)
	assert.Equal(t, "Fair", page.Events[0].EventName)
	assert.Equal(t, "Expo", page.Events[1].EventName)
	assert.Equal(t, int64(2), page.TotalEvents)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)

	for _, row := range page.Events {
		assert.Equal(t, "Sunny", row.Weather)
		assert.Equal(t, 42.5, row.Distance)
	}
	// Two lookups per returned row.
	assert.Equal(t, 4, enricher.calls)
}

func TestListEvents_WindowCrossesMonthEnd(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewEventService(store, &fakeEnricher{})

	_, err := svc.ListEvents(context.Background(), service.ListEventsInput{
		Latitude:  "1",
		Longitude: "1",
		Date:      "2024-12-25",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-25", store.gotFrom)
	assert.Equal(t, "2025-01-08", store.gotTo)
}

func TestListEvents_Pagination(t *testing.T) {
	store := &fakeStore{events: []model.Event{
		event("A", "Lyon", "2024-03-02", 4.85, 45.75),
		event("B", "Lyon", "2024-03-03", 4.85, 45.75),
		event("C", "Lyon", "2024-03-04", 4.85, 45.75),
		event("D", "Lyon", "2024-03-05", 4.85, 45.75),
		event("E", "Lyon", "2024-03-06", 4.85, 45.75),
	}}
	svc := service.NewEventService(store, &fakeEnricher{weather: "Cloudy", distance: 1})

	page, err := svc.ListEvents(context.Background(), service.ListEventsInput{
		Latitude:  "45.75",
		Longitude: "4.85",
		Date:      "2024-03-01",
		Page:      "2",
		PageSize:  "2",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.gotSkip)
	assert.Equal(t, int64(2), store.gotLimit)
	require.Len(t, page.Events, 2)
	assert.Equal(t, "C", page.Events[0].EventName)
	assert.Equal(t, "D", page.Events[1].EventName)
	assert.Equal(t, int64(5), page.TotalEvents)
	assert.Equal(t, 3, page.TotalPages) // ceil(5/2)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.PageSize)
}

func TestListEvents_PaginationDefaults(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewEventService(store, &fakeEnricher{})

	for _, bad := range []string{"", "abc", "0", "-3"} {
		page, err := svc.ListEvents(context.Background(), service.ListEventsInput{
			Latitude:  "1",
			Longitude: "2",
			Date:      "2024-03-01",
			Page:      bad,
			PageSize:  bad,
		})
		require.NoError(t, err, "page=%q", bad)
		assert.Equal(t, 1, page.Page, "page=%q", bad)
		assert.Equal(t, 10, page.PageSize, "page=%q", bad)
	}
}

func TestListEvents_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      service.ListEventsInput
		message string
	}{
		{
			name:    "missing latitude",
			in:      service.ListEventsInput{Longitude: "4.85", Date: "2024-03-01"},
			message: "Latitude, longitude, and date are required",
		},
		{
			name:    "missing longitude",
			in:      service.ListEventsInput{Latitude: "45.75", Date: "2024-03-01"},
			message: "Latitude, longitude, and date are required",
		},
		{
			name:    "missing date",
			in:      service.ListEventsInput{Latitude: "45.75", Longitude: "4.85"},
			message: "Latitude, longitude, and date are required",
		},
		{
			name:    "non-numeric latitude",
			in:      service.ListEventsInput{Latitude: "north", Longitude: "4.85", Date: "2024-03-01"},
			message: "Latitude and longitude must be valid numbers",
		},
		{
			name:    "NaN longitude",
			in:      service.ListEventsInput{Latitude: "45.75", Longitude: "NaN", Date: "2024-03-01"},
			message: "Latitude and longitude must be valid numbers",
		},
		{
			name:    "infinite latitude",
			in:      service.ListEventsInput{Latitude: "+Inf", Longitude: "4.85", Date: "2024-03-01"},
			message: "Latitude and longitude must be valid numbers",
		},
		{
			name:    "wrong date format",
			in:      service.ListEventsInput{Latitude: "45.75", Longitude: "4.85", Date: "15-03-2024"},
			message: "15-03-2024 is not a valid date format (YYYY-MM-DD)",
		},
		{
			name:    "impossible calendar date",
			in:      service.ListEventsInput{Latitude: "45.75", Longitude: "4.85", Date: "2024-13-45"},
			message: "2024-13-45 is not a valid date format (YYYY-MM-DD)",
		},
	}

	store := &fakeStore{countErr: errors.New("store must not be touched")}
	svc := service.NewEventService(store, &fakeEnricher{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListEvents(context.Background(), tt.in)
			var apiErr *apperr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, 400, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestListEvents_SentinelRowsStillReturned(t *testing.T) {
	store := &fakeStore{events: []model.Event{
		event("Fair", "Lyon", "2024-03-10", 4.85, 45.75),
	}}
	// An enricher that has fallen back on every lookup.
	svc := service.NewEventService(store, &fakeEnricher{weather: "Unknown", distance: -1})

	page, err := svc.ListEvents(context.Background(), service.ListEventsInput{
		Latitude:  "45.75",
		Longitude: "4.85",
		Date:      "2024-03-01",
	})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "Unknown", page.Events[0].Weather)
	assert.Equal(t, float64(-1), page.Events[0].Distance)
}

func TestCreateEvent(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewEventService(store, &fakeEnricher{})

	created, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{
		EventName: "Fair",
		City:      "Lyon",
		Date:      "2024-03-01",
		Time:      "10:00:00",
		Latitude:  "45.75",
		Longitude: "4.85",
	})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	// Stored coordinates are [longitude, latitude], longitude first.
	assert.Equal(t, [2]float64{4.85, 45.75}, created.Location.Coordinates)
	assert.Equal(t, "Point", created.Location.Type)
	assert.Equal(t, "Fair", created.EventName)
	assert.Equal(t, "2024-03-01", created.Date)
	assert.Equal(t, "10:00:00", created.Time)
}

func TestCreateEvent_ZeroCoordinateAccepted(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewEventService(store, &fakeEnricher{})

	created, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{
		EventName: "Meridian run",
		City:      "Greenwich",
		Date:      "2024-03-01",
		Time:      "09:00:00",
		Latitude:  "51.48",
		Longitude: "0",
	})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 51.48}, created.Location.Coordinates)
}

func TestCreateEvent_Validation(t *testing.T) {
	valid := model.CreateEventRequest{
		EventName: "Fair",
		City:      "Lyon",
		Date:      "2024-03-01",
		Time:      "10:00:00",
		Latitude:  "45.75",
		Longitude: "4.85",
	}

	tests := []struct {
		name    string
		mutate  func(*model.CreateEventRequest)
		message string
	}{
		{"missing name", func(r *model.CreateEventRequest) { r.EventName = "" }, "All fields are required"},
		{"missing city", func(r *model.CreateEventRequest) { r.City = " " }, "All fields are required"},
		{"missing date", func(r *model.CreateEventRequest) { r.Date = "" }, "All fields are required"},
		{"missing time", func(r *model.CreateEventRequest) { r.Time = "" }, "All fields are required"},
		{"missing latitude", func(r *model.CreateEventRequest) { r.Latitude = "" }, "All fields are required"},
		{"missing longitude", func(r *model.CreateEventRequest) { r.Longitude = "" }, "All fields are required"},
		{"non-numeric latitude", func(r *model.CreateEventRequest) { r.Latitude = "north" }, "Latitude and longitude must be valid numbers"},
		{"non-numeric longitude", func(r *model.CreateEventRequest) { r.Longitude = "east" }, "Latitude and longitude must be valid numbers"},
		{"bad date", func(r *model.CreateEventRequest) { r.Date = "01/03/2024" }, "01/03/2024 is not a valid date format (YYYY-MM-DD)"},
		{"bad time", func(r *model.CreateEventRequest) { r.Time = "10:00" }, "10:00 is not a valid time format (HH:mm:ss)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := service.NewEventService(store, &fakeEnricher{})

			req := valid
			tt.mutate(&req)
			_, err := svc.CreateEvent(context.Background(), req)

			var apiErr *apperr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, 400, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Empty(t, store.inserted)
		})
	}
}

func TestCreateEvent_StoreFailure(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("boom")}
	svc := service.NewEventService(store, &fakeEnricher{})

	_, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{
		EventName: "Fair",
		City:      "Lyon",
		Date:      "2024-03-01",
		Time:      "10:00:00",
		Latitude:  "45.75",
		Longitude: "4.85",
	})
	require.Error(t, err)
	var apiErr *apperr.Error
	assert.False(t, errors.As(err, &apiErr), "store failures are not client errors")
}
