// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rahulsidpara/event-finder/internal/apperr"
	"github.com/rahulsidpara/event-finder/internal/model"
	"github.com/rahulsidpara/event-finder/internal/service"
)

// EventService is the service surface the handlers depend on.
type EventService interface {
	ListEvents(ctx context.Context, in service.ListEventsInput) (*model.EventPage, error)
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
}

// EventHandler holds all HTTP handlers for the event finder API.
type EventHandler struct {
	svc EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Envelope{
		Success:    status < 400,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// writeError maps the closed set of typed error variants onto their HTTP
// statuses; anything unrecognized becomes a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apperr.Error
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.Status, apiErr.Message, nil)
		return
	}
	writeJSON(w, http.StatusInternalServerError, "Internal Server Error", nil)
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	return json.NewDecoder(r.Body).Decode(dst)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListEvents handles GET /events
// Returns one page of events dated within the 15-day window starting at
// the given date, each enriched with weather and distance from the caller.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.ListEventsInput{
		Latitude:  q.Get("latitude"),
		Longitude: q.Get("longitude"),
		Date:      q.Get("date"),
		Page:      q.Get("pageString"),
		PageSize:  q.Get("pageSizeString"),
	}

	page, err := h.svc.ListEvents(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "Events retrieved successfully", page)
}

// CreateEvent handles POST /events
// Validates and persists a new event, returning it with its generated id.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Validation("invalid request body"))
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, "Event created successfully", event)
}

// ─── Liveness and fallthrough ─────────────────────────────────────────────────

// Liveness handles GET /test
func Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Server is running...", nil)
}

// NotFound replies to every unmatched route with a 404 envelope naming
// the requested path.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperr.NotFound("Not found - %s", r.URL.Path))
}
