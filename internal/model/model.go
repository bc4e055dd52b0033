// Package model defines the core domain types for the event finder API.
package model

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoJSONPoint is a GeoJSON point as stored alongside each event.
// Coordinates are [longitude, latitude], longitude first.
type GeoJSONPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// Event is the stored event document. Date and time are fixed-width
// strings, not timestamps: "YYYY-MM-DD" sorts and range-filters
// lexicographically, and keeping the text form avoids timezone drift.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventName string             `bson:"eventName" json:"eventName"`
	City      string             `bson:"city" json:"city"`
	Date      string             `bson:"date" json:"date"`
	Time      string             `bson:"time" json:"time"`
	Location  GeoJSONPoint       `bson:"location" json:"location"`
}

// Coordinate is a latitude or longitude as received on the wire. Clients
// send it as either a JSON number or a numeric string; both decode to the
// raw text, which the service parses and validates.
type Coordinate string

// UnmarshalJSON accepts a JSON number, string, or null.
func (c *Coordinate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode coordinate: %w", err)
		}
		*c = Coordinate(s)
		return nil
	}
	*c = Coordinate(b)
	return nil
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	EventName string     `json:"eventName"`
	City      string     `json:"city"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// EnrichedEvent is one row of a listing response: the stored fields a
// client cares about plus the weather and distance fetched at read time.
type EnrichedEvent struct {
	EventName string  `json:"eventName"`
	City      string  `json:"city"`
	Date      string  `json:"date"`
	Weather   string  `json:"weather"`
	Distance  float64 `json:"distance"`
}

// EventPage is the paginated listing payload.
type EventPage struct {
	Events      []EnrichedEvent `json:"events"`
	Page        int             `json:"page"`
	PageSize    int             `json:"pageSize"`
	TotalEvents int64           `json:"totalEvents"`
	TotalPages  int             `json:"totalPages"`
}

// Envelope is the uniform response wrapper used by every endpoint.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}
