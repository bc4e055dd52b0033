// Package repository implements all database queries for the event finder.
// It uses the mongo driver directly (no ODM) for transparency.
package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rahulsidpara/event-finder/internal/model"
)

// EventRepository handles persistence for events.
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository constructs an EventRepository over an events collection.
func NewEventRepository(coll *mongo.Collection) *EventRepository {
	return &EventRepository{coll: coll}
}

// EnsureIndexes creates the ascending index on the date field used by the
// window queries. Safe to call repeatedly.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create date index: %w", err)
	}
	return nil
}

// dateWindow builds the inclusive range filter on the date field.
// The comparison is lexicographic over the fixed-width "YYYY-MM-DD"
// strings, which orders identically to the calendar dates.
func dateWindow(from, to string) bson.M {
	return bson.M{"date": bson.M{"$gte": from, "$lte": to}}
}

// CountInWindow returns the number of events with from <= date <= to.
func (r *EventRepository) CountInWindow(ctx context.Context, from, to string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, dateWindow(from, to))
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// ListInWindow returns one page of events with from <= date <= to,
// sorted ascending by date.
func (r *EventRepository) ListInWindow(ctx context.Context, from, to string, skip, limit int64) ([]model.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, dateWindow(from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)

	var events []model.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// Insert persists a new event, assigning it a generated ObjectID.
func (r *EventRepository) Insert(ctx context.Context, event *model.Event) error {
	event.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// IsDuplicateKey reports whether err is a duplicate-key rejection from
// the store.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
