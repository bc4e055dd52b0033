// cmd/seed bulk-imports events from a CSV file into MongoDB.
// Expected header: event_name,city_name,date,time,latitude,longitude
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/rahulsidpara/event-finder/internal/database"
	"github.com/rahulsidpara/event-finder/internal/model"
	"github.com/rahulsidpara/event-finder/internal/repository"
	"github.com/rahulsidpara/event-finder/internal/service"
)

func main() {
	path := flag.String("file", "eventData.csv", "path to the CSV file to import")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	dbCfg := database.ConfigFromEnv()
	client, err := database.Connect(ctx, dbCfg)
	if err != nil {
		logger.Error("database connect", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := repository.NewEventRepository(database.Collection(client, dbCfg, "events"))
	svc := service.NewEventService(repo, noopEnricher{})

	f, err := os.Open(*path)
	if err != nil {
		logger.Error("open csv", "file", *path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		logger.Error("read csv header", "error", err)
		os.Exit(1)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"event_name", "city_name", "date", "time", "latitude", "longitude"} {
		if _, ok := col[name]; !ok {
			logger.Error("csv header missing column", "column", name)
			os.Exit(1)
		}
	}

	var imported, skipped int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed row", "error", err)
			skipped++
			continue
		}

		req := model.CreateEventRequest{
			EventName: row[col["event_name"]],
			City:      row[col["city_name"]],
			Date:      row[col["date"]],
			Time:      row[col["time"]],
			Latitude:  model.Coordinate(row[col["latitude"]]),
			Longitude: model.Coordinate(row[col["longitude"]]),
		}

		event, err := svc.CreateEvent(ctx, req)
		if err != nil {
			logger.Warn("skipping invalid row", "event", req.EventName, "error", err)
			skipped++
			continue
		}
		logger.Info("event saved", "event", event.EventName, "id", event.ID.Hex())
		imported++
	}

	logger.Info("finished parsing csv file", "imported", imported, "skipped", skipped)
}

// noopEnricher satisfies the service's enricher dependency; seeding never
// lists events, so it is never called.
type noopEnricher struct{}

func (noopEnricher) Weather(ctx context.Context, city, date string) string { return "Unknown" }
func (noopEnricher) Distance(ctx context.Context, lat1, lon1, lat2, lon2 float64) float64 {
	return -1
}
