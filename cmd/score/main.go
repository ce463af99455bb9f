// Command score runs one offline scoring pass from JSON fixtures and prints
// the ranked recommendations. It uses the actual engine so output matches
// service behavior, which makes it useful for tuning reference data and for
// regenerating test expectations.
//
// Usage:
//
//	go run ./cmd/score \
//	  -farm testdata/farm.json \
//	  -weather testdata/weather.json \
//	  -date 2026-08-30 \
//	  -top 5
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cropcompass/crop-recommendation-service/internal/domain"
	"github.com/cropcompass/crop-recommendation-service/internal/engine"
	"github.com/cropcompass/crop-recommendation-service/internal/observability"
	"github.com/cropcompass/crop-recommendation-service/internal/refstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	farmPath := flag.String("farm", "", "path to farm JSON fixture")
	weatherPath := flag.String("weather", "", "path to weather profile JSON fixture")
	cropsPath := flag.String("crops", "", "path to crop reference JSON (default: embedded seed table)")
	dateStr := flag.String("date", "", "scoring date as YYYY-MM-DD (default: today)")
	topN := flag.Int("top", 0, "max recommendations to print, 0 for all")
	flag.Parse()

	if *farmPath == "" || *weatherPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -farm, -weather")
	}

	var farm domain.Farm
	if err := loadJSON(*farmPath, &farm); err != nil {
		return fmt.Errorf("load farm: %w", err)
	}

	var weather domain.WeatherProfile
	if err := loadJSON(*weatherPath, &weather); err != nil {
		return fmt.Errorf("load weather: %w", err)
	}

	var crops *refstore.Store
	var err error
	if *cropsPath != "" {
		crops, err = refstore.LoadFile(*cropsPath)
	} else {
		crops, err = refstore.Load()
	}
	if err != nil {
		return fmt.Errorf("load crop reference data: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateStr != "" {
		today, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			return fmt.Errorf("parse -date: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(crops, logger, observability.NewMetricsForTesting(), engine.Options{
		Workers:                    4,
		DroughtRainfallThresholdMM: 40,
	})

	recs, err := eng.Recommend(context.Background(), farm, weather, today, *topN)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	log.Printf("farm %d: %d of %d crops recommended for %s",
		farm.ID, len(recs), crops.Len(), today.Format("2006-01-02"))

	out, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
