// Command collect runs a single forced refresh cycle and exits. It is meant
// for cron jobs and for priming the cache offline.
package main

import (
	"context"
	"log"
	"time"

	"github.com/openthreatiq/threatiq/internal/aggregator"
	"github.com/openthreatiq/threatiq/internal/config"
	"github.com/openthreatiq/threatiq/internal/database"
	"github.com/openthreatiq/threatiq/internal/extract"
	"github.com/openthreatiq/threatiq/internal/feed"
)

func main() {
	cfg := config.Load()

	store, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	client := feed.NewClient(cfg.HTTPTimeout)
	agg, err := aggregator.New(store, feed.Fetchers(client, extract.New(client)))
	if err != nil {
		log.Fatalf("init aggregator: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	entries, err := agg.Refresh(ctx, true)
	if err != nil {
		log.Fatalf("refresh: %v", err)
	}
	log.Printf("cached %d entries", len(entries))
}
