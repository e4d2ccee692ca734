package main

import (
	"log"

	"github.com/openthreatiq/threatiq/internal/aggregator"
	"github.com/openthreatiq/threatiq/internal/config"
	"github.com/openthreatiq/threatiq/internal/database"
	"github.com/openthreatiq/threatiq/internal/extract"
	"github.com/openthreatiq/threatiq/internal/feed"
	"github.com/openthreatiq/threatiq/internal/model"
	"github.com/openthreatiq/threatiq/internal/scheduler"
	"github.com/openthreatiq/threatiq/internal/server"
)

func main() {
	cfg := config.Load()

	store, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	// Seed the refresh interval on first boot; after that the stored
	// setting wins over the environment.
	if _, err := store.GetSetting(model.SettingRefreshInterval); err != nil {
		if err := store.SetRefreshInterval(cfg.RefreshMinutes); err != nil {
			log.Fatalf("seed refresh interval: %v", err)
		}
	}

	client := feed.NewClient(cfg.HTTPTimeout)
	fetchers := feed.Fetchers(client, extract.New(client))

	agg, err := aggregator.New(store, fetchers)
	if err != nil {
		log.Fatalf("init aggregator: %v", err)
	}

	sched, err := scheduler.New(cfg.CronSpec, agg)
	if err != nil {
		log.Fatalf("init scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(agg)
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
