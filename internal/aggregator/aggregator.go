// Package aggregator drives the cache-coherent refresh cycle.
package aggregator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openthreatiq/threatiq/internal/database"
	"github.com/openthreatiq/threatiq/internal/feed"
	"github.com/openthreatiq/threatiq/internal/model"
)

// fetchConcurrency bounds parallel source fetches within one refresh cycle.
const fetchConcurrency = 4

// Aggregator orchestrates ingestion: it consults the freshness policy,
// dispatches the format fetchers per source with failure isolation,
// normalizes and upserts the results, and records the refresh timestamp.
type Aggregator struct {
	store    database.Store
	registry *Registry
	fetchers map[model.Format]feed.Fetcher

	// Now is the clock used for freshness decisions; tests override it.
	Now func() time.Time

	// refreshMu serializes refresh cycles so overlapping triggers (cron tick
	// plus a manual refresh) do not run the source set twice.
	refreshMu sync.Mutex
}

// New creates an aggregator over the store and fetcher table, seeding the
// source registry with the built-ins plus any previously saved user sources.
func New(store database.Store, fetchers map[model.Format]feed.Fetcher) (*Aggregator, error) {
	registry := NewRegistry(BuiltinSources())
	saved, err := store.GetUserSources()
	if err != nil {
		return nil, fmt.Errorf("load user sources: %w", err)
	}
	for _, s := range saved {
		registry.Add(s)
	}
	return &Aggregator{
		store:    store,
		registry: registry,
		fetchers: fetchers,
		Now:      time.Now,
	}, nil
}

// Refresh runs one refresh cycle and returns the full up-to-date collection.
// Unless forced, the cycle is skipped entirely while the store is still
// fresh. A failing source is logged and abandoned for this cycle only; the
// only hard failure is the store itself.
func (a *Aggregator) Refresh(ctx context.Context, force bool) ([]model.Entry, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	now := a.Now()
	if !force {
		state, err := a.store.GetRefreshState()
		if err != nil {
			return nil, fmt.Errorf("read refresh state: %w", err)
		}
		if !IsStale(state, now) {
			return a.store.ListEntries()
		}
	}

	a.ingestAll(ctx, a.registry.All())

	if err := a.store.SetLastRefresh(now); err != nil {
		return nil, fmt.Errorf("record refresh time: %w", err)
	}
	return a.store.ListEntries()
}

// ingestAll fetches every source with bounded concurrency. Each source is
// isolated: its transport or format failure never aborts the others.
func (a *Aggregator) ingestAll(ctx context.Context, sources []model.Source) {
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, fetchConcurrency)
	)
	for _, src := range sources {
		wg.Add(1)
		sem <- struct{}{}
		go func(src model.Source) {
			defer wg.Done()
			defer func() { <-sem }()
			a.ingestSource(ctx, src)
		}(src)
	}
	wg.Wait()
}

// ingestSource fetches one source and upserts its records in the order the
// fetcher yielded them.
func (a *Aggregator) ingestSource(ctx context.Context, src model.Source) {
	fetcher, ok := a.fetchers[src.Format]
	if !ok {
		log.Printf("%s: no fetcher for format %q", src.Source, src.Format)
		return
	}
	records, err := fetcher.Fetch(ctx, src)
	if err != nil {
		log.Printf("%s: fetch failed: %v", src.Source, err)
		return
	}
	saved := 0
	for _, rec := range records {
		entry := Normalize(rec, src)
		if entry.ID == "" {
			continue
		}
		if err := a.store.UpsertEntry(entry); err != nil {
			log.Printf("%s: upsert %s: %v", src.Source, entry.ID, err)
			continue
		}
		saved++
	}
	log.Printf("%s: fetched=%d saved=%d", src.Source, len(records), saved)
}

// AddSource registers a user-added source, persists it, and ingests it
// immediately so its items are visible without waiting for the next interval
// boundary. Adding an already-registered URL only re-ingests it.
func (a *Aggregator) AddSource(ctx context.Context, src model.Source) error {
	if src.URL == "" {
		return fmt.Errorf("source url is required")
	}
	if _, ok := a.fetchers[src.Format]; !ok {
		return fmt.Errorf("unsupported format %q", src.Format)
	}
	if src.Category == "" {
		src.Category = model.CategoryCustom
	}
	if a.registry.Add(src) {
		if err := a.store.AddUserSource(src); err != nil {
			return fmt.Errorf("save source: %w", err)
		}
	}
	a.ingestSource(ctx, src)
	return nil
}

// ListAll returns the stored collection without fetching.
func (a *Aggregator) ListAll() ([]model.Entry, error) {
	return a.store.ListEntries()
}

// MarkRead marks an entry read. Unknown ids are a no-op.
func (a *Aggregator) MarkRead(id string) error {
	return a.store.MarkRead(id)
}

// Interval returns the refresh interval in minutes.
func (a *Aggregator) Interval() (int, error) {
	return a.store.GetRefreshInterval()
}

// SetInterval updates the refresh interval; it applies on the next
// freshness check.
func (a *Aggregator) SetInterval(minutes int) error {
	return a.store.SetRefreshInterval(minutes)
}

// Sources returns a snapshot of all registered sources.
func (a *Aggregator) Sources() []model.Source {
	return a.registry.All()
}
