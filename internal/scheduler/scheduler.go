// Package scheduler triggers periodic refresh cycles.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/openthreatiq/threatiq/internal/aggregator"
	"github.com/robfig/cron/v3"
)

// cycleTimeout bounds one whole refresh cycle across all sources.
const cycleTimeout = 10 * time.Minute

// Scheduler runs the aggregator on a cron spec. Each tick is an unforced
// refresh: the freshness policy, not the cron cadence, decides whether any
// network work happens, so the spec can tick more often than the configured
// interval without extra fetching.
type Scheduler struct {
	cron *cron.Cron
	agg  *aggregator.Aggregator
}

// New creates a scheduler firing on the given cron spec.
func New(spec string, agg *aggregator.Aggregator) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, agg: agg}
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the cron loop and offers an immediate first refresh; a fresh
// database has no refresh timestamp, so this populates it right away.
func (s *Scheduler) Start() {
	s.cron.Start()
	go s.runOnce()
}

// Stop stops the cron loop. A cycle already in flight finishes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	entries, err := s.agg.Refresh(ctx, false)
	if err != nil {
		log.Printf("scheduled refresh failed: %v", err)
		return
	}
	log.Printf("scheduled refresh done, %d entries", len(entries))
}
