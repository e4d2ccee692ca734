package feed

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// hostLimiter caps concurrent requests per host and enforces a minimum
// spacing between successive requests to the same host, so article
// enrichment does not hammer the single site most of a feed's links point
// at.
type hostLimiter struct {
	perHost int
	spacing time.Duration

	mu       sync.Mutex
	slots    map[string]chan struct{}
	lastSeen map[string]time.Time
}

func newHostLimiter(perHost int, spacing time.Duration) *hostLimiter {
	return &hostLimiter{
		perHost:  perHost,
		spacing:  spacing,
		slots:    make(map[string]chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
}

// acquire takes a slot for the host, blocking until one frees up or the
// context is done, then waits out the spacing since the host's last request.
func (hl *hostLimiter) acquire(ctx context.Context, host string) error {
	hl.mu.Lock()
	sem, ok := hl.slots[host]
	if !ok {
		sem = make(chan struct{}, hl.perHost)
		hl.slots[host] = sem
	}
	hl.mu.Unlock()

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	hl.mu.Lock()
	last := hl.lastSeen[host]
	hl.mu.Unlock()

	if !last.IsZero() {
		if wait := hl.spacing - time.Since(last); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				<-sem
				return ctx.Err()
			}
		}
	}
	return nil
}

// release returns the host's slot and records the request time.
func (hl *hostLimiter) release(host string) {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	hl.lastSeen[host] = time.Now()
	if sem, ok := hl.slots[host]; ok {
		<-sem
	}
}

// requestHost extracts the host from a link for limiter keying.
func requestHost(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return u.Host
}
