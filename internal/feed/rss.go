package feed

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/openthreatiq/threatiq/internal/model"
)

// Enrichment concurrency settings.
const (
	// enrichConcurrency bounds the number of parallel article fetches per feed.
	enrichConcurrency = 4
	// enrichPerHost limits parallel article fetches to any single host.
	enrichPerHost = 2
	// enrichHostSpacing is the minimum delay between requests to the same host.
	enrichHostSpacing = 500 * time.Millisecond
)

// RSSFetcher parses RSS and Atom feeds. When an extractor is configured it
// attempts, best-effort, to replace each item's truncated summary with the
// full article body.
type RSSFetcher struct {
	parser    *gofeed.Parser
	extractor Extractor
	limiter   *hostLimiter
}

// NewRSSFetcher creates an RSS/Atom fetcher using the given client.
func NewRSSFetcher(client *http.Client, extractor Extractor) *RSSFetcher {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = UserAgent
	return &RSSFetcher{
		parser:    parser,
		extractor: extractor,
		limiter:   newHostLimiter(enrichPerHost, enrichHostSpacing),
	}
}

func (f *RSSFetcher) Fetch(ctx context.Context, src model.Source) ([]model.RawRecord, error) {
	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, classifyFeedError(src.URL, err)
	}

	records := make([]model.RawRecord, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		id := item.GUID
		if id == "" {
			id = item.Link
		}
		if id == "" {
			continue
		}
		// Prefer the structured content element over the summary.
		description := item.Content
		if description == "" {
			description = item.Description
		}
		published := item.Published
		if published == "" {
			published = item.Updated
		}
		records = append(records, model.RawRecord{
			Format:      model.FormatRSS,
			ID:          id,
			Title:       item.Title,
			Description: description,
			Link:        item.Link,
			Published:   published,
		})
	}

	f.enrich(ctx, records)
	return records, nil
}

// enrich replaces summaries with extracted full-article text where the
// extraction chain succeeds. Failures leave the feed summary in place. The
// host limiter keeps the pool from overwhelming the one site most of a
// feed's links point at.
func (f *RSSFetcher) enrich(ctx context.Context, records []model.RawRecord) {
	if f.extractor == nil {
		return
	}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, enrichConcurrency)
	)
	for i := range records {
		if records[i].Link == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(rec *model.RawRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			host := requestHost(rec.Link)
			if err := f.limiter.acquire(ctx, host); err != nil {
				return
			}
			defer f.limiter.release(host)
			if full := f.extractor.Extract(ctx, rec.Link); full != "" {
				rec.Description = full
			}
		}(&records[i])
	}
	wg.Wait()
}

// classifyFeedError maps gofeed errors onto the fetch error taxonomy: HTTP
// and network failures are transport errors, everything else is a malformed
// feed.
func classifyFeedError(feedURL string, err error) error {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return &TransportError{URL: feedURL, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &TransportError{URL: feedURL, Err: err}
	}
	return &FormatError{URL: feedURL, Err: err}
}
