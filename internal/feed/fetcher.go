// Package feed provides the per-format feed fetchers.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openthreatiq/threatiq/internal/model"
)

// UserAgent identifies outbound requests on every fetch.
const UserAgent = "OpenThreatIQ/1.0"

// DefaultTimeout bounds each outbound request.
const DefaultTimeout = 15 * time.Second

// Fetcher turns one source's raw bytes into a sequence of records.
// Implementations return a TransportError for network or HTTP failures and a
// FormatError for decompression or parse failures.
type Fetcher interface {
	Fetch(ctx context.Context, src model.Source) ([]model.RawRecord, error)
}

// Extractor retrieves the full article body for a link. An empty return
// means no enrichment is available; that is a normal outcome, not an error.
type Extractor interface {
	Extract(ctx context.Context, url string) string
}

// TransportError reports a network, timeout, TLS, or HTTP status failure.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError reports a decompression or structural parse failure.
type FormatError struct {
	URL string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error parsing %s: %v", e.URL, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NewClient returns an HTTP client with the given request timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Fetchers builds the format-to-fetcher table. The extractor is only used by
// the RSS fetcher and may be nil to disable article enrichment.
func Fetchers(client *http.Client, extractor Extractor) map[model.Format]Fetcher {
	return map[model.Format]Fetcher{
		model.FormatCompressedJSON: &CompressedJSONFetcher{Client: client},
		model.FormatRSS:            NewRSSFetcher(client, extractor),
		model.FormatCSV:            &CSVFetcher{Client: client},
		model.FormatPlaintext:      &PlaintextFetcher{Client: client},
	}
}

// get performs a GET with the fixed client identifier and converts any
// network failure or non-2xx status into a TransportError. The caller owns
// the response body on success.
func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &TransportError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return resp, nil
}
