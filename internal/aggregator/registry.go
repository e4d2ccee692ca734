package aggregator

import (
	"sync"

	"github.com/openthreatiq/threatiq/internal/model"
)

// BuiltinSources returns the feed sources registered at startup. One per
// wire format at minimum, so every fetcher is exercised out of the box.
func BuiltinSources() []model.Source {
	return []model.Source{
		{
			URL:      "https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-recent.json.gz",
			Source:   "NVD",
			Category: model.CategoryCVE,
			Format:   model.FormatCompressedJSON,
		},
		{
			URL:      "https://www.bleepingcomputer.com/feed/",
			Source:   "BleepingComputer",
			Category: model.CategoryUpdate,
			Format:   model.FormatRSS,
		},
		{
			URL:      "https://feeds.feedburner.com/TheHackersNews",
			Source:   "TheHackerNews",
			Category: model.CategoryMalware,
			Format:   model.FormatRSS,
		},
		{
			URL:      "https://www.exploit-db.com/rss.xml",
			Source:   "Exploit-DB",
			Category: model.CategoryExploit,
			Format:   model.FormatRSS,
		},
		{
			URL:      "https://urlhaus.abuse.ch/downloads/csv_recent/",
			Source:   "URLhaus",
			Category: model.CategoryMalware,
			Format:   model.FormatCSV,
		},
		{
			URL:      "https://openphish.com/feed.txt",
			Source:   "OpenPhish",
			Category: model.CategoryPhishing,
			Format:   model.FormatPlaintext,
		},
	}
}

// Registry is the set of feed sources owned by the aggregator. Built-ins are
// fixed at construction; user sources are appended at runtime. Sources are
// never removed.
type Registry struct {
	mu      sync.RWMutex
	sources []model.Source
	byURL   map[string]struct{}
}

// NewRegistry creates a registry seeded with the given sources.
func NewRegistry(seed []model.Source) *Registry {
	r := &Registry{byURL: make(map[string]struct{}, len(seed))}
	for _, s := range seed {
		r.add(s)
	}
	return r
}

// All returns a snapshot of the registered sources.
func (r *Registry) All() []model.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Add registers a source. It reports false if a source with the same URL is
// already registered.
func (r *Registry) Add(s model.Source) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(s)
}

func (r *Registry) add(s model.Source) bool {
	if _, exists := r.byURL[s.URL]; exists {
		return false
	}
	r.byURL[s.URL] = struct{}{}
	r.sources = append(r.sources, s)
	return true
}
