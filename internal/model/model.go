// Package model defines shared data structures.
package model

import "time"

// Format identifies the wire format of a feed source.
type Format string

const (
	FormatCompressedJSON Format = "compressed-json"
	FormatRSS            Format = "rss"
	FormatCSV            Format = "csv"
	FormatPlaintext      Format = "plaintext"
)

// Common category labels. The category field is an open string: user-added
// sources may carry labels not listed here.
const (
	CategoryCVE      = "CVE"
	CategoryMalware  = "Malware"
	CategoryPhishing = "Phishing"
	CategoryExploit  = "Exploit"
	CategoryUpdate   = "Update"
	CategoryCustom   = "Custom"
)

// Entry is one canonical, deduplicated threat-intelligence item.
type Entry struct {
	ID            string `json:"id"` // source-native id (CVE id, feed GUID) or permalink
	Title         string `json:"title"`
	Description   string `json:"description"`
	Link          string `json:"link"`
	Source        string `json:"source"`
	Category      string `json:"category"`
	PublishedDate string `json:"publishedDate"` // source-native timestamp, not guaranteed parseable
	ReadFlag      bool   `json:"readFlag"`
}

// Source describes one feed to ingest.
type Source struct {
	URL      string `json:"url"`
	Source   string `json:"source"` // provenance label, e.g. "NVD"
	Category string `json:"category"`
	Format   Format `json:"format"`
}

// RawRecord is one record as yielded by a format fetcher, before
// normalization. Format tags which fields carry meaning: compressed-json and
// csv records have no Title, plaintext records have a synthetic ID.
type RawRecord struct {
	Format      Format
	ID          string
	Title       string
	Description string
	Link        string
	Published   string
}

// RefreshState tracks when the last successful refresh cycle finished and
// how long fetched data stays fresh. A zero LastRefresh means never
// refreshed and forces an immediate fetch.
type RefreshState struct {
	LastRefresh     time.Time
	IntervalMinutes int
}

// Settings key constants.
const (
	SettingRefreshInterval = "refresh_interval_minutes"
	SettingLastRefresh     = "last_refresh"
)

// DefaultRefreshIntervalMinutes is used when no interval setting is stored.
const DefaultRefreshIntervalMinutes = 30
