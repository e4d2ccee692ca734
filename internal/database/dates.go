package database

import "time"

// publishedFormats covers the date formats seen across the built-in feeds:
// NVD uses minute-precision ISO timestamps, RSS feeds use RFC1123 variants,
// URLhaus uses space-separated UTC timestamps.
var publishedFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04Z",
	"2006-01-02T15:04:05.000",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePublished parses a source-native published date. The second return
// value reports whether any known format matched; unparsable values are kept
// verbatim for display but sort last.
func parsePublished(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range publishedFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
