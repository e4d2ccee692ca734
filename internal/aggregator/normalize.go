package aggregator

import (
	"strings"

	"github.com/openthreatiq/threatiq/internal/feed"
	"github.com/openthreatiq/threatiq/internal/model"
)

// titleMaxRunes bounds titles derived from description text.
const titleMaxRunes = 80

// Normalize maps a raw record, regardless of source format, into the
// canonical entry. It is a pure function: the same record and source always
// yield the same entry. Text cleaning is applied uniformly so downstream
// consumers never observe raw markup.
func Normalize(rec model.RawRecord, src model.Source) model.Entry {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = strings.TrimSpace(rec.Link)
	}

	title := feed.CleanText(rec.Title)
	description := feed.CleanText(rec.Description)
	if title == "" {
		switch rec.Format {
		case model.FormatCompressedJSON:
			// Vulnerability feeds title by identifier (e.g. the CVE id).
			title = id
		default:
			title = truncateRunes(description, titleMaxRunes)
		}
	}

	return model.Entry{
		ID:            id,
		Title:         title,
		Description:   description,
		Link:          strings.TrimSpace(rec.Link),
		Source:        src.Source,
		Category:      src.Category,
		PublishedDate: strings.TrimSpace(rec.Published),
	}
}

// truncateRunes shortens s to at most limit runes, appending an ellipsis
// when anything was cut. Counting runes keeps multi-byte text intact.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
