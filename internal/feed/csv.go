package feed

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strings"

	"github.com/openthreatiq/threatiq/internal/model"
)

// Header names recognized when mapping CSV columns, checked in order.
// URLhaus-style dumps expose (id, dateadded, url, ...); generic exports use
// plainer names. Columns that match nothing fall back to position.
var (
	csvIDColumns          = []string{"id", "cve", "cve_id", "identifier"}
	csvDescriptionColumns = []string{"description", "desc", "summary", "url", "threat"}
	csvLinkColumns        = []string{"link", "url", "urlhaus_link"}
	csvDateColumns        = []string{"publisheddate", "published", "date", "dateadded", "firstseen"}
)

// CSVFetcher parses comma-separated indicator dumps. URLhaus-style dumps
// comment out their own header line ("# id,dateadded,url,..."), so a comment
// line naming known columns is recovered as the header; otherwise the first
// non-comment line is the header. A malformed row is skipped, not fatal to
// the fetch.
type CSVFetcher struct {
	Client *http.Client
}

func (f *CSVFetcher) Fetch(ctx context.Context, src model.Source) ([]model.RawRecord, error) {
	resp, err := get(ctx, f.Client, src.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := readHeader(reader)
	if err != nil {
		return nil, &FormatError{URL: src.URL, Err: err}
	}
	idCol := findColumn(header, csvIDColumns, 0)
	descCol := findColumn(header, csvDescriptionColumns, 1)
	linkCol := findColumn(header, csvLinkColumns, -1)
	dateCol := findColumn(header, csvDateColumns, 2)

	var records []model.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip it, keep the rest of the file.
			continue
		}
		if len(row) > 0 && strings.HasPrefix(row[0], "#") {
			// Trailing comment lines ("# number of entries: ...").
			continue
		}
		rec := model.RawRecord{
			Format:      model.FormatCSV,
			ID:          field(row, idCol),
			Description: field(row, descCol),
			Link:        field(row, linkCol),
			Published:   field(row, dateCol),
		}
		if rec.ID == "" && rec.Link == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// readHeader scans past leading comment lines to the column header. A
// comment line that names known columns once the "#" is stripped is the
// header itself, commented out the way URLhaus dumps publish it.
func readHeader(reader *csv.Reader) ([]string, error) {
	for {
		row, err := reader.Read()
		if err != nil {
			return nil, err
		}
		if len(row) > 0 && strings.HasPrefix(row[0], "#") {
			candidate := append([]string{strings.TrimPrefix(row[0], "#")}, row[1:]...)
			if looksLikeHeader(candidate) {
				return candidate, nil
			}
			continue
		}
		return row, nil
	}
}

// looksLikeHeader reports whether the row names at least one known id, link,
// or date column.
func looksLikeHeader(row []string) bool {
	for _, candidates := range [][]string{csvIDColumns, csvLinkColumns, csvDateColumns} {
		if findColumn(row, candidates, -1) >= 0 {
			return true
		}
	}
	return false
}

// findColumn returns the index of the first header matching any candidate
// name, or the positional fallback (-1 for none).
func findColumn(header []string, candidates []string, fallback int) int {
	for _, want := range candidates {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				return i
			}
		}
	}
	if fallback >= len(header) {
		return -1
	}
	return fallback
}

func field(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
