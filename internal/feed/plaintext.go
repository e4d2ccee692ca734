package feed

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openthreatiq/threatiq/internal/model"
)

// plaintextMaxLineBytes bounds a single line in a plain indicator list.
const plaintextMaxLineBytes = 64 * 1024

// PlaintextFetcher reads one record per non-empty line from a plain
// indicator list (e.g. a phishing URL dump). Lines carry no natural id, so
// an ordinal synthetic id "source-N" is assigned at parse time. Those ids
// are not stable across refreshes if the upstream line order shifts;
// duplicate detection for this format is best-effort only.
type PlaintextFetcher struct {
	Client *http.Client
}

func (f *PlaintextFetcher) Fetch(ctx context.Context, src model.Source) ([]model.RawRecord, error) {
	resp, err := get(ctx, f.Client, src.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), plaintextMaxLineBytes)

	var records []model.RawRecord
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n++
		rec := model.RawRecord{
			Format:      model.FormatPlaintext,
			ID:          fmt.Sprintf("%s-%d", src.Source, n),
			Description: line,
		}
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			rec.Link = line
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &FormatError{URL: src.URL, Err: err}
	}
	return records, nil
}
