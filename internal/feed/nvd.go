package feed

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/openthreatiq/threatiq/internal/model"
)

// nvdMaxResponseBytes caps the decompressed NVD feed size.
const nvdMaxResponseBytes = 64 << 20 // 64MB

// CompressedJSONFetcher downloads a gzip-compressed NVD-style JSON
// vulnerability feed and extracts id/description/published-date triplets.
type CompressedJSONFetcher struct {
	Client *http.Client
}

// nvdFeed mirrors the NVD JSON 1.1 feed structure down to the fields we use.
type nvdFeed struct {
	CVEItems []struct {
		CVE struct {
			Meta struct {
				ID string `json:"ID"`
			} `json:"CVE_data_meta"`
			Description struct {
				Data []struct {
					Value string `json:"value"`
				} `json:"description_data"`
			} `json:"description"`
		} `json:"cve"`
		PublishedDate string `json:"publishedDate"`
	} `json:"CVE_Items"`
}

func (f *CompressedJSONFetcher) Fetch(ctx context.Context, src model.Source) ([]model.RawRecord, error) {
	resp, err := get(ctx, f.Client, src.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, &FormatError{URL: src.URL, Err: err}
	}
	defer gz.Close()

	var data nvdFeed
	if err := json.NewDecoder(io.LimitReader(gz, nvdMaxResponseBytes)).Decode(&data); err != nil {
		return nil, &FormatError{URL: src.URL, Err: err}
	}

	records := make([]model.RawRecord, 0, len(data.CVEItems))
	for _, item := range data.CVEItems {
		if item.CVE.Meta.ID == "" {
			continue
		}
		description := ""
		if len(item.CVE.Description.Data) > 0 {
			description = item.CVE.Description.Data[0].Value
		}
		records = append(records, model.RawRecord{
			Format:      model.FormatCompressedJSON,
			ID:          item.CVE.Meta.ID,
			Description: description,
			Published:   item.PublishedDate,
		})
	}
	return records, nil
}
