package feed

import (
	"context"
	"testing"

	"github.com/openthreatiq/threatiq/internal/model"
)

func TestPlaintextFetchAssignsOrdinalIDs(t *testing.T) {
	body := "http://phish.example/login\n" +
		"\n" +
		"# comment line\n" +
		"http://phish.example/verify\n" +
		"not-a-url indicator\n"
	srv := serveBody(body)
	defer srv.Close()

	src := model.Source{URL: srv.URL, Source: "OpenPhish", Category: model.CategoryPhishing, Format: model.FormatPlaintext}
	f := &PlaintextFetcher{Client: srv.Client()}
	records, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Ordinals count only non-empty, non-comment lines.
	wantIDs := []string{"OpenPhish-1", "OpenPhish-2", "OpenPhish-3"}
	for i, want := range wantIDs {
		if records[i].ID != want {
			t.Fatalf("records[%d].ID = %q, want %q", i, records[i].ID, want)
		}
	}

	if records[0].Link != "http://phish.example/login" {
		t.Fatalf("URL lines should set the link, got %q", records[0].Link)
	}
	if records[2].Link != "" {
		t.Fatalf("non-URL lines should not set a link, got %q", records[2].Link)
	}
	if records[2].Description != "not-a-url indicator" {
		t.Fatalf("Description = %q", records[2].Description)
	}
}
