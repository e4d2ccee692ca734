package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// Paragraphs long enough to clear the minimum-length threshold.
const (
	para1 = "The attackers gained initial access through a carefully crafted phishing email carrying a malicious archive, which deployed a loader that fetched the second-stage payload from a previously compromised content delivery endpoint."
	para2 = "Once inside the network, the operators moved laterally for several days using stolen administrator credentials and living-off-the-land binaries, staging collected data in an obscure temp directory before exfiltration began."
	para3 = "Defenders are advised to rotate any credentials used on affected hosts, audit outbound traffic to newly registered domains, and apply the vendor patches released earlier this week to close the initial access vector."
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestChainPrefersJSONLDArticleBody(t *testing.T) {
	body := para1 + " " + para2
	html := `<html><head>
		<script type="application/ld+json">{"@type":"NewsArticle","articleBody":"` + body + `"}</script>
		</head><body>
		<article><p>Decoy text that should not win because structured markup is present and long enough to be the answer for this page layout.</p></article>
		</body></html>`

	got := fromDocument(parse(t, html))
	if got != body {
		t.Fatalf("expected JSON-LD articleBody to win, got %q", got)
	}
}

func TestChainIgnoresShortJSONLDMatch(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Article","articleBody":"too short"}</script>
		</head><body>
		<article><p>` + para1 + `</p><p>` + para2 + `</p></article>
		</body></html>`

	got := fromDocument(parse(t, html))
	if !strings.Contains(got, para1) || !strings.Contains(got, para2) {
		t.Fatalf("near-empty structured match should fall through to the container, got %q", got)
	}
}

func TestChainGenericArticleParagraphs(t *testing.T) {
	// A page containing only a generic <article> block with three paragraphs
	// and no structured markup.
	html := `<html><body><article>
		<p>` + para1 + `</p>
		<p>` + para2 + `</p>
		<p>` + para3 + `</p>
		</article></body></html>`

	got := fromDocument(parse(t, html))
	want := para1 + "\n\n" + para2 + "\n\n" + para3
	if got != want {
		t.Fatalf("article paragraphs = %q, want %q", got, want)
	}
}

func TestChainItempropContainerBeatsParagraphFallback(t *testing.T) {
	html := `<html><body>
		<div itemprop="articleBody"><p>` + para1 + `</p></div>
		<div class="comments"><p>` + para2 + `</p><p>` + para3 + `</p></div>
		</body></html>`

	got := fromDocument(parse(t, html))
	if got != para1 {
		t.Fatalf("itemprop container should win over page-wide paragraphs, got %q", got)
	}
}

func TestChainParagraphFallback(t *testing.T) {
	html := `<html><body>
		<div class="main"><p>` + para1 + `</p></div>
		<div class="more"><p>` + para2 + `</p></div>
		</body></html>`

	got := fromDocument(parse(t, html))
	want := para1 + "\n\n" + para2
	if got != want {
		t.Fatalf("paragraph fallback = %q, want %q", got, want)
	}
}

func TestChainRejectsShortContent(t *testing.T) {
	html := `<html><body><article><p>Just a stub.</p></article></body></html>`
	if got := fromDocument(parse(t, html)); got != "" {
		t.Fatalf("short content should be a miss, got %q", got)
	}
}

func TestExtractNonHTMLIsAMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	e := New(srv.Client())
	if got := e.Extract(context.Background(), srv.URL); got != "" {
		t.Fatalf("non-HTML content should be a miss, got %q", got)
	}
}

func TestExtractNetworkFailureIsAMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	e := New(http.DefaultClient)
	if got := e.Extract(context.Background(), srv.URL); got != "" {
		t.Fatalf("network failure should be a miss, got %q", got)
	}
}

func TestExtractHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><article><p>` + para1 + `</p><p>` + para2 + `</p></article></body></html>`))
	}))
	defer srv.Close()

	e := New(srv.Client())
	got := e.Extract(context.Background(), srv.URL)
	if !strings.Contains(got, para1) || !strings.Contains(got, para2) {
		t.Fatalf("Extract = %q", got)
	}
}
