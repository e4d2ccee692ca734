// Package extract recovers full article text from web pages, best-effort.
package extract

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/openthreatiq/threatiq/internal/feed"
)

// minArticleLength is the acceptance threshold for an extraction candidate.
// Shorter matches are likely navigation chrome or a mis-extraction and are
// rejected in favor of the next heuristic.
const minArticleLength = 200

// containerSelectors matches known article content containers, tried in
// order before falling back to bare paragraph text.
var containerSelectors = []string{
	"[itemprop='articleBody']",
	"div.article-content",
	"div.article_content",
	"div.post-content",
	"div.entry-content",
	"article",
}

// Extractor fetches a page and walks an ordered fallback chain for its
// article body: schema.org JSON-LD articleBody, then known content
// containers, then all paragraph text. Every failure mode is a normal
// "no enrichment available" outcome.
type Extractor struct {
	client *http.Client
}

// New creates an extractor using the given HTTP client.
func New(client *http.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract returns the full article text for the URL, or "" when no candidate
// clears the minimum length threshold. Callers keep their existing summary on
// an empty return.
func (e *Extractor) Extract(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", feed.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		log.Printf("extract: fetch %s: %v", pageURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	return fromDocument(doc)
}

// fromDocument runs the extraction chain over a parsed page. First success
// wins.
func fromDocument(doc *goquery.Document) string {
	if body := jsonLDArticleBody(doc); accept(body) {
		return body
	}
	for _, selector := range containerSelectors {
		if body := containerText(doc, selector); accept(body) {
			return body
		}
	}
	if body := paragraphText(doc); accept(body) {
		return body
	}
	return ""
}

func accept(body string) bool {
	return len(body) >= minArticleLength
}

// jsonLDArticleBody looks for schema.org Article/NewsArticle markup embedded
// as JSON-LD and returns its articleBody field.
func jsonLDArticleBody(doc *goquery.Document) string {
	var body string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw interface{}
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		if found := articleBodyFromLD(raw); found != "" {
			body = found
			return false
		}
		return true
	})
	return feed.CollapseWhitespace(body)
}

// articleBodyFromLD walks a decoded JSON-LD value, which may be a single
// object, an array of objects, or a @graph wrapper.
func articleBodyFromLD(raw interface{}) string {
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if body := articleBodyFromLD(item); body != "" {
				return body
			}
		}
	case map[string]interface{}:
		if isArticleType(v["@type"]) {
			if body, ok := v["articleBody"].(string); ok {
				return body
			}
		}
		if graph, ok := v["@graph"]; ok {
			return articleBodyFromLD(graph)
		}
	}
	return ""
}

func isArticleType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Article" || v == "NewsArticle" || v == "BlogPosting"
	case []interface{}:
		for _, item := range v {
			if isArticleType(item) {
				return true
			}
		}
	}
	return false
}

// containerText extracts heading, paragraph, and list text in document order
// from the first node matching the selector.
func containerText(doc *goquery.Document, selector string) string {
	container := doc.Find(selector).First()
	if container.Length() == 0 {
		return ""
	}
	var parts []string
	container.Find("h1, h2, h3, h4, p, li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		// A container with bare text and no block children.
		return feed.CollapseWhitespace(container.Text())
	}
	return feed.CollapseWhitespace(strings.Join(parts, "\n\n"))
}

// paragraphText is the generic fallback: every paragraph on the page.
func paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return feed.CollapseWhitespace(strings.Join(parts, "\n\n"))
}
