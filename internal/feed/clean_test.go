package feed

import "testing"

func TestCleanTextStripsMarkup(t *testing.T) {
	in := `<div><h2>Heading</h2><p>First  paragraph with <a href="#">a link</a>.</p><p>Second &amp; final.</p></div>`
	want := "Heading\nFirst paragraph with a link.\nSecond & final."
	if got := CleanText(in); got != want {
		t.Fatalf("CleanText = %q, want %q", got, want)
	}
}

func TestCleanTextCapsBlankLines(t *testing.T) {
	in := "line one\n\n\n\n\nline two"
	want := "line one\n\nline two"
	if got := CleanText(in); got != want {
		t.Fatalf("CleanText = %q, want %q", got, want)
	}
}

func TestCleanTextPlainPassthrough(t *testing.T) {
	if got := CleanText("already   plain\ttext"); got != "already plain text" {
		t.Fatalf("CleanText = %q", got)
	}
	if got := CleanText(""); got != "" {
		t.Fatalf("CleanText(\"\") = %q", got)
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	in := "<p>Some <b>bold</b> claim.</p><p>More text.</p>"
	once := CleanText(in)
	twice := CleanText(once)
	if once != twice {
		t.Fatalf("CleanText not idempotent: %q vs %q", once, twice)
	}
}
