package feed

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiterCapsPerHost(t *testing.T) {
	hl := newHostLimiter(2, 0)
	ctx := context.Background()

	if err := hl.acquire(ctx, "a.example"); err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	if err := hl.acquire(ctx, "a.example"); err != nil {
		t.Fatalf("acquire 2: %v", err)
	}

	// Both slots held: a third acquire must block until the context dies.
	blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := hl.acquire(blocked, "a.example"); err == nil {
		t.Fatal("third acquire should block while both slots are held")
	}

	// A different host is unaffected.
	if err := hl.acquire(ctx, "b.example"); err != nil {
		t.Fatalf("acquire other host: %v", err)
	}
	hl.release("b.example")

	// Releasing a slot unblocks the host again.
	hl.release("a.example")
	if err := hl.acquire(ctx, "a.example"); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestHostLimiterSpacesRequests(t *testing.T) {
	const spacing = 60 * time.Millisecond
	hl := newHostLimiter(1, spacing)
	ctx := context.Background()

	if err := hl.acquire(ctx, "a.example"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	start := time.Now()
	hl.release("a.example")

	if err := hl.acquire(ctx, "a.example"); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	hl.release("a.example")
	if elapsed := time.Since(start); elapsed < spacing {
		t.Fatalf("second request after %v, want at least %v between requests", elapsed, spacing)
	}
}

func TestRequestHost(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://news.example/article/1", "news.example"},
		{"https://news.example:8443/a", "news.example:8443"},
		{"not a url", "not a url"},
	}
	for _, c := range cases {
		if got := requestHost(c.in); got != c.want {
			t.Fatalf("requestHost(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
