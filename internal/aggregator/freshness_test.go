package aggregator

import (
	"testing"
	"time"

	"github.com/openthreatiq/threatiq/internal/model"
)

func TestIsStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		state model.RefreshState
		want  bool
	}{
		{
			name:  "never refreshed",
			state: model.RefreshState{IntervalMinutes: 30},
			want:  true,
		},
		{
			name:  "within interval",
			state: model.RefreshState{LastRefresh: now.Add(-10 * time.Minute), IntervalMinutes: 30},
			want:  false,
		},
		{
			name:  "exactly at interval",
			state: model.RefreshState{LastRefresh: now.Add(-30 * time.Minute), IntervalMinutes: 30},
			want:  true,
		},
		{
			name:  "past interval",
			state: model.RefreshState{LastRefresh: now.Add(-45 * time.Minute), IntervalMinutes: 30},
			want:  true,
		},
		{
			name:  "zero interval falls back to default",
			state: model.RefreshState{LastRefresh: now.Add(-10 * time.Minute)},
			want:  false,
		},
	}

	for _, c := range cases {
		if got := IsStale(c.state, now); got != c.want {
			t.Fatalf("%s: IsStale = %v, want %v", c.name, got, c.want)
		}
	}
}
