package aggregator

import (
	"time"

	"github.com/openthreatiq/threatiq/internal/model"
)

// IsStale reports whether a refresh cycle is due: either no refresh has ever
// completed, or the configured interval has elapsed since the last one.
// Interval changes take effect on the next check, not retroactively.
func IsStale(state model.RefreshState, now time.Time) bool {
	if state.LastRefresh.IsZero() {
		return true
	}
	interval := state.IntervalMinutes
	if interval <= 0 {
		interval = model.DefaultRefreshIntervalMinutes
	}
	return now.Sub(state.LastRefresh) >= time.Duration(interval)*time.Minute
}
