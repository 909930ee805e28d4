// Package marketclock maps wall-clock time to the NSE trading-session
// state. Pure functions, no I/O.
package marketclock

import (
	"time"

	"github.com/marketpulse/pulse/internal/core"
)

// IST is the fixed exchange timezone (UTC+5:30). A fixed zone avoids a
// dependency on the host tzdata.
var IST = time.FixedZone("IST", int(5*time.Hour+30*time.Minute)/int(time.Second))

// Session boundaries in minutes from midnight IST.
const (
	openMinute  = 9*60 + 15  // 9:15 AM
	closeMinute = 15*60 + 30 // 3:30 PM
)

// Status returns the session state for the given instant.
func Status(now time.Time) core.SessionState {
	ist := now.In(IST)

	switch ist.Weekday() {
	case time.Saturday, time.Sunday:
		return core.SessionClosed
	}

	minute := ist.Hour()*60 + ist.Minute()
	switch {
	case minute < openMinute:
		return core.SessionPreOpen
	case minute > closeMinute:
		return core.SessionPostClose
	default:
		return core.SessionOpen
	}
}

// IsOpen reports whether the regular trading session is in progress.
func IsOpen(now time.Time) bool {
	return Status(now) == core.SessionOpen
}

// SessionLabel returns the display label for a session state.
func SessionLabel(state core.SessionState) string {
	switch state {
	case core.SessionPreOpen:
		return "Pre-Market (9:00-9:15 AM)"
	case core.SessionOpen:
		return "Regular Trading (9:15 AM-3:30 PM)"
	case core.SessionPostClose:
		return "After Market (3:30-4:00 PM)"
	default:
		return "Market Closed"
	}
}
