package markethours

import (
	"fmt"
	"time"
)

// US equity cash session: 09:30-16:00 Eastern, Monday through Friday.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 16
	CloseMinute = 0
)

// Gate decides whether the US stock market is open, so scheduled scans
// can skip runs outside the cash session.
type Gate struct {
	location *time.Location
}

// NewGate creates a gate for the US Eastern session
func NewGate() (*Gate, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("load US Eastern timezone: %w", err)
	}
	return &Gate{location: loc}, nil
}

// IsOpen reports whether the market is open at the given instant,
// with a human-readable reason for the decision.
func (g *Gate) IsOpen(now time.Time) (bool, string) {
	eastern := now.In(g.location)

	if wd := eastern.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false, fmt.Sprintf("market closed: weekend (%s)", wd)
	}

	open := time.Date(eastern.Year(), eastern.Month(), eastern.Day(), OpenHour, OpenMinute, 0, 0, g.location)
	close := time.Date(eastern.Year(), eastern.Month(), eastern.Day(), CloseHour, CloseMinute, 0, 0, g.location)

	switch {
	case eastern.Before(open):
		return false, fmt.Sprintf("market not open yet (opens 09:30 ET, currently %s)", eastern.Format("15:04 MST"))
	case eastern.After(close):
		return false, fmt.Sprintf("market closed (closes 16:00 ET, currently %s)", eastern.Format("15:04 MST"))
	default:
		return true, fmt.Sprintf("market is open (current time %s)", eastern.Format("15:04 MST"))
	}
}
