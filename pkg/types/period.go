package types

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for business dates. Pricing validity and
// reporting periods are day-granular; times of day never participate.
const DateLayout = "2006-01-02"

// Period is an inclusive day range used for growth baselines and reporting.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod builds a period after normalizing both bounds to UTC midnight.
func NewPeriod(start, end time.Time) (Period, error) {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		return Period{}, fmt.Errorf("period end %s precedes start %s", end.Format(DateLayout), start.Format(DateLayout))
	}
	return Period{Start: start, End: end}, nil
}

// ParsePeriod parses two DateLayout strings into a Period.
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period start %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period end %q: %w", end, err)
	}
	return NewPeriod(s, e)
}

// Contains reports whether t falls inside the period, bounds included.
func (p Period) Contains(t time.Time) bool {
	day := Midnight(t)
	return !day.Before(p.Start) && !day.After(p.End)
}

func (p Period) String() string {
	return p.Start.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

// Midnight truncates t to UTC midnight.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
