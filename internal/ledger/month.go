// Package ledger aggregates expenses into monthly summaries, trends and savings projections.
package ledger

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month, independent of any time zone.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month t falls into when observed in loc.
func MonthOf(t time.Time, loc *time.Location) Month {
	t = t.In(loc)
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// String formats the month as YYYY-MM, the form stored in the months table.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Next returns the following month.
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Window returns the half-open range [first-of-month, first-of-next-month) in loc.
func (m Month) Window(loc *time.Location) Window {
	next := m.Next()
	return Window{
		Start: time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc),
		End:   time.Date(next.Year, next.Month, 1, 0, 0, 0, 0, loc),
	}
}

// Window is a half-open time range. Every spend aggregation and every reset
// uses it, so an expense created exactly at End belongs to the next month.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DaysLeft counts the days from now through the last day of its month, both inclusive.
func DaysLeft(now time.Time) int {
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return last - now.Day() + 1
}
