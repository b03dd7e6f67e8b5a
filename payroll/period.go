package payroll

import "time"

// =============================================================================
// PERIOD - Inclusive date range a wage record covers
// =============================================================================

// Period is the inclusive calendar-date range [Start, End] that a wage
// calculation covers. Both endpoints are part of the range.
type Period struct {
	Start Date
	End   Date
}

// Validate returns ErrInvalidPeriod when End precedes Start or either
// endpoint is missing.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidPeriod
	}
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains reports whether d falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the number of calendar days in the period, inclusive.
func (p Period) Days() int {
	return int(p.End.normalize().Sub(p.Start.normalize()).Hours()/24) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the full calendar month containing the given year
// and month, a convenience for monthly calculation runs.
func MonthPeriod(year int, month time.Month) Period {
	start := NewDate(year, month, 1)
	end := Date{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
	return Period{Start: start, End: end}
}

// WeekPeriod returns the Monday-to-Sunday week containing d.
func WeekPeriod(d Date) Period {
	offset := (int(d.Time.Weekday()) + 6) % 7 // Monday = 0
	start := d.AddDays(-offset)
	return Period{Start: start, End: start.AddDays(6)}
}
