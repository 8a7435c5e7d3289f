// Package localdate provides timezone-local calendar dates and wall-clock
// times of day.
//
// Attendance is keyed by the school's local calendar date, not by a UTC
// instant: a record submitted at 08:20 Tashkent time belongs to that Tashkent
// date even when UTC is still on the previous day. Date carries no location so
// two dates compare by calendar value alone; the location is applied once, at
// the point a time.Time is converted.
package localdate

import (
	"fmt"
	"time"
)

// Layout is the canonical wire and storage format for dates.
const Layout = "2006-01-02"

// Date is a calendar date with no time-of-day or location component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime extracts the calendar date of t as observed in loc.
func FromTime(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) Date {
	return FromTime(time.Now(), loc)
}

// Parse parses a date in the canonical YYYY-MM-DD layout.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date shifted by n calendar days, carrying across month
// and year boundaries via time.Date normalization.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	y, m, day := t.Date()
	return Date{Year: y, Month: m, Day: day}
}

// Compare orders dates chronologically: -1 if d precedes other, 0 if equal,
// +1 if d follows other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// MonthRange returns the first and last calendar day of the given month,
// using the true month length (28-31 days).
func MonthRange(year int, month time.Month) (first, last Date) {
	first = Date{Year: year, Month: month, Day: 1}
	// Day 0 of the following month normalizes to the last day of this one.
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	y, m, d := end.Date()
	last = Date{Year: y, Month: m, Day: d}
	return first, last
}
