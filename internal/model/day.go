package model

import (
	"fmt"
	"time"
)

// DayFormat is the string representation of a Day (ISO-8601 date).
const DayFormat = "2006-01-02"

// Day represents a calendar day at UTC. Price quotes are keyed by Day,
// never by full timestamps.
type Day struct {
	y int
	m time.Month
	d int
}

// NewDay returns a normalized Day for the given year, month and day.
func NewDay(year int, month time.Month, day int) Day {
	d := Day{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// DayOf returns the Day containing t, evaluated in UTC.
func DayOf(t time.Time) Day {
	return NewDay(t.UTC().Date())
}

// DayOfMillis returns the Day containing the given millisecond epoch timestamp.
func DayOfMillis(ms int64) Day {
	return DayOf(time.UnixMilli(ms))
}

// ParseDay parses a Day from its ISO-8601 form ("2022-01-12").
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q (want %q): %w", s, DayFormat, err)
	}
	return NewDay(t.Date()), nil
}

// MustParseDay is like ParseDay but panics on error. For tests and constants.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the canonical time for the day: midnight UTC.
func (d Day) Time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly before x.
func (d Day) Before(x Day) bool { return d.Time().Before(x.Time()) }

// After reports whether d is strictly after x.
func (d Day) After(x Day) bool { return d.Time().After(x.Time()) }

// Next returns the following calendar day.
func (d Day) Next() Day { return NewDay(d.y, d.m, d.d+1) }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d == Day{} }

// String formats the day as ISO-8601.
func (d Day) String() string { return d.Time().Format(DayFormat) }
