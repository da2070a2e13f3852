/*
Package calendar provides calendar-day arithmetic and the visible-range model.

PURPOSE:
  This package contains the date leaf of the system: a Day value type
  normalized to midnight UTC, inclusive day counting, clamping, and the
  visible calendar range with its day-descriptor sequence.

KEY CONCEPTS IN THIS FILE (day.go):
  - Day: A calendar date with no time-of-day component
  - DaysBetween / SpanDays: exclusive vs inclusive day counting
  - Clamp: constrain a day into a [lo, hi] interval

DESIGN PRINCIPLES:
  1. Purity: no state, no clocks except the Today constructor
  2. Totality: every function returns a value for every input
  3. UTC only: a Day never carries a location, so arithmetic can
     never be skewed by DST transitions

SEE ALSO:
  - range.go: VisibleRange and the day-descriptor sequence
  - placement.go: projecting trips onto a range
*/
package calendar

import "time"

// Day is a calendar date, normalized to midnight UTC.
type Day struct {
	t time.Time
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an arbitrary instant to its calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func Today() Day {
	return DayOf(time.Now().UTC())
}

// dayLayouts are the accepted textual date formats, most specific first.
var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006",
	"01/02/2006",
}

// ParseDay parses a textual date. The boolean reports success; an
// unparseable or empty string yields (zero, false), never an error,
// because one bad record must not abort processing of the rest.
func ParseDay(s string) (Day, bool) {
	if s == "" {
		return Day{}, false
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DayOf(t), true
		}
	}
	return Day{}, false
}

// =============================================================================
// COMPARISON
// =============================================================================

func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }

func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }

// =============================================================================
// ARITHMETIC
// =============================================================================

func (d Day) AddDays(n int) Day   { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) AddMonths(n int) Day { return Day{t: d.t.AddDate(0, n, 0)} }

// DaysBetween returns the number of calendar days from `from` to `to`.
// Exclusive count: DaysBetween(d, d) == 0. Negative when to < from.
func DaysBetween(from, to Day) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// SpanDays returns the inclusive day count of [from, to]:
// SpanDays(d, d) == 1. Negative-or-zero results are possible for
// inverted inputs; callers that need a floor clamp it themselves.
func SpanDays(from, to Day) int {
	return DaysBetween(from, to) + 1
}

// Clamp constrains d into [lo, hi]. Assumes lo <= hi.
func (d Day) Clamp(lo, hi Day) Day {
	if d.Before(lo) {
		return lo
	}
	if d.After(hi) {
		return hi
	}
	return d
}

func MinDay(a, b Day) Day {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDay(a, b Day) Day {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// PROPERTIES
// =============================================================================

func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) DayOfMonth() int       { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }
func (d Day) Time() time.Time       { return d.t }

func (d Day) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Day) IsMonthStart() bool { return d.DayOfMonth() == 1 }

// IsWeekStart reports whether the day is a Monday.
func (d Day) IsWeekStart() bool { return d.Weekday() == time.Monday }

func (d Day) String() string { return d.t.Format("2006-01-02") }

// ISO returns the yyyy-mm-dd form, used as a cache key component.
func (d Day) ISO() string { return d.String() }
