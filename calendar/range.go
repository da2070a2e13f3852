/*
range.go - The visible calendar range and its day-descriptor sequence

PURPOSE:
  Models the date span the calendar shows: a fixed lookback plus a
  configurable look-ahead, and the ordered day descriptors rendered as
  the calendar header and grid columns.

SAFETY:
  The day sequence is capped at 366 entries. A range that would exceed
  the cap is truncated and logged; an inverted range yields an empty
  sequence and a logged warning. Neither ever panics or loops without
  bound — a degraded calendar beats no calendar.

SEE ALSO:
  - day.go: Day arithmetic
  - placement.go: clamping trips into the range
*/
package calendar

import "github.com/sirupsen/logrus"

const (
	// LookbackDays is how far behind today the range starts. It covers a
	// full 180-day compliance window so every day that can still affect
	// the rolling budget is visible.
	LookbackDays = 180

	// MaxRangeDays caps the day-descriptor sequence. One leap year.
	MaxRangeDays = 366

	DefaultLookaheadWeeks = 6
	MinLookaheadWeeks     = 4
	MaxLookaheadWeeks     = 10
)

// VisibleRange is the inclusive [Start, End] span the calendar displays.
type VisibleRange struct {
	Start Day
	End   Day
}

// NewVisibleRange builds the range around a reference day: LookbackDays
// behind it, lookaheadWeeks ahead of it. The look-ahead is clamped to
// [MinLookaheadWeeks, MaxLookaheadWeeks]; zero or negative means default.
func NewVisibleRange(today Day, lookaheadWeeks int) VisibleRange {
	if lookaheadWeeks <= 0 {
		lookaheadWeeks = DefaultLookaheadWeeks
	}
	if lookaheadWeeks < MinLookaheadWeeks {
		lookaheadWeeks = MinLookaheadWeeks
	}
	if lookaheadWeeks > MaxLookaheadWeeks {
		lookaheadWeeks = MaxLookaheadWeeks
	}
	return VisibleRange{
		Start: today.AddDays(-LookbackDays),
		End:   today.AddDays(lookaheadWeeks * 7),
	}
}

// Contains reports whether d falls inside the range, inclusive.
func (r VisibleRange) Contains(d Day) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Overlaps reports whether the inclusive span [start, end] intersects
// the range at all. Trips failing this must not be placed.
func (r VisibleRange) Overlaps(start, end Day) bool {
	return !end.Before(r.Start) && !start.After(r.End)
}

// DayInfo describes one rendered calendar day.
type DayInfo struct {
	Date         Day
	DayOfMonth   int
	IsWeekend    bool
	IsMonthStart bool
	IsWeekStart  bool
}

// RangeDays produces the ordered day descriptors for the range.
//
// An inverted range (End before Start) returns an empty sequence and a
// logged warning. A range longer than MaxRangeDays is truncated to the
// first MaxRangeDays entries, also logged. The loop is bounded by the
// cap regardless of input.
func RangeDays(r VisibleRange, log logrus.FieldLogger) []DayInfo {
	if r.End.Before(r.Start) {
		if log != nil {
			log.WithFields(logrus.Fields{
				"start": r.Start.String(),
				"end":   r.End.String(),
			}).Warn("inverted visible range, rendering no days")
		}
		return nil
	}

	total := SpanDays(r.Start, r.End)
	if total > MaxRangeDays {
		if log != nil {
			log.WithFields(logrus.Fields{
				"start": r.Start.String(),
				"end":   r.End.String(),
				"days":  total,
				"cap":   MaxRangeDays,
			}).Warn("visible range exceeds day ceiling, truncating")
		}
		total = MaxRangeDays
	}

	days := make([]DayInfo, 0, total)
	current := r.Start
	for i := 0; i < total; i++ {
		days = append(days, DayInfo{
			Date:         current,
			DayOfMonth:   current.DayOfMonth(),
			IsWeekend:    current.IsWeekend(),
			IsMonthStart: current.IsMonthStart(),
			IsWeekStart:  current.IsWeekStart(),
		})
		current = current.AddDays(1)
	}
	return days
}
