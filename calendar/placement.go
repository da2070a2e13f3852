package calendar

// Placement is a trip's pixel-independent position inside a visible
// range, expressed in whole days from the range start.
type Placement struct {
	OffsetDays   int
	DurationDays int
}

// TripPlacement clamps the inclusive span [start, end] into the range
// and converts it to an offset/duration pair.
//
// Guarantees OffsetDays >= 0 and DurationDays >= 1 for any input that
// overlaps the range. Placement of a span that does not overlap the
// range at all is undefined; callers filter with VisibleRange.Overlaps
// first.
func TripPlacement(start, end Day, r VisibleRange) Placement {
	clampedStart := start.Clamp(r.Start, r.End)
	clampedEnd := end.Clamp(r.Start, r.End)

	offset := DaysBetween(r.Start, clampedStart)
	if offset < 0 {
		offset = 0
	}
	duration := SpanDays(clampedStart, clampedEnd)
	if duration < 1 {
		duration = 1
	}
	return Placement{OffsetDays: offset, DurationDays: duration}
}
