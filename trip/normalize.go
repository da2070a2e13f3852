package trip

import (
	"github.com/sirupsen/logrus"

	"github.com/warp/trip-engine/calendar"
)

// Normalize converts a raw record into a canonical Trip.
//
// Pure and total: it never fails loudly. A record with no parseable
// entry date yields nil, which callers must filter out before building
// any index. The exit date defaults to the entry date when absent or
// unparseable, and is clamped up to the entry date so End >= Start and
// DurationDays >= 1 always hold.
func Normalize(raw RawTrip) *Trip {
	start, ok := firstParseableDay(raw.EntryDate, raw.StartDate, raw.Start, raw.From)
	if !ok {
		return nil
	}

	end, ok := firstParseableDay(raw.ExitDate, raw.EndDate, raw.End, raw.To, raw.Until)
	if !ok || end.Before(start) {
		end = start
	}

	return &Trip{
		ID:           raw.ID,
		EmployeeID:   raw.EmployeeID,
		EmployeeName: raw.EmployeeName,
		Country:      raw.Country,
		Start:        start,
		End:          end,
		DurationDays: calendar.SpanDays(start, end),
		JobRef:       raw.JobRef,
		Purpose:      raw.Purpose,
		Ghosted:      raw.Ghosted,
	}
}

// NormalizeAll normalizes a batch, dropping and logging unusable
// records so one bad row cannot abort the rest.
func NormalizeAll(raws []RawTrip, log logrus.FieldLogger) []Trip {
	trips := make([]Trip, 0, len(raws))
	for _, raw := range raws {
		t := Normalize(raw)
		if t == nil {
			if log != nil {
				log.WithFields(logrus.Fields{
					"trip_id":     raw.ID,
					"employee_id": raw.EmployeeID,
				}).Warn("dropping trip with no usable entry date")
			}
			continue
		}
		trips = append(trips, *t)
	}
	return trips
}

func firstParseableDay(candidates ...string) (calendar.Day, bool) {
	for _, s := range candidates {
		if d, ok := calendar.ParseDay(s); ok {
			return d, true
		}
	}
	return calendar.Day{}, false
}
