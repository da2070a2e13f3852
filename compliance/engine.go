/*
Package compliance computes rolling-window travel-day usage against the
Schengen 90-in-180 budget.

PURPOSE:
  Two related but deliberately separate algorithms live here:

  1. Per-trip status index (BuildTripStatusIndex): for each trip, the
     travel days consumed in the 180-day window ending on that trip's
     own end date. Answers "was this trip itself a violation". Sliding
     FIFO window over trips sorted by start date.

  2. Point-in-time risk snapshot (RollingDaysUsed + ResolveRiskLevel):
     travel days consumed in the 90-day window ending on an arbitrary
     date. Powers day-cell tinting and trip-bar coloring.

  The two use different window lengths (180 vs 90 days inclusive) and
  different cutoffs (70/90 vs 60/85/90). They are kept as separate
  named algorithms on purpose; see DESIGN.md for the open question on
  the drift between them.

DESIGN PRINCIPLES:
  1. Purity: both algorithms are functions of (trips, parameters) only
  2. Per employee: callers pass one employee's trips at a time
  3. Ghosted trips still count toward usage

SEE ALSO:
  - cache.go: memoization and invalidation
  - report.go: utilization percentages for reports
*/
package compliance

import (
	"sort"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/trip"
)

// =============================================================================
// WINDOW PARAMETERS
// =============================================================================

const (
	// CriticalThreshold is the Schengen hard limit: 90 days used.
	CriticalThreshold = 90

	// DefaultWarningThreshold is where trips start flagging as warning.
	DefaultWarningThreshold = 70

	// MaxWarningThreshold caps configured warning thresholds.
	MaxWarningThreshold = 70

	// tripWindowLookbackDays anchors the per-trip window: it starts
	// 179 days before the trip's end date, a 180-day inclusive span.
	tripWindowLookbackDays = 179

	// rollingLimitDays is the point-in-time window length. The window
	// start is limit-1 days before the target, a 90-day inclusive span.
	rollingLimitDays = 90
)

// Config carries the tunable threshold. The critical threshold is not
// tunable; it is the legal limit.
type Config struct {
	WarningThreshold int
}

// EffectiveWarningThreshold clamps the configured value to
// [0, MaxWarningThreshold]; zero or negative means the default.
func (c Config) EffectiveWarningThreshold() int {
	w := c.WarningThreshold
	if w <= 0 {
		return DefaultWarningThreshold
	}
	if w > MaxWarningThreshold {
		return MaxWarningThreshold
	}
	return w
}

// =============================================================================
// PER-TRIP STATUS
// =============================================================================

// Status classifies a single trip against the 90/180 budget.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// TripStatus is the per-trip compliance result, keyed by trip id.
type TripStatus struct {
	Status   Status
	DaysUsed int
}

// BuildTripStatusIndex computes, for every trip of one employee, how
// many budget days were consumed as of that trip's end date.
//
// Trips are processed sorted by start date (ties broken by id). A FIFO
// window holds the trips still able to overlap the current window
// [end-179d, end]; trips whose end predates the window start are
// evicted from the front and never revisited.
func BuildTripStatusIndex(trips []trip.Trip, cfg Config) map[string]TripStatus {
	warning := cfg.EffectiveWarningThreshold()

	sorted := make([]trip.Trip, len(trips))
	copy(sorted, trips)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].ID < sorted[j].ID
	})

	index := make(map[string]TripStatus, len(sorted))
	var active []trip.Trip

	for _, current := range sorted {
		windowStart := current.End.AddDays(-tripWindowLookbackDays)

		evict := 0
		for evict < len(active) && active[evict].End.Before(windowStart) {
			evict++
		}
		active = active[evict:]
		active = append(active, current)

		daysUsed := 0
		for _, t := range active {
			daysUsed += overlapDays(t.Start, t.End, windowStart, current.End)
		}

		index[current.ID] = TripStatus{
			Status:   classifyTrip(daysUsed, warning),
			DaysUsed: daysUsed,
		}
	}
	return index
}

func classifyTrip(daysUsed, warningThreshold int) Status {
	switch {
	case daysUsed >= CriticalThreshold:
		return StatusCritical
	case daysUsed > warningThreshold:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// =============================================================================
// POINT-IN-TIME RISK
// =============================================================================

// RiskLevel classifies a date's rolling usage for day-cell tinting.
// Distinct scale from Status; the two systems are intentionally not
// unified.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskCaution  RiskLevel = "caution"
	RiskCritical RiskLevel = "critical"
)

const (
	riskSafeCeiling    = 60
	riskCautionCeiling = 85
)

// RiskSnapshot is the point-in-time usage for one employee and date.
type RiskSnapshot struct {
	Level    RiskLevel
	DaysUsed int
}

// RollingDaysUsed sums the travel days inside the 90-day window ending
// at the target date. Zero for an employee with no trips; adding an
// overlapping trip can only increase the result.
func RollingDaysUsed(trips []trip.Trip, target calendar.Day) int {
	windowStart := target.AddDays(-(rollingLimitDays - 1))
	daysUsed := 0
	for _, t := range trips {
		daysUsed += overlapDays(t.Start, t.End, windowStart, target)
	}
	return daysUsed
}

// ResolveRiskLevel maps rolling usage to a tint level.
func ResolveRiskLevel(daysUsed int) RiskLevel {
	switch {
	case daysUsed <= riskSafeCeiling:
		return RiskSafe
	case daysUsed <= riskCautionCeiling:
		return RiskCaution
	default:
		return RiskCritical
	}
}

// RiskAt computes the full snapshot for one date.
func RiskAt(trips []trip.Trip, target calendar.Day) RiskSnapshot {
	used := RollingDaysUsed(trips, target)
	return RiskSnapshot{Level: ResolveRiskLevel(used), DaysUsed: used}
}

// =============================================================================
// OVERLAP
// =============================================================================

// overlapDays returns the inclusive day count of the intersection of
// [aStart, aEnd] and [bStart, bEnd], clipped at both ends; disjoint
// spans contribute 0.
func overlapDays(aStart, aEnd, bStart, bEnd calendar.Day) int {
	start := calendar.MaxDay(aStart, bStart)
	end := calendar.MinDay(aEnd, bEnd)
	if end.Before(start) {
		return 0
	}
	return calendar.SpanDays(start, end)
}
