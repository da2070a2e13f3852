package compliance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/trip-engine/trip"
)

// Utilization returns daysUsed as a percentage of the 90-day budget,
// rounded to one decimal place. Decimal arithmetic keeps report
// rounding deterministic across platforms.
func Utilization(daysUsed int) decimal.Decimal {
	return decimal.NewFromInt(int64(daysUsed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(CriticalThreshold)).
		Round(1)
}

// ReportLine is one trip's row in a compliance report.
type ReportLine struct {
	TripID      string          `json:"trip_id"`
	Country     string          `json:"country"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Days        int             `json:"days"`
	Status      Status          `json:"status"`
	DaysUsed    int             `json:"days_used"`
	Utilization decimal.Decimal `json:"utilization_pct"`
}

// Report summarizes one employee's compliance standing.
type Report struct {
	EmployeeID   string       `json:"employee_id"`
	EmployeeName string       `json:"employee_name"`
	Lines        []ReportLine `json:"lines"`
	WorstStatus  Status       `json:"worst_status"`
}

// BuildReport assembles the per-trip report for one employee, lines
// ordered by trip start date.
func BuildReport(employee trip.Employee, trips []trip.Trip, cfg Config) Report {
	index := BuildTripStatusIndex(trips, cfg)

	sorted := make([]trip.Trip, len(trips))
	copy(sorted, trips)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].ID < sorted[j].ID
	})

	report := Report{
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		WorstStatus:  StatusSafe,
	}
	for _, t := range sorted {
		st := index[t.ID]
		report.Lines = append(report.Lines, ReportLine{
			TripID:      t.ID,
			Country:     t.Country,
			Start:       t.Start.String(),
			End:         t.End.String(),
			Days:        t.DurationDays,
			Status:      st.Status,
			DaysUsed:    st.DaysUsed,
			Utilization: Utilization(st.DaysUsed),
		})
		if worseThan(st.Status, report.WorstStatus) {
			report.WorstStatus = st.Status
		}
	}
	return report
}

func worseThan(a, b Status) bool {
	rank := map[Status]int{StatusSafe: 0, StatusWarning: 1, StatusCritical: 2}
	return rank[a] > rank[b]
}
