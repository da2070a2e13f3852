/*
Package trip defines the canonical trip and employee model and the
normalization of raw backend records into it.

PURPOSE:
  The backend speaks a loose JSON dialect: field-name aliases, missing
  exit dates, optional precomputed day counts. This package turns that
  into a strict canonical Trip (inclusive [Start, End], End >= Start,
  DurationDays >= 1) that every downstream component can trust.

KEY CONCEPTS:
  - RawTrip: the wire record, every alias spelled out
  - Trip: the canonical record, invariants enforced
  - Snapshot: the in-memory employee + trip state, replaced as a whole

SEE ALSO:
  - normalize.go: RawTrip -> Trip
  - snapshot.go: snapshot assembly and patching
*/
package trip

import "github.com/warp/trip-engine/calendar"

// Trip is one employee's stay in a tracked country, [Start, End]
// inclusive. Created only by Normalize; never partially patched.
type Trip struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Country      string
	Start        calendar.Day
	End          calendar.Day
	DurationDays int
	JobRef       string
	Purpose      string

	// Ghosted trips render de-emphasized but still count toward the
	// rolling budget.
	Ghosted bool
}

// Employee as rendered: one calendar row each.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// RawTrip is a trip record as the backend sends it. Several generations
// of the API used different field names for the same thing; every alias
// is accepted and the first non-empty one wins, in declaration order.
type RawTrip struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Country      string `json:"country,omitempty"`

	// Entry date aliases.
	EntryDate string `json:"entry_date,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	Start     string `json:"start,omitempty"`
	From      string `json:"from,omitempty"`

	// Exit date aliases.
	ExitDate string `json:"exit_date,omitempty"`
	EndDate  string `json:"end_date,omitempty"`
	End      string `json:"end,omitempty"`
	To       string `json:"to,omitempty"`
	Until    string `json:"until,omitempty"`

	JobRef  string `json:"job_ref,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Ghosted bool   `json:"ghosted,omitempty"`

	// Backend-computed day count. Treated as a hint only; duration is
	// always recomputed from the normalized dates.
	TravelDays int `json:"travel_days,omitempty"`
}

// SnapshotPayload is the full-state response of GET /api/trips.
type SnapshotPayload struct {
	Employees []Employee `json:"employees"`
	Trips     []RawTrip  `json:"trips"`
}
