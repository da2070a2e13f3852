package trip

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Snapshot is the in-memory employee + trip state for one data load.
// It is treated as an immutable value: mutations return a new Snapshot
// rather than editing in place, so a render in progress never observes
// a half-applied change.
type Snapshot struct {
	Employees []Employee
	Trips     []Trip
}

// BuildSnapshot normalizes the payload into a snapshot.
//
// The employee set is the union of the backend's employee list and any
// employee referenced by a trip but missing from that list; the latter
// are synthesized with a placeholder name so every trip stays
// renderable even against stale employee data.
func BuildSnapshot(payload SnapshotPayload, log logrus.FieldLogger) Snapshot {
	trips := NormalizeAll(payload.Trips, log)

	known := make(map[string]bool, len(payload.Employees))
	employees := make([]Employee, 0, len(payload.Employees))
	for _, e := range payload.Employees {
		if known[e.ID] {
			continue
		}
		known[e.ID] = true
		employees = append(employees, e)
	}

	for _, t := range trips {
		if t.EmployeeID == "" || known[t.EmployeeID] {
			continue
		}
		known[t.EmployeeID] = true
		name := t.EmployeeName
		if name == "" {
			name = "Employee " + t.EmployeeID
		}
		employees = append(employees, Employee{ID: t.EmployeeID, Name: name, Active: true})
	}

	sort.SliceStable(employees, func(i, j int) bool {
		return employees[i].Name < employees[j].Name
	})

	return Snapshot{Employees: employees, Trips: trips}
}

// TripsByEmployee groups trips by employee id.
func (s Snapshot) TripsByEmployee() map[string][]Trip {
	byEmp := make(map[string][]Trip, len(s.Employees))
	for _, t := range s.Trips {
		byEmp[t.EmployeeID] = append(byEmp[t.EmployeeID], t)
	}
	return byEmp
}

// EmployeeTrips returns one employee's trips.
func (s Snapshot) EmployeeTrips(employeeID string) []Trip {
	var out []Trip
	for _, t := range s.Trips {
		if t.EmployeeID == employeeID {
			out = append(out, t)
		}
	}
	return out
}

// FindTrip returns the trip with the given id, or nil.
func (s Snapshot) FindTrip(id string) *Trip {
	for i := range s.Trips {
		if s.Trips[i].ID == id {
			return &s.Trips[i]
		}
	}
	return nil
}

// WithTrip returns a snapshot with the trip replaced wholesale (matched
// by id), or appended when no trip with that id exists. The server's
// returned representation always wins; there is no field-level merge.
func (s Snapshot) WithTrip(updated Trip) Snapshot {
	trips := make([]Trip, len(s.Trips))
	copy(trips, s.Trips)
	for i := range trips {
		if trips[i].ID == updated.ID {
			trips[i] = updated
			return Snapshot{Employees: s.Employees, Trips: trips}
		}
	}
	return Snapshot{Employees: s.Employees, Trips: append(trips, updated)}
}

// WithoutTrip returns a snapshot with the trip removed.
func (s Snapshot) WithoutTrip(id string) Snapshot {
	trips := make([]Trip, 0, len(s.Trips))
	for _, t := range s.Trips {
		if t.ID != id {
			trips = append(trips, t)
		}
	}
	return Snapshot{Employees: s.Employees, Trips: trips}
}

// FilterEmployees returns the employees whose name or id contains the
// query, case-insensitive. An empty query keeps everyone.
func (s Snapshot) FilterEmployees(query string) []Employee {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.Employees
	}
	var out []Employee
	for _, e := range s.Employees {
		if strings.Contains(strings.ToLower(e.Name), query) ||
			strings.Contains(strings.ToLower(e.ID), query) {
			out = append(out, e)
		}
	}
	return out
}
