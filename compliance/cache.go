package compliance

import (
	"sync"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/trip"
)

// Cache memoizes both compliance results per employee.
//
// The per-trip status index is rebuilt for an employee's whole trip set
// whenever any of their trips changes. Risk snapshots are memoized per
// (employee, date) and invalidated per employee on any trip mutation.
// Entries are replaced, never edited in place.
type Cache struct {
	mu     sync.RWMutex
	cfg    Config
	status map[string]map[string]TripStatus
	risk   map[riskKey]RiskSnapshot
}

type riskKey struct {
	EmployeeID string
	ISODate    string
}

func NewCache(cfg Config) *Cache {
	return &Cache{
		cfg:    cfg,
		status: make(map[string]map[string]TripStatus),
		risk:   make(map[riskKey]RiskSnapshot),
	}
}

// StatusIndex returns the cached per-trip status index for an employee,
// computing it from the given trips on a miss.
func (c *Cache) StatusIndex(employeeID string, trips []trip.Trip) map[string]TripStatus {
	c.mu.RLock()
	index, ok := c.status[employeeID]
	c.mu.RUnlock()
	if ok {
		return index
	}

	index = BuildTripStatusIndex(trips, c.cfg)
	c.mu.Lock()
	c.status[employeeID] = index
	c.mu.Unlock()
	return index
}

// RiskAt returns the memoized risk snapshot for (employee, date),
// computing it from the given trips on a miss.
func (c *Cache) RiskAt(employeeID string, trips []trip.Trip, date calendar.Day) RiskSnapshot {
	k := riskKey{EmployeeID: employeeID, ISODate: date.ISO()}

	c.mu.RLock()
	snap, ok := c.risk[k]
	c.mu.RUnlock()
	if ok {
		return snap
	}

	snap = RiskAt(trips, date)
	c.mu.Lock()
	c.risk[k] = snap
	c.mu.Unlock()
	return snap
}

// InvalidateEmployee drops every cached result for one employee. Called
// after any mutation of that employee's trips.
func (c *Cache) InvalidateEmployee(employeeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.status, employeeID)
	for k := range c.risk {
		if k.EmployeeID == employeeID {
			delete(c.risk, k)
		}
	}
}

// Reset drops everything, used when the snapshot is replaced wholesale.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = make(map[string]map[string]TripStatus)
	c.risk = make(map[riskKey]RiskSnapshot)
}
