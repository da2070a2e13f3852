/*
Package render schedules calendar row construction under a bounded work
budget.

PURPOSE:
  Builds one visual row per filtered employee: the row shell, a tinted
  cell per visible day, and a bar per visible trip. All actual element
  construction goes through the RowSink interface, so this package owns
  the scheduling and backpressure while the host owns the pixels.

BACKPRESSURE:
  A monotonically decreasing operation budget caps total element count.
  Employees are processed in fixed-size batches with a yield to the
  host's frame/idle primitive between batches, so a pathological data
  set can never freeze the host for one long synchronous pass. When the
  budget runs out mid-batch, rendering stops immediately: the partial
  result is kept and the outcome is Overflow — distinct from NoData.
  There is no retry; the user narrows the filter or the range.

STATE MACHINE:
  idle -> rendering -> (complete | overflow)
  A render requested while one is in flight is rejected, never
  interleaved: concurrent row building would corrupt the shared budget
  counter.

SEE ALSO:
  - filter.go: debounced search filter feeding the employee set
*/
package render

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/compliance"
	"github.com/warp/trip-engine/trip"
)

// =============================================================================
// CONTRACTS
// =============================================================================

// RowSink receives the elements the scheduler decides to build. A DOM
// binding, a terminal renderer, and a test recorder all implement it.
type RowSink interface {
	// StartRow opens a new employee row.
	StartRow(e trip.Employee)

	// DayCell adds one tinted day cell to the current row.
	DayCell(day calendar.DayInfo, risk compliance.RiskSnapshot)

	// TripBar adds one trip bar to the current row.
	TripBar(t trip.Trip, p calendar.Placement, st compliance.TripStatus)
}

// Yielder hands control back to the host between batches — the
// animation-frame/idle callback primitive of whatever embeds the
// engine.
type Yielder interface {
	Yield(ctx context.Context) error
}

// YieldFunc adapts a function to the Yielder interface.
type YieldFunc func(ctx context.Context) error

func (f YieldFunc) Yield(ctx context.Context) error { return f(ctx) }

// Immediate is a Yielder that only checks for cancellation. Used in
// tests and the CLI, where there is no frame to wait for.
var Immediate Yielder = YieldFunc(func(ctx context.Context) error {
	return ctx.Err()
})

// =============================================================================
// SCHEDULER
// =============================================================================

// Per-element budget costs. A row shell and a trip bar are two discrete
// host operations each (container + label); a day cell is one.
const (
	costRow     = 2
	costDayCell = 1
	costTripBar = 2
)

const (
	// DefaultBudget is the operation ceiling for one full render.
	DefaultBudget = 5000

	// DefaultBatchSize is how many employee rows are built between
	// yields.
	DefaultBatchSize = 5
)

// Outcome is the terminal state of one render pass.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomeOverflow Outcome = "overflow"
	OutcomeNoData   Outcome = "no_data"
)

// Result reports what one render pass produced.
type Result struct {
	Outcome  Outcome
	RowsDone int
	OpsUsed  int
}

// ErrRenderInProgress rejects re-entrant render requests.
var ErrRenderInProgress = errors.New("render already in progress")

// Scheduler builds calendar rows under the budget. Safe for a single
// caller; concurrent Render calls are rejected, not serialized.
type Scheduler struct {
	Budget    int
	BatchSize int
	Yield     Yielder
	Log       logrus.FieldLogger

	mu        sync.Mutex
	rendering bool
}

func NewScheduler(log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		Budget:    DefaultBudget,
		BatchSize: DefaultBatchSize,
		Yield:     Immediate,
		Log:       log,
	}
}

// Render builds one row per employee matching the filter query, in
// snapshot order, charging every element against the budget.
func (s *Scheduler) Render(
	ctx context.Context,
	snap trip.Snapshot,
	vr calendar.VisibleRange,
	cache *compliance.Cache,
	sink RowSink,
	query string,
) (Result, error) {
	s.mu.Lock()
	if s.rendering {
		s.mu.Unlock()
		return Result{}, ErrRenderInProgress
	}
	s.rendering = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.rendering = false
		s.mu.Unlock()
	}()

	employees := snap.FilterEmployees(query)
	if len(employees) == 0 {
		return Result{Outcome: OutcomeNoData}, nil
	}

	days := calendar.RangeDays(vr, s.Log)
	byEmp := snap.TripsByEmployee()

	budget := s.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	batch := s.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	remaining := budget
	rows := 0

	for i, e := range employees {
		if i > 0 && i%batch == 0 {
			if err := s.yield(ctx); err != nil {
				return Result{Outcome: OutcomeOverflow, RowsDone: rows, OpsUsed: budget - remaining}, err
			}
		}

		trips := byEmp[e.ID]
		if !s.buildRow(e, trips, days, vr, cache, sink, &remaining) {
			if s.Log != nil {
				s.Log.WithFields(logrus.Fields{
					"rows_done": rows,
					"employees": len(employees),
					"budget":    budget,
				}).Warn("render budget exhausted, keeping partial result")
			}
			return Result{Outcome: OutcomeOverflow, RowsDone: rows, OpsUsed: budget - remaining}, nil
		}
		rows++
	}

	return Result{Outcome: OutcomeComplete, RowsDone: rows, OpsUsed: budget - remaining}, nil
}

// buildRow emits one employee row. Returns false the moment the budget
// cannot cover the next element; whatever was already emitted stays.
func (s *Scheduler) buildRow(
	e trip.Employee,
	trips []trip.Trip,
	days []calendar.DayInfo,
	vr calendar.VisibleRange,
	cache *compliance.Cache,
	sink RowSink,
	remaining *int,
) bool {
	if !charge(remaining, costRow) {
		return false
	}
	sink.StartRow(e)

	for _, day := range days {
		if !charge(remaining, costDayCell) {
			return false
		}
		sink.DayCell(day, cache.RiskAt(e.ID, trips, day.Date))
	}

	index := cache.StatusIndex(e.ID, trips)
	for _, t := range trips {
		if !vr.Overlaps(t.Start, t.End) {
			continue
		}
		if !charge(remaining, costTripBar) {
			return false
		}
		sink.TripBar(t, calendar.TripPlacement(t.Start, t.End, vr), index[t.ID])
	}
	return true
}

func (s *Scheduler) yield(ctx context.Context) error {
	y := s.Yield
	if y == nil {
		y = Immediate
	}
	return y.Yield(ctx)
}

func charge(remaining *int, cost int) bool {
	if *remaining < cost {
		return false
	}
	*remaining -= cost
	return true
}
