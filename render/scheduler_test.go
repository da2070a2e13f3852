package render_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/compliance"
	"github.com/warp/trip-engine/render"
	"github.com/warp/trip-engine/trip"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type recordingSink struct {
	rows  int
	cells int
	bars  int
}

func (r *recordingSink) StartRow(trip.Employee)                                   { r.rows++ }
func (r *recordingSink) DayCell(calendar.DayInfo, compliance.RiskSnapshot)        { r.cells++ }
func (r *recordingSink) TripBar(trip.Trip, calendar.Placement, compliance.TripStatus) { r.bars++ }

func smallRange() calendar.VisibleRange {
	start := calendar.NewDay(2025, time.June, 1)
	return calendar.VisibleRange{Start: start, End: start.AddDays(9)} // 10 days
}

func snapshotWith(employees int, tripsPer int) trip.Snapshot {
	payload := trip.SnapshotPayload{}
	for e := 0; e < employees; e++ {
		id := fmt.Sprintf("e%d", e)
		payload.Employees = append(payload.Employees, trip.Employee{
			ID: id, Name: fmt.Sprintf("Employee %03d", e), Active: true,
		})
		for n := 0; n < tripsPer; n++ {
			payload.Trips = append(payload.Trips, trip.RawTrip{
				ID:         fmt.Sprintf("%s-t%d", id, n),
				EmployeeID: id,
				EntryDate:  "2025-06-03",
				ExitDate:   "2025-06-05",
			})
		}
	}
	return trip.BuildSnapshot(payload, nil)
}

func newTestScheduler(budget int) *render.Scheduler {
	s := render.NewScheduler(nil)
	s.Budget = budget
	return s
}

// =============================================================================
// OUTCOMES
// =============================================================================

func TestRender_Complete(t *testing.T) {
	snap := snapshotWith(3, 2)
	sink := &recordingSink{}
	cache := compliance.NewCache(compliance.Config{})

	result, err := newTestScheduler(1000).Render(context.Background(), snap, smallRange(), cache, sink, "")
	require.NoError(t, err)

	assert.Equal(t, render.OutcomeComplete, result.Outcome)
	assert.Equal(t, 3, result.RowsDone)
	assert.Equal(t, 3, sink.rows)
	assert.Equal(t, 30, sink.cells, "10 day cells per row")
	assert.Equal(t, 6, sink.bars)
	// 3 rows*2 + 30 cells + 6 bars*2 = 48 ops
	assert.Equal(t, 48, result.OpsUsed)
}

func TestRender_NoData(t *testing.T) {
	sink := &recordingSink{}
	cache := compliance.NewCache(compliance.Config{})

	result, err := newTestScheduler(1000).Render(context.Background(), trip.Snapshot{}, smallRange(), cache, sink, "")
	require.NoError(t, err)
	assert.Equal(t, render.OutcomeNoData, result.Outcome, "no data is its own state, not overflow")

	// A filter matching nobody is also no-data.
	result, err = newTestScheduler(1000).Render(context.Background(), snapshotWith(3, 1), smallRange(), cache, sink, "zzz")
	require.NoError(t, err)
	assert.Equal(t, render.OutcomeNoData, result.Outcome)
}

func TestRender_Overflow_KeepsPartialResult(t *testing.T) {
	// Budget for one full row (2+10+1*2=14) plus a fragment of the next.
	snap := snapshotWith(5, 1)
	sink := &recordingSink{}
	cache := compliance.NewCache(compliance.Config{})

	result, err := newTestScheduler(20).Render(context.Background(), snap, smallRange(), cache, sink, "")
	require.NoError(t, err)

	assert.Equal(t, render.OutcomeOverflow, result.Outcome)
	assert.Equal(t, 1, result.RowsDone)
	assert.GreaterOrEqual(t, sink.rows, 1, "partial result is kept, not rolled back")
	assert.LessOrEqual(t, result.OpsUsed, 20, "budget is never exceeded")
}

func TestRender_BudgetNeverExceeded_LargeDataSet(t *testing.T) {
	// 50 employees x 200 trips = 10,000 synthetic trips. Render must
	// terminate with either outcome and never exceed the budget.
	snap := snapshotWith(50, 200)
	sink := &recordingSink{}
	cache := compliance.NewCache(compliance.Config{})

	sched := newTestScheduler(render.DefaultBudget)
	result, err := sched.Render(context.Background(), snap, smallRange(), cache, sink, "")
	require.NoError(t, err)

	assert.Contains(t, []render.Outcome{render.OutcomeComplete, render.OutcomeOverflow}, result.Outcome)
	assert.LessOrEqual(t, result.OpsUsed, render.DefaultBudget)
}

// =============================================================================
// SCHEDULING
// =============================================================================

func TestRender_YieldsBetweenBatches(t *testing.T) {
	snap := snapshotWith(12, 0)
	sink := &recordingSink{}
	cache := compliance.NewCache(compliance.Config{})

	yields := 0
	sched := newTestScheduler(10000)
	sched.Yield = render.YieldFunc(func(ctx context.Context) error {
		yields++
		return nil
	})

	result, err := sched.Render(context.Background(), snap, smallRange(), cache, sink, "")
	require.NoError(t, err)
	assert.Equal(t, render.OutcomeComplete, result.Outcome)
	// 12 employees in batches of 5: yields before employees 5 and 10.
	assert.Equal(t, 2, yields)
}

func TestRender_ReentrantRequestRejected(t *testing.T) {
	snap := snapshotWith(10, 0)
	cache := compliance.NewCache(compliance.Config{})

	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	sched := newTestScheduler(10000)
	sched.Yield = render.YieldFunc(func(ctx context.Context) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := sched.Render(context.Background(), snap, smallRange(), cache, &recordingSink{}, "")
		done <- err
	}()

	<-entered // first render is parked at its first yield

	_, err := sched.Render(context.Background(), snap, smallRange(), cache, &recordingSink{}, "")
	assert.ErrorIs(t, err, render.ErrRenderInProgress)

	close(release)
	require.NoError(t, <-done)

	// Once idle again, rendering works.
	_, err = sched.Render(context.Background(), snap, smallRange(), cache, &recordingSink{}, "")
	assert.NoError(t, err)
}

func TestRender_CancelledContextStops(t *testing.T) {
	snap := snapshotWith(20, 0)
	cache := compliance.NewCache(compliance.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched := newTestScheduler(10000)
	_, err := sched.Render(ctx, snap, smallRange(), cache, &recordingSink{}, "")
	assert.Error(t, err, "cancellation surfaces at the first yield")
}
