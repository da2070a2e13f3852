package render_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/trip-engine/render"
)

type applyRecorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *applyRecorder) apply(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
}

func (r *applyRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func TestDebouncer_CoalescesRapidUpdates(t *testing.T) {
	rec := &applyRecorder{}
	d := render.NewDebouncer(30*time.Millisecond, rec.apply)
	defer d.Stop()

	d.Set("a")
	d.Set("ab")
	d.Set("abc")

	time.Sleep(120 * time.Millisecond)

	got := rec.snapshot()
	require.Len(t, got, 1, "rapid updates collapse into one apply")
	assert.Equal(t, "abc", got[0], "only the last query wins")
}

func TestDebouncer_FlushAppliesImmediately(t *testing.T) {
	rec := &applyRecorder{}
	d := render.NewDebouncer(time.Hour, rec.apply)
	defer d.Stop()

	d.Set("query")
	d.Flush()

	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "query", got[0])

	// Flush with nothing pending is a no-op.
	d.Flush()
	assert.Len(t, rec.snapshot(), 1)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	rec := &applyRecorder{}
	d := render.NewDebouncer(20*time.Millisecond, rec.apply)

	d.Set("doomed")
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.snapshot(), "stopped debouncer must not fire")

	d.Set("after-stop")
	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}
