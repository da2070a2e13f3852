package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/trip-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTripCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := sqlite.TripRecord{
		ID: "t1", EmployeeID: "e1", EmployeeName: "Ada", Country: "DE",
		EntryDate: "2025-06-01", ExitDate: "2025-06-05", Ghosted: true,
	}
	require.NoError(t, store.SaveTrip(ctx, record))

	got, err := store.GetTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, record, *got)

	record.Country = "FR"
	record.ExitDate = "2025-06-08"
	require.NoError(t, store.UpdateTrip(ctx, record))

	got, err = store.GetTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "FR", got.Country)
	assert.Equal(t, "2025-06-08", got.ExitDate)

	require.NoError(t, store.DeleteTrip(ctx, "t1"))
	_, err = store.GetTrip(ctx, "t1")
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestUpdateTrip_MissingRow(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateTrip(context.Background(), sqlite.TripRecord{
		ID: "nope", EmployeeID: "e1", EntryDate: "2025-06-01", ExitDate: "2025-06-01",
	})
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestDuplicateTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTrip(ctx, sqlite.TripRecord{
		ID: "t1", EmployeeID: "e1", Country: "DE",
		EntryDate: "2025-06-01", ExitDate: "2025-06-05",
	}))

	clone, err := store.DuplicateTrip(ctx, "t1", "t2")
	require.NoError(t, err)
	assert.Equal(t, "t2", clone.ID)
	assert.Equal(t, "DE", clone.Country)
	assert.Equal(t, "2025-06-01", clone.EntryDate)

	_, err = store.DuplicateTrip(ctx, "missing", "t3")
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestListTripsByEmployee_Ordered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, r := range []sqlite.TripRecord{
		{ID: "b", EmployeeID: "e1", EntryDate: "2025-06-10", ExitDate: "2025-06-12"},
		{ID: "a", EmployeeID: "e1", EntryDate: "2025-06-01", ExitDate: "2025-06-05"},
		{ID: "c", EmployeeID: "e2", EntryDate: "2025-06-03", ExitDate: "2025-06-04"},
	} {
		require.NoError(t, store.SaveTrip(ctx, r))
	}

	got, err := store.ListTripsByEmployee(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID, "ordered by entry date")
	assert.Equal(t, "b", got[1].ID)
}

func TestEmployees_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, sqlite.EmployeeRecord{ID: "e2", Name: "Grace", Active: true}))
	require.NoError(t, store.SaveEmployee(ctx, sqlite.EmployeeRecord{ID: "e1", Name: "Ada", Active: false}))

	got, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].Name, "ordered by name")
	assert.False(t, got[0].Active)
}
