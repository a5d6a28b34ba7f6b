package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// INTERVAL OVERLAP - all six orderings
// =============================================================================

func TestIntervalsOverlap_Orderings(t *testing.T) {
	a1, a2 := date(2024, 3, 10), date(2024, 3, 15)

	cases := []struct {
		name    string
		b1, b2  leave.Date
		overlap bool
	}{
		{"disjoint before", date(2024, 3, 1), date(2024, 3, 5), false},
		{"disjoint after", date(2024, 3, 20), date(2024, 3, 25), false},
		{"partial left", date(2024, 3, 8), date(2024, 3, 12), true},
		{"partial right", date(2024, 3, 14), date(2024, 3, 18), true},
		{"contained", date(2024, 3, 11), date(2024, 3, 13), true},
		{"containing", date(2024, 3, 1), date(2024, 3, 30), true},
		{"identical", date(2024, 3, 10), date(2024, 3, 15), true},
		{"touching at start", date(2024, 3, 5), date(2024, 3, 10), true},
		{"touching at end", date(2024, 3, 15), date(2024, 3, 20), true},
		{"adjacent before", date(2024, 3, 5), date(2024, 3, 9), false},
		{"adjacent after", date(2024, 3, 16), date(2024, 3, 20), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, leave.IntervalsOverlap(a1, a2, tc.b1, tc.b2))
			// The test is symmetric in its two intervals
			assert.Equal(t, tc.overlap, leave.IntervalsOverlap(tc.b1, tc.b2, a1, a2))
		})
	}
}

func TestIntervalsOverlap_SharedBoundaryDay(t *testing.T) {
	// [2024-03-10, 2024-03-12] and [2024-03-12, 2024-03-15] share March 12
	assert.True(t, leave.IntervalsOverlap(
		date(2024, 3, 10), date(2024, 3, 12),
		date(2024, 3, 12), date(2024, 3, 15),
	))

	// [2024-03-10, 2024-03-11] and [2024-03-12, 2024-03-15] share nothing
	assert.False(t, leave.IntervalsOverlap(
		date(2024, 3, 10), date(2024, 3, 11),
		date(2024, 3, 12), date(2024, 3, 15),
	))
}

// =============================================================================
// CONFLICT DETECTOR against stored applications
// =============================================================================

func seedApp(t *testing.T, s leave.ApplicationStore, employee leave.EmployeeID, status leave.Status, start, end leave.Date) leave.Application {
	t.Helper()
	app := leave.Application{
		ID:            leave.ApplicationID(uuid.NewString()),
		TenantID:      "t1",
		EmployeeID:    employee,
		LeaveTypeID:   "lt-annual",
		StartDate:     start,
		EndDate:       end,
		DaysRequested: leave.InclusiveDays(start, end),
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.InsertApplication(context.Background(), app))
	return app
}

func TestConflictDetector_OpenApplicationsOnly(t *testing.T) {
	// GIVEN: One pending, one approved, one rejected and one cancelled range
	// WHEN: A candidate range overlaps each in turn
	// THEN: Only pending and approved count as conflicts

	ctx := context.Background()
	mem := store.NewMemory()
	detector := &leave.ConflictDetector{Apps: mem}

	seedApp(t, mem, "emp-1", leave.StatusPending, date(2024, 5, 1), date(2024, 5, 3))
	seedApp(t, mem, "emp-1", leave.StatusApproved, date(2024, 5, 10), date(2024, 5, 12))
	seedApp(t, mem, "emp-1", leave.StatusRejected, date(2024, 5, 20), date(2024, 5, 22))
	seedApp(t, mem, "emp-1", leave.StatusCancelled, date(2024, 5, 25), date(2024, 5, 27))

	conflict, err := detector.Overlaps(ctx, "t1", "emp-1", date(2024, 5, 3), date(2024, 5, 4), "")
	require.NoError(t, err)
	assert.True(t, conflict, "pending range conflicts")

	conflict, err = detector.Overlaps(ctx, "t1", "emp-1", date(2024, 5, 12), date(2024, 5, 14), "")
	require.NoError(t, err)
	assert.True(t, conflict, "approved range conflicts")

	conflict, err = detector.Overlaps(ctx, "t1", "emp-1", date(2024, 5, 20), date(2024, 5, 22), "")
	require.NoError(t, err)
	assert.False(t, conflict, "rejected range is free to rebook")

	conflict, err = detector.Overlaps(ctx, "t1", "emp-1", date(2024, 5, 25), date(2024, 5, 27), "")
	require.NoError(t, err)
	assert.False(t, conflict, "cancelled range is free to rebook")
}

func TestConflictDetector_ScopedToEmployee(t *testing.T) {
	// Different employees may hold the same days
	ctx := context.Background()
	mem := store.NewMemory()
	detector := &leave.ConflictDetector{Apps: mem}

	seedApp(t, mem, "emp-1", leave.StatusApproved, date(2024, 5, 1), date(2024, 5, 5))

	conflict, err := detector.Overlaps(ctx, "t1", "emp-2", date(2024, 5, 1), date(2024, 5, 5), "")
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestConflictDetector_ExcludesGivenApplication(t *testing.T) {
	// Re-validating a record against itself must not self-conflict
	ctx := context.Background()
	mem := store.NewMemory()
	detector := &leave.ConflictDetector{Apps: mem}

	app := seedApp(t, mem, "emp-1", leave.StatusPending, date(2024, 5, 1), date(2024, 5, 5))

	conflict, err := detector.Overlaps(ctx, "t1", "emp-1", date(2024, 5, 1), date(2024, 5, 5), app.ID)
	require.NoError(t, err)
	assert.False(t, conflict)
}
