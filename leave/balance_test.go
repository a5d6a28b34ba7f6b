package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func annualType() leave.LeaveType {
	now := time.Now().UTC()
	return leave.LeaveType{
		ID:                  "lt-annual",
		TenantID:            "t1",
		Name:                "Annual Leave",
		AnnualDays:          21,
		IsPaid:              true,
		CarryForwardAllowed: true,
		MaxCarryForwardDays: 5,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func approvedDays(t *testing.T, s leave.ApplicationStore, employee leave.EmployeeID, typeID leave.LeaveTypeID, start leave.Date, days int) {
	t.Helper()
	end := start.AddDays(days - 1)
	app := leave.Application{
		ID:            leave.ApplicationID(string(employee) + "-" + start.String()),
		TenantID:      "t1",
		EmployeeID:    employee,
		LeaveTypeID:   typeID,
		StartDate:     start,
		EndDate:       end,
		DaysRequested: days,
		Status:        leave.StatusApproved,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.InsertApplication(context.Background(), app))
}

// =============================================================================
// BALANCE ARITHMETIC
// =============================================================================

func TestBalance_NoUsage(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)

	lt := annualType()
	b, err := ledger.BalanceFor(ctx, "emp-1", lt, 2024)
	require.NoError(t, err)

	assert.True(t, b.Entitled.Equal(leave.NewDays(21)))
	assert.True(t, b.Used.IsZero())
	assert.True(t, b.Remaining.Equal(leave.NewDays(21)))
}

func TestBalance_UsedCountsApprovedByStartYear(t *testing.T) {
	// GIVEN: 3 approved days in 2024, 2 approved days in 2023
	// WHEN: Computing the 2024 balance
	// THEN: Only the application starting in 2024 counts as used

	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)
	lt := annualType()

	approvedDays(t, mem, "emp-1", lt.ID, date(2024, 3, 10), 3)
	approvedDays(t, mem, "emp-1", lt.ID, date(2023, 3, 10), 2)

	b, err := ledger.BalanceFor(ctx, "emp-1", lt, 2024)
	require.NoError(t, err)

	assert.True(t, b.Used.Equal(leave.NewDays(3)), "used = %s", b.Used)
	// 2023 leaves 21-2=19 remaining, carried in capped at 5
	assert.True(t, b.CarriedIn.Equal(leave.NewDays(5)), "carried in = %s", b.CarriedIn)
	assert.True(t, b.Entitled.Equal(leave.NewDays(26)))
	assert.True(t, b.Remaining.Equal(leave.NewDays(23)))
}

func TestBalance_CarryForwardCap(t *testing.T) {
	// GIVEN: The prior year nearly untouched (20 of 21 days remaining)
	// WHEN: Computing this year's carry-in
	// THEN: It is capped at MaxCarryForwardDays

	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)
	lt := annualType()

	approvedDays(t, mem, "emp-1", lt.ID, date(2023, 6, 1), 1)

	b, err := ledger.BalanceFor(ctx, "emp-1", lt, 2024)
	require.NoError(t, err)
	assert.True(t, b.CarriedIn.Equal(leave.NewDays(5)), "20 remaining should cap to 5")
}

func TestBalance_CarryForwardBelowCap(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)
	lt := annualType()

	// 18 of 21 used in 2023, leaving 3 - below the cap of 5
	approvedDays(t, mem, "emp-1", lt.ID, date(2023, 2, 1), 18)

	b, err := ledger.BalanceFor(ctx, "emp-1", lt, 2024)
	require.NoError(t, err)
	assert.True(t, b.CarriedIn.Equal(leave.NewDays(3)))
}

func TestBalance_CarryForwardDisabled(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)

	lt := annualType()
	lt.CarryForwardAllowed = false
	lt.MaxCarryForwardDays = 0

	b, err := ledger.BalanceFor(ctx, "emp-1", lt, 2024)
	require.NoError(t, err)
	assert.True(t, b.CarriedIn.IsZero())
	assert.True(t, b.Entitled.Equal(leave.NewDays(21)))
}

func TestBalance_PriorYearCarryNotChained(t *testing.T) {
	// The carry-in computation looks back exactly one year: 2023's remaining
	// is computed without 2022's carry, so untouched years never compound.
	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)
	lt := annualType()

	b, err := ledger.BalanceFor(ctx, "emp-1", lt, 2024)
	require.NoError(t, err)
	assert.True(t, b.CarriedIn.Equal(leave.NewDays(5)), "cap applies, not 2022+2023 accumulation")
	assert.True(t, b.Entitled.Equal(leave.NewDays(26)))
}

func TestBalance_NegativeRemainingClampedToZero(t *testing.T) {
	// GIVEN: More approved days than the entitlement (data anomaly)
	// WHEN: Computing the balance
	// THEN: Remaining reports zero, never negative

	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)

	lt := annualType()
	lt.CarryForwardAllowed = false

	approvedDays(t, mem, "emp-1", lt.ID, date(2024, 2, 1), 15)
	approvedDays(t, mem, "emp-1", lt.ID, date(2024, 4, 1), 10)

	b, err := ledger.BalanceFor(ctx, "emp-1", lt, 2024)
	require.NoError(t, err)
	assert.True(t, b.Used.Equal(leave.NewDays(25)))
	assert.True(t, b.Remaining.IsZero(), "remaining = %s", b.Remaining)
}

// =============================================================================
// PER-TENANT BALANCE LISTING
// =============================================================================

func TestBalances_ActiveTypesOnly(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	ledger := leave.NewBalanceLedger(mem, nil)

	active := annualType()
	require.NoError(t, mem.InsertType(ctx, active))

	retired := annualType()
	retired.ID = "lt-old"
	retired.Name = "Old Plan"
	retired.Active = false
	require.NoError(t, mem.InsertType(ctx, retired))

	balances, err := ledger.Balances(ctx, "t1", "emp-1", 2024)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, active.ID, balances[0].Type.ID)
}
