package leave_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

type fixture struct {
	lc    *leave.Lifecycle
	mem   *store.TxMemory
	audit *store.MemoryActivityLog
	lt    leave.LeaveType
	today leave.Date
}

// newFixture wires a lifecycle against an in-memory store with a fixed
// clock at 2024-03-01 and one seeded annual type. Carry-forward is off so
// every balance here is the plain 21-day entitlement; the carry arithmetic
// has its own coverage in balance_test.go.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := store.NewTxMemory()
	audit := store.NewMemoryActivityLog()
	lc := leave.NewLifecycle(mem, audit, nil)

	today := date(2024, 3, 1)
	lc.Clock = leave.FixedClock{Date: today}

	lt := annualType()
	lt.CarryForwardAllowed = false
	lt.MaxCarryForwardDays = 0
	require.NoError(t, mem.InsertType(context.Background(), lt))

	return &fixture{lc: lc, mem: mem, audit: audit, lt: lt, today: today}
}

func employeeActor(id string) leave.Actor {
	return leave.Actor{
		ID:         leave.ActorID(id),
		Role:       leave.RoleEmployee,
		TenantID:   "t1",
		EmployeeID: leave.EmployeeID(id),
	}
}

func hrActor() leave.Actor {
	return leave.Actor{ID: "hr-1", Role: leave.RoleHR, TenantID: "t1"}
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_HappyPath(t *testing.T) {
	// GIVEN: A clean 21-day annual entitlement
	// WHEN: Submitting 3 days with adequate notice
	// THEN: A pending record exists with the inclusive day count

	ctx := context.Background()
	f := newFixture(t)

	app, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "family visit")
	require.NoError(t, err)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, leave.StatusPending, app.Status)
	assert.Equal(t, 3, app.DaysRequested)
	assert.Equal(t, "family visit", app.Reason)
	assert.Nil(t, app.DecidedBy)

	stored, err := f.lc.Get(ctx, "t1", app.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, stored.Status)
}

func TestSubmit_PendingDoesNotReduceBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	b, err := f.lc.Balances.BalanceFor(ctx, "emp-1", f.lt, 2024)
	require.NoError(t, err)
	assert.True(t, b.Used.IsZero(), "pending requests reserve nothing")
	assert.True(t, b.Remaining.Equal(leave.NewDays(21)))
}

func TestSubmit_InsufficientNotice_NothingPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		f.today.AddDays(1), f.today.AddDays(3), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrPolicy))

	apps, err := f.lc.ListForEmployee(ctx, "t1", "emp-1")
	require.NoError(t, err)
	assert.Empty(t, apps, "failed submission leaves no record")
}

func TestSubmit_ReversedDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 12), date(2024, 3, 10), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrValidation))
}

func TestSubmit_UnknownType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", "no-such-type",
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.Error(t, err)
	assert.True(t, leave.IsNotFound(err))
}

func TestSubmit_InactiveType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	retired := f.lt
	retired.Active = false
	require.NoError(t, f.mem.UpdateType(ctx, retired))

	_, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrValidation))
}

func TestSubmit_OverlapWithPending(t *testing.T) {
	// A pending request holds its days even before approval
	ctx := context.Background()
	f := newFixture(t)
	actor := employeeActor("emp-1")

	_, err := f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 14), "")
	require.NoError(t, err)

	_, err = f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 14), date(2024, 3, 16), "")
	require.Error(t, err)

	var policyErr *leave.PolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, leave.RuleOverlap, policyErr.Rule)
}

func TestSubmit_OverlapAcrossTypes(t *testing.T) {
	// The no-double-booking rule ignores leave type: sick leave cannot
	// cover days already held by an annual request.
	ctx := context.Background()
	f := newFixture(t)
	actor := employeeActor("emp-1")

	sick := f.lt
	sick.ID = "lt-sick"
	sick.Name = "Sick Leave"
	sick.CarryForwardAllowed = false
	require.NoError(t, f.mem.InsertType(ctx, sick))

	_, err := f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 14), "")
	require.NoError(t, err)

	_, err = f.lc.Submit(ctx, actor, "emp-1", sick.ID,
		date(2024, 3, 12), date(2024, 3, 13), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrPolicy))
}

func TestSubmit_RejectedRangeCanBeRebooked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := employeeActor("emp-1")

	app, err := f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	_, err = f.lc.Decide(ctx, hrActor(), app.ID, leave.DecisionReject, "coverage gap")
	require.NoError(t, err)

	_, err = f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "second try")
	assert.NoError(t, err)
}

func TestSubmit_InsufficientBalance(t *testing.T) {
	// GIVEN: A 5-day type
	// WHEN: Requesting 6 days
	// THEN: Balance rule rejects; exact fit still passes

	ctx := context.Background()
	f := newFixture(t)
	actor := employeeActor("emp-1")

	small := leave.LeaveType{
		ID: "lt-small", TenantID: "t1", Name: "Compassionate Leave",
		AnnualDays: 5, IsPaid: true, Active: true,
	}
	require.NoError(t, f.mem.InsertType(ctx, small))

	_, err := f.lc.Submit(ctx, actor, "emp-1", small.ID,
		date(2024, 4, 1), date(2024, 4, 6), "")
	require.Error(t, err)

	var policyErr *leave.PolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, leave.RuleBalance, policyErr.Rule)

	_, err = f.lc.Submit(ctx, actor, "emp-1", small.ID,
		date(2024, 4, 1), date(2024, 4, 5), "exact fit")
	assert.NoError(t, err)
}

func TestSubmit_ConcurrentOverlappingRequests(t *testing.T) {
	// GIVEN: 50 simultaneous submissions of the same range for one employee
	// WHEN: They race through validation and insert
	// THEN: Exactly one lands as Pending; the rest fail the overlap rule

	ctx := context.Background()
	f := newFixture(t)
	actor := employeeActor("emp-1")

	const workers = 50
	var wg sync.WaitGroup
	var successes atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
				date(2024, 3, 10), date(2024, 3, 12), "")
			if err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one submission may win")

	apps, err := f.lc.ListForEmployee(ctx, "t1", "emp-1")
	require.NoError(t, err)
	require.Len(t, apps, 1, "losers must leave no record")
	assert.Equal(t, leave.StatusPending, apps[0].Status)
}

// =============================================================================
// DECIDE
// =============================================================================

func TestDecide_ApproveUpdatesBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	app, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	decided, err := f.lc.Decide(ctx, hrActor(), app.ID, leave.DecisionApprove, "enjoy")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, leave.ActorID("hr-1"), *decided.DecidedBy)
	require.NotNil(t, decided.DecisionComments)
	assert.Equal(t, "enjoy", *decided.DecisionComments)
	assert.NotNil(t, decided.DecidedAt)

	b, err := f.lc.Balances.BalanceFor(ctx, "emp-1", f.lt, 2024)
	require.NoError(t, err)
	assert.True(t, b.Used.Equal(leave.NewDays(3)))
	assert.True(t, b.Remaining.Equal(leave.NewDays(18)))
}

func TestDecide_EmployeeCannotDecide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	app, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	_, err = f.lc.Decide(ctx, employeeActor("emp-1"), app.ID, leave.DecisionApprove, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrUnauthorized))
}

func TestDecide_TerminalStatesAreFinal(t *testing.T) {
	// GIVEN: An approved application
	// WHEN: Any further decision or cancellation is attempted
	// THEN: StateError; the record is unchanged

	ctx := context.Background()
	f := newFixture(t)

	app, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	_, err = f.lc.Decide(ctx, hrActor(), app.ID, leave.DecisionApprove, "")
	require.NoError(t, err)

	_, err = f.lc.Decide(ctx, hrActor(), app.ID, leave.DecisionReject, "changed my mind")
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrInvalidState))

	_, err = f.lc.Cancel(ctx, employeeActor("emp-1"), app.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrInvalidState))

	stored, err := f.lc.Get(ctx, "t1", app.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, stored.Status)
}

func TestDecide_MissingApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.lc.Decide(ctx, hrActor(), "no-such-app", leave.DecisionApprove, "")
	require.Error(t, err)
	assert.True(t, leave.IsNotFound(err))
}

// =============================================================================
// CANCEL
// =============================================================================

func TestCancel_OwnPendingRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := employeeActor("emp-1")

	app, err := f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	cancelled, err := f.lc.Cancel(ctx, actor, app.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.DecidedBy, "cancellation is not an HR decision")

	// The days are free again
	_, err = f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	assert.NoError(t, err)
}

func TestCancel_SomeoneElsesRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	app, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	_, err = f.lc.Cancel(ctx, employeeActor("emp-2"), app.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrUnauthorized))
}

// =============================================================================
// QUEUES AND ORDERING
// =============================================================================

func TestListPending_OldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		date(2024, 3, 20), date(2024, 3, 21), "")
	require.NoError(t, err)
	second, err := f.lc.Submit(ctx, employeeActor("emp-2"), "emp-2", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 11), "")
	require.NoError(t, err)

	pending, err := f.lc.ListPending(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID, "queue is submission order, not date order")
	assert.Equal(t, second.ID, pending[1].ID)
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

func TestLifecycle_AuditEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := employeeActor("emp-1")

	app, err := f.lc.Submit(ctx, actor, "emp-1", f.lt.ID,
		date(2024, 3, 10), date(2024, 3, 12), "")
	require.NoError(t, err)

	_, err = f.lc.Decide(ctx, hrActor(), app.ID, leave.DecisionApprove, "")
	require.NoError(t, err)

	entries := f.audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, leave.EventLeaveSubmitted, entries[0].Event)
	assert.Equal(t, leave.ActorID("emp-1"), entries[0].ActorID)
	assert.Equal(t, leave.EventLeaveApproved, entries[1].Event)
	assert.Equal(t, leave.ActorID("hr-1"), entries[1].ActorID)
}

func TestLifecycle_FailedSubmitNotAudited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.lc.Submit(ctx, employeeActor("emp-1"), "emp-1", f.lt.ID,
		f.today, f.today.AddDays(1), "")
	require.Error(t, err)
	assert.Empty(t, f.audit.Entries())
}
