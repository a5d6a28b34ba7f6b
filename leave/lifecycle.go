/*
lifecycle.go - Application state machine

PURPOSE:
  Governs a leave application from submission through decision or
  cancellation:

      submit                decide (HR)
        │                      │
        ▼                      ▼
    ┌─────────┐   approve ┌──────────┐
    │ Pending │──────────▶│ Approved │ (terminal)
    └─────────┘           └──────────┘
        │        reject   ┌──────────┐
        ├────────────────▶│ Rejected │ (terminal)
        │                 └──────────┘
        │ cancel          ┌───────────┐
        └────────────────▶│ Cancelled │ (terminal)
          (applicant only)└───────────┘

  No other transitions exist. An attempt on a terminal record fails with
  StateError and has no side effect.

SUBMISSION:
  Submit runs the full rule chain - date order, notice, span, overlap,
  balance - and inserts the Pending record only if every check passes.
  The overlap check is re-run on the store transaction's snapshot right
  before the insert, and a per-employee lock is held for the duration, so
  two concurrent overlapping submissions cannot both land. Nothing is
  persisted on any failure.

DECISIONS:
  decide and cancel are per-record read-modify-write inside a store
  transaction: the status is re-read under the transaction, so a stale
  client acting on an already-decided record gets StateError, not a
  silent double-write.

AUDIT:
  Every successful transition emits one activity-log entry. Audit writes
  are best-effort: a failure is logged for monitoring and the transition
  stands.

SEE ALSO:
  - policy.go:   The pure rules submit composes
  - conflict.go: The overlap check
  - balance.go:  The balance read
*/
package leave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle owns all mutations of Application records.
type Lifecycle struct {
	Store    TxStore
	Balances *BalanceLedger
	Policy   SubmissionPolicy
	Clock    Clock
	Audit    ActivityLog
	Log      *zap.Logger

	// Per-employee submit serialization. WithTx gives atomicity; the lock
	// closes the validate/insert race between two submissions for the same
	// employee when the store's isolation level alone would not. The map
	// grows one mutex per distinct employee and is never pruned; at leave
	// cardinality (one entry per person) that is bounded by headcount.
	mu    sync.Mutex
	locks map[employeeKey]*sync.Mutex
}

// employeeKey scopes the submit lock: the same employee ID in two tenants
// must not contend.
type employeeKey struct {
	Tenant   TenantID
	Employee EmployeeID
}

func NewLifecycle(store TxStore, audit ActivityLog, log *zap.Logger) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	if audit == nil {
		audit = NopActivityLog{}
	}
	return &Lifecycle{
		Store:    store,
		Balances: NewBalanceLedger(store, log),
		Policy:   DefaultSubmissionPolicy(),
		Clock:    SystemClock{},
		Audit:    audit,
		Log:      log.Named("leave.lifecycle"),
		locks:    make(map[employeeKey]*sync.Mutex),
	}
}

// =============================================================================
// SUBMIT - Pending record creation
// =============================================================================

// Submit validates a new leave request and inserts it as Pending. On any
// failure the specific error is returned and nothing is persisted.
func (lc *Lifecycle) Submit(
	ctx context.Context,
	actor Actor,
	employee EmployeeID,
	typeID LeaveTypeID,
	start, end Date,
	reason string,
) (*Application, error) {
	tenant := actor.TenantID

	unlock := lc.lockEmployee(tenant, employee)
	defer unlock()

	today := lc.Clock.Today()

	// 1. Structural and pure policy checks: date order -> notice -> span.
	if err := lc.Policy.ValidateWindow(today, start, end); err != nil {
		return nil, err
	}

	// 2. The leave type must exist in the tenant and still be active.
	lt, err := lc.Store.GetType(ctx, tenant, typeID)
	if err != nil {
		return nil, err
	}
	if lt == nil {
		return nil, &NotFoundError{Kind: "leave type", ID: string(typeID)}
	}
	if !lt.Active {
		return nil, &ValidationError{Field: "leave_type_id", Reason: "leave type is no longer active"}
	}

	days := InclusiveDays(start, end)

	app := Application{
		ID:            ApplicationID(uuid.NewString()),
		TenantID:      tenant,
		EmployeeID:    employee,
		LeaveTypeID:   typeID,
		StartDate:     start,
		EndDate:       end,
		DaysRequested: days,
		Reason:        reason,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	// 3-5. Overlap, balance, and insert run against one transactional
	// snapshot, so the conflict check and the write are a single atomic
	// unit (no window for a concurrent submission to slip through).
	err = lc.Store.WithTx(ctx, func(s Store) error {
		detector := &ConflictDetector{Apps: s}
		overlap, err := detector.Overlaps(ctx, tenant, employee, start, end, "")
		if err != nil {
			return err
		}
		if overlap {
			return &PolicyError{Rule: RuleOverlap, Message: "dates overlap an existing leave request"}
		}

		ledger := &BalanceLedger{Store: s, Log: lc.Log}
		balance, err := ledger.BalanceFor(ctx, employee, *lt, start.Year())
		if err != nil {
			return err
		}
		if !SufficientBalance(balance.Remaining, NewDays(days)) {
			return &PolicyError{Rule: RuleBalance, Message: "insufficient balance"}
		}

		return s.InsertApplication(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	lc.record(ctx, actor, EventLeaveSubmitted,
		fmt.Sprintf("leave request %s: %s to %s (%d days) for employee %s",
			app.ID, start, end, days, employee))

	lc.Log.Info("leave request submitted",
		zap.String("application_id", string(app.ID)),
		zap.String("employee_id", string(employee)),
		zap.String("leave_type_id", string(typeID)),
		zap.Int("days", days),
	)
	return &app, nil
}

// =============================================================================
// DECIDE - Approve or reject (HR only)
// =============================================================================

// Decide moves a Pending application to Approved or Rejected. Only HR or
// admin actors may decide; a record not currently Pending yields StateError.
func (lc *Lifecycle) Decide(
	ctx context.Context,
	actor Actor,
	id ApplicationID,
	decision Decision,
	comments string,
) (*Application, error) {
	if !actor.CanDecide() {
		return nil, &AuthorizationError{Actor: actor.ID, Reason: "only HR may decide leave requests"}
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, &ValidationError{Field: "decision", Reason: "must be approve or reject"}
	}

	var updated Application
	err := lc.Store.WithTx(ctx, func(s Store) error {
		app, err := s.GetApplication(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if app == nil {
			return &NotFoundError{Kind: "application", ID: string(id)}
		}
		if app.Status != StatusPending {
			return &StateError{ApplicationID: id, Status: app.Status, Attempted: string(decision)}
		}

		now := time.Now().UTC()
		app.Status = StatusApproved
		if decision == DecisionReject {
			app.Status = StatusRejected
		}
		app.DecidedBy = &actor.ID
		app.DecidedAt = &now
		if comments != "" {
			app.DecisionComments = &comments
		}

		if err := s.UpdateApplication(ctx, *app); err != nil {
			return err
		}
		updated = *app
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := EventLeaveApproved
	if updated.Status == StatusRejected {
		event = EventLeaveRejected
	}
	lc.record(ctx, actor, event,
		fmt.Sprintf("leave request %s %s by %s", id, updated.Status, actor.ID))

	lc.Log.Info("leave request decided",
		zap.String("application_id", string(id)),
		zap.String("status", string(updated.Status)),
		zap.String("decided_by", string(actor.ID)),
	)
	return &updated, nil
}

// =============================================================================
// CANCEL - Applicant withdraws a pending request
// =============================================================================

// Cancel moves a Pending application to Cancelled. Only the original
// applicant may cancel; anyone else gets AuthorizationError regardless of
// the record's status.
func (lc *Lifecycle) Cancel(ctx context.Context, actor Actor, id ApplicationID) (*Application, error) {
	var updated Application
	err := lc.Store.WithTx(ctx, func(s Store) error {
		app, err := s.GetApplication(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if app == nil {
			return &NotFoundError{Kind: "application", ID: string(id)}
		}
		if actor.EmployeeID == "" || app.EmployeeID != actor.EmployeeID {
			return &AuthorizationError{Actor: actor.ID, Reason: "only the applicant may cancel a leave request"}
		}
		if app.Status != StatusPending {
			return &StateError{ApplicationID: id, Status: app.Status, Attempted: "cancel"}
		}

		app.Status = StatusCancelled

		if err := s.UpdateApplication(ctx, *app); err != nil {
			return err
		}
		updated = *app
		return nil
	})
	if err != nil {
		return nil, err
	}

	lc.record(ctx, actor, EventLeaveCancelled,
		fmt.Sprintf("leave request %s cancelled by %s", id, actor.ID))

	lc.Log.Info("leave request cancelled",
		zap.String("application_id", string(id)),
		zap.String("employee_id", string(actor.EmployeeID)),
	)
	return &updated, nil
}

// =============================================================================
// READS
// =============================================================================

// Get returns one application in the actor's tenant scope.
func (lc *Lifecycle) Get(ctx context.Context, tenant TenantID, id ApplicationID) (*Application, error) {
	app, err := lc.Store.GetApplication(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, &NotFoundError{Kind: "application", ID: string(id)}
	}
	return app, nil
}

// ListForEmployee returns the employee's application history, newest first.
func (lc *Lifecycle) ListForEmployee(ctx context.Context, tenant TenantID, employee EmployeeID) ([]Application, error) {
	return lc.Store.ListForEmployee(ctx, tenant, employee)
}

// ListPending returns the tenant's decision queue, oldest first.
func (lc *Lifecycle) ListPending(ctx context.Context, tenant TenantID) ([]Application, error) {
	return lc.Store.ListPending(ctx, tenant)
}

// =============================================================================
// INTERNALS
// =============================================================================

// record writes one audit entry. Best-effort: failure is reported to the
// logger and swallowed, per the audit contract.
func (lc *Lifecycle) record(ctx context.Context, actor Actor, event AuditEvent, description string) {
	entry := AuditEntry{
		TenantID:    actor.TenantID,
		ActorID:     actor.ID,
		Event:       event,
		Description: description,
		At:          time.Now().UTC(),
	}
	if err := lc.Audit.Record(ctx, entry); err != nil {
		lc.Log.Error("audit write failed",
			zap.String("event", string(event)),
			zap.Error(err),
		)
	}
}

func (lc *Lifecycle) lockEmployee(tenant TenantID, employee EmployeeID) func() {
	key := employeeKey{Tenant: tenant, Employee: employee}

	lc.mu.Lock()
	l, ok := lc.locks[key]
	if !ok {
		l = &sync.Mutex{}
		lc.locks[key] = l
	}
	lc.mu.Unlock()

	l.Lock()
	return l.Unlock
}
